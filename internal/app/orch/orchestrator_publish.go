package orch

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/castlab/relaygate/internal/core"
)

type PublishResult struct {
	SessionID core.SessionID
	Answer    string
	// Tracks lists the addressable trackId -> [rid...] pairs. Simulcast only.
	Tracks map[string][]string
}

// Publish ingests a publisher's offer and registers the session that makes
// its media addressable. The record is inserted only after every incoming
// stream, track and encoding has been created; any failure stops the
// transport and leaves the registry untouched.
func (o *Orchestrator) Publish(mode core.PublishMode, rawOffer string) (*PublishResult, error) {
	offer, err := parseOffer(rawOffer)
	if err != nil {
		return nil, err
	}
	if mode == core.ModeSimulcast && !simulcastOffered(offer) {
		return nil, core.ErrSimulcastNotOffered
	}

	n, err := o.negotiate(offer)
	if err != nil {
		return nil, err
	}

	sess := &core.Session{Mode: mode, Transport: n.transport}
	switch mode {
	case core.ModeSimulcast:
		err = acceptSimulcast(n, sess)
	default:
		err = acceptBroadcast(n, sess)
	}
	if err != nil {
		n.transport.Stop()
		return nil, err
	}

	id, err := core.NewSessionID()
	if err != nil {
		n.transport.Stop()
		return nil, fmt.Errorf("generate session id: %w", err)
	}
	sess.ID = id

	if err := o.Registry.Insert(sess); err != nil {
		n.transport.Stop()
		return nil, err
	}
	o.Registry.RemoveOnStop(id, n.transport)

	res := &PublishResult{SessionID: id, Answer: n.answer.String()}
	if mode == core.ModeSimulcast {
		res.Tracks = sess.Rids()
	}
	log.Info().
		Str("module", "orch").
		Str("session_id", string(id)).
		Str("mode", mode.String()).
		Int("tracks", len(res.Tracks)).
		Msg("publish accepted")
	return res, nil
}

// acceptBroadcast ingests the offer's single declared stream. No self-forward
// is created; attachment happens per subscriber.
func acceptBroadcast(n *negotiated, sess *core.Session) error {
	if len(n.offer.GetStreams()) == 0 {
		return core.ErrNoStreamInOffer
	}
	incoming, err := n.transport.CreateIncomingStream(n.offer.GetFirstStream())
	if err != nil {
		return fmt.Errorf("create incoming stream: %w", err)
	}
	sess.Stream = incoming
	return nil
}

// acceptSimulcast ingests every declared stream and builds the
// trackId -> rid -> incoming track table from the offer's encoding lists.
func acceptSimulcast(n *negotiated, sess *core.Session) error {
	streams := n.offer.GetStreams()
	if len(streams) == 0 {
		return core.ErrNoStreamInOffer
	}

	tables := make(map[string]core.EncodingTable)
	for _, info := range streams {
		incoming, err := n.transport.CreateIncomingStream(info)
		if err != nil {
			return fmt.Errorf("create incoming stream: %w", err)
		}

		handles := make(map[string]core.IncomingTrack)
		for _, track := range incoming.VideoTracks() {
			handles[track.ID()] = track
		}

		for _, track := range info.GetTracks() {
			if track.GetMedia() != "video" {
				continue
			}
			rids := ridsOf(track)
			if len(rids) == 0 {
				continue
			}
			handle, ok := handles[track.GetID()]
			if !ok {
				return fmt.Errorf("engine returned no handle for track %q", track.GetID())
			}
			table := make(core.EncodingTable, len(rids))
			for _, rid := range rids {
				table[rid] = handle
			}
			tables[track.GetID()] = table
		}
	}

	if len(tables) == 0 {
		return core.ErrSimulcastNotOffered
	}
	sess.Tracks = tables
	return nil
}
