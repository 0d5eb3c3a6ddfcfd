package orch

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/castlab/relaygate/internal/core"
)

type SinkRequest struct {
	// Mode must match the session's publish mode; the broadcast and simulcast
	// surfaces address disjoint session populations.
	Mode      core.PublishMode
	SessionID core.SessionID
	TrackID   string
	Rid       string
	RawOffer  string
}

type SinkResult struct {
	Answer string
}

// Subscribe negotiates a new transport for a subscriber and attaches an
// outgoing stream to the published media the request addresses. The registry
// is consulted once, before any engine work; the publisher may disconnect
// between that lookup and the attach, in which case the failure surfaces as
// an engine error and the caller must treat the session as possibly gone.
func (o *Orchestrator) Subscribe(req SinkRequest) (*SinkResult, error) {
	sess, ok := o.Registry.Lookup(req.SessionID)
	if !ok || sess.Mode != req.Mode {
		return nil, core.ErrUnknownSession
	}

	var (
		srcStream core.IncomingStream
		srcTrack  core.IncomingTrack
	)
	switch sess.Mode {
	case core.ModeSimulcast:
		table, ok := sess.Track(req.TrackID)
		if !ok {
			return nil, core.ErrUnknownTrack
		}
		if srcTrack, ok = table[req.Rid]; !ok {
			return nil, core.ErrUnknownEncoding
		}
	default:
		srcStream = sess.Stream
	}

	offer, err := parseOffer(req.RawOffer)
	if err != nil {
		return nil, err
	}
	n, err := o.negotiate(offer)
	if err != nil {
		return nil, err
	}

	outgoing, err := n.transport.CreateOutgoingStream(uuid.NewString(), false, true)
	if err != nil {
		n.transport.Stop()
		return nil, fmt.Errorf("create outgoing stream: %w", err)
	}

	if err := forward(outgoing, srcStream, srcTrack, req.Rid); err != nil {
		n.transport.Stop()
		return nil, err
	}

	n.answer.AddStream(outgoing.StreamInfo())

	log.Info().
		Str("module", "orch").
		Str("session_id", string(req.SessionID)).
		Str("track_id", req.TrackID).
		Str("rid", req.Rid).
		Str("outgoing_id", outgoing.ID()).
		Msg("sink attached")
	return &SinkResult{Answer: n.answer.String()}, nil
}

// forward attaches the outgoing stream to its source: the whole incoming
// stream for broadcast, a single pinned encoding for simulcast. Attachment
// is not exclusive; any number of subscribers may fan out from one source.
func forward(out core.OutgoingStream, stream core.IncomingStream, track core.IncomingTrack, rid string) error {
	if track == nil {
		out.AttachTo(stream)
		return nil
	}
	videoTracks := out.VideoTracks()
	if len(videoTracks) == 0 {
		return errors.New("outgoing stream has no video track")
	}
	transponder := videoTracks[0].AttachTo(track)
	transponder.SelectEncoding(rid)
	return nil
}
