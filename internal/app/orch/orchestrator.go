// Package orch drives offer/answer negotiation: it owns the transport
// lifecycle step shared by the publish and subscribe paths and leaves
// media transport itself to the engine.
package orch

import (
	"fmt"

	"github.com/notedit/media-server-go/sdp"

	"github.com/castlab/relaygate/internal/app"
	"github.com/castlab/relaygate/internal/core"
)

type Orchestrator struct {
	Engine   core.Engine
	Registry *app.Registry
	// Caps bounds the codecs and extensions every answer negotiates.
	Caps map[string]*sdp.Capability
}

// DefaultCapabilities negotiates VP8 with RTX and the usual feedback and
// header extensions, simulcast allowed on video.
func DefaultCapabilities() map[string]*sdp.Capability {
	return map[string]*sdp.Capability{
		"audio": {
			Codecs: []string{"opus"},
			Extensions: []string{
				"urn:ietf:params:rtp-hdrext:ssrc-audio-level",
				"http://www.ietf.org/id/draft-holmer-rmcat-transport-wide-cc-extensions-01",
			},
		},
		"video": {
			Codecs:    []string{"vp8"},
			Rtx:       true,
			Simulcast: true,
			Rtcpfbs: []*sdp.RtcpFeedback{
				{ID: "transport-cc"},
				{ID: "ccm", Params: []string{"fir"}},
				{ID: "nack"},
				{ID: "nack", Params: []string{"pli"}},
			},
			Extensions: []string{
				"urn:3gpp:video-orientation",
				"http://www.ietf.org/id/draft-holmer-rmcat-transport-wide-cc-extensions-01",
			},
		},
	}
}

// parseOffer turns the raw SDP into its structured form. Every operation of
// this server is a video operation, so an offer without video media is
// rejected here.
func parseOffer(rawOffer string) (*sdp.SDPInfo, error) {
	offer, err := sdp.Parse(rawOffer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedOffer, err)
	}
	if offer.GetMedia("video") == nil {
		return nil, core.ErrMissingVideo
	}
	return offer, nil
}

// negotiated bundles the artifacts of one offer/answer exchange.
type negotiated struct {
	offer     *sdp.SDPInfo
	answer    *sdp.SDPInfo
	transport core.Transport
}

// negotiate allocates a transport bound to the offer's remote DTLS/ICE
// parameters and builds the answer carrying the transport's local parameters
// and the engine's candidates unmodified. Terminal on failure; no retry, no
// partial-success state.
func (o *Orchestrator) negotiate(offer *sdp.SDPInfo) (*negotiated, error) {
	transport, err := o.Engine.CreateTransport(offer)
	if err != nil {
		return nil, fmt.Errorf("create transport: %w", err)
	}
	transport.SetRemoteProperties(offer.GetMedia("audio"), offer.GetMedia("video"))

	answer := offer.Answer(
		transport.LocalICEInfo(),
		transport.LocalDTLSInfo(),
		o.Engine.LocalCandidates(),
		o.Caps,
	)
	transport.SetLocalProperties(answer.GetMedia("audio"), answer.GetMedia("video"))

	return &negotiated{offer: offer, answer: answer, transport: transport}, nil
}

// ridsOf flattens a track's simulcast encoding alternatives into the rid list
// subscribers may select from.
func ridsOf(track *sdp.TrackInfo) []string {
	var rids []string
	for _, alternatives := range track.GetEncodings() {
		for _, enc := range alternatives {
			rids = append(rids, enc.GetID())
		}
	}
	return rids
}

// simulcastOffered reports whether any declared video track carries a
// simulcast encoding list.
func simulcastOffered(offer *sdp.SDPInfo) bool {
	for _, stream := range offer.GetStreams() {
		for _, track := range stream.GetTracks() {
			if track.GetMedia() == "video" && len(ridsOf(track)) > 0 {
				return true
			}
		}
	}
	return false
}
