package core

import (
	"github.com/notedit/media-server-go/sdp"
)

// Engine is the media relay boundary: it allocates transports bound to a
// remote peer's DTLS/ICE parameters and advertises the local candidates
// subscribers connect to. Everything below this interface (ICE, DTLS, SRTP,
// RTP forwarding) belongs to the engine.
type Engine interface {
	// CreateTransport allocates a transport for the remote parameters carried
	// by the parsed offer. Failure is terminal for the request.
	CreateTransport(offer *sdp.SDPInfo) (Transport, error)
	// LocalCandidates returns the engine's local ICE candidates, written into
	// every answer untouched.
	LocalCandidates() []*sdp.CandidateInfo
	Close()
}

// Transport is one peer connection's ICE/DTLS channel. Owned by the request
// that created it; never shared.
type Transport interface {
	SetRemoteProperties(audio, video *sdp.MediaInfo)
	SetLocalProperties(audio, video *sdp.MediaInfo)
	LocalICEInfo() *sdp.ICEInfo
	LocalDTLSInfo() *sdp.DTLSInfo

	CreateIncomingStream(info *sdp.StreamInfo) (IncomingStream, error)
	CreateOutgoingStream(id string, audio, video bool) (OutgoingStream, error)

	// Stopped is closed exactly once when the engine tears the transport
	// down. The registry subscribes to it at session creation.
	Stopped() <-chan struct{}
	Stop()
}

// IncomingStream is the engine's handle for RTP arriving from a publisher.
type IncomingStream interface {
	ID() string
	VideoTracks() []IncomingTrack
}

type IncomingTrack interface {
	ID() string
}

// OutgoingStream is the engine's handle for RTP departing toward one
// subscriber. Ephemeral to its transport; never stored in the registry.
type OutgoingStream interface {
	ID() string
	StreamInfo() *sdp.StreamInfo
	VideoTracks() []OutgoingTrack
	// AttachTo forwards a whole incoming stream through this stream.
	AttachTo(incoming IncomingStream)
}

type OutgoingTrack interface {
	ID() string
	// AttachTo forwards a single incoming track; the returned transponder
	// selects which of its simulcast layers flows.
	AttachTo(incoming IncomingTrack) Transponder
}

// Transponder pins one simulcast encoding of an attached track to a
// subscriber. The selection is per-subscriber and not re-bindable; switching
// layers takes a new sink negotiation.
type Transponder interface {
	SelectEncoding(rid string)
}
