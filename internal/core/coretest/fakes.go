// Package coretest provides hand-rolled fakes for the media engine boundary,
// so negotiation logic is testable without a running media server.
package coretest

import (
	"errors"
	"sync"

	"github.com/notedit/media-server-go/sdp"

	"github.com/castlab/relaygate/internal/core"
)

// localSDP supplies the fake engine's local ICE/DTLS parameters and
// candidates. Tests assert these surface in answers unmodified.
const localSDP = "v=0\r\n" +
	"o=- 0 2 IN IP4 127.0.0.1\r\n" +
	"s=-\r\n" +
	"t=0 0\r\n" +
	"a=msid-semantic: WMS *\r\n" +
	"m=video 9 UDP/TLS/RTP/SAVPF 96\r\n" +
	"c=IN IP4 0.0.0.0\r\n" +
	"a=ice-ufrag:LoCaUfRg\r\n" +
	"a=ice-pwd:LoCaLpAsSwOrDLoCaLpAsSwOrD\r\n" +
	"a=fingerprint:sha-256 FF:EE:DD:CC:BB:AA:99:88:77:66:55:44:33:22:11:00:FF:EE:DD:CC:BB:AA:99:88:77:66:55:44:33:22:11:00\r\n" +
	"a=setup:passive\r\n" +
	"a=mid:0\r\n" +
	"a=sendrecv\r\n" +
	"a=candidate:1 1 udp 2130706431 192.0.2.10 50000 typ host\r\n" +
	"a=rtpmap:96 VP8/90000\r\n"

const (
	LocalUfrag       = "LoCaUfRg"
	LocalPwd         = "LoCaLpAsSwOrDLoCaLpAsSwOrD"
	LocalFingerprint = "FF:EE:DD:CC:BB:AA:99:88:77:66:55:44:33:22:11:00:FF:EE:DD:CC:BB:AA:99:88:77:66:55:44:33:22:11:00"
)

func mustParse(raw string) *sdp.SDPInfo {
	info, err := sdp.Parse(raw)
	if err != nil {
		panic(err)
	}
	return info
}

type Engine struct {
	mu         sync.Mutex
	local      *sdp.SDPInfo
	transports []*Transport

	// FailTransport makes CreateTransport reject every offer.
	FailTransport bool
	// FailIncoming and FailOutgoing are copied onto every transport the
	// engine hands out.
	FailIncoming bool
	FailOutgoing bool
}

var _ core.Engine = (*Engine)(nil)

func NewEngine() *Engine {
	return &Engine{local: mustParse(localSDP)}
}

func (e *Engine) CreateTransport(offer *sdp.SDPInfo) (core.Transport, error) {
	if e.FailTransport {
		return nil, errors.New("engine rejected remote transport parameters")
	}
	tr := NewTransport(e.local)
	tr.FailIncoming = e.FailIncoming
	tr.FailOutgoing = e.FailOutgoing
	e.mu.Lock()
	e.transports = append(e.transports, tr)
	e.mu.Unlock()
	return tr, nil
}

func (e *Engine) LocalCandidates() []*sdp.CandidateInfo {
	return e.local.GetCandidates()
}

func (e *Engine) Close() {}

// Transports snapshots every transport the engine allocated, in order.
func (e *Engine) Transports() []*Transport {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Transport, len(e.transports))
	copy(out, e.transports)
	return out
}

type Transport struct {
	local *sdp.SDPInfo

	mu       sync.Mutex
	incoming []*IncomingStream
	outgoing []*OutgoingStream

	FailIncoming bool
	FailOutgoing bool

	stopOnce sync.Once
	stopped  chan struct{}
}

var _ core.Transport = (*Transport)(nil)

func NewTransport(local *sdp.SDPInfo) *Transport {
	return &Transport{local: local, stopped: make(chan struct{})}
}

func (t *Transport) SetRemoteProperties(audio, video *sdp.MediaInfo) {}
func (t *Transport) SetLocalProperties(audio, video *sdp.MediaInfo)  {}

func (t *Transport) LocalICEInfo() *sdp.ICEInfo {
	return t.local.GetICE()
}

func (t *Transport) LocalDTLSInfo() *sdp.DTLSInfo {
	return t.local.GetDTLS()
}

func (t *Transport) CreateIncomingStream(info *sdp.StreamInfo) (core.IncomingStream, error) {
	if t.FailIncoming {
		return nil, errors.New("engine refused incoming stream")
	}
	stream := &IncomingStream{id: info.GetID()}
	for _, track := range info.GetTracks() {
		if track.GetMedia() != "video" {
			continue
		}
		stream.tracks = append(stream.tracks, &IncomingTrack{id: track.GetID()})
	}
	t.mu.Lock()
	t.incoming = append(t.incoming, stream)
	t.mu.Unlock()
	return stream, nil
}

func (t *Transport) CreateOutgoingStream(id string, audio, video bool) (core.OutgoingStream, error) {
	if t.FailOutgoing {
		return nil, errors.New("engine refused outgoing stream")
	}
	stream := &OutgoingStream{id: id}
	if video {
		stream.track = &OutgoingTrack{id: id + "-video"}
	}
	t.mu.Lock()
	t.outgoing = append(t.outgoing, stream)
	t.mu.Unlock()
	return stream, nil
}

func (t *Transport) Stopped() <-chan struct{} {
	return t.stopped
}

func (t *Transport) Stop() {
	t.stopOnce.Do(func() { close(t.stopped) })
}

func (t *Transport) IsStopped() bool {
	select {
	case <-t.stopped:
		return true
	default:
		return false
	}
}

func (t *Transport) IncomingStreams() []*IncomingStream {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*IncomingStream, len(t.incoming))
	copy(out, t.incoming)
	return out
}

func (t *Transport) OutgoingStreams() []*OutgoingStream {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*OutgoingStream, len(t.outgoing))
	copy(out, t.outgoing)
	return out
}

type IncomingStream struct {
	id     string
	tracks []*IncomingTrack
}

var _ core.IncomingStream = (*IncomingStream)(nil)

func (s *IncomingStream) ID() string { return s.id }

func (s *IncomingStream) VideoTracks() []core.IncomingTrack {
	tracks := make([]core.IncomingTrack, 0, len(s.tracks))
	for _, track := range s.tracks {
		tracks = append(tracks, track)
	}
	return tracks
}

type IncomingTrack struct {
	id string
}

func (t *IncomingTrack) ID() string { return t.id }

type OutgoingStream struct {
	id    string
	track *OutgoingTrack

	mu       sync.Mutex
	attached core.IncomingStream
}

var _ core.OutgoingStream = (*OutgoingStream)(nil)

func (s *OutgoingStream) ID() string { return s.id }

func (s *OutgoingStream) StreamInfo() *sdp.StreamInfo {
	return sdp.NewStreamInfo(s.id)
}

func (s *OutgoingStream) VideoTracks() []core.OutgoingTrack {
	if s.track == nil {
		return nil
	}
	return []core.OutgoingTrack{s.track}
}

func (s *OutgoingStream) AttachTo(incoming core.IncomingStream) {
	s.mu.Lock()
	s.attached = incoming
	s.mu.Unlock()
}

// Attached reports the incoming stream this outgoing stream forwards, for
// broadcast attachment assertions.
func (s *OutgoingStream) Attached() core.IncomingStream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attached
}

// Track exposes the single video track of the stream.
func (s *OutgoingStream) Track() *OutgoingTrack { return s.track }

type OutgoingTrack struct {
	id string

	mu          sync.Mutex
	attached    core.IncomingTrack
	transponder *Transponder
}

func (t *OutgoingTrack) ID() string { return t.id }

func (t *OutgoingTrack) AttachTo(incoming core.IncomingTrack) core.Transponder {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.attached = incoming
	t.transponder = &Transponder{}
	return t.transponder
}

func (t *OutgoingTrack) Attached() core.IncomingTrack {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.attached
}

// SelectedRid reports the encoding the attach step pinned, or "" when the
// track was never attached.
func (t *OutgoingTrack) SelectedRid() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.transponder == nil {
		return ""
	}
	return t.transponder.Rid()
}

type Transponder struct {
	mu  sync.Mutex
	rid string
}

func (t *Transponder) SelectEncoding(rid string) {
	t.mu.Lock()
	t.rid = rid
	t.mu.Unlock()
}

func (t *Transponder) Rid() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rid
}
