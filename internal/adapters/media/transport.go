package media

import (
	"errors"
	"sync"

	mediaserver "github.com/notedit/media-server-go"
	"github.com/notedit/media-server-go/sdp"

	"github.com/castlab/relaygate/internal/core"
)

type transport struct {
	raw *mediaserver.Transport

	stopOnce sync.Once
	stopped  chan struct{}
}

func newTransport(raw *mediaserver.Transport) *transport {
	t := &transport{raw: raw, stopped: make(chan struct{})}
	raw.OnStop(t.markStopped)
	return t
}

func (t *transport) markStopped() {
	t.stopOnce.Do(func() { close(t.stopped) })
}

func (t *transport) SetRemoteProperties(audio, video *sdp.MediaInfo) {
	t.raw.SetRemoteProperties(audio, video)
}

func (t *transport) SetLocalProperties(audio, video *sdp.MediaInfo) {
	t.raw.SetLocalProperties(audio, video)
}

func (t *transport) LocalICEInfo() *sdp.ICEInfo {
	return t.raw.GetLocalICEInfo()
}

func (t *transport) LocalDTLSInfo() *sdp.DTLSInfo {
	return t.raw.GetLocalDTLSInfo()
}

func (t *transport) CreateIncomingStream(info *sdp.StreamInfo) (core.IncomingStream, error) {
	raw := t.raw.CreateIncomingStream(info)
	if raw == nil {
		return nil, errors.New("engine refused incoming stream")
	}
	return &incomingStream{raw: raw}, nil
}

func (t *transport) CreateOutgoingStream(id string, audio, video bool) (core.OutgoingStream, error) {
	raw := t.raw.CreateOutgoingStreamWithID(id, audio, video)
	if raw == nil {
		return nil, errors.New("engine refused outgoing stream")
	}
	return &outgoingStream{raw: raw}, nil
}

func (t *transport) Stopped() <-chan struct{} {
	return t.stopped
}

func (t *transport) Stop() {
	t.raw.Stop()
	t.markStopped()
}
