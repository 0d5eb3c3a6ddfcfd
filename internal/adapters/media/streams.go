package media

import (
	mediaserver "github.com/notedit/media-server-go"
	"github.com/notedit/media-server-go/sdp"

	"github.com/castlab/relaygate/internal/core"
)

type incomingStream struct {
	raw *mediaserver.IncomingStream
}

func (s *incomingStream) ID() string {
	return s.raw.GetID()
}

func (s *incomingStream) VideoTracks() []core.IncomingTrack {
	raws := s.raw.GetVideoTracks()
	tracks := make([]core.IncomingTrack, 0, len(raws))
	for _, raw := range raws {
		tracks = append(tracks, &incomingTrack{raw: raw})
	}
	return tracks
}

type incomingTrack struct {
	raw *mediaserver.IncomingStreamTrack
}

func (t *incomingTrack) ID() string {
	return t.raw.GetID()
}

type outgoingStream struct {
	raw *mediaserver.OutgoingStream
}

func (s *outgoingStream) ID() string {
	return s.raw.GetID()
}

func (s *outgoingStream) StreamInfo() *sdp.StreamInfo {
	return s.raw.GetStreamInfo()
}

func (s *outgoingStream) VideoTracks() []core.OutgoingTrack {
	raws := s.raw.GetVideoTracks()
	tracks := make([]core.OutgoingTrack, 0, len(raws))
	for _, raw := range raws {
		tracks = append(tracks, &outgoingTrack{raw: raw})
	}
	return tracks
}

// AttachTo expects a handle produced by this package; the registry never
// holds handles from any other engine.
func (s *outgoingStream) AttachTo(incoming core.IncomingStream) {
	s.raw.AttachTo(incoming.(*incomingStream).raw)
}

type outgoingTrack struct {
	raw *mediaserver.OutgoingStreamTrack
}

func (t *outgoingTrack) ID() string {
	return t.raw.GetID()
}

func (t *outgoingTrack) AttachTo(incoming core.IncomingTrack) core.Transponder {
	return &transponder{raw: t.raw.AttachTo(incoming.(*incomingTrack).raw)}
}

type transponder struct {
	raw *mediaserver.Transponder
}

func (t *transponder) SelectEncoding(rid string) {
	t.raw.SelectEncoding(rid)
}
