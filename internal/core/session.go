package core

import (
	"crypto/rand"
	"encoding/hex"
)

type SessionID string

// NewSessionID returns an unguessable 128-bit random id, hex-encoded.
func NewSessionID() (SessionID, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return SessionID(hex.EncodeToString(buf)), nil
}

type PublishMode int

const (
	ModeBroadcast PublishMode = iota
	ModeSimulcast
)

func (m PublishMode) String() string {
	if m == ModeSimulcast {
		return "simulcast"
	}
	return "broadcast"
}

// EncodingTable maps rid to the incoming track carrying that simulcast layer.
type EncodingTable map[string]IncomingTrack

// Session is the publish-time record that makes a publisher's media
// addressable by later sink requests. The registry owns it exclusively;
// Stream and Tracks are never mutated after insertion, so concurrent
// subscriber reads need no per-session locking.
type Session struct {
	ID        SessionID
	Mode      PublishMode
	Transport Transport

	// Stream holds the single incoming stream of a broadcast publish.
	Stream IncomingStream
	// Tracks holds the trackId -> rid -> incoming track table of a
	// simulcast publish.
	Tracks map[string]EncodingTable
}

// Track returns the encoding table for a published track id.
func (s *Session) Track(trackID string) (EncodingTable, bool) {
	table, ok := s.Tracks[trackID]
	return table, ok
}

// Rids lists the addressable trackId -> [rid...] pairs of a simulcast session.
func (s *Session) Rids() map[string][]string {
	out := make(map[string][]string, len(s.Tracks))
	for trackID, table := range s.Tracks {
		rids := make([]string, 0, len(table))
		for rid := range table {
			rids = append(rids, rid)
		}
		out[trackID] = rids
	}
	return out
}
