package core

import "errors"

// Input errors: the offer itself is unusable. Mapped to 4xx by the HTTP adapter.
var (
	ErrMalformedOffer      = errors.New("malformed sdp offer")
	ErrMissingVideo        = errors.New("offer must contain video media")
	ErrNoStreamInOffer     = errors.New("offer declares no media stream")
	ErrSimulcastNotOffered = errors.New("offer must contain a simulcast declaration")
)

// Lookup errors: the resource does not exist right now. A session that was
// never published and one whose publisher already disconnected are
// indistinguishable to the caller.
var (
	ErrUnknownSession  = errors.New("unknown session id")
	ErrUnknownTrack    = errors.New("unknown track id")
	ErrUnknownEncoding = errors.New("unknown encoding rid")
)

// ErrSessionExists signals a session id collision on insert. Ids are 128-bit
// random values, so hitting this means a broken id source, not bad input.
var ErrSessionExists = errors.New("session id already registered")
