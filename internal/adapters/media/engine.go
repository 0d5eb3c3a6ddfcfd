// Package media binds the core engine interfaces to the Medooze media server.
package media

import (
	"errors"

	mediaserver "github.com/notedit/media-server-go"
	"github.com/notedit/media-server-go/sdp"
	"github.com/rs/zerolog/log"

	"github.com/castlab/relaygate/internal/core"
)

type Engine struct {
	endpoint *mediaserver.Endpoint
}

// NewEngine creates a Medooze endpoint bound to the address subscribers
// reach this server at.
func NewEngine(address string, debug bool) *Engine {
	if debug {
		mediaserver.EnableDebug(true)
	}
	log.Info().Str("module", "adapters.media").Str("address", address).Msg("media endpoint created")
	return &Engine{endpoint: mediaserver.NewEndpoint(address)}
}

func (e *Engine) CreateTransport(offer *sdp.SDPInfo) (core.Transport, error) {
	raw := e.endpoint.CreateTransport(offer, nil)
	if raw == nil {
		return nil, errors.New("engine rejected remote transport parameters")
	}
	return newTransport(raw), nil
}

func (e *Engine) LocalCandidates() []*sdp.CandidateInfo {
	return e.endpoint.GetLocalCandidates()
}

func (e *Engine) Close() {
	e.endpoint.Stop()
}
