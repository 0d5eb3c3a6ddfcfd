package app

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/castlab/relaygate/internal/core"
)

var sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "relaygate_sessions_active",
	Help: "Number of published sessions currently registered.",
})

// Registry is the shared session table: session id -> record. The only
// mutations are the single-entry Insert on publish and the single-entry
// Remove on publish transport stop; records themselves are immutable, so
// concurrent sink lookups never need more than the read lock.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*core.Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*core.Session),
	}
}

// Insert registers a fully built record. A duplicate id is an invariant
// violation (ids are random), reported and refused rather than overwritten.
func (r *Registry) Insert(sess *core.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sess.ID]; ok {
		return core.ErrSessionExists
	}
	r.sessions[sess.ID] = sess
	sessionsActive.Inc()
	log.Info().Str("module", "app.registry").Str("session_id", string(sess.ID)).Str("mode", sess.Mode.String()).Msg("session registered")
	return nil
}

func (r *Registry) Lookup(id core.SessionID) (*core.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[id]
	return sess, ok
}

// Remove drops a record. Idempotent: removing an unknown id is a no-op.
func (r *Registry) Remove(id core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return
	}
	delete(r.sessions, id)
	sessionsActive.Dec()
	log.Info().Str("module", "app.registry").Str("session_id", string(id)).Msg("session removed")
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// RemoveOnStop is the single subscription point binding a publish transport's
// lifetime to its record: when the transport reports termination, the record
// disappears. Made once per session, at creation time.
func (r *Registry) RemoveOnStop(id core.SessionID, tr core.Transport) {
	go func() {
		<-tr.Stopped()
		log.Info().Str("module", "app.registry").Str("session_id", string(id)).Msg("publish transport stopped")
		r.Remove(id)
	}()
}
