package app_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castlab/relaygate/internal/app"
	"github.com/castlab/relaygate/internal/core"
	"github.com/castlab/relaygate/internal/core/coretest"
)

func newSession(id string) *core.Session {
	return &core.Session{ID: core.SessionID(id), Mode: core.ModeBroadcast}
}

func TestRegistryInsertLookup(t *testing.T) {
	reg := app.NewRegistry()

	require.NoError(t, reg.Insert(newSession("a1")))

	sess, ok := reg.Lookup("a1")
	require.True(t, ok)
	assert.Equal(t, core.SessionID("a1"), sess.ID)

	_, ok = reg.Lookup("missing")
	assert.False(t, ok)
}

func TestRegistryDuplicateInsert(t *testing.T) {
	reg := app.NewRegistry()

	require.NoError(t, reg.Insert(newSession("a1")))
	err := reg.Insert(newSession("a1"))
	require.ErrorIs(t, err, core.ErrSessionExists)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryRemoveIdempotent(t *testing.T) {
	reg := app.NewRegistry()
	require.NoError(t, reg.Insert(newSession("a1")))

	reg.Remove("a1")
	_, ok := reg.Lookup("a1")
	assert.False(t, ok)

	// second remove is a no-op, as is removing an id that never existed
	reg.Remove("a1")
	reg.Remove("never-there")
	assert.Equal(t, 0, reg.Len())
}

func TestRegistryRemoveOnTransportStop(t *testing.T) {
	reg := app.NewRegistry()
	tr := coretest.NewTransport(nil)

	require.NoError(t, reg.Insert(newSession("a1")))
	reg.RemoveOnStop("a1", tr)

	tr.Stop()

	require.Eventually(t, func() bool {
		_, ok := reg.Lookup("a1")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestRegistryConcurrentLookupDuringRemove(t *testing.T) {
	reg := app.NewRegistry()
	require.NoError(t, reg.Insert(newSession("a1")))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if sess, ok := reg.Lookup("a1"); ok {
					// a found record is always whole, never partially deleted
					assert.Equal(t, core.SessionID("a1"), sess.ID)
				}
			}
		}()
	}
	reg.Remove("a1")
	wg.Wait()

	_, ok := reg.Lookup("a1")
	assert.False(t, ok)
}
