package core

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionID(t *testing.T) {
	seen := make(map[SessionID]struct{})
	for i := 0; i < 256; i++ {
		id, err := NewSessionID()
		require.NoError(t, err)
		assert.Len(t, string(id), 32)

		_, err = hex.DecodeString(string(id))
		require.NoError(t, err)

		_, dup := seen[id]
		require.False(t, dup, "session id %s generated twice", id)
		seen[id] = struct{}{}
	}
}

func TestSessionRids(t *testing.T) {
	sess := &Session{
		Mode: ModeSimulcast,
		Tracks: map[string]EncodingTable{
			"t1": {"full": nil, "half": nil, "quarter": nil},
			"t2": {"full": nil},
		},
	}

	rids := sess.Rids()
	require.Len(t, rids, 2)
	assert.ElementsMatch(t, []string{"full", "half", "quarter"}, rids["t1"])
	assert.ElementsMatch(t, []string{"full"}, rids["t2"])

	table, ok := sess.Track("t1")
	require.True(t, ok)
	assert.Len(t, table, 3)

	_, ok = sess.Track("t3")
	assert.False(t, ok)
}

func TestPublishModeString(t *testing.T) {
	assert.Equal(t, "broadcast", ModeBroadcast.String())
	assert.Equal(t, "simulcast", ModeSimulcast.String())
}
