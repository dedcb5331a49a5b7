package hook

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatePath_RejectsUnsafeSessionID(t *testing.T) {
	_, err := StatePath("/tmp/mira-sessions", "../../etc/passwd", "session_start")
	assert.Error(t, err)
}

func TestStatePath_AcceptsValidSessionID(t *testing.T) {
	path, err := StatePath("/tmp/mira-sessions", "abc-123", "session_start")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/mira-sessions", "abc-123", "session_start.cooldown.json"), path)
}

func TestLoadCooldown_MissingFileReturnsZeroValue(t *testing.T) {
	st, err := LoadCooldown(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.True(t, st.LastFiredAt.IsZero())
}

func TestSaveAndLoadCooldown_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sess", "session_start.cooldown.json")
	now := time.Now().Truncate(time.Second)
	st := CooldownState{LastFiredAt: now, LastPayload: "abc123"}

	require.NoError(t, SaveCooldown(path, st))

	got, err := LoadCooldown(path)
	require.NoError(t, err)
	assert.True(t, got.LastFiredAt.Equal(now))
	assert.Equal(t, "abc123", got.LastPayload)
}

func TestCooldownState_Allow(t *testing.T) {
	now := time.Now()
	zero := CooldownState{}
	assert.True(t, zero.Allow(now, time.Minute), "never-fired state must allow immediately")

	fresh := CooldownState{LastFiredAt: now}
	assert.False(t, fresh.Allow(now.Add(30*time.Second), time.Minute))
	assert.True(t, fresh.Allow(now.Add(90*time.Second), time.Minute))
}
