package hook

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ConaryLabs/mira/internal/mainstore"
)

// CooldownState is a hook's per-session, per-event-class dedup/cooldown
// marker, persisted so cooldowns survive across the short-lived hook
// process's own lifetime (a new process is spawned per event).
type CooldownState struct {
	LastFiredAt time.Time `json:"last_fired_at"`
	LastPayload string    `json:"last_payload_hash,omitempty"`
}

// StatePath returns the cooldown-state file path for a (sessionDir,
// sessionID, eventClass) triple, rejecting a session ID that doesn't
// pass mainstore.ValidSessionID rather than interpolating it unchecked
// into a filesystem path (spec §4.H: "session IDs in path construction
// are sanitized to [A-Za-z0-9-]").
func StatePath(sessionDir, sessionID, eventClass string) (string, error) {
	if !mainstore.ValidSessionID(sessionID) {
		return "", fmt.Errorf("hook: session id %q fails path-safety validation", sessionID)
	}
	return filepath.Join(sessionDir, sessionID, eventClass+".cooldown.json"), nil
}

// LoadCooldown reads a cooldown state file, returning the zero value
// (never an error) when the file doesn't exist yet.
func LoadCooldown(path string) (CooldownState, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return CooldownState{}, nil
	}
	if err != nil {
		return CooldownState{}, err
	}
	var st CooldownState
	if err := json.Unmarshal(data, &st); err != nil {
		return CooldownState{}, err
	}
	return st, nil
}

// SaveCooldown writes st atomically (temp file + rename, mode 0o600).
func SaveCooldown(path string, st CooldownState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".cooldown-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// Allow reports whether an event of this class may fire again, given a
// minimum cooldown interval since the last fire.
func (st CooldownState) Allow(now time.Time, cooldown time.Duration) bool {
	return st.LastFiredAt.IsZero() || now.Sub(st.LastFiredAt) >= cooldown
}
