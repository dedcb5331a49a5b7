// Command mira-hook is the short-lived process the host agent's
// lifecycle hooks invoke once per event: it reads one event payload
// from stdin, forwards it to the mirad daemon over IPC, and falls back
// to a direct-DB degraded write when the daemon is unreachable (spec
// §4.H). Entry-point shape follows the teacher's thin cmd/ wrappers:
// no cobra here, since a hook process takes no subcommands, only flags.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/ConaryLabs/mira/internal/config"
	"github.com/ConaryLabs/mira/internal/hook"
	"github.com/ConaryLabs/mira/internal/ipc"
	"github.com/ConaryLabs/mira/internal/mainstore"
	"github.com/ConaryLabs/mira/internal/mlog"
	"github.com/ConaryLabs/mira/internal/ui"
)

// Event is one hook invocation's payload, read from stdin.
type Event struct {
	Action    string          `json:"action"`
	SessionID string          `json:"session_id"`
	Params    json.RawMessage `json:"params"`
}

// defaultTimeout bounds a hook call when the event class has no
// entry in the config's hook.timeout_ms map.
const defaultTimeout = 2 * time.Second

func main() {
	if err := run(); err != nil {
		if isatty.IsTerminal(os.Stderr.Fd()) {
			ui.Error("mira-hook: %v", err)
		} else {
			fmt.Fprintln(os.Stderr, "mira-hook:", err)
		}
		os.Exit(1)
	}
}

func run() error {
	var homeDir string
	flag.StringVar(&homeDir, "home", defaultHomeDir(), "Mira home directory")
	flag.Parse()

	cfgPath := filepath.Join(homeDir, "config.yaml")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := mlog.Initialize(homeDir, mlog.Config{DebugMode: cfg.Logging.DebugMode, Categories: cfg.Logging.Categories, Level: cfg.Logging.Level}); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}

	var ev Event
	if err := hook.ReadEvent(os.Stdin, &ev); err != nil {
		return fmt.Errorf("read event: %w", err)
	}
	if !mainstore.ValidSessionID(ev.SessionID) {
		return fmt.Errorf("invalid session id %q", ev.SessionID)
	}

	timeout := defaultTimeout
	if ms, ok := cfg.Hook.TimeoutMs[ev.Action]; ok && ms > 0 {
		timeout = time.Duration(ms) * time.Millisecond
	}

	// A direct-DB fallback handle is opened eagerly so the degraded
	// path works even on the very first call the daemon ever misses;
	// it is cheap (same sqlite file the daemon already owns, opened
	// with its own short-lived connection) and closed before exit.
	store, err := mainstore.Open(filepath.Join(homeDir, "main.db"))
	if err != nil {
		mlog.Get(mlog.CategoryHook).Warn("hook: direct-DB fallback unavailable: %v", err)
		if isatty.IsTerminal(os.Stderr.Fd()) {
			ui.Warning("degraded-mode fallback unavailable: %v", err)
		}
		store = nil
	} else {
		defer store.Close()
	}

	sockPath := ipc.SocketPath(cfg.IPC.SocketPath, "mira")
	client := hook.NewClient(sockPath, store, timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.Call(ctx, ev.Action, ev.SessionID, ev.Params)
	if err != nil {
		return fmt.Errorf("call %s: %w", ev.Action, err)
	}

	out, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	if !resp.OK {
		os.Exit(1)
	}
	return nil
}

func defaultHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mira"
	}
	return filepath.Join(home, ".mira")
}
