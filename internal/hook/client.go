package hook

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/ConaryLabs/mira/internal/dbutil"
	"github.com/ConaryLabs/mira/internal/ipc"
	"github.com/ConaryLabs/mira/internal/mainstore"
	"github.com/ConaryLabs/mira/internal/mlog"
	"github.com/google/uuid"
)

// Client is a hook process's connection to the daemon: IPC first,
// falling back to a direct session_touch DB write when the daemon is
// unreachable (spec §4.H: "direct-DB degraded fallback, small writes
// only").
type Client struct {
	socketPath string
	store      *mainstore.Store // nil if no direct-DB fallback is configured
	timeout    time.Duration
}

func NewClient(socketPath string, store *mainstore.Store, timeout time.Duration) *Client {
	return &Client{socketPath: socketPath, store: store, timeout: timeout}
}

// Call sends action/params to the daemon over IPC. On any dial or
// framing error it falls back to Degraded, which can only perform the
// narrow set of writes safe to make without the daemon's business
// logic (see Degraded's doc comment).
func (c *Client) Call(ctx context.Context, action, sessionID string, params any) (ipc.Response, error) {
	resp, err := c.callIPC(ctx, action, sessionID, params)
	if err == nil {
		return resp, nil
	}
	mlog.Get(mlog.CategoryHook).Warn("hook: IPC call %q failed, falling back to direct-DB path: %v", action, err)
	return c.Degraded(ctx, action, sessionID, params)
}

func (c *Client) callIPC(ctx context.Context, action, sessionID string, params any) (ipc.Response, error) {
	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return ipc.Response{}, err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(c.timeout))
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return ipc.Response{}, err
	}
	req := ipc.Request{ID: uuid.NewString(), Action: action, SessionID: sessionID, Params: raw}
	if err := ipc.WriteFrame(conn, req); err != nil {
		return ipc.Response{}, err
	}

	var resp ipc.Response
	if err := ipc.ReadFrame(bufio.NewReader(conn), &resp); err != nil {
		return ipc.Response{}, err
	}
	return resp, nil
}

// Degraded performs the one write that is safe without the daemon:
// session_touch, which bumps a session's last-activity timestamp under
// the shared retry policy. Every other action (fact observation and
// promotion, entity upsert, embedding enqueue) is skipped and logged —
// those paths wait for the daemon instead of risking an inconsistent
// write from the degraded fallback.
func (c *Client) Degraded(ctx context.Context, action, sessionID string, params any) (ipc.Response, error) {
	if c.store == nil {
		return ipc.Response{OK: false, Error: "daemon unreachable and no direct-DB fallback configured"}, nil
	}

	switch action {
	case "session_touch":
		var p struct{ File string `json:"file"` }
		if b, err := json.Marshal(params); err == nil {
			_ = json.Unmarshal(b, &p)
		}
		if err := dbutil.RetryWithBackoff(ctx, func() error { return c.store.TouchSession(ctx, sessionID, p.File) }); err != nil {
			return ipc.Response{OK: false, Error: err.Error()}, nil
		}
		return ipc.Response{OK: true}, nil
	default:
		mlog.Get(mlog.CategoryHook).Warn("hook: degraded fallback has no handler for action %q, dropping", action)
		return ipc.Response{OK: false, Error: fmt.Sprintf("action %q unavailable in degraded mode", action)}, nil
	}
}
