package main

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"strings"
	"time"

	"github.com/ConaryLabs/mira/internal/ipc"
	"github.com/ConaryLabs/mira/internal/mlog"
	"github.com/ConaryLabs/mira/internal/toolsurface"
)

// serveIPC accepts hook connections on sockPath until ctx is cancelled,
// dispatching each request to tools. One goroutine per connection;
// each connection carries exactly one request and is closed after the
// response (a hook process makes one call and exits).
func serveIPC(ctx context.Context, sockPath string, tools *toolsurface.Registry) error {
	log := mlog.Get(mlog.CategoryIPC)

	ln, err := ipc.Listen(sockPath)
	if err != nil {
		return err
	}
	defer ln.Close()
	log.Info("ipc listening on %s", sockPath)

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Warn("ipc accept: %v", err)
			continue
		}
		go handleConn(ctx, conn, tools)
	}
}

func handleConn(ctx context.Context, conn net.Conn, tools *toolsurface.Registry) {
	defer conn.Close()
	log := mlog.Get(mlog.CategoryIPC)

	_ = conn.SetDeadline(time.Now().Add(30 * time.Second))
	reader := bufio.NewReader(conn)

	var req ipc.Request
	if err := ipc.ReadFrame(reader, &req); err != nil {
		log.Warn("ipc read: %v", err)
		return
	}

	tool, action, ok := strings.Cut(req.Action, ".")
	if !ok {
		_ = ipc.WriteFrame(conn, ipc.Response{ID: req.ID, OK: false, Error: "action must be \"tool.action\""})
		return
	}

	result, err := tools.Invoke(ctx, tool, action, req.Params)
	resp := ipc.Response{ID: req.ID}
	if err != nil {
		resp.OK = false
		resp.Error = err.Error()
	} else {
		resp.OK = true
		if data, merr := json.Marshal(result); merr == nil {
			resp.Data = data
		} else {
			log.Warn("ipc marshal result: %v", merr)
		}
	}
	if err := ipc.WriteFrame(conn, resp); err != nil {
		log.Warn("ipc write: %v", err)
	}
}
