package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/banshee-data/vehicle.sim/internal/db"
	"github.com/banshee-data/vehicle.sim/internal/monitoring"
	"github.com/banshee-data/vehicle.sim/internal/sim"
	"github.com/banshee-data/vehicle.sim/internal/timeutil"
)

// Stream message types.
const (
	MessageProgress = "progress"
	MessageResult   = "result"
	MessageError    = "error"
)

const (
	streamRequestTimeout = 30 * time.Second
	streamWriteTimeout   = 5 * time.Second
	streamPingInterval   = 15 * time.Second
	progressBuffer       = 64
)

// StreamMessage is one server-to-client frame on /api/runs/stream.
type StreamMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// streamRun upgrades to a websocket, reads one RunRequest, then sends a
// progress message for every report from the engine followed by a single
// result or error message, and closes. The client is pinged every
// streamPingInterval while the run executes; a client that stops answering
// cancels the run.
func (s *Server) streamRun(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		logf("websocket accept failed: %v", err)
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var req RunRequest
	readCtx, readCancel := context.WithTimeout(ctx, streamRequestTimeout)
	err = wsjson.Read(readCtx, conn, &req)
	readCancel()
	if err != nil {
		conn.Close(websocket.StatusUnsupportedData, "expected a run request")
		return
	}
	// Nothing more is read from the client; control frames are still
	// answered and ctx ends when the connection does.
	ctx = conn.CloseRead(ctx)
	if err := req.Validate(); err != nil {
		s.finishStream(ctx, conn, StreamMessage{Type: MessageError, Payload: errorPayload(err)})
		return
	}

	go func() {
		if err := s.keepAlive(ctx, conn, s.clock.NewTicker(streamPingInterval)); err != nil {
			logf("%v", err)
			cancel()
		}
	}()

	type outcome struct {
		run *db.Run
		err error
	}

	obs := sim.NewChannelObserver(progressBuffer)
	done := make(chan outcome, 1)
	go func() {
		run, err := s.execute(ctx, req, obs)
		done <- outcome{run, err}
	}()

	for {
		select {
		case p := <-obs.C:
			if err := writeMessage(ctx, conn, StreamMessage{Type: MessageProgress, Payload: p}); err != nil {
				logf("stream write failed: %v", err)
				return
			}
		case out := <-done:
			// Reports queued before the run finished still go out first.
			for drained := false; !drained; {
				select {
				case p := <-obs.C:
					if err := writeMessage(ctx, conn, StreamMessage{Type: MessageProgress, Payload: p}); err != nil {
						return
					}
				default:
					drained = true
				}
			}
			if n := obs.Dropped(); n > 0 {
				logf("stream dropped %d progress reports", n)
			}
			monitoring.Debugf("[api] stream done, %d keepalive pings answered since start", s.pings.Load())
			if out.err != nil {
				s.finishStream(ctx, conn, StreamMessage{Type: MessageError, Payload: errorPayload(out.err)})
				return
			}
			s.finishStream(ctx, conn, StreamMessage{Type: MessageResult, Payload: out.run})
			return
		case <-ctx.Done():
			return
		}
	}
}

// keepAlive pings conn on every tick until ctx ends. It returns the first
// failed ping, or nil once ctx is done.
func (s *Server) keepAlive(ctx context.Context, conn *websocket.Conn, ticker timeutil.Ticker) error {
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
			pingCtx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("stream keepalive failed: %w", err)
			}
			s.pings.Add(1)
		}
	}
}

func errorPayload(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}

func writeMessage(ctx context.Context, conn *websocket.Conn, msg StreamMessage) error {
	ctx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, msg)
}

// finishStream sends the last message and closes the connection normally.
func (s *Server) finishStream(ctx context.Context, conn *websocket.Conn, msg StreamMessage) {
	if err := writeMessage(ctx, conn, msg); err != nil {
		logf("stream write failed: %v", err)
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}
