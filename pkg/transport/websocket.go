// Package transport implements stream.Transport over WebSocket. The
// client dials the backend's /ws endpoint, sends one subscribe frame
// carrying the filter, and then reads event envelopes until the server
// closes or the context is cancelled.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/coder/websocket"

	"github.com/randalmurphal/orcdash/pkg/events"
	"github.com/randalmurphal/orcdash/pkg/stream"
)

// subscribeMessage is the client → server handshake frame.
type subscribeMessage struct {
	Action string `json:"action"` // always "subscribe"
	stream.SubscribeRequest
}

// WebSocket opens event streams against an orc backend.
type WebSocket struct {
	serverURL string
	logger    *slog.Logger
}

// NewWebSocket creates a transport for the given base URL
// (e.g. "http://localhost:8080" or "ws://localhost:8080").
func NewWebSocket(serverURL string, logger *slog.Logger) *WebSocket {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocket{serverURL: serverURL, logger: logger}
}

// Open dials /ws, sends the subscribe frame, and returns the live
// source. The returned source is bound to ctx: cancelling it aborts
// both the dial and any in-flight Recv.
func (w *WebSocket) Open(ctx context.Context, req stream.SubscribeRequest) (stream.Source, error) {
	conn, _, err := websocket.Dial(ctx, wsURL(w.serverURL), nil)
	if err != nil {
		return nil, fmt.Errorf("dial event stream: %w", err)
	}

	if err := writeJSON(ctx, conn, subscribeMessage{
		Action:           "subscribe",
		SubscribeRequest: req,
	}); err != nil {
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return nil, fmt.Errorf("send subscribe: %w", err)
	}

	w.logger.Debug("subscribed to event stream",
		"url", w.serverURL,
		"project_ids", req.ProjectIDs,
		"task_id", req.TaskID,
		"include_heartbeat", req.IncludeHeartbeat)

	return &wsSource{conn: conn, logger: w.logger}, nil
}

// wsSource is one open WebSocket stream.
type wsSource struct {
	conn   *websocket.Conn
	logger *slog.Logger
}

// Recv reads frames until one decodes to an event. Frames with unknown
// or malformed payloads are logged and skipped — version skew on a
// single event must not terminate the stream. A normal server close is
// reported as io.EOF.
func (s *wsSource) Recv(ctx context.Context) (events.Event, error) {
	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return events.Event{}, ctx.Err()
			}
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return events.Event{}, io.EOF
			}
			return events.Event{}, fmt.Errorf("read event frame: %w", err)
		}

		ev, err := events.Decode(data)
		if err != nil {
			if errors.Is(err, events.ErrUnknownEventType) {
				s.logger.Warn("skipping unknown event type", "error", err)
			} else {
				s.logger.Warn("skipping malformed event", "error", err)
			}
			continue
		}
		return ev, nil
	}
}

func (s *wsSource) Close() error {
	return s.conn.Close(websocket.StatusNormalClosure, "")
}

// wsURL rewrites an http(s) base URL to the ws(s) /ws endpoint.
func wsURL(base string) string {
	u := strings.TrimSuffix(base, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/ws"
}

func writeJSON(ctx context.Context, conn *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}
