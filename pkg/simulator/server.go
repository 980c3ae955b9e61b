// Package simulator provides a development stand-in for the orc
// backend: an HTTP server that speaks the dashboard's WebSocket
// subscribe protocol and a scripted generator that produces plausible
// task-lifecycle events. cmd/orcsim serves it; integration tests use
// it to exercise the real dial/reconnect path.
package simulator

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/randalmurphal/orcdash/pkg/events"
	"github.com/randalmurphal/orcdash/pkg/stream"
	"github.com/randalmurphal/orcdash/pkg/version"
)

const (
	// defaultHeartbeatInterval matches the backend's heartbeat cadence.
	defaultHeartbeatInterval = 30 * time.Second

	// writeTimeout bounds a single frame write so one stuck client
	// cannot stall the broadcast loop.
	writeTimeout = 5 * time.Second
)

// Server fans simulator events out to WebSocket subscribers, honoring
// each subscriber's filter.
type Server struct {
	logger            *slog.Logger
	heartbeatInterval time.Duration

	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

// subscriber is one connected dashboard.
type subscriber struct {
	ch   chan events.Event
	req  stream.SubscribeRequest
	conn *websocket.Conn
}

// Options tunes the simulator server.
type Options struct {
	// HeartbeatInterval overrides the heartbeat cadence for
	// subscribers that asked for heartbeats.
	HeartbeatInterval time.Duration
}

// NewServer creates a simulator server with no subscribers.
func NewServer(logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	hb := opts.HeartbeatInterval
	if hb <= 0 {
		hb = defaultHeartbeatInterval
	}
	return &Server{
		logger:            logger,
		heartbeatInterval: hb,
		subs:              make(map[*subscriber]struct{}),
	}
}

// Handler returns the gin engine serving /ws and /healthz.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Full()})
	})
	r.GET("/ws", func(c *gin.Context) {
		s.handleWS(c.Writer, c.Request)
	})
	return r
}

// Broadcast delivers one event to every subscriber whose filter
// accepts it. Slow subscribers drop events rather than block the
// generator.
func (s *Server) Broadcast(ev events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subs {
		if !accepts(sub.req, ev) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			s.logger.Warn("subscriber too slow, dropping event",
				"event_type", ev.Payload.Type())
		}
	}
}

// SubscriberCount returns the number of connected dashboards.
// Used by tests to poll instead of sleeping.
func (s *Server) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Close disconnects every subscriber. http.Server shutdown does not
// touch hijacked WebSocket connections, so the simulator closes them
// itself.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subs {
		_ = sub.conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
}

// handleWS upgrades the connection, waits for the subscribe frame, and
// then streams events until the client goes away.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.logger.Error("websocket accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := r.Context()

	_, data, err := conn.Read(ctx)
	if err != nil {
		return
	}
	var msg struct {
		Action string `json:"action"`
		stream.SubscribeRequest
	}
	if err := json.Unmarshal(data, &msg); err != nil || msg.Action != "subscribe" {
		s.logger.Warn("invalid subscribe frame", "error", err)
		return
	}

	// The server only writes after the subscribe frame; CloseRead keeps
	// control frames serviced and cancels the context once the client
	// goes away.
	ctx = conn.CloseRead(ctx)

	sub := &subscriber{
		ch:   make(chan events.Event, 64),
		req:  msg.SubscribeRequest,
		conn: conn,
	}
	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.subs, sub)
		s.mu.Unlock()
	}()

	s.logger.Debug("dashboard subscribed",
		"task_id", msg.TaskID, "event_types", msg.EventTypes,
		"include_heartbeat", msg.IncludeHeartbeat)

	var heartbeat <-chan time.Time
	if msg.IncludeHeartbeat {
		ticker := time.NewTicker(s.heartbeatInterval)
		defer ticker.Stop()
		heartbeat = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-sub.ch:
			if err := s.send(ctx, conn, ev); err != nil {
				return
			}
		case <-heartbeat:
			hb := events.Event{
				ID:        uuid.New().String(),
				Timestamp: time.Now(),
				Payload:   events.Heartbeat{Timestamp: time.Now()},
			}
			if err := s.send(ctx, conn, hb); err != nil {
				return
			}
		}
	}
}

func (s *Server) send(ctx context.Context, conn *websocket.Conn, ev events.Event) error {
	data, err := events.Encode(ev)
	if err != nil {
		s.logger.Error("encode event failed", "error", err)
		return nil
	}
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}

// accepts applies a subscriber's filter to one event.
func accepts(req stream.SubscribeRequest, ev events.Event) bool {
	if len(req.EventTypes) > 0 {
		ok := false
		for _, t := range req.EventTypes {
			if t == ev.Payload.Type() {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if req.TaskID != "" {
		if tid := eventTaskID(ev.Payload); tid != "" && tid != req.TaskID {
			return false
		}
	}
	return true
}

// eventTaskID extracts the task id from payload cases that carry one.
func eventTaskID(p events.Payload) string {
	switch v := p.(type) {
	case events.TaskCreated:
		return v.TaskID
	case events.TaskUpdated:
		return v.TaskID
	case events.TaskDeleted:
		return v.TaskID
	case events.PhaseChanged:
		return v.TaskID
	case events.TokensUpdated:
		return v.TaskID
	case events.Activity:
		return v.TaskID
	case events.DecisionRequired:
		return v.TaskID
	case events.DecisionResolved:
		return v.TaskID
	case events.FilesChanged:
		return v.TaskID
	case events.ErrorEvent:
		return v.TaskID
	case events.WarningEvent:
		return v.TaskID
	default:
		return ""
	}
}
