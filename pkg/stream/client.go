package stream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/randalmurphal/orcdash/pkg/events"
)

const (
	// defaultBaseDelay is the first reconnect delay; each further
	// attempt doubles it (1s, 2s, 4s, 8s, 16s).
	defaultBaseDelay = time.Second

	// defaultMaxReconnects is the attempt budget. Exhausting it is
	// terminal: status goes to disconnected and stays there until an
	// explicit Connect.
	defaultMaxReconnects = 5
)

// Options tunes a Client. The zero value selects the defaults above.
type Options struct {
	// BaseDelay overrides the first reconnect delay.
	BaseDelay time.Duration

	// MaxReconnects overrides the reconnect attempt budget.
	MaxReconnects int

	// StaleTimeout, when positive and the subscription includes
	// heartbeats, bounds the silence the Client tolerates on an open
	// stream. A stream that delivers nothing for the window is
	// aborted and treated as a transport failure, entering the normal
	// reconnect path. Zero disables staleness detection.
	StaleTimeout time.Duration
}

// EventHandler receives every event delivered by the stream.
type EventHandler func(events.Event)

// StatusHandler receives connection status transitions.
type StatusHandler func(Status)

// Client owns one event stream at a time. It tracks the connection
// status state machine, reconnects with exponential backoff after
// transport failures, and fans events out to registered handlers.
//
// All handler invocations happen synchronously on the stream's read
// goroutine, so an event is fully dispatched before the next one is
// read. A panicking handler is recovered and logged; it never stops
// dispatch to the remaining handlers or to later events.
type Client struct {
	transport Transport
	logger    *slog.Logger

	baseDelay     time.Duration
	maxReconnects int
	staleTimeout  time.Duration

	mu sync.Mutex

	status  Status
	req     SubscribeRequest
	hasReq  bool
	cancel  context.CancelFunc
	attempt int

	// generation identifies the current stream. Connect and Disconnect
	// bump it before cancelling the old stream's context, so a read
	// loop that dies from that cancellation sees itself superseded and
	// skips the reconnect routine. This replaces fragile inspection of
	// the termination error.
	generation uint64

	reconnectTimer *time.Timer

	nextHandlerID   int
	eventHandlers   map[int]EventHandler
	statusHandlers  map[int]StatusHandler

	// afterFunc schedules the backoff timer; tests swap it to capture
	// delays without sleeping.
	afterFunc func(time.Duration, func()) *time.Timer
}

// NewClient creates a disconnected Client over the given transport.
// A nil logger falls back to slog.Default.
func NewClient(t Transport, logger *slog.Logger, opts Options) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		transport:      t,
		logger:         logger,
		baseDelay:      opts.BaseDelay,
		maxReconnects:  opts.MaxReconnects,
		staleTimeout:   opts.StaleTimeout,
		status:         StatusDisconnected,
		eventHandlers:  make(map[int]EventHandler),
		statusHandlers: make(map[int]StatusHandler),
		afterFunc:      time.AfterFunc,
	}
	if c.baseDelay <= 0 {
		c.baseDelay = defaultBaseDelay
	}
	if c.maxReconnects <= 0 {
		c.maxReconnects = defaultMaxReconnects
	}
	return c
}

// Connect tears down any prior stream, remembers req for future
// reconnects, and opens a new stream. Status becomes connecting
// immediately and connected once the stream delivers its first event.
func (c *Client) Connect(req SubscribeRequest) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.stopReconnectTimerLocked()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.req = req
	c.hasReq = true
	notify := c.setStatusLocked(StatusConnecting)
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.mu.Unlock()

	notify()
	go c.run(ctx, gen, req)
}

// Disconnect cancels any pending reconnect, aborts the active stream,
// and sets status to disconnected. This is the only intentional path
// to disconnected; the other is exhausting the reconnect budget.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.generation++
	c.stopReconnectTimerLocked()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	notify := c.setStatusLocked(StatusDisconnected)
	c.mu.Unlock()
	notify()
}

// On registers an event handler and returns its unsubscribe func.
// Handlers run in registration order.
func (c *Client) On(h EventHandler) func() {
	c.mu.Lock()
	id := c.nextHandlerID
	c.nextHandlerID++
	c.eventHandlers[id] = h
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.eventHandlers, id)
		c.mu.Unlock()
	}
}

// OnStatusChange registers a status handler and immediately invokes it
// once with the current status, so subscribers need no separate
// "current status" call. Returns the unsubscribe func.
func (c *Client) OnStatusChange(h StatusHandler) func() {
	c.mu.Lock()
	id := c.nextHandlerID
	c.nextHandlerID++
	c.statusHandlers[id] = h
	current := c.status
	c.mu.Unlock()

	c.invokeStatusHandler(h, current)

	return func() {
		c.mu.Lock()
		delete(c.statusHandlers, id)
		c.mu.Unlock()
	}
}

// Status returns the current connection status.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// IsConnected reports whether the stream is live.
func (c *Client) IsConnected() bool {
	return c.Status() == StatusConnected
}

// run consumes one stream until it ends, then decides whether to
// reconnect. gen identifies the stream; if the Client has moved on
// (newer generation), the termination was intentional and run exits
// without touching the state machine.
func (c *Client) run(ctx context.Context, gen uint64, req SubscribeRequest) {
	src, err := c.transport.Open(ctx, req)
	if err != nil {
		c.logger.Warn("event stream open failed", "error", err)
		c.streamEnded(gen, err)
		return
	}
	defer src.Close()

	stale := c.staleTimeout > 0 && req.IncludeHeartbeat

	for {
		recvCtx := ctx
		var cancelRecv context.CancelFunc
		if stale {
			recvCtx, cancelRecv = context.WithTimeout(ctx, c.staleTimeout)
		}
		ev, err := src.Recv(recvCtx)
		if cancelRecv != nil {
			cancelRecv()
		}
		if err != nil {
			switch {
			case ctx.Err() != nil:
				// Cancelled by Connect/Disconnect; streamEnded sees a
				// newer generation and does nothing.
			case errors.Is(err, io.EOF):
				c.logger.Info("event stream closed by server")
			case errors.Is(err, context.DeadlineExceeded):
				c.logger.Warn("event stream stale, forcing reconnect",
					"stale_timeout", c.staleTimeout)
			default:
				c.logger.Warn("event stream error", "error", err)
			}
			c.streamEnded(gen, err)
			return
		}

		if !c.deliver(gen, ev) {
			return
		}
	}
}

// deliver marks the stream healthy and dispatches one event to every
// registered handler. Returns false if the stream was superseded while
// the event was in flight — the event is dropped so the old and new
// streams never double-process.
func (c *Client) deliver(gen uint64, ev events.Event) bool {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return false
	}
	c.attempt = 0
	notify := c.setStatusLocked(StatusConnected)
	handlers := c.snapshotEventHandlersLocked()
	c.mu.Unlock()

	notify()
	for _, h := range handlers {
		c.invokeEventHandler(h, ev)
	}
	return true
}

// streamEnded runs the reconnect routine for a stream that terminated
// on its own (clean close or failure — both reconnect). Intentional
// cancellation is filtered out by the generation check.
func (c *Client) streamEnded(gen uint64, cause error) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	if c.attempt >= c.maxReconnects {
		c.logger.Error("event stream gave up reconnecting",
			"attempts", c.attempt, "cause", cause)
		notify := c.setStatusLocked(StatusDisconnected)
		c.mu.Unlock()
		notify()
		return
	}

	notify := c.setStatusLocked(StatusReconnecting)
	c.attempt++
	delay := c.baseDelay << (c.attempt - 1)
	c.logger.Info("scheduling event stream reconnect",
		"attempt", c.attempt, "delay", delay)
	c.reconnectTimer = c.afterFunc(delay, func() {
		c.mu.Lock()
		if gen != c.generation {
			// A Connect or Disconnect raced the timer firing.
			c.mu.Unlock()
			return
		}
		req := c.req
		c.mu.Unlock()
		c.Connect(req)
	})
	c.mu.Unlock()
	notify()
}

func (c *Client) stopReconnectTimerLocked() {
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
}

// setStatusLocked records a transition and returns a closure that
// notifies status handlers outside the lock. Consecutive identical
// statuses collapse to a no-op so handlers never see duplicates.
func (c *Client) setStatusLocked(s Status) func() {
	if c.status == s {
		return func() {}
	}
	c.status = s
	handlers := c.snapshotStatusHandlersLocked()
	return func() {
		for _, h := range handlers {
			c.invokeStatusHandler(h, s)
		}
	}
}

// snapshotEventHandlersLocked returns handlers in registration order.
func (c *Client) snapshotEventHandlersLocked() []EventHandler {
	ids := make([]int, 0, len(c.eventHandlers))
	for id := range c.eventHandlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]EventHandler, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.eventHandlers[id])
	}
	return out
}

func (c *Client) snapshotStatusHandlersLocked() []StatusHandler {
	ids := make([]int, 0, len(c.statusHandlers))
	for id := range c.statusHandlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]StatusHandler, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.statusHandlers[id])
	}
	return out
}

// invokeEventHandler isolates handler panics so one misbehaving
// listener cannot abort dispatch to the others.
func (c *Client) invokeEventHandler(h EventHandler, ev events.Event) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("event handler panicked",
				"event_type", ev.Payload.Type(), "panic", r)
		}
	}()
	h(ev)
}

func (c *Client) invokeStatusHandler(h StatusHandler, s Status) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("status handler panicked",
				"status", s, "panic", r)
		}
	}()
	h(s)
}
