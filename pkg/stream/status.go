// Package stream owns the client side of the orc event stream: one
// active subscription at a time, a small connection-status state
// machine, and reconnection with exponential backoff.
//
// The package does not know how bytes move — that is the Transport's
// job (see pkg/transport for the WebSocket implementation). It only
// requires that an open stream can be cancelled through its context.
package stream

// Status is the observable connection state. Exactly one value holds
// at any time; transitions are the only way for callers to observe
// connection health.
type Status string

const (
	// StatusDisconnected means no stream is open and no reconnect is
	// scheduled. Reached on explicit Disconnect or after the reconnect
	// budget is exhausted; only an explicit Connect leaves it.
	StatusDisconnected Status = "disconnected"

	// StatusConnecting means a stream is being opened for the first
	// time (or after an explicit Connect).
	StatusConnecting Status = "connecting"

	// StatusConnected means the stream has delivered at least one event.
	StatusConnected Status = "connected"

	// StatusReconnecting means the stream dropped and a backoff timer
	// is running toward the next attempt.
	StatusReconnecting Status = "reconnecting"
)

func (s Status) String() string { return string(s) }
