package stream

import (
	"context"

	"github.com/randalmurphal/orcdash/pkg/events"
)

// SubscribeRequest is the filter a subscription is opened with. The
// Client keeps the request it was last connected with and reuses it
// verbatim on every reconnect.
type SubscribeRequest struct {
	// ProjectIDs limits the stream to the given projects. Empty means
	// all projects the server exposes.
	ProjectIDs []string `json:"project_ids,omitempty"`

	// TaskID limits the stream to a single task.
	TaskID string `json:"task_id,omitempty"`

	// InitiativeID limits the stream to tasks of one initiative.
	InitiativeID string `json:"initiative_id,omitempty"`

	// EventTypes is an allowlist of wire type strings. Empty means all.
	EventTypes []string `json:"event_types,omitempty"`

	// IncludeHeartbeat asks the server to emit periodic heartbeats.
	IncludeHeartbeat bool `json:"include_heartbeat"`
}

// Source is one open event stream. Recv blocks until the next event,
// the stream ends, or ctx is done. A clean server-side close is
// reported as io.EOF; any other error is a transport failure.
type Source interface {
	Recv(ctx context.Context) (events.Event, error)
	Close() error
}

// Transport opens event streams. Implementations must honor ctx
// cancellation for both Open and every subsequent Recv on the
// returned Source — cancelling the context is the only way the
// Client aborts a stream.
type Transport interface {
	Open(ctx context.Context, req SubscribeRequest) (Source, error)
}
