// Package events defines the domain events streamed by the orc backend
// and the JSON wire format used to deliver them.
//
// Every message on the stream is an Event envelope carrying exactly one
// typed payload. The payload union is sealed: each case implements the
// unexported marker method, and dispatch happens through the Visitor
// interface. A new payload case therefore cannot be added without
// extending Visitor, which breaks every dispatcher at compile time —
// there is no way to silently drop a case.
//
// Wire envelope:
//
//	{"id": "...", "type": "task.created", "timestamp": "...", "payload": {...}}
//
// The "type" string selects the payload shape. Types unknown to this
// build decode to ErrUnknownEventType so callers can log and skip them
// instead of tearing down the stream.
package events

import "time"

// Event type discriminator strings as they appear on the wire.
const (
	TypeTaskCreated       = "task.created"
	TypeTaskUpdated       = "task.updated"
	TypeTaskDeleted       = "task.deleted"
	TypePhaseChanged      = "phase.changed"
	TypeTokensUpdated     = "tokens.updated"
	TypeActivity          = "activity"
	TypeInitiativeCreated = "initiative.created"
	TypeInitiativeUpdated = "initiative.updated"
	TypeInitiativeDeleted = "initiative.deleted"
	TypeDecisionRequired  = "decision.required"
	TypeDecisionResolved  = "decision.resolved"
	TypeFilesChanged      = "files.changed"
	TypeSessionMetrics    = "session.metrics"
	TypeError             = "error"
	TypeWarning           = "warning"
	TypeHeartbeat         = "heartbeat"
)

// Event is one immutable domain notification pushed by the backend.
type Event struct {
	ID        string
	Timestamp time.Time
	Payload   Payload
}

// Payload is the sealed union of event payload cases.
type Payload interface {
	// Type returns the wire discriminator for this payload case.
	Type() string

	// Accept dispatches the payload to the matching Visitor method.
	Accept(v Visitor)

	isPayload()
}

// Visitor receives exactly one callback per event, selected by payload
// case. Implementations must cover every case — adding a payload type
// extends this interface and breaks incomplete visitors at compile time.
type Visitor interface {
	VisitTaskCreated(p TaskCreated)
	VisitTaskUpdated(p TaskUpdated)
	VisitTaskDeleted(p TaskDeleted)
	VisitPhaseChanged(p PhaseChanged)
	VisitTokensUpdated(p TokensUpdated)
	VisitActivity(p Activity)
	VisitInitiativeCreated(p InitiativeCreated)
	VisitInitiativeUpdated(p InitiativeUpdated)
	VisitInitiativeDeleted(p InitiativeDeleted)
	VisitDecisionRequired(p DecisionRequired)
	VisitDecisionResolved(p DecisionResolved)
	VisitFilesChanged(p FilesChanged)
	VisitSessionMetrics(p SessionMetrics)
	VisitError(p ErrorEvent)
	VisitWarning(p WarningEvent)
	VisitHeartbeat(p Heartbeat)
}

// TaskCreated announces a new task. The snapshot is sparse — only the
// fields known at creation time. Clients that already hold a fuller
// record (e.g. from the REST response that created the task) must not
// overwrite it with this.
type TaskCreated struct {
	TaskID string `json:"task_id"`
	Title  string `json:"title"`
	Weight Weight `json:"weight,omitempty"`
}

// TaskUpdated carries a partial task snapshot. Only non-zero fields
// are meaningful; absent fields leave the local record untouched.
type TaskUpdated struct {
	TaskID       string     `json:"task_id"`
	Status       TaskStatus `json:"status,omitempty"`
	CurrentPhase string     `json:"current_phase,omitempty"`
}

// TaskDeleted announces a task removal.
type TaskDeleted struct {
	TaskID string `json:"task_id"`
}

// PhaseChanged announces a phase transition for a task. Status is the
// backend's coarse phase enum — "running" and "failed" are never on
// the wire and must be derived client-side (see dispatch.MapPhaseStatus).
type PhaseChanged struct {
	TaskID     string      `json:"task_id"`
	PhaseName  string      `json:"phase_name"`
	Status     PhaseStatus `json:"status,omitempty"`
	Iterations int         `json:"iterations,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// TokensUpdated carries cumulative token counters for a task.
type TokensUpdated struct {
	TaskID string     `json:"task_id"`
	Tokens TokenUsage `json:"tokens"`
}

// Activity reports what the agent is currently doing within a phase.
type Activity struct {
	TaskID  string        `json:"task_id"`
	PhaseID string        `json:"phase_id"`
	State   ActivityState `json:"activity"`
}

// InitiativeCreated announces a new initiative (a grouping of tasks).
type InitiativeCreated struct {
	InitiativeID string `json:"initiative_id"`
	Title        string `json:"title"`
}

// InitiativeUpdated carries a partial initiative snapshot.
type InitiativeUpdated struct {
	InitiativeID string           `json:"initiative_id"`
	Title        string           `json:"title,omitempty"`
	Status       InitiativeStatus `json:"status,omitempty"`
}

// InitiativeDeleted announces an initiative removal.
type InitiativeDeleted struct {
	InitiativeID string `json:"initiative_id"`
}

// DecisionRequired signals that a gate is blocked waiting on a human.
type DecisionRequired struct {
	DecisionID string `json:"decision_id"`
	TaskID     string `json:"task_id"`
	Phase      string `json:"phase"`
	GateType   string `json:"gate_type"`
	Question   string `json:"question"`
	Context    string `json:"context,omitempty"`
}

// DecisionResolved signals that a pending decision was answered.
type DecisionResolved struct {
	DecisionID string `json:"decision_id"`
	TaskID     string `json:"task_id"`
	Phase      string `json:"phase"`
	Approved   bool   `json:"approved"`
	ResolvedBy string `json:"resolved_by,omitempty"`
}

// FilesChanged summarizes workspace diff churn for a task.
type FilesChanged struct {
	TaskID         string `json:"task_id"`
	TotalAdditions int    `json:"total_additions"`
	TotalDeletions int    `json:"total_deletions"`
}

// SessionMetrics carries aggregate counters for the whole orchestrator
// session. DurationSeconds is authoritative — clients running a local
// elapsed-time clock rebase it on every metrics event.
type SessionMetrics struct {
	DurationSeconds  int     `json:"duration_seconds"`
	TotalTokens      int     `json:"total_tokens"`
	InputTokens      int     `json:"input_tokens"`
	OutputTokens     int     `json:"output_tokens"`
	EstimatedCostUSD float64 `json:"estimated_cost_usd"`
	TasksRunning     int     `json:"tasks_running"`
	IsPaused         bool    `json:"is_paused"`
}

// ErrorEvent surfaces a backend-side failure as a user-visible
// notification. It is a legitimate domain event, not a stream error.
type ErrorEvent struct {
	TaskID  string `json:"task_id,omitempty"`
	Phase   string `json:"phase,omitempty"`
	Message string `json:"error"`
}

// WarningEvent surfaces a non-fatal backend condition.
type WarningEvent struct {
	TaskID  string `json:"task_id,omitempty"`
	Phase   string `json:"phase,omitempty"`
	Message string `json:"message"`
}

// Heartbeat keeps the stream alive. Sent only when the subscription
// asked for it.
type Heartbeat struct {
	Timestamp time.Time `json:"timestamp"`
}

func (TaskCreated) isPayload()       {}
func (TaskUpdated) isPayload()       {}
func (TaskDeleted) isPayload()       {}
func (PhaseChanged) isPayload()      {}
func (TokensUpdated) isPayload()     {}
func (Activity) isPayload()          {}
func (InitiativeCreated) isPayload() {}
func (InitiativeUpdated) isPayload() {}
func (InitiativeDeleted) isPayload() {}
func (DecisionRequired) isPayload()  {}
func (DecisionResolved) isPayload()  {}
func (FilesChanged) isPayload()      {}
func (SessionMetrics) isPayload()    {}
func (ErrorEvent) isPayload()        {}
func (WarningEvent) isPayload()      {}
func (Heartbeat) isPayload()         {}

func (TaskCreated) Type() string       { return TypeTaskCreated }
func (TaskUpdated) Type() string       { return TypeTaskUpdated }
func (TaskDeleted) Type() string       { return TypeTaskDeleted }
func (PhaseChanged) Type() string      { return TypePhaseChanged }
func (TokensUpdated) Type() string     { return TypeTokensUpdated }
func (Activity) Type() string          { return TypeActivity }
func (InitiativeCreated) Type() string { return TypeInitiativeCreated }
func (InitiativeUpdated) Type() string { return TypeInitiativeUpdated }
func (InitiativeDeleted) Type() string { return TypeInitiativeDeleted }
func (DecisionRequired) Type() string  { return TypeDecisionRequired }
func (DecisionResolved) Type() string  { return TypeDecisionResolved }
func (FilesChanged) Type() string      { return TypeFilesChanged }
func (SessionMetrics) Type() string    { return TypeSessionMetrics }
func (ErrorEvent) Type() string        { return TypeError }
func (WarningEvent) Type() string      { return TypeWarning }
func (Heartbeat) Type() string         { return TypeHeartbeat }

func (p TaskCreated) Accept(v Visitor)       { v.VisitTaskCreated(p) }
func (p TaskUpdated) Accept(v Visitor)       { v.VisitTaskUpdated(p) }
func (p TaskDeleted) Accept(v Visitor)       { v.VisitTaskDeleted(p) }
func (p PhaseChanged) Accept(v Visitor)      { v.VisitPhaseChanged(p) }
func (p TokensUpdated) Accept(v Visitor)     { v.VisitTokensUpdated(p) }
func (p Activity) Accept(v Visitor)          { v.VisitActivity(p) }
func (p InitiativeCreated) Accept(v Visitor) { v.VisitInitiativeCreated(p) }
func (p InitiativeUpdated) Accept(v Visitor) { v.VisitInitiativeUpdated(p) }
func (p InitiativeDeleted) Accept(v Visitor) { v.VisitInitiativeDeleted(p) }
func (p DecisionRequired) Accept(v Visitor)  { v.VisitDecisionRequired(p) }
func (p DecisionResolved) Accept(v Visitor)  { v.VisitDecisionResolved(p) }
func (p FilesChanged) Accept(v Visitor)      { v.VisitFilesChanged(p) }
func (p SessionMetrics) Accept(v Visitor)    { v.VisitSessionMetrics(p) }
func (p ErrorEvent) Accept(v Visitor)        { v.VisitError(p) }
func (p WarningEvent) Accept(v Visitor)      { v.VisitWarning(p) }
func (p Heartbeat) Accept(v Visitor)         { v.VisitHeartbeat(p) }
