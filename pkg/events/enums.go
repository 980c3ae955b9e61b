package events

// PhaseStatus is the backend's coarse phase enum. It deliberately has
// no "running" or "failed" value: whether a pending phase is the one
// currently executing, and whether an error occurred, travel as
// separate context (the task's current-phase pointer and the event's
// error string). The richer UI-facing enum lives in pkg/dispatch.
type PhaseStatus string

const (
	PhaseStatusUnspecified PhaseStatus = ""
	PhaseStatusPending     PhaseStatus = "pending"
	PhaseStatusCompleted   PhaseStatus = "completed"
	PhaseStatusSkipped     PhaseStatus = "skipped"
)

// TaskStatus is the overall task lifecycle state.
type TaskStatus string

const (
	TaskStatusCreated     TaskStatus = "created"
	TaskStatusClassifying TaskStatus = "classifying"
	TaskStatusPlanned     TaskStatus = "planned"
	TaskStatusRunning     TaskStatus = "running"
	TaskStatusPaused      TaskStatus = "paused"
	TaskStatusBlocked     TaskStatus = "blocked"
	TaskStatusFinalizing  TaskStatus = "finalizing"
	TaskStatusCompleted   TaskStatus = "completed"
	TaskStatusFailed      TaskStatus = "failed"
	TaskStatusResolved    TaskStatus = "resolved"
)

// Weight is the backend's complexity classification of a task.
type Weight string

const (
	WeightTrivial    Weight = "trivial"
	WeightSmall      Weight = "small"
	WeightMedium     Weight = "medium"
	WeightLarge      Weight = "large"
	WeightGreenfield Weight = "greenfield"
)

// ActivityState describes what the agent is doing right now.
type ActivityState string

const (
	ActivityIdle        ActivityState = "idle"
	ActivityWaitingAPI  ActivityState = "waiting_api"
	ActivityStreaming   ActivityState = "streaming"
	ActivityRunningTool ActivityState = "running_tool"
	ActivityProcessing  ActivityState = "processing"
)

// InitiativeStatus is the initiative lifecycle state.
type InitiativeStatus string

const (
	InitiativeActive    InitiativeStatus = "active"
	InitiativeCompleted InitiativeStatus = "completed"
	InitiativeArchived  InitiativeStatus = "archived"
)

// TokenUsage tracks cumulative token consumption.
type TokenUsage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens,omitempty"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens,omitempty"`
	TotalTokens              int `json:"total_tokens"`
}

// EffectiveInputTokens returns the total input context size including
// cached tokens.
func (t TokenUsage) EffectiveInputTokens() int {
	return t.InputTokens + t.CacheCreationInputTokens + t.CacheReadInputTokens
}

// EffectiveTotalTokens returns the total tokens including cached inputs.
func (t TokenUsage) EffectiveTotalTokens() int {
	return t.EffectiveInputTokens() + t.OutputTokens
}
