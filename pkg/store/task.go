package store

import "github.com/randalmurphal/orcdash/pkg/events"

// ExecutionState mirrors the execution-related slice of a task that the
// dashboard tracks: cumulative tokens and per-phase iteration counts.
// It has a stricter required shape than a token delta alone — a
// tokens-only event cannot fabricate one.
type ExecutionState struct {
	Tokens     events.TokenUsage
	Iterations map[string]int // phase name → iteration count
}

// Task is the dashboard's view of one backend task.
type Task struct {
	ID           string
	Title        string
	Status       events.TaskStatus
	Weight       events.Weight
	CurrentPhase string
	Activity     map[string]events.ActivityState // phase id → activity
	Execution    *ExecutionState
}

// TaskStore owns all task records.
type TaskStore struct {
	*Table[Task]
}

// NewTaskStore creates an empty task store.
func NewTaskStore() *TaskStore {
	return &TaskStore{Table: NewTable[Task]()}
}

// SetCurrentPhase updates the current-phase pointer for a task.
func (s *TaskStore) SetCurrentPhase(taskID, phase string) {
	s.Update(taskID, func(t *Task) {
		t.CurrentPhase = phase
	})
}

// SetActivity records what the agent is doing within a phase.
func (s *TaskStore) SetActivity(taskID, phaseID string, state events.ActivityState) {
	s.Update(taskID, func(t *Task) {
		if t.Activity == nil {
			t.Activity = make(map[string]events.ActivityState)
		}
		t.Activity[phaseID] = state
	})
}

// MergeTokens folds new token counters into the task's execution state.
// Returns false — and changes nothing — when the task has no execution
// state yet: there is nothing sound to attach a bare token delta to.
func (s *TaskStore) MergeTokens(taskID string, usage events.TokenUsage) bool {
	merged := false
	s.Update(taskID, func(t *Task) {
		if t.Execution == nil {
			return
		}
		t.Execution.Tokens = usage
		merged = true
	})
	return merged
}
