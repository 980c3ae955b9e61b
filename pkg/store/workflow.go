package store

import "sync"

// PhaseUIStatus is the UI-facing phase status. It is strictly richer
// than the wire enum: "running" and "failed" never travel over the
// stream and are derived from context (see dispatch.MapPhaseStatus).
type PhaseUIStatus string

const (
	PhasePending   PhaseUIStatus = "pending"
	PhaseRunning   PhaseUIStatus = "running"
	PhaseCompleted PhaseUIStatus = "completed"
	PhaseSkipped   PhaseUIStatus = "skipped"
	PhaseFailed    PhaseUIStatus = "failed"
)

// ActiveRun identifies the task execution currently shown in the
// workflow view. Owned by the UI; the router only reads it to decide
// whether an incoming phase event belongs to the visualized run.
type ActiveRun struct {
	RunID        string
	TaskID       string
	CurrentPhase string
}

// PhaseNode is the visual state of one phase in the workflow graph.
type PhaseNode struct {
	Status     PhaseUIStatus
	Iterations int
}

// WorkflowStore owns the live execution visualization: the active run,
// per-phase node states, and which edges are animated. Edge animation
// is a purely visual signal — it marks the flow into the currently
// running phase and is never persisted.
type WorkflowStore struct {
	mu sync.Mutex

	run   *ActiveRun
	nodes map[string]PhaseNode
	// animated holds the names of phases whose inbound edges animate.
	animated map[string]bool
}

// NewWorkflowStore creates an empty workflow store.
func NewWorkflowStore() *WorkflowStore {
	return &WorkflowStore{
		nodes:    make(map[string]PhaseNode),
		animated: make(map[string]bool),
	}
}

// SetActiveRun replaces the visualized run and resets node state.
// Passing nil clears the visualization.
func (s *WorkflowStore) SetActiveRun(run *ActiveRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run = run
	s.nodes = make(map[string]PhaseNode)
	s.animated = make(map[string]bool)
}

// ActiveRun returns the visualized run, or nil.
func (s *WorkflowStore) ActiveRun() *ActiveRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == nil {
		return nil
	}
	run := *s.run
	return &run
}

// SetCurrentPhase moves the active run's current-phase pointer.
func (s *WorkflowStore) SetCurrentPhase(phase string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run != nil {
		s.run.CurrentPhase = phase
	}
}

// SetNode records the visual state of one phase node. A running phase
// animates its inbound edges and stops any animation left on the
// previously running phase; a terminal state clears the phase's own
// animation.
func (s *WorkflowStore) SetNode(phase string, node PhaseNode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[phase] = node
	switch node.Status {
	case PhaseRunning:
		// At most one phase runs at a time.
		s.animated = map[string]bool{phase: true}
	case PhaseCompleted, PhaseFailed:
		delete(s.animated, phase)
	}
}

// Node returns the visual state of one phase, if recorded.
func (s *WorkflowStore) Node(phase string) (PhaseNode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[phase]
	return n, ok
}

// Nodes returns a snapshot of all phase nodes.
func (s *WorkflowStore) Nodes() map[string]PhaseNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]PhaseNode, len(s.nodes))
	for k, v := range s.nodes {
		out[k] = v
	}
	return out
}

// Animated reports whether the edges into phase are animating.
func (s *WorkflowStore) Animated(phase string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.animated[phase]
}
