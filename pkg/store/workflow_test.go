package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflowStore_SetActiveRunResetsState(t *testing.T) {
	s := NewWorkflowStore()
	s.SetActiveRun(&ActiveRun{RunID: "run-1", TaskID: "TASK-001", CurrentPhase: "spec"})
	s.SetNode("spec", PhaseNode{Status: PhaseRunning})
	require.True(t, s.Animated("spec"))

	s.SetActiveRun(&ActiveRun{RunID: "run-2", TaskID: "TASK-002"})

	assert.Empty(t, s.Nodes())
	assert.False(t, s.Animated("spec"))

	run := s.ActiveRun()
	require.NotNil(t, run)
	assert.Equal(t, "run-2", run.RunID)
}

func TestWorkflowStore_ActiveRunReturnsCopy(t *testing.T) {
	s := NewWorkflowStore()
	s.SetActiveRun(&ActiveRun{RunID: "run-1", CurrentPhase: "spec"})

	run := s.ActiveRun()
	run.CurrentPhase = "mutated"

	assert.Equal(t, "spec", s.ActiveRun().CurrentPhase)
}

func TestWorkflowStore_RunningAnimationIsExclusive(t *testing.T) {
	s := NewWorkflowStore()
	s.SetActiveRun(&ActiveRun{RunID: "run-1", TaskID: "TASK-001"})

	s.SetNode("spec", PhaseNode{Status: PhaseRunning})
	assert.True(t, s.Animated("spec"))

	// The next running phase takes over the animation.
	s.SetNode("implement", PhaseNode{Status: PhaseRunning})
	assert.False(t, s.Animated("spec"))
	assert.True(t, s.Animated("implement"))
}

func TestWorkflowStore_TerminalStateClearsAnimation(t *testing.T) {
	s := NewWorkflowStore()
	s.SetActiveRun(&ActiveRun{RunID: "run-1", TaskID: "TASK-001"})

	s.SetNode("spec", PhaseNode{Status: PhaseRunning})
	s.SetNode("spec", PhaseNode{Status: PhaseCompleted, Iterations: 2})
	assert.False(t, s.Animated("spec"))

	node, ok := s.Node("spec")
	require.True(t, ok)
	assert.Equal(t, PhaseCompleted, node.Status)
	assert.Equal(t, 2, node.Iterations)

	s.SetNode("implement", PhaseNode{Status: PhaseRunning})
	s.SetNode("implement", PhaseNode{Status: PhaseFailed})
	assert.False(t, s.Animated("implement"))
}

func TestWorkflowStore_PendingDoesNotAnimate(t *testing.T) {
	s := NewWorkflowStore()
	s.SetActiveRun(&ActiveRun{RunID: "run-1", TaskID: "TASK-001"})

	s.SetNode("review", PhaseNode{Status: PhasePending})
	assert.False(t, s.Animated("review"))
}

func TestWorkflowStore_ClearRun(t *testing.T) {
	s := NewWorkflowStore()
	s.SetActiveRun(&ActiveRun{RunID: "run-1"})
	s.SetActiveRun(nil)
	assert.Nil(t, s.ActiveRun())
}
