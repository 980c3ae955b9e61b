package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/orcdash/pkg/events"
)

func TestNotificationStore_PushAndSnapshot(t *testing.T) {
	s := NewNotificationStore()

	s.Push(ToastInfo, "task done", "TASK-001")
	s.Push(ToastError, "phase failed", "TASK-002")

	toasts := s.Toasts()
	require.Len(t, toasts, 2)
	assert.Equal(t, ToastInfo, toasts[0].Level)
	assert.Equal(t, "task done", toasts[0].Message)
	assert.Equal(t, ToastError, toasts[1].Level)
	assert.False(t, toasts[1].At.IsZero())
}

func TestNotificationStore_EvictsOldestPastCap(t *testing.T) {
	s := NewNotificationStore()

	for i := 0; i < maxToasts+5; i++ {
		s.Push(ToastInfo, fmt.Sprintf("msg-%d", i), "")
	}

	toasts := s.Toasts()
	require.Len(t, toasts, maxToasts)
	assert.Equal(t, "msg-5", toasts[0].Message)
	assert.Equal(t, fmt.Sprintf("msg-%d", maxToasts+4), toasts[len(toasts)-1].Message)
}

func TestNotificationStore_DecisionLifecycle(t *testing.T) {
	s := NewNotificationStore()
	d := events.DecisionRequired{
		DecisionID: "dec-1",
		TaskID:     "TASK-001",
		Phase:      "review",
		Question:   "Approve?",
	}

	s.AddDecision(d)
	require.Len(t, s.PendingDecisions(), 1)
	assert.Equal(t, d, s.PendingDecisions()[0])

	got, ok := s.ResolveDecision("dec-1")
	require.True(t, ok)
	assert.Equal(t, d, got)
	assert.Empty(t, s.PendingDecisions())

	_, ok = s.ResolveDecision("dec-1")
	assert.False(t, ok)
}
