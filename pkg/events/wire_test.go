package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_TaskCreated(t *testing.T) {
	data := []byte(`{
		"id": "ev-1",
		"type": "task.created",
		"timestamp": "2026-08-24T10:00:00Z",
		"payload": {"task_id": "TASK-001", "title": "Add retries", "weight": "small"}
	}`)

	ev, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, "ev-1", ev.ID)
	assert.Equal(t, time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC), ev.Timestamp)
	require.IsType(t, TaskCreated{}, ev.Payload)
	p := ev.Payload.(TaskCreated)
	assert.Equal(t, "TASK-001", p.TaskID)
	assert.Equal(t, "Add retries", p.Title)
	assert.Equal(t, WeightSmall, p.Weight)
}

func TestDecode_PhaseChanged(t *testing.T) {
	data := []byte(`{
		"id": "ev-2",
		"type": "phase.changed",
		"timestamp": "2026-08-24T10:00:01Z",
		"payload": {"task_id": "TASK-001", "phase_name": "implement", "status": "completed", "iterations": 2}
	}`)

	ev, err := Decode(data)
	require.NoError(t, err)

	p, ok := ev.Payload.(PhaseChanged)
	require.True(t, ok)
	assert.Equal(t, "implement", p.PhaseName)
	assert.Equal(t, PhaseStatusCompleted, p.Status)
	assert.Equal(t, 2, p.Iterations)
	assert.Empty(t, p.Error)
}

func TestDecode_UnknownType(t *testing.T) {
	data := []byte(`{"id": "ev-3", "type": "task.exploded", "payload": {}}`)

	_, err := Decode(data)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownEventType)
	assert.Contains(t, err.Error(), "task.exploded")
}

func TestDecode_MalformedEnvelope(t *testing.T) {
	_, err := Decode([]byte(`{not json`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownEventType)
}

func TestDecode_MalformedPayload(t *testing.T) {
	data := []byte(`{"id": "ev-4", "type": "task.created", "payload": {"task_id": 42}}`)

	_, err := Decode(data)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownEventType)
}

func TestDecode_EmptyPayload(t *testing.T) {
	// Heartbeats and deletes may arrive with a missing payload object.
	data := []byte(`{"id": "ev-5", "type": "heartbeat", "timestamp": "2026-08-24T10:00:02Z"}`)

	ev, err := Decode(data)
	require.NoError(t, err)
	assert.IsType(t, Heartbeat{}, ev.Payload)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	orig := Event{
		ID:        "ev-6",
		Timestamp: time.Date(2026, 8, 24, 10, 0, 3, 0, time.UTC),
		Payload: DecisionRequired{
			DecisionID: "dec-1",
			TaskID:     "TASK-002",
			Phase:      "review",
			GateType:   "approval",
			Question:   "Ship it?",
		},
	}

	data, err := Encode(orig)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, orig, got)
}

func TestEncode_TypeDiscriminator(t *testing.T) {
	data, err := Encode(Event{ID: "ev-7", Payload: TokensUpdated{TaskID: "TASK-003"}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"tokens.updated"`)
}

func TestTokenUsage_EffectiveTotals(t *testing.T) {
	u := TokenUsage{
		InputTokens:              100,
		OutputTokens:             50,
		CacheCreationInputTokens: 20,
		CacheReadInputTokens:     30,
		TotalTokens:              150,
	}
	assert.Equal(t, 150, u.EffectiveInputTokens())
	assert.Equal(t, 200, u.EffectiveTotalTokens())
}
