package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrUnknownEventType marks an envelope whose "type" string this build
// does not recognize. Callers are expected to log and skip — a single
// version-skewed event must not take down the stream.
var ErrUnknownEventType = errors.New("unknown event type")

// envelope is the wire frame around every event payload.
type envelope struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Decode parses one wire frame into an Event.
func Decode(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Event{}, fmt.Errorf("decode event envelope: %w", err)
	}

	payload, err := decodePayload(env.Type, env.Payload)
	if err != nil {
		return Event{}, err
	}

	return Event{
		ID:        env.ID,
		Timestamp: env.Timestamp,
		Payload:   payload,
	}, nil
}

// Encode renders an Event as one wire frame.
func Encode(ev Event) ([]byte, error) {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", ev.Payload.Type(), err)
	}
	return json.Marshal(envelope{
		ID:        ev.ID,
		Type:      ev.Payload.Type(),
		Timestamp: ev.Timestamp,
		Payload:   payload,
	})
}

func decodePayload(typ string, raw json.RawMessage) (Payload, error) {
	var (
		payload Payload
		err     error
	)

	unmarshal := func(dst any) error {
		if len(raw) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("decode %s payload: %w", typ, err)
		}
		return nil
	}

	switch typ {
	case TypeTaskCreated:
		var p TaskCreated
		err = unmarshal(&p)
		payload = p
	case TypeTaskUpdated:
		var p TaskUpdated
		err = unmarshal(&p)
		payload = p
	case TypeTaskDeleted:
		var p TaskDeleted
		err = unmarshal(&p)
		payload = p
	case TypePhaseChanged:
		var p PhaseChanged
		err = unmarshal(&p)
		payload = p
	case TypeTokensUpdated:
		var p TokensUpdated
		err = unmarshal(&p)
		payload = p
	case TypeActivity:
		var p Activity
		err = unmarshal(&p)
		payload = p
	case TypeInitiativeCreated:
		var p InitiativeCreated
		err = unmarshal(&p)
		payload = p
	case TypeInitiativeUpdated:
		var p InitiativeUpdated
		err = unmarshal(&p)
		payload = p
	case TypeInitiativeDeleted:
		var p InitiativeDeleted
		err = unmarshal(&p)
		payload = p
	case TypeDecisionRequired:
		var p DecisionRequired
		err = unmarshal(&p)
		payload = p
	case TypeDecisionResolved:
		var p DecisionResolved
		err = unmarshal(&p)
		payload = p
	case TypeFilesChanged:
		var p FilesChanged
		err = unmarshal(&p)
		payload = p
	case TypeSessionMetrics:
		var p SessionMetrics
		err = unmarshal(&p)
		payload = p
	case TypeError:
		var p ErrorEvent
		err = unmarshal(&p)
		payload = p
	case TypeWarning:
		var p WarningEvent
		err = unmarshal(&p)
		payload = p
	case TypeHeartbeat:
		var p Heartbeat
		err = unmarshal(&p)
		payload = p
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, typ)
	}

	if err != nil {
		return nil, err
	}
	return payload, nil
}
