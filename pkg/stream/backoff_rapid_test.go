package stream

import (
	"testing"
	"time"

	"pgregory.net/rapid"
)

// For any base delay and budget, a client whose opens always fail
// schedules exactly budget reconnects, each delay double the previous,
// and ends disconnected.
func TestClient_BackoffScheduleProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		baseMillis := rapid.IntRange(1, 250).Draw(t, "baseMillis")
		budget := rapid.IntRange(1, 8).Draw(t, "budget")
		base := time.Duration(baseMillis) * time.Millisecond

		tr := &fakeTransport{} // every Open fails
		client := NewClient(tr, nil, Options{BaseDelay: base, MaxReconnects: budget})
		backoff := newBackoffRecorder()
		client.afterFunc = backoff.afterFunc

		rec := &statusRecorder{}
		client.OnStatusChange(rec.record)

		client.Connect(SubscribeRequest{})
		for i := 0; i < budget; i++ {
			select {
			case fn := <-backoff.fns:
				fn()
			case <-time.After(5 * time.Second):
				t.Fatalf("reconnect %d never scheduled", i+1)
			}
		}

		deadline := time.Now().Add(5 * time.Second)
		for rec.last() != StatusDisconnected {
			if time.Now().After(deadline) {
				t.Fatalf("never reached terminal disconnected, last %q", rec.last())
			}
			time.Sleep(time.Millisecond)
		}

		delays := backoff.recorded()
		if len(delays) != budget {
			t.Fatalf("scheduled %d reconnects, want %d", len(delays), budget)
		}
		for i, d := range delays {
			want := base << i
			if d != want {
				t.Fatalf("delay %d = %v, want %v", i+1, d, want)
			}
		}
		if got := tr.openCount(); got != budget+1 {
			t.Fatalf("opened %d streams, want %d", got, budget+1)
		}
	})
}
