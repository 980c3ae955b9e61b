package store

import (
	"sync"
	"time"

	"github.com/randalmurphal/orcdash/pkg/events"
)

// maxToasts caps the retained notification history. Older entries fall
// off the front.
const maxToasts = 100

// ToastLevel classifies a notification for rendering.
type ToastLevel string

const (
	ToastInfo    ToastLevel = "info"
	ToastWarning ToastLevel = "warning"
	ToastError   ToastLevel = "error"
)

// Toast is one user-visible notification.
type Toast struct {
	Level   ToastLevel
	Message string
	TaskID  string
	At      time.Time
}

// NotificationStore owns toasts and the set of decisions currently
// waiting on a human.
type NotificationStore struct {
	mu sync.Mutex

	toasts    []Toast
	decisions map[string]events.DecisionRequired

	now func() time.Time // test hook
}

// NewNotificationStore creates an empty notification store.
func NewNotificationStore() *NotificationStore {
	return &NotificationStore{
		decisions: make(map[string]events.DecisionRequired),
		now:       time.Now,
	}
}

// Push appends a toast, evicting the oldest past the cap.
func (s *NotificationStore) Push(level ToastLevel, message, taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toasts = append(s.toasts, Toast{
		Level:   level,
		Message: message,
		TaskID:  taskID,
		At:      s.now(),
	})
	if len(s.toasts) > maxToasts {
		s.toasts = s.toasts[len(s.toasts)-maxToasts:]
	}
}

// Toasts returns a snapshot of the retained notifications, oldest first.
func (s *NotificationStore) Toasts() []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Toast, len(s.toasts))
	copy(out, s.toasts)
	return out
}

// AddDecision records a pending decision.
func (s *NotificationStore) AddDecision(d events.DecisionRequired) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions[d.DecisionID] = d
}

// ResolveDecision removes a pending decision. Returns the record and
// whether it was present.
func (s *NotificationStore) ResolveDecision(decisionID string) (events.DecisionRequired, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.decisions[decisionID]
	if ok {
		delete(s.decisions, decisionID)
	}
	return d, ok
}

// PendingDecisions returns a snapshot of decisions awaiting a human.
func (s *NotificationStore) PendingDecisions() []events.DecisionRequired {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]events.DecisionRequired, 0, len(s.decisions))
	for _, d := range s.decisions {
		out = append(out, d)
	}
	return out
}
