package dispatch

import (
	"fmt"
	"log/slog"

	"github.com/randalmurphal/orcdash/pkg/events"
	"github.com/randalmurphal/orcdash/pkg/store"
)

// Stores bundles the injected state the Router writes into. Each store
// is owned by its own module; the Router only uses their public verbs.
type Stores struct {
	Tasks         *store.TaskStore
	Initiatives   *store.InitiativeStore
	Session       *store.SessionStore
	Notifications *store.NotificationStore
	Workflow      *store.WorkflowStore
}

// NewStores constructs a fresh, empty set of stores.
func NewStores() Stores {
	return Stores{
		Tasks:         store.NewTaskStore(),
		Initiatives:   store.NewInitiativeStore(),
		Session:       store.NewSessionStore(),
		Notifications: store.NewNotificationStore(),
		Workflow:      store.NewWorkflowStore(),
	}
}

// Router applies one event at a time to the stores. HandleEvent is
// synchronous and does no I/O of its own, so a caller that feeds it
// events sequentially gets strict arrival-order semantics: every store
// effect of event N is complete before event N+1 is touched.
type Router struct {
	stores Stores
	logger *slog.Logger
}

// NewRouter creates a Router over the given stores. A nil logger falls
// back to slog.Default.
func NewRouter(stores Stores, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{stores: stores, logger: logger}
}

// HandleEvent dispatches one event to the matching visitor method.
// An event with no payload is logged and skipped — never fatal.
func (r *Router) HandleEvent(ev events.Event) {
	if ev.Payload == nil {
		r.logger.Warn("event without payload", "event_id", ev.ID)
		return
	}
	ev.Payload.Accept(r)
}

// VisitTaskCreated inserts a minimal task record. The insert is
// idempotent: a record created moments earlier by a direct API call is
// fuller than this event's sparse snapshot and must never be
// overwritten by it.
func (r *Router) VisitTaskCreated(p events.TaskCreated) {
	inserted := r.stores.Tasks.InsertIfAbsent(p.TaskID, store.Task{
		ID:     p.TaskID,
		Title:  p.Title,
		Weight: p.Weight,
		Status: events.TaskStatusCreated,
	})
	if !inserted {
		r.logger.Debug("task already known, keeping existing record",
			"task_id", p.TaskID)
	}
}

// VisitTaskUpdated applies the fields present on the partial snapshot
// onto the existing record. Absent (zero) fields leave the record
// untouched; a task we have never seen is ignored.
func (r *Router) VisitTaskUpdated(p events.TaskUpdated) {
	found := r.stores.Tasks.Update(p.TaskID, func(t *store.Task) {
		if p.Status != "" {
			t.Status = p.Status
		}
		if p.CurrentPhase != "" {
			t.CurrentPhase = p.CurrentPhase
		}
	})
	if !found {
		r.logger.Debug("update for unknown task dropped", "task_id", p.TaskID)
	}
}

// VisitTaskDeleted removes the task and surfaces a notification.
func (r *Router) VisitTaskDeleted(p events.TaskDeleted) {
	if r.stores.Tasks.Remove(p.TaskID) {
		r.stores.Notifications.Push(store.ToastInfo,
			fmt.Sprintf("Task %s deleted", p.TaskID), p.TaskID)
	}
}

// VisitPhaseChanged always moves the task's current-phase pointer.
// When the workflow view is visualizing this task's run, it also
// computes the UI phase status and updates the run's node — edge
// animation follows from the node state.
func (r *Router) VisitPhaseChanged(p events.PhaseChanged) {
	r.stores.Tasks.SetCurrentPhase(p.TaskID, p.PhaseName)

	run := r.stores.Workflow.ActiveRun()
	if run == nil || run.TaskID != p.TaskID {
		return
	}
	isCurrent := run.CurrentPhase == p.PhaseName
	status := MapPhaseStatus(p.Status, isCurrent, p.Error != "")
	r.stores.Workflow.SetNode(p.PhaseName, store.PhaseNode{
		Status:     status,
		Iterations: p.Iterations,
	})
}

// VisitTokensUpdated merges token counters into the task's execution
// state. A task without execution state drops the event — a bare token
// delta cannot satisfy the execution record's required shape, so none
// is fabricated.
func (r *Router) VisitTokensUpdated(p events.TokensUpdated) {
	if !r.stores.Tasks.MergeTokens(p.TaskID, p.Tokens) {
		r.logger.Debug("token update without execution state dropped",
			"task_id", p.TaskID)
	}
}

// VisitActivity forwards the phase id and activity state into the
// task's activity tracking.
func (r *Router) VisitActivity(p events.Activity) {
	r.stores.Tasks.SetActivity(p.TaskID, p.PhaseID, p.State)
}

// VisitInitiativeCreated inserts a minimal initiative record,
// idempotently — same rule as tasks.
func (r *Router) VisitInitiativeCreated(p events.InitiativeCreated) {
	r.stores.Initiatives.InsertIfAbsent(p.InitiativeID, store.Initiative{
		ID:     p.InitiativeID,
		Title:  p.Title,
		Status: events.InitiativeActive,
	})
}

// VisitInitiativeUpdated merges the present fields onto the record.
func (r *Router) VisitInitiativeUpdated(p events.InitiativeUpdated) {
	r.stores.Initiatives.Update(p.InitiativeID, func(i *store.Initiative) {
		if p.Title != "" {
			i.Title = p.Title
		}
		if p.Status != "" {
			i.Status = p.Status
		}
	})
}

// VisitInitiativeDeleted removes the initiative.
func (r *Router) VisitInitiativeDeleted(p events.InitiativeDeleted) {
	r.stores.Initiatives.Remove(p.InitiativeID)
}

// VisitDecisionRequired records the pending decision and raises a
// warning toast.
func (r *Router) VisitDecisionRequired(p events.DecisionRequired) {
	r.stores.Notifications.AddDecision(p)
	r.stores.Notifications.Push(store.ToastWarning,
		fmt.Sprintf("Decision required (%s): %s", p.Phase, p.Question), p.TaskID)
}

// VisitDecisionResolved clears the pending decision and raises an
// informational toast describing the outcome.
func (r *Router) VisitDecisionResolved(p events.DecisionResolved) {
	r.stores.Notifications.ResolveDecision(p.DecisionID)
	outcome := "rejected"
	if p.Approved {
		outcome = "approved"
	}
	msg := fmt.Sprintf("Decision %s (%s)", outcome, p.Phase)
	if p.ResolvedBy != "" {
		msg += " by " + p.ResolvedBy
	}
	r.stores.Notifications.Push(store.ToastInfo, msg, p.TaskID)
}

// VisitFilesChanged is a deliberate no-op; diff churn is fetched on
// demand by the diff view rather than accumulated from events.
func (r *Router) VisitFilesChanged(events.FilesChanged) {}

// VisitSessionMetrics hands the aggregate counters to the session
// store, which reconciles its local duration clock with the server's
// authoritative value.
func (r *Router) VisitSessionMetrics(p events.SessionMetrics) {
	r.stores.Session.Merge(p)
}

// VisitError surfaces a backend failure as an error toast, prefixed
// with the originating phase when known.
func (r *Router) VisitError(p events.ErrorEvent) {
	msg := p.Message
	if p.Phase != "" {
		msg = p.Phase + ": " + msg
	}
	r.stores.Notifications.Push(store.ToastError, msg, p.TaskID)
}

// VisitWarning surfaces a backend warning as a warning toast.
func (r *Router) VisitWarning(p events.WarningEvent) {
	msg := p.Message
	if p.Phase != "" {
		msg = p.Phase + ": " + msg
	}
	r.stores.Notifications.Push(store.ToastWarning, msg, p.TaskID)
}

// VisitHeartbeat is a deliberate no-op; heartbeats exist to keep the
// stream alive and feed the client's staleness detection upstream.
func (r *Router) VisitHeartbeat(events.Heartbeat) {}
