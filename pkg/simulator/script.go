package simulator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/orcdash/pkg/events"
)

// phases is the pipeline every simulated task walks through.
var phases = []string{"spec", "implement", "review"}

var titles = []string{
	"Add retry to webhook delivery",
	"Fix flaky session timeout test",
	"Migrate config loader to env vars",
	"Speed up dashboard cold start",
	"Clean up orphaned worktrees",
}

var weights = []events.Weight{
	events.WeightTrivial, events.WeightSmall, events.WeightMedium,
	events.WeightLarge, events.WeightGreenfield,
}

// Generator emits a scripted task lifecycle: create → classify → plan →
// run phases (with activity and token churn) → complete, with the
// occasional gate decision and warning mixed in. Step pacing is
// controlled by Interval so tests can run it fast.
type Generator struct {
	logger   *slog.Logger
	interval time.Duration
	rng      *rand.Rand

	taskSeq int
	tokens  events.TokenUsage
}

// NewGenerator creates a generator that waits interval between events.
func NewGenerator(logger *slog.Logger, interval time.Duration) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Generator{
		logger:   logger,
		interval: interval,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run emits scripted lifecycles until ctx is done, delivering each
// event through emit (normally Server.Broadcast).
func (g *Generator) Run(ctx context.Context, emit func(events.Event)) {
	for {
		g.runTask(ctx, emit)
		if ctx.Err() != nil {
			return
		}
	}
}

// runTask plays one full task lifecycle.
func (g *Generator) runTask(ctx context.Context, emit func(events.Event)) {
	g.taskSeq++
	taskID := fmt.Sprintf("TASK-%03d", g.taskSeq)
	title := titles[g.rng.Intn(len(titles))]
	weight := weights[g.rng.Intn(len(weights))]

	g.logger.Debug("simulating task", "task_id", taskID, "title", title)

	steps := []events.Payload{
		events.TaskCreated{TaskID: taskID, Title: title, Weight: weight},
		events.TaskUpdated{TaskID: taskID, Status: events.TaskStatusClassifying},
		events.TaskUpdated{TaskID: taskID, Status: events.TaskStatusPlanned},
		events.TaskUpdated{TaskID: taskID, Status: events.TaskStatusRunning, CurrentPhase: phases[0]},
	}
	for _, p := range steps {
		if !g.emit(ctx, emit, p) {
			return
		}
	}

	for i, phase := range phases {
		if !g.runPhase(ctx, emit, taskID, phase) {
			return
		}
		// A review gate fires on roughly every third task.
		if phase == "review" && g.taskSeq%3 == 0 {
			if !g.runGate(ctx, emit, taskID, phase) {
				return
			}
		}
		if i < len(phases)-1 {
			if !g.emit(ctx, emit, events.TaskUpdated{
				TaskID: taskID, CurrentPhase: phases[i+1],
			}) {
				return
			}
		}
	}

	g.emit(ctx, emit, events.TaskUpdated{
		TaskID: taskID, Status: events.TaskStatusCompleted,
	})
	g.emitSessionMetrics(ctx, emit)
}

// runPhase plays one phase: pending → activity + tokens → completed.
func (g *Generator) runPhase(ctx context.Context, emit func(events.Event), taskID, phase string) bool {
	if !g.emit(ctx, emit, events.PhaseChanged{
		TaskID: taskID, PhaseName: phase, Status: events.PhaseStatusPending,
	}) {
		return false
	}

	states := []events.ActivityState{
		events.ActivityWaitingAPI, events.ActivityStreaming, events.ActivityRunningTool,
	}
	for _, state := range states {
		if !g.emit(ctx, emit, events.Activity{
			TaskID: taskID, PhaseID: phase, State: state,
		}) {
			return false
		}
		g.tokens.InputTokens += 500 + g.rng.Intn(2000)
		g.tokens.OutputTokens += 200 + g.rng.Intn(800)
		g.tokens.TotalTokens = g.tokens.InputTokens + g.tokens.OutputTokens
		if !g.emit(ctx, emit, events.TokensUpdated{TaskID: taskID, Tokens: g.tokens}) {
			return false
		}
	}

	return g.emit(ctx, emit, events.PhaseChanged{
		TaskID: taskID, PhaseName: phase, Status: events.PhaseStatusCompleted,
		Iterations: 1 + g.rng.Intn(3),
	})
}

// runGate plays a decision gate: required, short wait, resolved.
func (g *Generator) runGate(ctx context.Context, emit func(events.Event), taskID, phase string) bool {
	decisionID := uuid.New().String()
	if !g.emit(ctx, emit, events.DecisionRequired{
		DecisionID: decisionID,
		TaskID:     taskID,
		Phase:      phase,
		GateType:   "review",
		Question:   "Approve the review changes?",
	}) {
		return false
	}
	return g.emit(ctx, emit, events.DecisionResolved{
		DecisionID: decisionID,
		TaskID:     taskID,
		Phase:      phase,
		Approved:   g.rng.Intn(4) != 0,
		ResolvedBy: "sim",
	})
}

func (g *Generator) emitSessionMetrics(ctx context.Context, emit func(events.Event)) bool {
	return g.emit(ctx, emit, events.SessionMetrics{
		DurationSeconds:  g.taskSeq * 90,
		TotalTokens:      g.tokens.TotalTokens,
		InputTokens:      g.tokens.InputTokens,
		OutputTokens:     g.tokens.OutputTokens,
		EstimatedCostUSD: float64(g.tokens.TotalTokens) / 1e6 * 15,
		TasksRunning:     1,
	})
}

// emit waits one interval, then delivers the payload wrapped in a
// fresh envelope. Returns false once ctx is done.
func (g *Generator) emit(ctx context.Context, emit func(events.Event), p events.Payload) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(g.interval):
	}
	emit(events.Event{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Payload:   p,
	})
	return true
}
