// Package dispatch routes decoded backend events into the dashboard's
// stores. The Router implements events.Visitor, so the compiler —
// not a runtime default branch — guarantees every payload case has a
// handler. All idempotency and derived-state rules live here; stores
// only provide the verbs.
package dispatch

import (
	"github.com/randalmurphal/orcdash/pkg/events"
	"github.com/randalmurphal/orcdash/pkg/store"
)

// MapPhaseStatus translates the backend's coarse phase status plus
// context into the UI-facing enum. The wire enum has no "running" or
// "failed" — both are reconstructed client-side from whether the phase
// is the active run's current phase and whether the event carries an
// error string.
//
// Precedence is load-bearing: error > completed/skipped > derived
// running > pending. Reordering silently changes which events render
// as failed versus running.
func MapPhaseStatus(backend events.PhaseStatus, isCurrentPhase, hasError bool) store.PhaseUIStatus {
	if hasError {
		return store.PhaseFailed
	}
	switch backend {
	case events.PhaseStatusCompleted:
		return store.PhaseCompleted
	case events.PhaseStatusSkipped:
		return store.PhaseSkipped
	}
	// Pending or unspecified: the current-phase pointer decides
	// whether this phase is actually executing.
	if isCurrentPhase {
		return store.PhaseRunning
	}
	return store.PhasePending
}
