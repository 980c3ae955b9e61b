// Package store holds the client-side mutable state the event router
// writes into. Every store is an explicitly constructed instance —
// nothing here is package-level — so tests build fresh stores per test
// and the router receives them by injection.
package store

import "sync"

// Table is a string-keyed record container. It exposes the only verbs
// the router is allowed to rely on: get, idempotent insert, upsert,
// in-place update, and remove.
type Table[T any] struct {
	mu   sync.RWMutex
	rows map[string]T
}

// NewTable creates an empty table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{rows: make(map[string]T)}
}

// Get returns the record for id, if present.
func (t *Table[T]) Get(id string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.rows[id]
	return v, ok
}

// InsertIfAbsent stores v under id only when no record exists yet.
// Returns true when the insert happened. An existing record — however
// sparse the candidate — is never overwritten.
func (t *Table[T]) InsertIfAbsent(id string, v T) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; ok {
		return false
	}
	t.rows[id] = v
	return true
}

// Upsert stores v under id unconditionally.
func (t *Table[T]) Upsert(id string, v T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows[id] = v
}

// Update applies mutate to the record for id, if present. Returns true
// when a record was found and mutated.
func (t *Table[T]) Update(id string, mutate func(*T)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.rows[id]
	if !ok {
		return false
	}
	mutate(&v)
	t.rows[id] = v
	return true
}

// Remove deletes the record for id. Returns true when it existed.
func (t *Table[T]) Remove(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	return true
}

// Len returns the number of records.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// All returns a snapshot of every record. Mutating the returned map
// does not affect the table.
func (t *Table[T]) All() map[string]T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]T, len(t.rows))
	for k, v := range t.rows {
		out[k] = v
	}
	return out
}
