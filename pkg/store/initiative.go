package store

import "github.com/randalmurphal/orcdash/pkg/events"

// Initiative is the dashboard's view of one backend initiative.
type Initiative struct {
	ID     string
	Title  string
	Status events.InitiativeStatus
}

// InitiativeStore owns all initiative records.
type InitiativeStore struct {
	*Table[Initiative]
}

// NewInitiativeStore creates an empty initiative store.
func NewInitiativeStore() *InitiativeStore {
	return &InitiativeStore{Table: NewTable[Initiative]()}
}
