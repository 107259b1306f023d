// Package order resolves a dropped row into a new rank and recomputes the ranks of its siblings.
// Everything here is pure: callers supply ranks and apply the returned updates themselves.
package order

import (
	"errors"
)

var (
	// ErrUndeterminable is returned when no neighbor gives a usable reference rank.
	ErrUndeterminable = errors.New("position cannot be determined")

	// ErrMissingGroup is returned when grouping is enabled but the dragged record has no group key.
	ErrMissingGroup = errors.New("grouping row cannot be moved")

	// ErrMissingIdentifier is returned when the dragged record has no ID.
	ErrMissingIdentifier = errors.New("dragged record has no identifier")
)

// Undetermined is the MoveState.New value used when no target rank could be found.
// It must never be applied.
const Undetermined = -1

// Direction is the way a record moved within its domain.
type Direction string

const (
	Up   Direction = "up"   // towards lower ranks
	Down Direction = "down" // towards higher ranks
)

// Record is a row in an ordered list.
type Record struct {
	ID       string
	Position int

	// Group is only meaningful if HasGroup is true.
	Group    string
	HasGroup bool
}

// MoveState describes the outcome of one drop.
type MoveState struct {
	ID        string
	Current   int
	New       int
	Direction Direction
}

// Determined returns whether this MoveState may be applied.
func (m MoveState) Determined() bool {
	return m.New != Undetermined
}

// Update is a single rank write.
type Update struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}
