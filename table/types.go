// Package table describes the table-rendering collaborator that reordering drives.
// Memory is a concurrency-safe implementation, useful for servers and tests.
package table

import (
	"errors"
)

var (
	ErrNoRow        = errors.New("no such row")
	ErrNoColumn     = errors.New("no such column")
	ErrSortDisabled = errors.New("column sorting is disabled")
	ErrDuplicateRow = errors.New("duplicate row id")
	ErrMissingRowID = errors.New("row has no id")
)

// GroupAttribute is the conventional attribute holding a row's group key.
const GroupAttribute = "data-group"

// SortKey sorts by a single column.
type SortKey struct {
	Column int  `json:"c"`
	Desc   bool `json:"d,omitzero"`
}

// DrawState is passed to draw observers.
type DrawState struct {
	Sorting   []SortKey
	PageStart int
	PageSize  int
}

// DrawFunc observes a draw.
type DrawFunc func(DrawState)

type Table interface {
	// IDs returns all rows in model order.
	IDs() []string

	// Cell returns the raw value of a cell.
	Cell(id string, column int) (any, error)

	// SetCell updates a cell without redrawing.
	SetCell(id string, column int, v any) error

	// Attr returns a row attribute, such as GroupAttribute.
	Attr(id, name string) (string, bool)

	// Redraw redraws the table, keeping the current page offset if preservePage is set.
	Redraw(preservePage bool)

	// Sorting returns the current sort keys.
	Sorting() []SortKey

	// DisableSorting prevents any further user sorting.
	// The table keeps whatever order it currently has.
	DisableSorting()

	// OnPreDraw registers a function to run before each draw.
	// The returned function removes it again.
	OnPreDraw(fn DrawFunc) (remove func())

	// OnDraw registers a function to run after each draw.
	OnDraw(fn DrawFunc) (remove func())
}
