package coord

import (
	"errors"
	"fmt"
	"time"

	"github.com/samthor/rowreorder/order"
	"github.com/samthor/rowreorder/rank"
	"github.com/samthor/rowreorder/remote"
	"github.com/samthor/rowreorder/table"
)

const (
	DefaultTimeout = time.Second * 30
)

var (
	// ErrBusy cancels a drop whose domain already has a move waiting on the remote store.
	ErrBusy = errors.New("a move is already pending in this domain")

	// ErrDisabled cancels a drop while the table is sorted by something other than the index column.
	ErrDisabled = errors.New("rows can only be moved while sorted by rank")

	// ErrClosed cancels drops made after Close.
	ErrClosed = errors.New("coordinator closed")

	// ErrTransport wraps every error from the Updater, causing a rollback.
	ErrTransport = errors.New("sync failed")

	// ErrTimeout is the cause of an Updater call outliving Options.Timeout.
	ErrTimeout = errors.New("sync timed out")
)

// Level is the severity of a notification. Lower is more severe.
type Level int

const (
	LevelError Level = 1
	LevelWarn  Level = 2
	LevelInfo  Level = 3
)

// State is the state of a single drop.
type State int

const (
	Idle State = iota
	Resolving
	Cancelled
	RequestPending
	Committed
	RolledBack
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Resolving:
		return "resolving"
	case Cancelled:
		return "cancelled"
	case RequestPending:
		return "pending"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolledback"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Options configures a Coordinator.
// It is copied by New; later changes have no effect.
type Options struct {
	// IndexColumn is the column holding each row's rank.
	IndexColumn int

	// Updater confirms each move with a remote store.
	// If nil, moves are committed locally and immediately.
	Updater remote.Updater

	// Timeout bounds each Updater call; a timeout rolls the move back.
	// Defaults to DefaultTimeout.
	Timeout time.Duration

	// Grouping restricts moves to rows sharing a group key.
	Grouping bool

	// GroupOf returns the group key for a row.
	// Defaults to reading GroupAttribute from the table.
	GroupOf func(id string) (group string, ok bool)

	// GroupAttribute is the row attribute read by the default GroupOf.
	// Defaults to [table.GroupAttribute].
	GroupAttribute string

	// Notify is told about moves that could not be made.
	// Defaults to [log.Printf].
	Notify func(msg string, level Level)

	// LogLevel is the least severe Level passed to Notify.
	// Sync failures are always passed on. Defaults to LevelError; a negative value silences everything else.
	LogLevel Level

	// Busy is called with true when remote requests start, and false once none remain in flight.
	// A cancelled drop also calls it with false if nothing is in flight.
	Busy func(on bool)

	// OnDraw is registered to run after each table draw.
	OnDraw table.DrawFunc

	// KeepColumnSort leaves column sorting enabled, allowing moves only while sorted by IndexColumn alone.
	// By default, column sorting is disabled and moves are always allowed.
	KeepColumnSort bool

	// Decode and Encode convert between cell values and ranks.
	// Default to [rank.Plain] and [rank.PlainEncode].
	Decode rank.Decoder
	Encode rank.Encoder

	// DragHandle is a selector for the drag source's handle, kept for it to read via Coordinator.Options.
	DragHandle string
}

// Drop is a completed drag, as reported by the drag source.
type Drop struct {
	// ID is the dragged row.
	ID string

	// Order is the displayed rows in their new visual order, including ID.
	Order []string

	// Revert puts the dragged row back where it came from. May be nil.
	Revert func()
}

// Outcome is the final result of a Drop.
type Outcome struct {
	State State
	Move  order.MoveState
	Group string

	// Updates are the rank writes performed on commit.
	Updates []order.Update

	Err error
}
