// Package remote synchronizes resolved moves with a remote store.
// It provides Updater clients over HTTP and WebSocket, and Store, a reference server-side implementation.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/samthor/rowreorder/order"
)

var (
	ErrUnknownRecord = errors.New("unknown record")
	ErrConflict      = errors.New("stale position")
	ErrInvalidMove   = errors.New("invalid move")
	ErrExcessTraffic = errors.New("too many requests")
)

// Request is sent to the remote store for each resolved move.
type Request struct {
	ID        string          `json:"id"`
	From      int             `json:"from"`
	To        int             `json:"to"`
	Direction order.Direction `json:"direction"`
	Group     string          `json:"group"`
}

// NewRequest builds the Request for a resolved move.
func NewRequest(m order.MoveState, group string) Request {
	return Request{
		ID:        m.ID,
		From:      m.Current,
		To:        m.New,
		Direction: m.Direction,
		Group:     group,
	}
}

// Move returns the MoveState described by this Request.
func (r Request) Move() order.MoveState {
	return order.MoveState{ID: r.ID, Current: r.From, New: r.To, Direction: r.Direction}
}

// Values encodes this Request as form values.
func (r Request) Values() url.Values {
	return url.Values{
		"id":        {r.ID},
		"from":      {strconv.Itoa(r.From)},
		"to":        {strconv.Itoa(r.To)},
		"direction": {string(r.Direction)},
		"group":     {r.Group},
	}
}

// ParseValues decodes a Request from form values.
func ParseValues(v url.Values) (r Request, err error) {
	r.ID = v.Get("id")
	r.Group = v.Get("group")
	r.Direction = order.Direction(v.Get("direction"))

	if r.ID == "" {
		return r, fmt.Errorf("%w: missing id", ErrInvalidMove)
	}
	if r.From, err = strconv.Atoi(v.Get("from")); err != nil {
		return r, fmt.Errorf("%w: bad from: %v", ErrInvalidMove, err)
	}
	if r.To, err = strconv.Atoi(v.Get("to")); err != nil {
		return r, fmt.Errorf("%w: bad to: %v", ErrInvalidMove, err)
	}
	return r, nil
}

// Updater sends a move to the remote store.
// It returns nil only once the store has accepted the move.
type Updater interface {
	Update(ctx context.Context, r Request) error
}

// UpdaterFunc adapts a function to Updater.
type UpdaterFunc func(ctx context.Context, r Request) error

func (fn UpdaterFunc) Update(ctx context.Context, r Request) error {
	return fn(ctx, r)
}

// StatusError is returned when the remote store rejects a move.
type StatusError struct {
	Code   int    // HTTP status code, or zero over a socket
	Status string // human-readable detail
}

func (se *StatusError) Error() string {
	if se.Code == 0 {
		return se.Status
	}
	return fmt.Sprintf("%d %s", se.Code, se.Status)
}
