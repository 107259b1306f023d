// Package coord turns drops into committed rank changes.
//
// A drop is resolved against the rows of its ordering domain, optionally confirmed with a remote store, and only then
// written to the table as one batch followed by a single redraw. Cancelled or failed drops revert the dragged row and
// never touch stored ranks.
package coord

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/samthor/rowreorder/order"
	"github.com/samthor/rowreorder/rank"
	"github.com/samthor/rowreorder/remote"
	"github.com/samthor/rowreorder/table"
	"golang.org/x/sync/semaphore"
)

// Coordinator reorders the rows of a single table.
type Coordinator struct {
	opts  Options
	table table.Table
	ranks *rank.Accessor

	enabled atomic.Bool
	closed  atomic.Bool
	remove  []func()

	domainLock sync.Mutex
	domains    map[string]*semaphore.Weighted

	commitLock sync.Mutex

	busyLock sync.Mutex
	inflight int
}

// New builds a Coordinator over the given table.
// Unless KeepColumnSort is set, this disables column sorting on the table.
func New(t table.Table, opts Options) *Coordinator {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.LogLevel == 0 {
		opts.LogLevel = LevelError
	}
	if opts.GroupAttribute == "" {
		opts.GroupAttribute = table.GroupAttribute
	}
	if opts.GroupOf == nil {
		attr := opts.GroupAttribute
		opts.GroupOf = func(id string) (string, bool) { return t.Attr(id, attr) }
	}
	if opts.Notify == nil {
		opts.Notify = func(msg string, level Level) { log.Printf("reorder (level %d): %s", level, msg) }
	}

	c := &Coordinator{
		opts:    opts,
		table:   t,
		ranks:   &rank.Accessor{Cells: t, Column: opts.IndexColumn, Decode: opts.Decode, Encode: opts.Encode},
		domains: map[string]*semaphore.Weighted{},
	}

	if opts.KeepColumnSort {
		c.enabled.Store(c.sortedByRank(t.Sorting()))
		c.remove = append(c.remove, t.OnPreDraw(func(ds table.DrawState) {
			c.enabled.Store(c.sortedByRank(ds.Sorting))
		}))
	} else {
		t.DisableSorting()
		c.enabled.Store(true)
	}

	if opts.OnDraw != nil {
		c.remove = append(c.remove, t.OnDraw(opts.OnDraw))
	}

	return c
}

// sortedByRank checks that the table is sorted by the index column alone.
// Either direction is fine.
func (c *Coordinator) sortedByRank(keys []table.SortKey) bool {
	return len(keys) == 1 && keys[0].Column == c.opts.IndexColumn
}

// Options returns the options this Coordinator was built with, with defaults applied.
func (c *Coordinator) Options() Options {
	return c.opts
}

// Enabled returns whether drops are currently accepted.
// The drag source should disable dragging while this is false.
func (c *Coordinator) Enabled() bool {
	return c.enabled.Load() && !c.closed.Load()
}

// Close removes this Coordinator's table hooks.
// Later drops are cancelled. Requests already pending still resolve.
func (c *Coordinator) Close() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	for _, fn := range c.remove {
		fn()
	}
}

// Drop handles a completed drag. It never blocks on the remote store.
// The returned Pending resolves once the drop is committed, rolled back or cancelled.
// The passed context bounds the remote request, along with Options.Timeout.
func (c *Coordinator) Drop(ctx context.Context, d Drop) *Pending {
	p := newPending()

	if d.ID == "" {
		log.Printf("dragged row has no id, order=%v", d.Order)
		c.cancel(p, d, Outcome{Err: order.ErrMissingIdentifier}, LevelError, true)
		return p
	} else if c.closed.Load() {
		c.cancel(p, d, Outcome{Err: ErrClosed}, LevelError, false)
		return p
	} else if !c.enabled.Load() {
		c.cancel(p, d, Outcome{Err: ErrDisabled}, LevelWarn, false)
		return p
	}

	var group string
	var inDomain func(id string) bool
	if c.opts.Grouping {
		var ok bool
		group, ok = c.opts.GroupOf(d.ID)
		if !ok {
			c.cancel(p, d, Outcome{Err: order.ErrMissingGroup}, LevelInfo, false)
			return p
		}
		inDomain = func(id string) bool {
			g, ok := c.opts.GroupOf(id)
			return ok && g == group
		}
	}

	sem := c.domain(group)
	if !sem.TryAcquire(1) {
		c.cancel(p, d, Outcome{Group: group, Err: ErrBusy}, LevelWarn, false)
		return p
	}

	siblings := order.Siblings(d.Order, inDomain)
	m, err := order.Resolve(d.ID, siblings, c.ranks.Get)
	if err != nil {
		sem.Release(1)
		level := LevelError
		if errors.Is(err, order.ErrUndeterminable) {
			level = LevelWarn
		}
		c.cancel(p, d, Outcome{Move: m, Group: group, Err: err}, level, false)
		return p
	}

	// local-only: nothing to confirm
	if c.opts.Updater == nil {
		o := c.finish(d, m, group, inDomain)
		sem.Release(1)
		p.resolve(o)
		return p
	}

	c.startBusy()
	p.setState(RequestPending)
	req := remote.NewRequest(m, group)

	go func() {
		var o Outcome
		if err := c.update(ctx, req); err != nil {
			o = c.rollback(d, Outcome{Move: m, Group: group, Err: fmt.Errorf("%w: %w", ErrTransport, err)})
		} else {
			o = c.finish(d, m, group, inDomain)
		}

		c.endBusy()
		sem.Release(1)
		p.resolve(o)
	}()

	return p
}

// update performs the remote request, giving up after the timeout even if the Updater does not.
func (c *Coordinator) update(ctx context.Context, req remote.Request) error {
	reqCtx, cancel := context.WithTimeoutCause(ctx, c.opts.Timeout, ErrTimeout)
	defer cancel()

	resultCh := make(chan error, 1)
	go func() {
		resultCh <- c.opts.Updater.Update(reqCtx, req)
	}()

	var err error
	select {
	case err = <-resultCh:
	case <-reqCtx.Done():
		err = context.Cause(reqCtx)
	}

	if err != nil && context.Cause(reqCtx) == ErrTimeout && !errors.Is(err, ErrTimeout) {
		err = fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

// finish commits the move, or rolls back if the table rejects the writes.
func (c *Coordinator) finish(d Drop, m order.MoveState, group string, inDomain func(string) bool) Outcome {
	updates, err := c.commit(m, inDomain)
	if err != nil {
		return c.rollback(d, Outcome{Move: m, Group: group, Err: err})
	}
	return Outcome{State: Committed, Move: m, Group: group, Updates: updates}
}

// commit applies the move to every row of its domain as one batch, then redraws once.
func (c *Coordinator) commit(m order.MoveState, inDomain func(string) bool) ([]order.Update, error) {
	c.commitLock.Lock()
	defer c.commitLock.Unlock()

	var records []order.Record
	for _, id := range order.Siblings(c.table.IDs(), inDomain) {
		pos, err := c.ranks.Get(id)
		if err != nil {
			return nil, err
		}
		records = append(records, order.Record{ID: id, Position: pos})
	}

	updates := order.Shift(records, m)
	for i, u := range updates {
		if err := c.ranks.Set(u.ID, u.Position); err != nil {
			c.undo(records, updates[:i])
			return nil, err
		}
	}

	c.table.Redraw(true)
	return updates, nil
}

// undo restores the prior ranks of already-written updates.
func (c *Coordinator) undo(records []order.Record, written []order.Update) {
	prior := make(map[string]int, len(records))
	for _, r := range records {
		prior[r.ID] = r.Position
	}
	for _, u := range written {
		if err := c.ranks.Set(u.ID, prior[u.ID]); err != nil {
			log.Printf("couldn't restore rank of %q: %v", u.ID, err)
		}
	}
}

// rollback reverts the dragged row. It notifies regardless of LogLevel.
func (c *Coordinator) rollback(d Drop, o Outcome) Outcome {
	o.State = RolledBack
	c.revert(d)
	c.notify(o.Err.Error(), LevelError, true)
	return o
}

func (c *Coordinator) cancel(p *Pending, d Drop, o Outcome, level Level, always bool) {
	o.State = Cancelled
	c.revert(d)

	msg := "row cannot be moved"
	if errors.Is(o.Err, order.ErrMissingGroup) {
		msg = "grouping row cannot be moved"
	} else if !errors.Is(o.Err, order.ErrUndeterminable) {
		msg += ": " + o.Err.Error()
	}
	c.notify(msg, level, always)

	c.clearBusy()
	p.resolve(o)
}

func (c *Coordinator) revert(d Drop) {
	if d.Revert != nil {
		d.Revert()
	}
}

func (c *Coordinator) notify(msg string, level Level, always bool) {
	if always || level <= c.opts.LogLevel {
		c.opts.Notify(msg, level)
	}
}

func (c *Coordinator) startBusy() {
	c.busyLock.Lock()
	defer c.busyLock.Unlock()

	c.inflight++
	if c.inflight == 1 && c.opts.Busy != nil {
		c.opts.Busy(true)
	}
}

func (c *Coordinator) endBusy() {
	c.busyLock.Lock()
	defer c.busyLock.Unlock()

	c.inflight--
	if c.inflight == 0 && c.opts.Busy != nil {
		c.opts.Busy(false)
	}
}

// clearBusy ends the busy indicator unless a request is in flight.
func (c *Coordinator) clearBusy() {
	c.busyLock.Lock()
	defer c.busyLock.Unlock()

	if c.inflight == 0 && c.opts.Busy != nil {
		c.opts.Busy(false)
	}
}

// domain returns the lock for the given group's ordering domain.
func (c *Coordinator) domain(group string) *semaphore.Weighted {
	c.domainLock.Lock()
	defer c.domainLock.Unlock()

	sem, ok := c.domains[group]
	if !ok {
		sem = semaphore.NewWeighted(1)
		c.domains[group] = sem
	}
	return sem
}
