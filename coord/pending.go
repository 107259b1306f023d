package coord

import (
	"context"
	"sync"
	"sync/atomic"
)

// Pending is the in-flight result of a Drop.
type Pending struct {
	state   atomic.Int32
	doneCh  chan struct{}
	outcome Outcome
	once    sync.Once
}

func newPending() *Pending {
	p := &Pending{doneCh: make(chan struct{})}
	p.state.Store(int32(Resolving))
	return p
}

// State returns the current state of the drop.
func (p *Pending) State() State {
	return State(p.state.Load())
}

// Done is closed once the drop has resolved.
func (p *Pending) Done() <-chan struct{} {
	return p.doneCh
}

// Wait waits for the drop to resolve. Returns the context error if it cancels first.
func (p *Pending) Wait(ctx context.Context) (o Outcome, err error) {
	select {
	case <-ctx.Done():
		return Outcome{State: p.State()}, ctx.Err()
	case <-p.doneCh:
	}
	return p.outcome, nil
}

// Sync returns the outcome immediately, or false if the drop has not yet resolved.
func (p *Pending) Sync() (o Outcome, ok bool) {
	select {
	case <-p.doneCh:
	default:
		return
	}
	return p.outcome, true
}

func (p *Pending) setState(s State) {
	p.state.Store(int32(s))
}

func (p *Pending) resolve(o Outcome) {
	// ignore additional calls
	p.once.Do(func() {
		p.outcome = o
		p.state.Store(int32(o.State))
		close(p.doneCh)
	})
}
