package remote

import (
	"fmt"

	"golang.org/x/time/rate"
)

// LimitConfig limits how often a Store accepts moves through one handler or socket.
// Rate is in moves per second. A nil LimitConfig accepts every move.
type LimitConfig struct {
	Burst int        `json:"burst"`
	Rate  rate.Limit `json:"rate"`
}

// moveGate admits moves at the configured rate.
type moveGate struct {
	limiter *rate.Limiter
}

func (lc *LimitConfig) gate() *moveGate {
	if lc == nil {
		return &moveGate{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	return &moveGate{limiter: rate.NewLimiter(lc.Rate, lc.Burst)}
}

// admit returns ErrExcessTraffic if the move arrives before the gate has capacity for it.
func (g *moveGate) admit(req Request) error {
	if g.limiter.Allow() {
		return nil
	}
	return fmt.Errorf("%w: move of %q refused, limit is %v/s burst %d", ErrExcessTraffic, req.ID, g.limiter.Limit(), g.limiter.Burst())
}
