// Package retry implements the fixed-interval polling used for asynchronous
// platform operations: attempt, wait, attempt again, until the work is done
// or a budget runs out.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
)

// ErrExhausted signals that a polling budget (attempts or wall clock) was
// spent before the operation reached a terminal state. Callers translate it
// into their own timeout error.
var ErrExhausted = errors.New("retry budget exhausted")

// Policy bounds one polling loop. Zero MaxAttempts or MaxElapsed means that
// budget is not enforced; at least one of them should be set.
type Policy struct {
	Interval    time.Duration
	MaxAttempts int
	MaxElapsed  time.Duration
}

// Func is one poll attempt. Returning done stops the loop successfully; a
// non-nil error aborts it immediately. Attempts that should be retried in
// spite of a transient failure must swallow the error themselves.
type Func func(ctx context.Context) (done bool, err error)

// Do runs fn immediately and then once per Interval until fn reports done,
// fn fails, ctx is cancelled, or the policy budget is exhausted. The elapsed
// budget is wall clock measured from the first attempt, independent of how
// long individual attempts take.
func Do(ctx context.Context, clock clockwork.Clock, p Policy, fn Func) error {
	start := clock.Now()

	for attempt := 1; ; attempt++ {
		done, err := fn(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
			return ErrExhausted
		}
		if p.MaxElapsed > 0 && clock.Since(start) >= p.MaxElapsed {
			return ErrExhausted
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clock.After(p.Interval):
		}
	}
}
