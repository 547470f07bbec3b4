package engine

import (
	"time"

	"github.com/efreitasn/limitbook/internal/domain"
)

// SweepState is the lifecycle state of the good_for_day expiry sweeper.
type SweepState int32

const (
	// SweepRunning: the sweeper is collecting and cancelling expired orders.
	SweepRunning SweepState = iota
	// SweepAwaitingBoundary: the sweeper is waiting for the next daily
	// boundary or a shutdown signal, whichever comes first.
	SweepAwaitingBoundary
	// SweepShutdown: the sweeper has exited. Terminal.
	SweepShutdown
)

func (s SweepState) String() string {
	switch s {
	case SweepRunning:
		return "running"
	case SweepAwaitingBoundary:
		return "awaiting_next_boundary"
	case SweepShutdown:
		return "shutdown"
	}
	return "unknown"
}

// SweeperState returns the sweeper's current state.
func (b *Orderbook) SweeperState() SweepState {
	return SweepState(b.sweepState.Load())
}

func (b *Orderbook) setSweepState(s SweepState) {
	b.sweepState.Store(int32(s))
}

// pruneGoodForDay runs for the lifetime of the book: wait until the next
// daily boundary (or shutdown), cancel every resting good_for_day order
// in one batch, repeat. The book lock is never held while waiting.
func (b *Orderbook) pruneGoodForDay() {
	defer b.wg.Done()
	defer b.setSweepState(SweepShutdown)

	for {
		// Shutdown is observed both here and by the wait below.
		select {
		case <-b.done:
			return
		default:
		}

		b.setSweepState(SweepAwaitingBoundary)
		timer := time.NewTimer(b.untilNextBoundary(b.now()))

		select {
		case <-b.done:
			timer.Stop()
			return
		case <-timer.C:
		}

		b.setSweepState(SweepRunning)
		b.CancelOrders(b.collectGoodForDayIDs())
	}
}

// collectGoodForDayIDs snapshots the ids of all resting good_for_day
// orders under the lock. Cancellation happens afterwards through the
// batch path, which takes the lock once for the whole batch.
func (b *Orderbook) collectGoodForDayIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var ids []string
	for id, e := range b.orders {
		if e.order.Type == domain.OrderTypeGoodForDay {
			ids = append(ids, id)
		}
	}
	return ids
}

// untilNextBoundary returns how long the sweeper should wait: time until
// the next daily boundary plus the safety margin.
func (b *Orderbook) untilNextBoundary(now time.Time) time.Duration {
	return nextBoundary(now, b.expiryHour, b.loc).Sub(now) + b.expiryMargin
}

// nextBoundary computes the next occurrence of the given wall-clock hour
// in loc, strictly after now.
func nextBoundary(now time.Time, hour int, loc *time.Location) time.Time {
	local := now.In(loc)
	boundary := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if !boundary.After(local) {
		boundary = boundary.AddDate(0, 0, 1)
	}
	return boundary
}
