package game

import (
	"sync"
	"time"
)

// NumberCaller drives the call cadence for one room. The ticker runs
// on its own goroutine, but every tick is dispatched into the
// registry's task loop, so the caller is never a parallel writer of
// room state. Cancel may be called from any goroutine, any number of
// times.
type NumberCaller struct {
	interval time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

func newNumberCaller(interval time.Duration) *NumberCaller {
	return &NumberCaller{
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// run ticks until cancelled. tick itself cancels the caller once the
// room is exhausted, finished or gone, which wakes this loop.
func (c *NumberCaller) run(dispatch func(func()), tick func()) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			dispatch(tick)
		}
	}
}

// Cancel stops the cadence. Safe to call more than once.
func (c *NumberCaller) Cancel() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

// Cancelled reports whether Cancel has been called.
func (c *NumberCaller) Cancelled() bool {
	select {
	case <-c.stop:
		return true
	default:
		return false
	}
}
