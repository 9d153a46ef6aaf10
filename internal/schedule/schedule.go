// Package schedule runs a function periodically in the background, with a single explicit
// call to tear it down.
package schedule

import (
	"context"
	"time"
)

// Task is a scheduled, repeating function. It owns the cancellation of everything it scheduled.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Every calls fn once after initialDelay and then every interval, both counted from now, until
// the task is stopped or ctx is done. fn is never called concurrently with itself; ticks that fall
// due while fn is still running are dropped. The context passed to fn is canceled on Stop.
// Every panics if interval is not positive.
func Every(ctx context.Context, initialDelay, interval time.Duration, fn func(context.Context)) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	initial := time.NewTimer(initialDelay)
	ticker := time.NewTicker(interval)

	go func() {
		defer close(t.done)
		defer initial.Stop()
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-initial.C:
			case <-ticker.C:
			}

			// Stop may have raced with a tick.
			if ctx.Err() != nil {
				return
			}
			fn(ctx)
		}
	}()

	return t
}

// Stop cancels the delayed first run and all future runs, and waits for a run in progress to return.
// After Stop returns, fn is not called again. Stop is safe to call multiple times.
func (t *Task) Stop() {
	t.cancel()
	<-t.done
}

// Done is closed once the task has stopped, either through Stop or through cancellation of its parent context.
func (t *Task) Done() <-chan struct{} {
	return t.done
}
