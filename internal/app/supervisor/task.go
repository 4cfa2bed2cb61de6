package supervisor

import (
	"fmt"
	"sync"
	"time"

	"tracker-agent/internal/app/apperrors"
)

type phase int

const (
	phaseWait phase = iota
	phaseProcessing
)

// Task is a single registered long-running task's watchdog handle. A task
// calls FeedWait before blocking on its next event and FeedProcessing once
// it starts handling one; either call resets the fire timer to that
// phase's budget.
type Task struct {
	name             string
	waitBudget       time.Duration
	processingBudget time.Duration
	fatal            FatalHandler

	mu      sync.Mutex
	timer   *time.Timer
	current phase
	stopped bool
}

// Feed is sugar for FeedWait: call it before each wait.
func (t *Task) Feed() {
	t.FeedWait()
}

// FeedWait resets the watchdog to the task's wait budget.
func (t *Task) FeedWait() {
	t.reset(phaseWait, t.waitBudget)
}

// FeedProcessing resets the watchdog to the task's processing budget. Call
// this once the task has actually received an event and begins acting on
// it, so a slow handler is held to the tighter processing budget instead
// of the (typically longer) wait budget.
func (t *Task) FeedProcessing() {
	t.reset(phaseProcessing, t.processingBudget)
}

func (t *Task) reset(p phase, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}

	t.current = p
	if !t.timer.Stop() {
		select {
		case <-t.timer.C:
		default:
		}
	}
	t.timer.Reset(d)
}

func (t *Task) fire() {
	t.mu.Lock()
	stopped := t.stopped
	p := t.current
	t.mu.Unlock()

	if stopped {
		return
	}

	var err error
	if p == phaseProcessing {
		err = fmt.Errorf("%w: processing phase", apperrors.ErrBudgetExceeded)
	} else {
		err = fmt.Errorf("%w: wait phase", apperrors.ErrBudgetExceeded)
	}

	t.fatal(t.name, err)
}

func (t *Task) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}
	t.stopped = true
	t.timer.Stop()
}
