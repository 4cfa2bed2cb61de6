// Package supervisor implements the liveness watchdog: every long-running
// task registers a wait budget and a
// processing budget, feeds the supervisor before each phase, and the
// supervisor's fatal handler fires the moment either budget is blown.
//
//go:generate mockgen -source=supervisor.go -destination=supervisor_mock.go -package=supervisor
package supervisor

import (
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"

	"tracker-agent/internal/app/apperrors"
	"tracker-agent/internal/config/logger"
)

// FatalHandler is invoked, naming the offending task, when a registered
// task's timer elapses without being fed. It runs on the task's own timer
// goroutine; implementations that need to terminate the process should do
// so without blocking (e.g. schedule a reboot and return).
type FatalHandler func(taskName string, err error)

// RebootFunc performs the actual process-level reboot/restart once a fatal
// overrun has been reported. Production wiring passes the real restart
// hook; tests pass a func that just records the call.
type RebootFunc func(taskName string)

// Supervisor tracks registered tasks and enforces their budgets.
type Supervisor interface {
	// Register validates budget_ms = waitBudget + processingBudget against
	// the configured constraints and returns a Task the caller feeds.
	Register(name string, waitBudget, processingBudget time.Duration) (*Task, error)
	// Unregister stops watching name, e.g. on graceful task shutdown.
	Unregister(name string)
}

type supervisor struct {
	mu     sync.Mutex
	tasks  map[string]*Task
	log    logger.Logger
	fatal  FatalHandler
	reboot RebootFunc
}

// New creates a Supervisor. When a task overruns its budget the supervisor
// logs it, reports it to Sentry, then calls reboot for the actual restart.
func New(log logger.Logger, reboot RebootFunc) Supervisor {
	s := &supervisor{
		tasks:  make(map[string]*Task),
		log:    log,
		reboot: reboot,
	}
	s.fatal = s.onFatal
	return s
}

func (s *supervisor) onFatal(taskName string, err error) {
	s.log.Error().Str("task", taskName).Err(err).Msg("watchdog budget exceeded")

	sentry.CaptureException(fmt.Errorf("%s: %w", taskName, err))

	if s.reboot != nil {
		s.reboot(taskName)
	}
}

// Register validates the following constraints:
//
//	wait_budget > 0
//	processing_budget > 0
//	wait_budget + processing_budget <= budget_ms (trivially true here,
//	    since budget_ms is derived as their sum)
//	processing_budget < budget_ms strictly
func (s *supervisor) Register(name string, waitBudget, processingBudget time.Duration) (*Task, error) {
	budgetMs := waitBudget + processingBudget

	if waitBudget <= 0 || processingBudget <= 0 || processingBudget >= budgetMs {
		return nil, apperrors.ErrInvalidWatchdogBudget
	}

	t := &Task{
		name:             name,
		waitBudget:       waitBudget,
		processingBudget: processingBudget,
		fatal:            s.fatal,
	}
	t.timer = time.AfterFunc(waitBudget, t.fire)

	s.mu.Lock()
	s.tasks[name] = t
	s.mu.Unlock()

	s.log.Debug().Str("task", name).Dur("wait_budget", waitBudget).Dur("processing_budget", processingBudget).Msg("task registered")

	return t, nil
}

func (s *supervisor) Unregister(name string) {
	s.mu.Lock()
	t, ok := s.tasks[name]
	delete(s.tasks, name)
	s.mu.Unlock()

	if ok {
		t.stop()
	}
}
