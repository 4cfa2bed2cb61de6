package cloud

import (
	"time"

	"tracker-agent/internal/config"
)

// backoffSchedule computes successive retry delays from the
// BACKOFF_* configuration, supporting a linear or exponential strategy choice.
type backoffSchedule struct {
	strategy string
	base     time.Duration
	max      time.Duration
	attempt  int
}

func newBackoffSchedule(cfg *config.Config) *backoffSchedule {
	return &backoffSchedule{
		strategy: cfg.Backoff.Strategy,
		base:     cfg.Backoff.Base,
		max:      cfg.Backoff.Max,
	}
}

// next returns the delay before the next connect attempt and advances the
// schedule. reset() should be called once a connect attempt succeeds.
func (s *backoffSchedule) next() time.Duration {
	var d time.Duration

	switch s.strategy {
	case config.BackoffLinear:
		d = s.base * time.Duration(s.attempt+1)
	default: // exponential
		d = s.base << s.attempt
	}

	if d > s.max || d <= 0 {
		d = s.max
	}

	s.attempt++
	return d
}

func (s *backoffSchedule) reset() {
	s.attempt = 0
}
