// Package button implements the BUTTON channel collaborator:
// it polls an injectable GPIO driver for press events and
// publishes PRESS_SHORT/PRESS_LONG to the state machine.
package button

import (
	"time"

	"tracker-agent/internal/app/bus"
	"tracker-agent/internal/app/supervisor"
	"tracker-agent/internal/config"
	"tracker-agent/internal/config/logger"
)

// Press distinguishes the duration class of a press event.
type Press int

const (
	// PressNone means no event occurred on this poll.
	PressNone Press = iota
	PressShort
	PressLong
)

// Driver polls the physical button. Poll returns PressNone when nothing
// has happened since the last call.
type Driver interface {
	Poll() (Press, error)
}

const pollInterval = 100 * time.Millisecond

// Adapter is the BUTTON channel task.
type Adapter struct {
	driver         Driver
	b              bus.Bus
	task           *supervisor.Task
	publishTimeout time.Duration
	log            logger.Logger
}

// New builds the button adapter.
func New(cfg *config.Config, b bus.Bus, sup supervisor.Supervisor, log logger.Logger, driver Driver) (*Adapter, error) {
	a := &Adapter{
		driver:         driver,
		b:              b,
		publishTimeout: cfg.Bus.PublishTimeout,
		log:            log,
	}

	if sup != nil {
		processing := cfg.Watchdog.MsgProcessingTimeout
		wait := cfg.Watchdog.TimeoutSec - processing
		task, err := sup.Register("button", wait, processing)
		if err != nil {
			return nil, err
		}
		a.task = task
	}

	return a, nil
}

// Run polls the button driver on a fixed cadence until stop is closed.
func (a *Adapter) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if a.task != nil {
			a.task.FeedWait()
		}

		select {
		case <-stop:
			return
		case <-ticker.C:
			if a.task != nil {
				a.task.FeedProcessing()
			}
			a.poll()
		}
	}
}

func (a *Adapter) poll() {
	press, err := a.driver.Poll()
	if err != nil {
		a.log.Warn().Err(err).Msg("button poll failed")
		return
	}

	var msgType bus.MessageType
	switch press {
	case PressShort:
		msgType = bus.MsgButtonPressShort
	case PressLong:
		msgType = bus.MsgButtonPressLong
	default:
		return
	}

	if err := a.b.Publish(bus.ChanButton, msgType, nil, a.publishTimeout); err != nil {
		a.log.Warn().Err(err).Msg("button publish failed")
	}
}
