// Package led implements the LED channel collaborator:
// it consumes indicator messages published by the state machine and
// drives an injectable LED driver, with no real PWM/GPIO control.
package led

import (
	"time"

	"tracker-agent/internal/app/bus"
	"tracker-agent/internal/app/supervisor"
	"tracker-agent/internal/config"
	"tracker-agent/internal/config/logger"
)

// Indicator is the visual pattern the LED should show.
type Indicator int

const (
	IndicatorOff Indicator = iota
	IndicatorSampling
	IndicatorWaiting
)

// Driver drives the physical indicator.
type Driver interface {
	Set(Indicator) error
}

// Adapter is the LED channel task.
type Adapter struct {
	driver Driver
	b      bus.Bus
	sub    *bus.Subscriber
	task   *supervisor.Task
	log    logger.Logger
}

// New builds the LED adapter and subscribes it to the LED channel.
func New(cfg *config.Config, b bus.Bus, sup supervisor.Supervisor, log logger.Logger, driver Driver) (*Adapter, error) {
	a := &Adapter{
		driver: driver,
		b:      b,
		log:    log,
	}

	a.sub = bus.NewSubscriber("led", cfg.Bus.QueueDepth)
	b.Subscribe(a.sub, bus.ChanLED)

	if sup != nil {
		processing := cfg.Watchdog.MsgProcessingTimeout
		wait := cfg.Watchdog.TimeoutSec - processing
		task, err := sup.Register("led", wait, processing)
		if err != nil {
			return nil, err
		}
		a.task = task
	}

	return a, nil
}

// Run consumes LED channel messages until stop is closed.
func (a *Adapter) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}

		if a.task != nil {
			a.task.FeedWait()
		}

		msg, err := a.b.Wait(a.sub, 500*time.Millisecond)
		if err != nil {
			continue
		}

		if a.task != nil {
			a.task.FeedProcessing()
		}

		a.handle(msg)
	}
}

func (a *Adapter) handle(msg bus.Message) {
	var indicator Indicator
	switch msg.Type {
	case bus.MsgLEDIndicatorSampling:
		indicator = IndicatorSampling
	case bus.MsgLEDIndicatorWaiting:
		indicator = IndicatorWaiting
	case bus.MsgLEDIndicatorOff:
		indicator = IndicatorOff
	default:
		return
	}

	if err := a.driver.Set(indicator); err != nil {
		a.log.Warn().Err(err).Msg("led set failed")
	}
}
