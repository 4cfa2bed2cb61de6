// Package environmental implements the ENVIRONMENTAL channel collaborator
// package: a minimal request/response facade over an injectable
// temperature/humidity driver.
package environmental

import (
	"time"

	"tracker-agent/internal/app/bus"
	"tracker-agent/internal/app/supervisor"
	"tracker-agent/internal/config"
	"tracker-agent/internal/config/logger"
)

// Reading is a single environmental sample.
type Reading struct {
	TemperatureC float64
	HumidityPct  float64
}

// Driver reads the sensor.
type Driver interface {
	Read() (Reading, error)
}

// Adapter is the ENVIRONMENTAL channel task.
type Adapter struct {
	driver         Driver
	b              bus.Bus
	sub            *bus.Subscriber
	task           *supervisor.Task
	publishTimeout time.Duration
	log            logger.Logger
}

// New builds the environmental adapter and subscribes it to the channel.
func New(cfg *config.Config, b bus.Bus, sup supervisor.Supervisor, log logger.Logger, driver Driver) (*Adapter, error) {
	a := &Adapter{
		driver:         driver,
		b:              b,
		publishTimeout: cfg.Bus.PublishTimeout,
		log:            log,
	}

	a.sub = bus.NewSubscriber("environmental", cfg.Bus.QueueDepth)
	b.Subscribe(a.sub, bus.ChanEnvironmental)

	if sup != nil {
		processing := cfg.Watchdog.MsgProcessingTimeout
		wait := cfg.Watchdog.TimeoutSec - processing
		task, err := sup.Register("environmental", wait, processing)
		if err != nil {
			return nil, err
		}
		a.task = task
	}

	return a, nil
}

// Run consumes ENVIRONMENTAL channel sample requests until stop is closed.
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

		if msg.Type == bus.MsgSensorSampleRequest {
			a.sample()
		}
	}
}

func (a *Adapter) sample() {
	reading, err := a.driver.Read()
	if err != nil {
		a.log.Warn().Err(err).Msg("environmental read failed")
		return
	}

	if err := a.b.Publish(bus.ChanEnvironmental, bus.MsgSensorResponse, reading, a.publishTimeout); err != nil {
		a.log.Warn().Err(err).Msg("environmental publish failed")
	}
}
