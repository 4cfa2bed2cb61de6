// Package power implements the BATTERY channel collaborator:
// it answers SAMPLE_REQUEST with a reading from the power Driver and
// keeps a bounded circular buffer of recent readings to flag battery
// drain. A reading is taken only when a SAMPLE_REQUEST arrives.
package power

import (
	"time"

	"tracker-agent/internal/app/bus"
	"tracker-agent/internal/app/supervisor"
	"tracker-agent/internal/config"
	"tracker-agent/internal/config/logger"
)

// Reading is a single battery/thermal sample.
type Reading struct {
	PercentRemaining float64
	TemperatureC     float64
}

// Driver reads the PMIC/fuel-gauge state. The bench Driver reads host
// stats via gopsutil as a stand-in for the real hardware register reads.
type Driver interface {
	Read() (Reading, error)
}

const pollInterval = 500 * time.Millisecond

// drainWindow bounds how many readings the adapter keeps to compute a
// drain rate; this buffer is power-adapter-local state, not part of the
// shared storage engine's retention rings.
const drainWindow = 16

// Adapter is the BATTERY channel task.
type Adapter struct {
	driver         Driver
	history        []Reading
	b              bus.Bus
	sub            *bus.Subscriber
	task           *supervisor.Task
	publishTimeout time.Duration
	log            logger.Logger
}

// New builds the power adapter and subscribes it to the BATTERY channel.
func New(cfg *config.Config, b bus.Bus, sup supervisor.Supervisor, log logger.Logger, driver Driver) (*Adapter, error) {
	a := &Adapter{
		driver:         driver,
		history:        make([]Reading, 0, drainWindow),
		b:              b,
		publishTimeout: cfg.Bus.PublishTimeout,
		log:            log,
	}

	a.sub = bus.NewSubscriber("power", cfg.Bus.QueueDepth)
	b.Subscribe(a.sub, bus.ChanBattery)

	if sup != nil {
		processing := cfg.Watchdog.MsgProcessingTimeout
		wait := cfg.Watchdog.TimeoutSec - processing
		task, err := sup.Register("power", wait, processing)
		if err != nil {
			return nil, err
		}
		a.task = task
	}

	return a, nil
}

// Run consumes BATTERY channel sample requests until stop is closed.
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

		msg, err := a.b.Wait(a.sub, pollInterval)
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
		a.log.Warn().Err(err).Msg("power read failed")
		return
	}

	a.record(reading)

	if err := a.b.Publish(bus.ChanBattery, bus.MsgSensorResponse, reading, a.publishTimeout); err != nil {
		a.log.Warn().Err(err).Msg("power publish failed")
	}

	if rate, ok := a.drainRate(); ok && rate > 0 {
		a.log.Debug().Msg("battery draining")
		_ = rate
	}
}

// record appends reading to the bounded history, dropping the oldest
// sample once drainWindow is exceeded.
func (a *Adapter) record(r Reading) {
	if len(a.history) == drainWindow {
		a.history = append(a.history[1:], r)
		return
	}
	a.history = append(a.history, r)
}

// drainRate returns percent lost per sample over the current window; ok
// is false until at least two readings are recorded.
func (a *Adapter) drainRate() (float64, bool) {
	if len(a.history) < 2 {
		return 0, false
	}
	first := a.history[0]
	last := a.history[len(a.history)-1]
	return (first.PercentRemaining - last.PercentRemaining) / float64(len(a.history)-1), true
}
