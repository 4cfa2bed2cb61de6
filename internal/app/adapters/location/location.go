// Package location implements the LOCATION channel collaborator:
// a minimal request/response facade in front of an
// injectable GNSS driver, with no real satellite-fix math (out of scope).
package location

import (
	"sync"
	"time"

	"tracker-agent/internal/app/bus"
	"tracker-agent/internal/app/supervisor"
	"tracker-agent/internal/config"
	"tracker-agent/internal/config/logger"
)

// Fix is a single resolved position.
type Fix struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
}

// Driver performs the actual GNSS search. Search blocks until a fix is
// found, stop is signalled, or the driver times out on its own.
type Driver interface {
	Search(stop <-chan struct{}) (Fix, error)
}

// Adapter is the LOCATION channel task.
type Adapter struct {
	driver         Driver
	b              bus.Bus
	sub            *bus.Subscriber
	task           *supervisor.Task
	publishTimeout time.Duration
	log            logger.Logger

	mu         sync.Mutex
	searching  bool
	cancelChan chan struct{}
}

// New builds the location adapter and subscribes it to the LOCATION channel.
func New(cfg *config.Config, b bus.Bus, sup supervisor.Supervisor, log logger.Logger, driver Driver) (*Adapter, error) {
	a := &Adapter{
		driver:         driver,
		b:              b,
		publishTimeout: cfg.Bus.PublishTimeout,
		log:            log,
	}

	a.sub = bus.NewSubscriber("location", cfg.Bus.QueueDepth)
	b.Subscribe(a.sub, bus.ChanLocation)

	if sup != nil {
		processing := cfg.Watchdog.MsgProcessingTimeout
		wait := cfg.Watchdog.TimeoutSec - processing
		task, err := sup.Register("location", wait, processing)
		if err != nil {
			return nil, err
		}
		a.task = task
	}

	return a, nil
}

// Run consumes LOCATION channel messages until stop is closed.
func (a *Adapter) Run(stop <-chan struct{}) {
	for {
		if a.task != nil {
			a.task.FeedWait()
		}

		msg, err := a.b.Wait(a.sub, 500*time.Millisecond)
		if err != nil {
			select {
			case <-stop:
				a.cancelSearch()
				return
			default:
				continue
			}
		}

		if a.task != nil {
			a.task.FeedProcessing()
		}

		a.handle(msg)
	}
}

func (a *Adapter) handle(msg bus.Message) {
	switch msg.Type {
	case bus.MsgLocationSearchTrigger:
		a.startSearch()
	case bus.MsgLocationSearchCancel:
		a.cancelSearch()
	case bus.MsgLocationCloudRequest, bus.MsgLocationAGNSSRequest:
		// Minimal facade: acknowledge the request was received. A real
		// driver would fetch assistance data here; out of scope.
	}
}

func (a *Adapter) startSearch() {
	a.mu.Lock()
	if a.searching {
		a.mu.Unlock()
		return
	}
	a.searching = true
	cancel := make(chan struct{})
	a.cancelChan = cancel
	a.mu.Unlock()

	a.publish(bus.MsgLocationSearchStarted, nil)

	go a.runSearch(cancel)
}

func (a *Adapter) runSearch(cancel <-chan struct{}) {
	fix, err := a.driver.Search(cancel)

	a.mu.Lock()
	a.searching = false
	a.mu.Unlock()

	if err != nil {
		a.log.Warn().Err(err).Msg("location search failed")
		a.publish(bus.MsgLocationSearchDone, nil)
		return
	}

	a.publish(bus.MsgLocationGNSSData, fix)
	a.publish(bus.MsgLocationSearchDone, nil)
}

func (a *Adapter) cancelSearch() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.searching {
		return
	}
	close(a.cancelChan)
	a.searching = false
}

func (a *Adapter) publish(t bus.MessageType, data interface{}) {
	if err := a.b.Publish(bus.ChanLocation, t, data, a.publishTimeout); err != nil {
		a.log.Warn().Err(err).Msg("location publish failed")
	}
}
