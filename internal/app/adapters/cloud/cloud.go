// Package cloud implements the CLOUD channel collaborator:
// it connects once the modem reports NETWORK.CONNECTED, retrying
// with a configurable backoff schedule, and forwards shadow polls and
// payload sends to the cloud Driver.
package cloud

import (
	"time"

	"tracker-agent/internal/app/bus"
	"tracker-agent/internal/app/supervisor"
	"tracker-agent/internal/config"
	"tracker-agent/internal/config/logger"
)

// Driver is the cloud transport the adapter calls into.
type Driver interface {
	Connect() error
	Disconnect()
	SendPayload(data []byte) error
	PollShadow() ([]byte, error)
}

const pollInterval = 500 * time.Millisecond

// Adapter is the CLOUD channel task.
type Adapter struct {
	driver         Driver
	backoff        *backoffSchedule
	b              bus.Bus
	sub            *bus.Subscriber
	task           *supervisor.Task
	publishTimeout time.Duration
	log            logger.Logger

	retryCancel chan struct{}
}

// New builds the cloud adapter and subscribes it to NETWORK, CLOUD and STORAGE.
func New(cfg *config.Config, b bus.Bus, sup supervisor.Supervisor, log logger.Logger, driver Driver) (*Adapter, error) {
	a := &Adapter{
		driver:         driver,
		backoff:        newBackoffSchedule(cfg),
		b:              b,
		publishTimeout: cfg.Bus.PublishTimeout,
		log:            log,
	}

	a.sub = bus.NewSubscriber("cloud", cfg.Bus.QueueDepth)
	b.Subscribe(a.sub, bus.ChanNetwork, bus.ChanCloud, bus.ChanStorage)

	if sup != nil {
		processing := cfg.Watchdog.MsgProcessingTimeout
		wait := cfg.Watchdog.TimeoutSec - processing
		task, err := sup.Register("cloud", wait, processing)
		if err != nil {
			return nil, err
		}
		a.task = task
	}

	return a, nil
}

// Run consumes NETWORK/CLOUD/STORAGE channel messages until stop closes.
func (a *Adapter) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			a.stopRetry()
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

		a.handle(msg)
	}
}

func (a *Adapter) handle(msg bus.Message) {
	switch {
	case msg.Channel == bus.ChanNetwork && msg.Type == bus.MsgNetworkConnected:
		a.connectWithBackoff()

	case msg.Channel == bus.ChanNetwork && msg.Type == bus.MsgNetworkDisconnected:
		a.stopRetry()
		a.driver.Disconnect()
		a.publish(bus.MsgCloudDisconnected, nil)

	case msg.Channel == bus.ChanCloud && msg.Type == bus.MsgCloudPollShadow:
		data, err := a.driver.PollShadow()
		if err != nil {
			a.log.Warn().Err(err).Msg("shadow poll failed")
			return
		}
		if data != nil {
			a.publish(bus.MsgCloudShadowResponse, data)
		}

	case msg.Channel == bus.ChanStorage && msg.Type == bus.MsgStorageBatchAvailable:
		a.sendPayload(msg.Data)
	}
}

// connectWithBackoff retries Connect on its own goroutine so Run keeps
// serving other messages (e.g. a DISCONNECT that should cancel the retry).
func (a *Adapter) connectWithBackoff() {
	a.stopRetry()
	cancel := make(chan struct{})
	a.retryCancel = cancel

	go func() {
		for {
			if err := a.driver.Connect(); err == nil {
				a.backoff.reset()
				a.publish(bus.MsgCloudConnected, nil)
				return
			}

			select {
			case <-time.After(a.backoff.next()):
			case <-cancel:
				return
			}
		}
	}()
}

func (a *Adapter) stopRetry() {
	if a.retryCancel != nil {
		close(a.retryCancel)
		a.retryCancel = nil
	}
}

func (a *Adapter) sendPayload(data interface{}) {
	payload, ok := data.([]byte)
	if !ok {
		return
	}
	if err := a.driver.SendPayload(payload); err != nil {
		a.log.Warn().Err(err).Msg("cloud payload send failed")
	}
}

func (a *Adapter) publish(t bus.MessageType, data interface{}) {
	if err := a.b.Publish(bus.ChanCloud, t, data, a.publishTimeout); err != nil {
		a.log.Warn().Err(err).Msg("cloud publish failed")
	}
}
