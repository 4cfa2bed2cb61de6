// Package network implements the NETWORK channel collaborator:
// a thin task that turns CONNECT/DISCONNECT/SYSTEM_MODE_*
// requests into modem driver calls and republishes their outcome.
package network

import (
	"time"

	"tracker-agent/internal/app/bus"
	"tracker-agent/internal/app/supervisor"
	"tracker-agent/internal/config"
	"tracker-agent/internal/config/logger"
)

// Driver is the modem interface the adapter calls into; production wiring
// plugs in the real modem control, tests supply a fake.
type Driver interface {
	Connect() error
	Disconnect() error
	SetSystemMode(mode string) (string, error)
}

const pollInterval = 500 * time.Millisecond

// Adapter is the NETWORK channel task.
type Adapter struct {
	driver         Driver
	b              bus.Bus
	sub            *bus.Subscriber
	task           *supervisor.Task
	publishTimeout time.Duration
	log            logger.Logger
}

// New builds the network adapter and subscribes it to the NETWORK channel.
func New(cfg *config.Config, b bus.Bus, sup supervisor.Supervisor, log logger.Logger, driver Driver) (*Adapter, error) {
	a := &Adapter{
		driver:         driver,
		b:              b,
		publishTimeout: cfg.Bus.PublishTimeout,
		log:            log,
	}

	a.sub = bus.NewSubscriber("network", cfg.Bus.QueueDepth)
	b.Subscribe(a.sub, bus.ChanNetwork)

	if sup != nil {
		processing := cfg.Watchdog.MsgProcessingTimeout
		wait := cfg.Watchdog.TimeoutSec - processing
		task, err := sup.Register("network", wait, processing)
		if err != nil {
			return nil, err
		}
		a.task = task
	}

	return a, nil
}

// Run consumes NETWORK channel requests until stop is closed.
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

		a.handle(msg)
	}
}

func (a *Adapter) handle(msg bus.Message) {
	if msg.Channel != bus.ChanNetwork {
		return
	}

	switch msg.Type {
	case bus.MsgNetworkConnect:
		if err := a.driver.Connect(); err != nil {
			a.log.Warn().Err(err).Msg("modem connect failed")
			return
		}
		a.publish(bus.MsgNetworkConnected, nil)

	case bus.MsgNetworkDisconnect:
		if err := a.driver.Disconnect(); err != nil {
			a.log.Warn().Err(err).Msg("modem disconnect failed")
			return
		}
		a.publish(bus.MsgNetworkDisconnected, nil)

	case bus.MsgNetworkSystemModeSetLTEM:
		a.setSystemMode("LTEM")
	case bus.MsgNetworkSystemModeSetNBIOT:
		a.setSystemMode("NBIOT")

	case bus.MsgNetworkSystemModeRequest:
		mode, err := a.driver.SetSystemMode("")
		if err != nil {
			a.log.Warn().Err(err).Msg("system mode query failed")
			return
		}
		a.publish(bus.MsgNetworkSystemModeResponse, mode)
	}
}

func (a *Adapter) setSystemMode(mode string) {
	applied, err := a.driver.SetSystemMode(mode)
	if err != nil {
		a.log.Warn().Err(err).Str("mode", mode).Msg("system mode switch failed")
		return
	}
	a.publish(bus.MsgNetworkSystemModeResponse, applied)
}

func (a *Adapter) publish(t bus.MessageType, data interface{}) {
	if err := a.b.Publish(bus.ChanNetwork, t, data, a.publishTimeout); err != nil {
		a.log.Warn().Err(err).Msg("network publish failed")
	}
}
