// Package appfsm implements the hierarchical application state machine
// for the tracker: one *fsm.FSM per level of the state tree, composed by
// Machine.Dispatch. RUNNING-level messages (FOTA entry, storage-mode
// confirmations) are matched first; any other message is offered to the
// active leaf and then to each enclosing level until one claims it.
package appfsm

import (
	"context"
	"time"

	"github.com/looplab/fsm"

	"tracker-agent/internal/app/apperrors"
	"tracker-agent/internal/app/bus"
	"tracker-agent/internal/app/shadow"
	"tracker-agent/internal/app/storage"
	"tracker-agent/internal/app/supervisor"
	cfgpkg "tracker-agent/internal/config"
	"tracker-agent/internal/config/logger"
)

// RebootFunc performs the process-level cold reboot FOTA_REBOOTING and the
// shadow REBOOT command both end in.
type RebootFunc func(reason string)

// Machine is the hierarchical application state machine.
type Machine struct {
	ctx *Context
	cfg *cfgpkg.Config
	log logger.Logger

	root       *fsm.FSM
	runningFSM *fsm.FSM
	connFSM    *fsm.FSM
	bdLeafFSM  *fsm.FSM
	bcLeafFSM  *fsm.FSM
	ptFSM      *fsm.FSM
	fotaFSM    *fsm.FSM

	task   *supervisor.Task
	reboot RebootFunc
}

// New builds the machine in its initial state: RUNNING / BUFFER_MODE /
// BUFFER_DISCONNECTED / BD_SAMPLING (or PASSTHROUGH_MODE if so configured).
func New(cfg *cfgpkg.Config, b bus.Bus, sup supervisor.Supervisor, log logger.Logger, reboot RebootFunc) (*Machine, error) {
	actx, err := newContext(cfg, b)
	if err != nil {
		return nil, err
	}

	m := &Machine{ctx: actx, cfg: cfg, log: log, reboot: reboot}
	m.buildFSMs()

	if sup != nil {
		processing := cfg.Watchdog.MsgProcessingTimeout
		wait := cfg.Watchdog.TimeoutSec - processing
		task, err := sup.Register("appfsm", wait, processing)
		if err != nil {
			return nil, err
		}
		m.task = task
	}

	if cfg.Storage.InitialMode == cfgpkg.ModePassthrough {
		m.runningFSM.SetState(StatePassthroughMode)
		m.ptFSM.SetState(StatePTDisconnected)
		m.ctx.cancelAllTimers()
	} else {
		m.onEnterBufferMode(context.Background(), nil)
	}

	return m, nil
}

// Context exposes the machine's shared mutable state for inspection in
// tests and diagnostics.
func (m *Machine) Context() *Context { return m.ctx }

// StatePath renders the active root-to-leaf path, e.g.
// "running/buffer_mode/buffer_disconnected/bd_sampling", for the shell's
// status display.
func (m *Machine) StatePath() string {
	root := m.root.Current()
	if root == StateFOTA {
		return root + "/" + m.fotaFSM.Current()
	}

	mode := m.runningFSM.Current()
	switch mode {
	case StatePassthroughMode:
		return root + "/" + mode + "/" + m.ptFSM.Current()
	default:
		conn := m.connFSM.Current()
		switch conn {
		case StateBufferDisconnected:
			return root + "/" + mode + "/" + conn + "/" + m.bdLeafFSM.Current()
		default:
			return root + "/" + mode + "/" + conn + "/" + m.bcLeafFSM.Current()
		}
	}
}

// Run is the task's main loop; it owns the bus subscription and blocks
// until stop is closed.
func (m *Machine) Run(b bus.Bus, queueDepth int, stop <-chan struct{}) {
	sub := bus.NewSubscriber("appfsm", queueDepth)
	b.Subscribe(sub, bus.ChanCloud, bus.ChanNetwork, bus.ChanStorage, bus.ChanFOTA, bus.ChanLocation, bus.ChanButton, bus.ChanTimer)

	const pollInterval = 500 * time.Millisecond

	for {
		select {
		case <-stop:
			return
		default:
		}

		if m.task != nil {
			m.task.FeedWait()
		}

		msg, err := b.Wait(sub, pollInterval)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrBusClosed) {
				return
			}
			continue
		}

		if m.task != nil {
			m.task.FeedProcessing()
		}

		if derr := m.Dispatch(msg); derr != nil && apperrors.Is(derr, apperrors.ErrUnhandledMessage) {
			m.log.Debug().Str("channel", string(msg.Channel)).Str("type", string(msg.Type)).Msg("message not claimed by any level")
		}
	}
}

// Dispatch runs one message through the hierarchy's run-to-completion
// dispatch, root-aware first (FOTA takes priority over everything).
func (m *Machine) Dispatch(msg bus.Message) error {
	if m.root.Current() == StateFOTA {
		return m.dispatchFOTA(msg)
	}
	return m.dispatchRunning(msg)
}

func (m *Machine) publishSensorRequests() {
	for name, ch := range sensorChannels {
		if m.ctx.sensors.Enabled(name) {
			m.ctx.publish(ch, bus.MsgSensorSampleRequest, nil)
		}
	}
}

func (m *Machine) pollTriggers() {
	m.ctx.publish(bus.ChanCloud, bus.MsgCloudPollShadow, nil)
	m.ctx.publish(bus.ChanFOTA, bus.MsgFOTAPollRequest, nil)
}

// cloudSendNow implements the buffer-mode "cloud send now" action shared
// by TIMER.EXPIRED_CLOUD and BUTTON.PRESS_LONG while connected: request a
// batch, poll the shadow and FOTA, and restart the send timer.
func (m *Machine) cloudSendNow() {
	m.cloudSendImmediate()
	m.ctx.scheduleSend(m.ctx.DataSendIntervalSec)
}

// cloudSendImmediate issues the same batch request and poll triggers as
// cloudSendNow without touching the send timer, for BC_WAITING's
// BUTTON.PRESS_LONG ("send immediately, no timer restart").
func (m *Machine) cloudSendImmediate() {
	sid := m.ctx.nextSessionID()
	m.ctx.publish(bus.ChanStorage, bus.MsgStorageBatchRequest, storage.BatchRequest{SessionID: sid})
	m.pollTriggers()
}

func (m *Machine) onSamplingEntry() {
	interval, start := m.ctx.intervalAndStart()
	now := time.Now()

	if start.IsZero() || now.Sub(start) >= interval {
		m.ctx.setSampleStart(now)
		m.ctx.publish(bus.ChanLED, bus.MsgLEDIndicatorSampling, nil)
		m.ctx.publish(bus.ChanLocation, bus.MsgLocationSearchTrigger, nil)
	}
}

func (m *Machine) onWaitingEntry() {
	interval, start := m.ctx.intervalAndStart()
	remaining := interval - time.Since(start)
	if remaining < 0 {
		remaining = 0
	}

	m.ctx.scheduleSample(remaining)
	m.ctx.publish(bus.ChanLED, bus.MsgLEDIndicatorWaiting, nil)
}

// handleShadowResponse parses a SHADOW_RESPONSE / SHADOW_RESPONSE_DELTA
// payload; interval updates always apply, command handling only on a
// _DELTA message.
func (m *Machine) handleShadowResponse(msg bus.Message) {
	payload, ok := msg.Data.([]byte)
	if !ok {
		return
	}

	update, err := shadow.Parse(payload)
	if err != nil {
		m.log.Warn().Err(err).Msg("shadow response parse failed")
		return
	}

	if update.HasInterval() {
		m.ctx.setSampleInterval(time.Duration(update.IntervalSec) * time.Second)
		m.ctx.cancelSample()
		m.ctx.scheduleSample(time.Duration(update.IntervalSec) * time.Second)
	}

	if msg.Type != bus.MsgCloudShadowResponseDelta || !update.HasCommand() {
		return
	}

	cmd := shadow.Command(update.CommandType)
	if !m.cfg.ShadowCommandAllowed(cmd.String()) {
		m.log.Warn().Str("command", cmd.String()).Msg("shadow command rejected by allow-list")
		return
	}

	switch cmd {
	case shadow.CommandProvision:
		m.ctx.publish(bus.ChanCloud, bus.MsgCloudProvisioningRequest, nil)
	case shadow.CommandReboot:
		m.coldReboot("shadow reboot command")
	}
}

func (m *Machine) coldReboot(reason string) {
	m.log.Warn().Str("reason", reason).Msg("cold reboot requested")
	if m.reboot != nil {
		m.reboot(reason)
	}
}
