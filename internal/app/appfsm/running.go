package appfsm

import (
	"context"
	"time"

	"github.com/looplab/fsm"

	"tracker-agent/internal/app/apperrors"
	"tracker-agent/internal/app/bus"
)

var zeroTime time.Time

// buildFSMs wires every level of the hierarchy: one *fsm.FSM per level,
// states/events as string consts,
// side effects attached as enter/leave callbacks.
func (m *Machine) buildFSMs() {
	m.root = fsm.NewFSM(
		StateRunning,
		fsm.Events{
			{Name: evEnterFOTA, Src: []string{StateRunning}, Dst: StateFOTA},
			{Name: evResume, Src: []string{StateFOTA}, Dst: StateRunning},
		},
		fsm.Callbacks{
			"enter_" + StateFOTA: m.onEnterFOTA,
		},
	)

	m.runningFSM = fsm.NewFSM(
		StateBufferMode,
		fsm.Events{
			{Name: evToPassthrough, Src: []string{StateBufferMode}, Dst: StatePassthroughMode},
			{Name: evToBuffer, Src: []string{StatePassthroughMode}, Dst: StateBufferMode},
		},
		fsm.Callbacks{
			"enter_" + StateBufferMode:      m.onEnterBufferMode,
			"enter_" + StatePassthroughMode: m.onEnterPassthroughMode,
			"leave_" + StateBufferMode:      m.onLeaveMode,
			"leave_" + StatePassthroughMode: m.onLeaveMode,
		},
	)

	m.connFSM = fsm.NewFSM(
		StateBufferDisconnected,
		fsm.Events{
			{Name: evConnected, Src: []string{StateBufferDisconnected}, Dst: StateBufferConnected},
			{Name: evDisconnected, Src: []string{StateBufferConnected}, Dst: StateBufferDisconnected},
		},
		fsm.Callbacks{
			"enter_" + StateBufferDisconnected: m.onEnterBufferDisconnected,
			"enter_" + StateBufferConnected:    m.onEnterBufferConnected,
		},
	)

	m.bdLeafFSM = fsm.NewFSM(
		StateBDSampling,
		fsm.Events{
			{Name: evSearchDone, Src: []string{StateBDSampling}, Dst: StateBDWaiting},
			{Name: evWake, Src: []string{StateBDWaiting}, Dst: StateBDSampling},
		},
		fsm.Callbacks{
			"enter_" + StateBDSampling: func(_ context.Context, _ *fsm.Event) { m.onSamplingEntry() },
			"enter_" + StateBDWaiting:  func(_ context.Context, _ *fsm.Event) { m.onWaitingEntry() },
			"leave_" + StateBDSampling: func(_ context.Context, _ *fsm.Event) { m.ctx.cancelSample() },
			"leave_" + StateBDWaiting:  func(_ context.Context, _ *fsm.Event) { m.ctx.cancelSample() },
		},
	)

	m.bcLeafFSM = fsm.NewFSM(
		StateBCSampling,
		fsm.Events{
			{Name: evSearchDone, Src: []string{StateBCSampling}, Dst: StateBCWaiting},
			{Name: evWake, Src: []string{StateBCWaiting}, Dst: StateBCSampling},
		},
		fsm.Callbacks{
			"enter_" + StateBCSampling: func(_ context.Context, _ *fsm.Event) { m.onSamplingEntry() },
			"enter_" + StateBCWaiting:  func(_ context.Context, _ *fsm.Event) { m.onWaitingEntry() },
			"leave_" + StateBCSampling: func(_ context.Context, _ *fsm.Event) { m.ctx.cancelSample() },
			"leave_" + StateBCWaiting:  func(_ context.Context, _ *fsm.Event) { m.ctx.cancelSample() },
		},
	)

	m.ptFSM = fsm.NewFSM(
		StatePTDisconnected,
		fsm.Events{
			{Name: evConnected, Src: []string{StatePTDisconnected}, Dst: StatePTConnectedSampling},
			{Name: evDisconnected, Src: []string{StatePTConnectedSampling, StatePTConnectedWaiting}, Dst: StatePTDisconnected},
			{Name: evSearchDone, Src: []string{StatePTConnectedSampling}, Dst: StatePTConnectedWaiting},
			{Name: evWake, Src: []string{StatePTConnectedWaiting}, Dst: StatePTConnectedSampling},
		},
		fsm.Callbacks{
			"enter_" + StatePTDisconnected:      func(_ context.Context, _ *fsm.Event) { m.ctx.setRunningHistory(StatePTDisconnected); m.ctx.cancelSample() },
			"enter_" + StatePTConnectedSampling: func(_ context.Context, _ *fsm.Event) { m.ctx.setRunningHistory(StatePTConnectedSampling); m.onSamplingEntry() },
			"enter_" + StatePTConnectedWaiting:  func(_ context.Context, _ *fsm.Event) { m.ctx.setRunningHistory(StatePTConnectedWaiting); m.onWaitingEntry() },
		},
	)

	m.buildFOTAFSM()
}

func (m *Machine) onEnterFOTA(_ context.Context, _ *fsm.Event) {
	m.ctx.cancelAllTimers()
	m.fotaFSM.SetState(StateFOTADownloading)
}

func (m *Machine) onEnterBufferMode(_ context.Context, _ *fsm.Event) {
	m.ctx.setSampleStart(zeroTime)
	m.ctx.scheduleSend(m.ctx.DataSendIntervalSec)
	m.connFSM.SetState(StateBufferDisconnected)
	m.ctx.setRunningHistory(StateBufferDisconnected)
	m.bdLeafFSM.SetState(StateBDSampling)
	m.onSamplingEntry()
}

func (m *Machine) onEnterPassthroughMode(_ context.Context, _ *fsm.Event) {
	m.ctx.setSampleStart(zeroTime)
	m.ctx.cancelAllTimers()
	m.ptFSM.SetState(StatePTDisconnected)
	m.ctx.setRunningHistory(StatePTDisconnected)
}

func (m *Machine) onLeaveMode(_ context.Context, _ *fsm.Event) {
	m.ctx.cancelAllTimers()
}

func (m *Machine) onEnterBufferDisconnected(_ context.Context, _ *fsm.Event) {
	m.ctx.setRunningHistory(StateBufferDisconnected)
}

func (m *Machine) onEnterBufferConnected(_ context.Context, _ *fsm.Event) {
	m.ctx.setRunningHistory(StateBufferConnected)
}

func (m *Machine) dispatchRunning(msg bus.Message) error {
	if msg.Channel == bus.ChanFOTA && msg.Type == bus.MsgFOTADownloadingUpdate {
		return m.root.Event(context.Background(), evEnterFOTA)
	}

	if msg.Channel == bus.ChanStorage {
		switch msg.Type {
		case bus.MsgStorageModePassthrough:
			return m.toMode(StatePassthroughMode, evToPassthrough)
		case bus.MsgStorageModeBuffer:
			return m.toMode(StateBufferMode, evToBuffer)
		}
	}

	switch m.runningFSM.Current() {
	case StateBufferMode:
		return m.dispatchBufferMode(msg)
	case StatePassthroughMode:
		return m.dispatchPassthroughMode(msg)
	}
	return apperrors.ErrUnhandledMessage
}

func (m *Machine) toMode(target, event string) error {
	if m.runningFSM.Current() == target {
		return nil
	}
	return m.runningFSM.Event(context.Background(), event)
}

func (m *Machine) dispatchBufferMode(msg bus.Message) error {
	switch m.connFSM.Current() {
	case StateBufferDisconnected:
		return m.dispatchBufferDisconnected(msg)
	case StateBufferConnected:
		return m.dispatchBufferConnected(msg)
	}
	return apperrors.ErrUnhandledMessage
}

func (m *Machine) dispatchBufferDisconnected(msg bus.Message) error {
	if claimed, err := m.dispatchBDLeaf(msg); claimed {
		return err
	}

	switch {
	case msg.Channel == bus.ChanCloud && msg.Type == bus.MsgCloudConnected:
		return m.connFSM.Event(context.Background(), evConnected)
	case msg.Channel == bus.ChanTimer && msg.Type == bus.MsgTimerExpiredCloud:
		m.ctx.scheduleSend(m.ctx.DataSendIntervalSec)
		return nil
	case msg.Channel == bus.ChanButton && msg.Type == bus.MsgButtonPressLong:
		m.log.Debug().Msg("long press while disconnected, will send once connected")
		return nil
	}

	return apperrors.ErrUnhandledMessage
}

func (m *Machine) dispatchBDLeaf(msg bus.Message) (bool, error) {
	switch m.bdLeafFSM.Current() {
	case StateBDSampling:
		switch {
		case msg.Channel == bus.ChanLocation && msg.Type == bus.MsgLocationSearchDone:
			m.publishSensorRequests()
			return true, m.bdLeafFSM.Event(context.Background(), evSearchDone)
		case msg.Channel == bus.ChanButton && msg.Type == bus.MsgButtonPressShort:
			return true, nil
		}
	case StateBDWaiting:
		switch {
		case (msg.Channel == bus.ChanTimer && msg.Type == bus.MsgTimerExpiredSampleData) ||
			(msg.Channel == bus.ChanButton && msg.Type == bus.MsgButtonPressShort):
			return true, m.bdLeafFSM.Event(context.Background(), evWake)
		}
	}
	return false, nil
}

func (m *Machine) dispatchBufferConnected(msg bus.Message) error {
	if claimed, err := m.dispatchBCLeaf(msg); claimed {
		return err
	}

	switch {
	case msg.Channel == bus.ChanCloud && msg.Type == bus.MsgCloudDisconnected:
		return m.connFSM.Event(context.Background(), evDisconnected)
	case msg.Channel == bus.ChanCloud && (msg.Type == bus.MsgCloudShadowResponse || msg.Type == bus.MsgCloudShadowResponseDelta):
		m.handleShadowResponse(msg)
		return nil
	case msg.Channel == bus.ChanTimer && msg.Type == bus.MsgTimerExpiredCloud:
		m.cloudSendNow()
		return nil
	case msg.Channel == bus.ChanButton && msg.Type == bus.MsgButtonPressLong:
		m.cloudSendNow()
		return nil
	}

	return apperrors.ErrUnhandledMessage
}

func (m *Machine) dispatchBCLeaf(msg bus.Message) (bool, error) {
	switch m.bcLeafFSM.Current() {
	case StateBCSampling:
		switch {
		case msg.Channel == bus.ChanLocation && msg.Type == bus.MsgLocationSearchDone:
			m.publishSensorRequests()
			return true, m.bcLeafFSM.Event(context.Background(), evSearchDone)
		case msg.Channel == bus.ChanButton && msg.Type == bus.MsgButtonPressShort:
			return true, nil
		}
	case StateBCWaiting:
		switch {
		case (msg.Channel == bus.ChanTimer && msg.Type == bus.MsgTimerExpiredSampleData) ||
			(msg.Channel == bus.ChanButton && msg.Type == bus.MsgButtonPressShort):
			return true, m.bcLeafFSM.Event(context.Background(), evWake)
		case msg.Channel == bus.ChanButton && msg.Type == bus.MsgButtonPressLong:
			m.cloudSendImmediate()
			return true, nil
		}
	}
	return false, nil
}

func (m *Machine) dispatchPassthroughMode(msg bus.Message) error {
	if claimed, err := m.dispatchPTLeaf(msg); claimed {
		return err
	}

	switch {
	case msg.Channel == bus.ChanCloud && msg.Type == bus.MsgCloudDisconnected:
		return m.ptFSM.Event(context.Background(), evDisconnected)
	case msg.Channel == bus.ChanCloud && msg.Type == bus.MsgCloudConnected:
		return m.ptFSM.Event(context.Background(), evConnected)
	case msg.Channel == bus.ChanCloud && (msg.Type == bus.MsgCloudShadowResponse || msg.Type == bus.MsgCloudShadowResponseDelta):
		m.handleShadowResponse(msg)
		return nil
	}

	return apperrors.ErrUnhandledMessage
}

func (m *Machine) dispatchPTLeaf(msg bus.Message) (bool, error) {
	switch m.ptFSM.Current() {
	case StatePTConnectedSampling:
		switch {
		case msg.Channel == bus.ChanLocation && msg.Type == bus.MsgLocationSearchDone:
			m.publishSensorRequests()
			m.pollTriggers()
			return true, m.ptFSM.Event(context.Background(), evSearchDone)
		case msg.Channel == bus.ChanButton && msg.Type == bus.MsgButtonPressShort:
			return true, nil
		}
	case StatePTConnectedWaiting:
		switch {
		case (msg.Channel == bus.ChanTimer && msg.Type == bus.MsgTimerExpiredSampleData) ||
			(msg.Channel == bus.ChanButton && msg.Type == bus.MsgButtonPressShort):
			return true, m.ptFSM.Event(context.Background(), evWake)
		case msg.Channel == bus.ChanButton && msg.Type == bus.MsgButtonPressLong:
			m.pollTriggers()
			return true, nil
		}
	}
	return false, nil
}
