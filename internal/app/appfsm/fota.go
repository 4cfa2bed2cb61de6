package appfsm

import (
	"context"

	"github.com/looplab/fsm"

	"tracker-agent/internal/app/apperrors"
	"tracker-agent/internal/app/bus"
)

// buildFOTAFSM wires the FOTA sub-machine entered whenever the root
// transitions to StateFOTA; the FOTA flow needs a modem
// disconnect before either applying an image or rebooting to finish one.
func (m *Machine) buildFOTAFSM() {
	m.fotaFSM = fsm.NewFSM(
		StateFOTADownloading,
		fsm.Events{
			{Name: evImageApplyNeeded, Src: []string{StateFOTADownloading}, Dst: StateFOTAWaitDisconnectToApply},
			{Name: evSuccessRebootNeeded, Src: []string{StateFOTADownloading}, Dst: StateFOTAWaitDisconnect},
			{Name: evSuccessRebootNeeded, Src: []string{StateFOTAApplyingImage}, Dst: StateFOTARebooting},
			{Name: evDisconnectDone, Src: []string{StateFOTAWaitDisconnectToApply}, Dst: StateFOTAApplyingImage},
			{Name: evDisconnectDone, Src: []string{StateFOTAWaitDisconnect}, Dst: StateFOTARebooting},
		},
		fsm.Callbacks{
			"enter_" + StateFOTAWaitDisconnect:       m.onEnterFOTAWaitDisconnect,
			"enter_" + StateFOTAWaitDisconnectToApply: m.onEnterFOTAWaitDisconnect,
			"enter_" + StateFOTAApplyingImage:         m.onEnterFOTAApplyingImage,
			"enter_" + StateFOTARebooting:             m.onEnterFOTARebooting,
		},
	)
}

func (m *Machine) onEnterFOTAWaitDisconnect(_ context.Context, _ *fsm.Event) {
	m.ctx.publish(bus.ChanNetwork, bus.MsgNetworkDisconnect, nil)
}

func (m *Machine) onEnterFOTAApplyingImage(_ context.Context, _ *fsm.Event) {
	m.ctx.publish(bus.ChanFOTA, bus.MsgFOTAImageApply, nil)
}

func (m *Machine) onEnterFOTARebooting(_ context.Context, _ *fsm.Event) {
	m.coldReboot("fota update applied")
}

// dispatchFOTA handles messages while the root is in StateFOTA; nothing
// below the root runs until resumeFromFOTA restores it.
func (m *Machine) dispatchFOTA(msg bus.Message) error {
	if msg.Channel == bus.ChanFOTA && m.fotaFSM.Current() == StateFOTADownloading {
		switch msg.Type {
		case bus.MsgFOTAImageApplyNeeded:
			return m.fotaFSM.Event(context.Background(), evImageApplyNeeded)
		case bus.MsgFOTASuccessRebootNeeded:
			return m.fotaFSM.Event(context.Background(), evSuccessRebootNeeded)
		case bus.MsgFOTADownloadFailed, bus.MsgFOTADownloadTimedOut,
			bus.MsgFOTADownloadCanceled, bus.MsgFOTADownloadRejected,
			bus.MsgFOTANoAvailableUpdate:
			return m.resumeFromFOTA()
		}
	}

	if msg.Channel == bus.ChanFOTA && msg.Type == bus.MsgFOTASuccessRebootNeeded &&
		m.fotaFSM.Current() == StateFOTAApplyingImage {
		return m.fotaFSM.Event(context.Background(), evSuccessRebootNeeded)
	}

	if msg.Channel == bus.ChanNetwork && msg.Type == bus.MsgNetworkDisconnected {
		switch m.fotaFSM.Current() {
		case StateFOTAWaitDisconnect, StateFOTAWaitDisconnectToApply:
			return m.fotaFSM.Event(context.Background(), evDisconnectDone)
		}
	}

	if msg.Channel == bus.ChanCloud {
		switch msg.Type {
		case bus.MsgCloudConnected:
			m.updateHistoryOnFOTAConnectivity(true)
			return nil
		case bus.MsgCloudDisconnected:
			m.updateHistoryOnFOTAConnectivity(false)
			return nil
		}
	}

	return apperrors.ErrUnhandledMessage
}

// updateHistoryOnFOTAConnectivity keeps running_history in step with
// connectivity changes observed while the root is in StateFOTA, so a
// cancel/failure resumes to the leaf that matches the connection state at
// the moment FOTA ends rather than the one it held on entry. The mode
// (buffer vs passthrough) the machine was in before FOTA never changes
// during FOTA, so only the within-mode connected/disconnected leaf moves.
func (m *Machine) updateHistoryOnFOTAConnectivity(connected bool) {
	switch m.ctx.history() {
	case StateBufferDisconnected, StateBufferConnected:
		if connected {
			m.ctx.setRunningHistory(StateBufferConnected)
		} else {
			m.ctx.setRunningHistory(StateBufferDisconnected)
		}
	case StatePTDisconnected, StatePTConnectedSampling, StatePTConnectedWaiting:
		if connected {
			m.ctx.setRunningHistory(StatePTConnectedSampling)
		} else {
			m.ctx.setRunningHistory(StatePTDisconnected)
		}
	}
}

// resumeFromFOTA leaves StateFOTA and restores the RUNNING hierarchy to the
// leaf named by running_history: the leaf held when FOTA was entered, moved
// to its connected/disconnected counterpart by updateHistoryOnFOTAConnectivity
// if connectivity changed during FOTA.
// SetState is used rather than replaying events so
// the leaves' own "reset to initial child" entry logic doesn't re-fire.
func (m *Machine) resumeFromFOTA() error {
	if err := m.root.Event(context.Background(), evResume); err != nil {
		return err
	}
	return m.restoreRunningState(m.ctx.history())
}

// restoreRunningState places runningFSM/connFSM/ptFSM (and the matching
// leaf) directly into the state named by running_history, without passing
// through BUFFER_MODE's or PASSTHROUGH_MODE's own entry side effects.
func (m *Machine) restoreRunningState(leaf string) error {
	switch leaf {
	case StateBufferDisconnected, StateBufferConnected:
		m.runningFSM.SetState(StateBufferMode)
		m.connFSM.SetState(leaf)
		if leaf == StateBufferDisconnected {
			m.bdLeafFSM.SetState(StateBDSampling)
		} else {
			m.bcLeafFSM.SetState(StateBCSampling)
		}
		m.ctx.scheduleSend(m.ctx.DataSendIntervalSec)
		m.onSamplingEntry()
		return nil

	case StatePTDisconnected, StatePTConnectedSampling, StatePTConnectedWaiting:
		m.runningFSM.SetState(StatePassthroughMode)
		m.ptFSM.SetState(leaf)
		if leaf != StatePTDisconnected {
			m.onSamplingEntry()
		}
		return nil

	default:
		return apperrors.ErrInvalidRunningHistory
	}
}
