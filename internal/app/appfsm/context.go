package appfsm

import (
	"fmt"
	"sync"
	"time"

	"tracker-agent/internal/app/bus"
	"tracker-agent/internal/config"
)

// sensorSet is the subset of config.Config's compiled sensor glob matcher
// appfsm needs; satisfied by config's unexported enabledSensorSet without
// either package needing to export a new type.
type sensorSet interface {
	Enabled(name string) bool
}

// sensorChannels maps a configurable sensor name to the bus channel its
// sample-request/response pair travels on.
var sensorChannels = map[string]bus.Channel{
	"battery":       bus.ChanBattery,
	"environmental": bus.ChanEnvironmental,
}

// Context is the hierarchical machine's shared mutable state.
type Context struct {
	mu sync.Mutex

	SampleIntervalSec   time.Duration
	DataSendIntervalSec time.Duration
	SampleStartTime     time.Time
	RunningHistory      string
	BatchSessionID      string

	sessionSeq int

	sampleTimer *delayedTimer
	sendTimer   *delayedTimer

	b              bus.Bus
	publishTimeout time.Duration
	sensors        sensorSet
}

func newContext(cfg *config.Config, b bus.Bus) (*Context, error) {
	sensors, err := cfg.EnabledSensors()
	if err != nil {
		return nil, err
	}

	return &Context{
		SampleIntervalSec:   cfg.Sample.IntervalSec,
		DataSendIntervalSec: cfg.Cloud.SyncIntervalSec,
		RunningHistory:      StateBufferDisconnected,
		sampleTimer:         newDelayedTimer(),
		sendTimer:           newDelayedTimer(),
		b:                   b,
		publishTimeout:      cfg.Bus.PublishTimeout,
		sensors:             sensors,
	}, nil
}

func (c *Context) publish(ch bus.Channel, t bus.MessageType, data interface{}) {
	c.b.Publish(ch, t, data, c.publishTimeout)
}

func (c *Context) scheduleSample(delay time.Duration) {
	c.sampleTimer.set(delay, func() {
		c.publish(bus.ChanTimer, bus.MsgTimerExpiredSampleData, nil)
	})
}

func (c *Context) cancelSample() {
	c.sampleTimer.stop()
}

func (c *Context) scheduleSend(delay time.Duration) {
	c.sendTimer.set(delay, func() {
		c.publish(bus.ChanTimer, bus.MsgTimerExpiredCloud, nil)
	})
}

func (c *Context) cancelSend() {
	c.sendTimer.stop()
}

func (c *Context) cancelAllTimers() {
	c.cancelSample()
	c.cancelSend()
}

func (c *Context) setRunningHistory(leaf string) {
	c.mu.Lock()
	c.RunningHistory = leaf
	c.mu.Unlock()
}

func (c *Context) history() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.RunningHistory
}

func (c *Context) nextSessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionSeq++
	c.BatchSessionID = fmt.Sprintf("sess-%d", c.sessionSeq)
	return c.BatchSessionID
}

func (c *Context) setSampleInterval(d time.Duration) {
	c.mu.Lock()
	c.SampleIntervalSec = d
	c.mu.Unlock()
}

func (c *Context) intervalAndStart() (time.Duration, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.SampleIntervalSec, c.SampleStartTime
}

func (c *Context) setSampleStart(t time.Time) {
	c.mu.Lock()
	c.SampleStartTime = t
	c.mu.Unlock()
}
