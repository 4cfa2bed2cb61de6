package power

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker-agent/internal/app/bus"
	"tracker-agent/internal/config"
	"tracker-agent/internal/config/logger"
)

type fakeDriver struct {
	readings []Reading
	i        int
	err      error
}

func (f *fakeDriver) Read() (Reading, error) {
	if f.err != nil {
		return Reading{}, f.err
	}
	r := f.readings[f.i]
	if f.i < len(f.readings)-1 {
		f.i++
	}
	return r, nil
}

func newTestAdapter(t *testing.T, d Driver) (*Adapter, bus.Bus) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Bus.PublishTimeout = time.Second
	cfg.Bus.QueueDepth = 16

	b := bus.New(logger.NoopLogger{})
	a, err := New(cfg, b, nil, logger.NoopLogger{}, d)
	require.NoError(t, err)

	return a, b
}

func mustReceive(t *testing.T, b bus.Bus, sub *bus.Subscriber) bus.Message {
	t.Helper()
	msg, err := b.Wait(sub, time.Second)
	require.NoError(t, err)
	return msg
}

func Test_Sample_PublishesResponse(t *testing.T) {
	d := &fakeDriver{readings: []Reading{{PercentRemaining: 90, TemperatureC: 22}}}
	a, b := newTestAdapter(t, d)
	defer b.Close()

	sub := bus.NewSubscriber("test", 4)
	b.Subscribe(sub, bus.ChanBattery)

	a.sample()

	msg := mustReceive(t, b, sub)
	assert.Equal(t, bus.MsgSensorResponse, msg.Type)
	reading, ok := msg.Data.(Reading)
	require.True(t, ok)
	assert.Equal(t, 90.0, reading.PercentRemaining)
}

func Test_Sample_DriverErrorSkipsPublish(t *testing.T) {
	d := &fakeDriver{err: errors.New("i2c timeout")}
	a, b := newTestAdapter(t, d)
	defer b.Close()

	sub := bus.NewSubscriber("test", 4)
	b.Subscribe(sub, bus.ChanBattery)

	a.sample()

	_, err := b.Wait(sub, 50*time.Millisecond)
	assert.Error(t, err)
}

func Test_DrainRate_TracksDecreasingCharge(t *testing.T) {
	d := &fakeDriver{readings: []Reading{{PercentRemaining: 80}}}
	a, _ := newTestAdapter(t, d)

	a.record(Reading{PercentRemaining: 80})
	a.record(Reading{PercentRemaining: 75})

	rate, ok := a.drainRate()
	require.True(t, ok)
	assert.Equal(t, 5.0, rate)
}

func Test_Record_BoundsHistoryToWindow(t *testing.T) {
	d := &fakeDriver{readings: []Reading{{PercentRemaining: 50}}}
	a, _ := newTestAdapter(t, d)

	for i := 0; i < drainWindow+5; i++ {
		a.record(Reading{PercentRemaining: float64(i)})
	}

	assert.Len(t, a.history, drainWindow)
}
