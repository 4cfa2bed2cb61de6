package cloud

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker-agent/internal/app/bus"
	"tracker-agent/internal/config"
	"tracker-agent/internal/config/logger"
)

func Test_BackoffSchedule_Exponential_CapsAtMax(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Backoff.Strategy = config.BackoffExponential
	cfg.Backoff.Base = time.Second
	cfg.Backoff.Max = 4 * time.Second

	s := newBackoffSchedule(cfg)
	assert.Equal(t, time.Second, s.next())
	assert.Equal(t, 2*time.Second, s.next())
	assert.Equal(t, 4*time.Second, s.next())
	assert.Equal(t, 4*time.Second, s.next())
}

func Test_BackoffSchedule_ResetRestartsFromBase(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Backoff.Strategy = config.BackoffLinear
	cfg.Backoff.Base = time.Second
	cfg.Backoff.Max = 10 * time.Second

	s := newBackoffSchedule(cfg)
	s.next()
	s.next()
	s.reset()
	assert.Equal(t, time.Second, s.next())
}

func Test_NetworkConnected_TriggersCloudConnected(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Bus.PublishTimeout = time.Second
	cfg.Bus.QueueDepth = 16

	b := bus.New(logger.NoopLogger{})
	defer b.Close()

	a, err := New(cfg, b, nil, logger.NoopLogger{}, NewSimDriver())
	require.NoError(t, err)

	sub := bus.NewSubscriber("test", 4)
	b.Subscribe(sub, bus.ChanCloud)

	a.handle(bus.Message{Channel: bus.ChanNetwork, Type: bus.MsgNetworkConnected})

	msg, err := b.Wait(sub, time.Second)
	require.NoError(t, err)
	assert.Equal(t, bus.MsgCloudConnected, msg.Type)
}
