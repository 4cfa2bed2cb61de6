package network

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker-agent/internal/app/bus"
	"tracker-agent/internal/config"
	"tracker-agent/internal/config/logger"
)

func newTestAdapter(t *testing.T) (*Adapter, bus.Bus) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Bus.PublishTimeout = time.Second
	cfg.Bus.QueueDepth = 16

	b := bus.New(logger.NoopLogger{})
	a, err := New(cfg, b, nil, logger.NoopLogger{}, NewSimDriver())
	require.NoError(t, err)

	return a, b
}

func Test_Connect_PublishesConnected(t *testing.T) {
	a, b := newTestAdapter(t)
	defer b.Close()

	sub := bus.NewSubscriber("test", 4)
	b.Subscribe(sub, bus.ChanNetwork)

	require.NoError(t, b.Publish(bus.ChanNetwork, bus.MsgNetworkConnect, nil, time.Second))
	a.handle(mustReceive(t, b, sub))

	msg := mustReceive(t, b, sub)
	assert.Equal(t, bus.MsgNetworkConnected, msg.Type)
}

func Test_Disconnect_PublishesDisconnected(t *testing.T) {
	a, b := newTestAdapter(t)
	defer b.Close()

	sub := bus.NewSubscriber("test", 4)
	b.Subscribe(sub, bus.ChanNetwork)

	require.NoError(t, b.Publish(bus.ChanNetwork, bus.MsgNetworkDisconnect, nil, time.Second))
	a.handle(mustReceive(t, b, sub))

	msg := mustReceive(t, b, sub)
	assert.Equal(t, bus.MsgNetworkDisconnected, msg.Type)
}

func Test_SystemModeSwitch_PublishesResponse(t *testing.T) {
	a, b := newTestAdapter(t)
	defer b.Close()

	sub := bus.NewSubscriber("test", 4)
	b.Subscribe(sub, bus.ChanNetwork)

	require.NoError(t, b.Publish(bus.ChanNetwork, bus.MsgNetworkSystemModeSetNBIOT, nil, time.Second))
	a.handle(mustReceive(t, b, sub))

	msg := mustReceive(t, b, sub)
	require.Equal(t, bus.MsgNetworkSystemModeResponse, msg.Type)
	assert.Equal(t, "NBIOT", msg.Data)
}

func mustReceive(t *testing.T, b bus.Bus, sub *bus.Subscriber) bus.Message {
	t.Helper()
	msg, err := b.Wait(sub, time.Second)
	require.NoError(t, err)
	return msg
}
