package fota

import (
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker-agent/internal/app/bus"
	"tracker-agent/internal/config"
	"tracker-agent/internal/config/logger"
)

func newTestAdapter(t *testing.T) (*Adapter, bus.Bus) {
	t.Helper()

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Bus.PublishTimeout = time.Second
	cfg.Bus.QueueDepth = 16

	b := bus.New(logger.NoopLogger{})
	a, err := New(cfg, b, nil, logger.NoopLogger{}, NewSimDriver(), dir, []string{"*.bin"})
	require.NoError(t, err)

	return a, b
}

func Test_Accepted_MatchesAllowList(t *testing.T) {
	a, b := newTestAdapter(t)
	defer b.Close()
	defer a.watcher.Close()

	assert.True(t, a.accepted("firmware-v2.bin"))
	assert.False(t, a.accepted("firmware-v2.txt"))
}

func Test_ApplyPendingImage_SuccessPublishesSuccessRebootNeeded(t *testing.T) {
	a, b := newTestAdapter(t)
	defer b.Close()
	defer a.watcher.Close()

	a.pendingImage = "firmware-v2.bin"

	sub := bus.NewSubscriber("test", 4)
	b.Subscribe(sub, bus.ChanFOTA)

	a.applyPendingImage()

	msg, err := b.Wait(sub, time.Second)
	require.NoError(t, err)
	assert.Equal(t, bus.MsgFOTASuccessRebootNeeded, msg.Type)
}

func Test_HandleFSEvent_RejectsUnlistedName(t *testing.T) {
	a, b := newTestAdapter(t)
	defer b.Close()
	defer a.watcher.Close()

	sub := bus.NewSubscriber("test", 4)
	b.Subscribe(sub, bus.ChanFOTA)

	a.handleFSEvent(fsnotify.Event{Name: "rejected.txt", Op: fsnotify.Create})
	assert.Empty(t, a.pendingImage)
}
