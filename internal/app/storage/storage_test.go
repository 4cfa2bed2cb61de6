package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker-agent/internal/app/apperrors"
	"tracker-agent/internal/app/bus"
	"tracker-agent/internal/config"
	"tracker-agent/internal/config/logger"
)

func newTestEngine(t *testing.T) (*engine, bus.Bus) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Storage.MaxRecords = 4
	cfg.Storage.BatchBufferSize = 8
	cfg.Bus.PublishTimeout = time.Second
	cfg.Bus.QueueDepth = 16

	b := bus.New(logger.NoopLogger{})
	s, err := New(cfg, b, nil, logger.NoopLogger{})
	require.NoError(t, err)

	return s.(*engine), b
}

func publishBattery(t *testing.T, b bus.Bus, payload interface{}) {
	t.Helper()
	require.NoError(t, b.Publish(bus.ChanBattery, bus.MsgSensorResponse, payload, time.Second))
}

func Test_Ingest_BufferMode_Retains(t *testing.T) {
	e, b := newTestEngine(t)
	defer b.Close()

	publishBattery(t, b, "sample-1")
	e.handle(mustReceive(t, b, e.sub))

	assert.Equal(t, 1, e.rings[RecordBattery].len())
}

func Test_Ingest_RingOverflow_DropsOldest(t *testing.T) {
	e, b := newTestEngine(t)
	defer b.Close()

	for i := 0; i < 6; i++ {
		publishBattery(t, b, i)
		e.handle(mustReceive(t, b, e.sub))
	}

	assert.Equal(t, 4, e.rings[RecordBattery].len())
	rec, ok := e.rings[RecordBattery].popFront()
	require.True(t, ok)
	assert.Equal(t, 2, rec.Payload) // 0 and 1 were overwritten
}

func Test_Ingest_PassthroughMode_ForwardsAndDoesNotRetain(t *testing.T) {
	e, b := newTestEngine(t)
	defer b.Close()
	e.mode = ModePassthrough

	sub := bus.NewSubscriber("watcher", 4)
	b.Subscribe(sub, bus.ChanStorageData)

	publishBattery(t, b, "p1")
	e.handle(mustReceive(t, b, e.sub))

	msg, err := b.Wait(sub, time.Second)
	require.NoError(t, err)
	assert.Equal(t, bus.MsgStorageData, msg.Type)
	assert.Equal(t, 0, e.rings[RecordBattery].len())
}

func Test_RequestModeChange_ConfirmsWhenNoActiveSession(t *testing.T) {
	e, b := newTestEngine(t)
	defer b.Close()

	sub := bus.NewSubscriber("control-watcher", 4)
	b.Subscribe(sub, bus.ChanStorage)

	e.requestModeChange(ModePassthrough)

	msg, err := b.Wait(sub, time.Second)
	require.NoError(t, err)
	assert.Equal(t, bus.MsgStorageModePassthrough, msg.Type)
	assert.Equal(t, ModePassthrough, e.Mode())
}

func Test_RequestModeChange_RejectedDuringActiveBatch(t *testing.T) {
	e, b := newTestEngine(t)
	defer b.Close()
	e.session = &batchSession{id: "s1", remaining: 1}

	sub := bus.NewSubscriber("control-watcher", 4)
	b.Subscribe(sub, bus.ChanStorage)

	e.requestModeChange(ModePassthrough)

	msg, err := b.Wait(sub, time.Second)
	require.NoError(t, err)
	assert.Equal(t, bus.MsgStorageModeChangeRejected, msg.Type)
	rejected, ok := msg.Data.(ModeChangeRejected)
	require.True(t, ok)
	assert.Equal(t, ReasonBatchActive, rejected.Reason)
	assert.Equal(t, ModeBuffer, e.Mode())
}

func Test_OpenBatch_EmptyWhenNoRecords(t *testing.T) {
	e, b := newTestEngine(t)
	defer b.Close()

	sub := bus.NewSubscriber("control-watcher", 4)
	b.Subscribe(sub, bus.ChanStorage)

	e.openBatch("s1")

	msg, err := b.Wait(sub, time.Second)
	require.NoError(t, err)
	assert.Equal(t, bus.MsgStorageBatchEmpty, msg.Type)
}

func Test_OpenBatch_AvailableBoundedByBatchBufferSize(t *testing.T) {
	e, b := newTestEngine(t)
	defer b.Close()
	e.batchBuf = 2
	for i := 0; i < 4; i++ {
		e.rings[RecordBattery].push(Record{Type: RecordBattery, Payload: i})
	}

	sub := bus.NewSubscriber("control-watcher", 4)
	b.Subscribe(sub, bus.ChanStorage)

	e.openBatch("s1")

	msg, err := b.Wait(sub, time.Second)
	require.NoError(t, err)
	avail, ok := msg.Data.(BatchAvailable)
	require.True(t, ok)
	assert.Equal(t, 2, avail.DataLen)
}

func Test_OpenBatch_BusyWhenSessionActive(t *testing.T) {
	e, b := newTestEngine(t)
	defer b.Close()
	e.session = &batchSession{id: "first", remaining: 1}
	e.rings[RecordBattery].push(Record{Type: RecordBattery, Payload: 1})

	sub := bus.NewSubscriber("control-watcher", 4)
	b.Subscribe(sub, bus.ChanStorage)

	e.openBatch("second")

	msg, err := b.Wait(sub, time.Second)
	require.NoError(t, err)
	busy, ok := msg.Data.(BatchBusy)
	require.True(t, ok)
	assert.Equal(t, "second", busy.SessionID)
	assert.Equal(t, "first", e.session.id)
}

func Test_OpenBatch_ErrorsInPassthroughMode(t *testing.T) {
	e, b := newTestEngine(t)
	defer b.Close()
	e.mode = ModePassthrough

	sub := bus.NewSubscriber("control-watcher", 4)
	b.Subscribe(sub, bus.ChanStorage)

	e.openBatch("s1")

	msg, err := b.Wait(sub, time.Second)
	require.NoError(t, err)
	assert.Equal(t, bus.MsgStorageBatchError, msg.Type)
}

func Test_BatchRead_DrainsExactlyReservedCount(t *testing.T) {
	e, _ := newTestEngine(t)
	for i := 0; i < 3; i++ {
		e.rings[RecordBattery].push(Record{Type: RecordBattery, Payload: i})
	}
	e.session = &batchSession{id: "s1", remaining: 2}

	first, err := e.BatchRead("s1", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Payload)

	second, err := e.BatchRead("s1", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Payload)

	_, err = e.BatchRead("s1", time.Second)
	assert.ErrorIs(t, err, apperrors.ErrBatchEAgain)
}

func Test_BatchRead_UnknownSessionIsRejected(t *testing.T) {
	e, _ := newTestEngine(t)
	e.session = &batchSession{id: "s1", remaining: 1}

	_, err := e.BatchRead("wrong", time.Second)
	assert.ErrorIs(t, err, apperrors.ErrBatchNotFound)
}

func Test_CloseBatch_ReturnsToIdle(t *testing.T) {
	e, _ := newTestEngine(t)
	e.session = &batchSession{id: "s1", remaining: 1}

	e.closeBatch("s1")

	assert.Nil(t, e.session)
}

func Test_Clear_DiscardsAllRings(t *testing.T) {
	e, _ := newTestEngine(t)
	e.rings[RecordBattery].push(Record{Type: RecordBattery, Payload: 1})
	e.rings[RecordLocation].push(Record{Type: RecordLocation, Payload: 2})

	e.clear()

	assert.Equal(t, 0, e.rings[RecordBattery].len())
	assert.Equal(t, 0, e.rings[RecordLocation].len())
}

func Test_Clear_RejectedDuringActiveBatch(t *testing.T) {
	e, b := newTestEngine(t)
	defer b.Close()
	e.rings[RecordBattery].push(Record{Type: RecordBattery, Payload: 1})
	e.session = &batchSession{id: "s1", remaining: 1}

	sub := bus.NewSubscriber("control-watcher", 4)
	b.Subscribe(sub, bus.ChanStorage)

	e.clear()

	msg, err := b.Wait(sub, time.Second)
	require.NoError(t, err)
	assert.Equal(t, bus.MsgStorageClearRejected, msg.Type)
	assert.Equal(t, 1, e.rings[RecordBattery].len())
}

func mustReceive(t *testing.T, b bus.Bus, sub *bus.Subscriber) bus.Message {
	t.Helper()
	msg, err := b.Wait(sub, time.Second)
	require.NoError(t, err)
	return msg
}
