// Package storage implements the ring-buffered retention engine: one
// fixed-capacity ring per record type, a BUFFER/
// PASSTHROUGH mode switch, and a single-slot batch-read session with
// explicit interlocks against concurrent mode changes and clears.
//
//go:generate mockgen -source=storage.go -destination=storage_mock.go -package=storage
package storage

import (
	"sync"
	"time"

	"tracker-agent/internal/app/apperrors"
	"tracker-agent/internal/app/bus"
	"tracker-agent/internal/app/supervisor"
	"tracker-agent/internal/config"
	"tracker-agent/internal/config/logger"
)

// Mode selects how incoming data records are treated.
type Mode string

const (
	ModeBuffer      Mode = Mode(config.ModeBuffer)
	ModePassthrough Mode = Mode(config.ModePassthrough)
)

// recordTypeOrder fixes the cross-type drain order for batch reads, so a
// session's FIFO-within-type guarantee is deterministic across types too.
var recordTypeOrder = []RecordType{RecordBattery, RecordEnvironmental, RecordLocation, RecordNetworkQuality}

// pollInterval bounds how long Run's bus.Wait call blocks per iteration,
// so the task loop can still notice the stop channel.
const pollInterval = 500 * time.Millisecond

// Storage is the ring-buffered retention engine.
type Storage interface {
	// Mode reports the engine's current operating mode.
	Mode() Mode
	// Run is the task's main loop: it owns the bus subscription and must
	// run on its own goroutine until stop is closed.
	Run(stop <-chan struct{})
	// BatchRead destructively returns the next record in the named active
	// session, in FIFO-within-type order. timeout is accepted for
	// interface symmetry with batch_read(timeout); reads
	// never actually block since the data is already resident in memory.
	BatchRead(sessionID string, timeout time.Duration) (Record, error)
	// Occupancy reports each record type's current ring fill level and
	// capacity, for the shell's status display.
	Occupancy() map[RecordType]RingStats
}

// RingStats describes one RecordType's ring fill level.
type RingStats struct {
	Len      int
	Capacity int
}

type engine struct {
	mu       sync.Mutex
	mode     Mode
	rings    map[RecordType]*ring
	batchBuf int
	session  *batchSession

	b              bus.Bus
	sub            *bus.Subscriber
	task           *supervisor.Task
	publishTimeout time.Duration
	log            logger.Logger
}

// New builds the storage engine and subscribes it to the data-producing
// channels plus the storage control channel.
func New(cfg *config.Config, b bus.Bus, sup supervisor.Supervisor, log logger.Logger) (Storage, error) {
	e := &engine{
		mode:           Mode(cfg.Storage.InitialMode),
		rings:          make(map[RecordType]*ring, len(recordTypeOrder)),
		batchBuf:       cfg.Storage.BatchBufferSize,
		b:              b,
		publishTimeout: cfg.Bus.PublishTimeout,
		log:            log,
	}

	for _, t := range recordTypeOrder {
		e.rings[t] = newRing(cfg.Storage.MaxRecords)
	}

	e.sub = bus.NewSubscriber("storage", cfg.Bus.QueueDepth)
	b.Subscribe(e.sub, bus.ChanStorage, bus.ChanBattery, bus.ChanEnvironmental, bus.ChanLocation, bus.ChanNetwork)

	if sup != nil {
		processing := cfg.Watchdog.MsgProcessingTimeout
		wait := cfg.Watchdog.TimeoutSec - processing
		task, err := sup.Register("storage", wait, processing)
		if err != nil {
			return nil, err
		}
		e.task = task
	}

	return e, nil
}

func (e *engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

func (e *engine) Occupancy() map[RecordType]RingStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[RecordType]RingStats, len(e.rings))
	for t, r := range e.rings {
		out[t] = RingStats{Len: r.len(), Capacity: r.capacity()}
	}
	return out
}

// Run consumes bus messages until stop is closed.
func (e *engine) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}

		if e.task != nil {
			e.task.FeedWait()
		}

		msg, err := e.b.Wait(e.sub, pollInterval)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrBusClosed) {
				return
			}
			continue
		}

		if e.task != nil {
			e.task.FeedProcessing()
		}

		e.handle(msg)
	}
}

func (e *engine) handle(msg bus.Message) {
	switch msg.Channel {
	case bus.ChanBattery:
		if msg.Type == bus.MsgSensorResponse {
			e.ingest(RecordBattery, msg.Data)
		}
	case bus.ChanEnvironmental:
		if msg.Type == bus.MsgSensorResponse {
			e.ingest(RecordEnvironmental, msg.Data)
		}
	case bus.ChanLocation:
		if msg.Type == bus.MsgLocationGNSSData {
			e.ingest(RecordLocation, msg.Data)
		}
	case bus.ChanNetwork:
		if msg.Type == bus.MsgNetworkQualitySampleResp {
			e.ingest(RecordNetworkQuality, msg.Data)
		}
	case bus.ChanStorage:
		e.handleControl(msg)
	}
}

// ingest is called for every data-producing message. In BUFFER mode the
// record is retained; in PASSTHROUGH mode it is immediately re-published
// and never stored.
func (e *engine) ingest(t RecordType, data interface{}) {
	e.mu.Lock()
	mode := e.mode
	rec := Record{Type: t, Payload: data, Timestamp: time.Now()}

	if mode == ModeBuffer {
		e.rings[t].push(rec)
	}
	e.mu.Unlock()

	if mode == ModePassthrough {
		e.b.Publish(bus.ChanStorageData, bus.MsgStorageData, DataRecord{DataType: t, Record: rec}, e.publishTimeout)
	}
}

func (e *engine) handleControl(msg bus.Message) {
	switch msg.Type {
	case bus.MsgStorageModePassthroughRequest:
		e.requestModeChange(ModePassthrough)
	case bus.MsgStorageModeBufferRequest:
		e.requestModeChange(ModeBuffer)
	case bus.MsgStorageBatchRequest:
		if req, ok := msg.Data.(BatchRequest); ok {
			e.openBatch(req.SessionID)
		}
	case bus.MsgStorageBatchClose:
		if req, ok := msg.Data.(BatchClose); ok {
			e.closeBatch(req.SessionID)
		}
	case bus.MsgStorageClear:
		e.clear()
	}
}

// requestModeChange validates there is no active batch session before
// switching modes, mirroring the reject-vs-confirm symmetry between
// MODE_CHANGE_REJECTED / CLEAR_REJECTED.
func (e *engine) requestModeChange(target Mode) {
	e.mu.Lock()
	active := e.session != nil
	if !active {
		e.mode = target
	}
	e.mu.Unlock()

	if active {
		e.b.Publish(bus.ChanStorage, bus.MsgStorageModeChangeRejected, ModeChangeRejected{Reason: ReasonBatchActive}, e.publishTimeout)
		return
	}

	confirm := bus.MsgStorageModeBuffer
	if target == ModePassthrough {
		confirm = bus.MsgStorageModePassthrough
	}
	e.b.Publish(bus.ChanStorage, confirm, nil, e.publishTimeout)
}

func (e *engine) openBatch(sessionID string) {
	e.mu.Lock()

	if e.mode == ModePassthrough {
		e.mu.Unlock()
		e.b.Publish(bus.ChanStorage, bus.MsgStorageBatchError, BatchError{SessionID: sessionID}, e.publishTimeout)
		return
	}

	if e.session != nil {
		e.mu.Unlock()
		e.b.Publish(bus.ChanStorage, bus.MsgStorageBatchBusy, BatchBusy{SessionID: sessionID}, e.publishTimeout)
		return
	}

	total := 0
	for _, t := range recordTypeOrder {
		total += e.rings[t].len()
	}

	if total == 0 {
		e.mu.Unlock()
		e.b.Publish(bus.ChanStorage, bus.MsgStorageBatchEmpty, BatchEmpty{SessionID: sessionID}, e.publishTimeout)
		return
	}

	dataLen := total
	if dataLen > e.batchBuf {
		dataLen = e.batchBuf
	}

	e.session = &batchSession{id: sessionID, remaining: dataLen}
	e.mu.Unlock()

	e.b.Publish(bus.ChanStorage, bus.MsgStorageBatchAvailable, BatchAvailable{SessionID: sessionID, DataLen: dataLen}, e.publishTimeout)
}

func (e *engine) closeBatch(sessionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil && e.session.id == sessionID {
		e.session = nil
	}
}

// clear discards every ring unless a batch session is active, in which
// case the clear is rejected rather than silently deferred (DESIGN.md
// records this Open Question resolution).
func (e *engine) clear() {
	e.mu.Lock()

	if e.session != nil {
		e.mu.Unlock()
		e.b.Publish(bus.ChanStorage, bus.MsgStorageClearRejected, ClearRejected{Reason: ReasonBatchActive}, e.publishTimeout)
		return
	}

	for _, r := range e.rings {
		r.clear()
	}
	e.mu.Unlock()
}

// BatchRead destructively pops the next record from the active session in
// fixed cross-type order, decrementing the reservation made at open time.
func (e *engine) BatchRead(sessionID string, _ time.Duration) (Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode == ModePassthrough {
		return Record{}, apperrors.ErrPassthroughActive
	}

	if e.session == nil || e.session.id != sessionID {
		return Record{}, apperrors.ErrBatchNotFound
	}

	if e.session.remaining <= 0 {
		return Record{}, apperrors.ErrBatchEAgain
	}

	for _, t := range recordTypeOrder {
		if rec, ok := e.rings[t].popFront(); ok {
			e.session.remaining--
			return rec, nil
		}
	}

	return Record{}, apperrors.ErrBatchEAgain
}
