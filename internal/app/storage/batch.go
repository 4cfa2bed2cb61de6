package storage

// batchSession is storage's single active consumer window: at most one
// session exists at a time. remaining tracks exactly
// how many items this window reserved, so a consumer can drain precisely
// data_len items before a further BATCH_REQUEST is required.
type batchSession struct {
	id        string
	remaining int
}

// BatchRequest is the payload of a STORAGE channel BATCH_REQUEST message.
type BatchRequest struct {
	SessionID string
}

// BatchClose is the payload of a STORAGE channel BATCH_CLOSE message.
type BatchClose struct {
	SessionID string
}

// BatchAvailable is published in reply to a BATCH_REQUEST that opened a
// session with records to drain.
type BatchAvailable struct {
	SessionID string
	DataLen   int
}

// BatchEmpty is published in reply to a BATCH_REQUEST with no stored records.
type BatchEmpty struct {
	SessionID string
}

// BatchBusy is published in reply to a BATCH_REQUEST while another session
// is already active. It carries the requester's session id; the active
// session is left untouched.
type BatchBusy struct {
	SessionID string
}

// BatchError is published in reply to a BATCH_REQUEST received while the
// engine is in passthrough mode.
type BatchError struct {
	SessionID string
}

// ModeChangeRejected is the payload of a MODE_CHANGE_REJECTED message.
type ModeChangeRejected struct {
	Reason string
}

// ClearRejected is the payload of a CLEAR_REJECTED message.
type ClearRejected struct {
	Reason string
}

// ReasonBatchActive is the only defined rejection reason today: a mode
// change or clear collided with an in-flight batch session.
const ReasonBatchActive = "BATCH_ACTIVE"

// DataRecord is the payload forwarded on STORAGE_DATA while in passthrough
// mode.
type DataRecord struct {
	DataType RecordType
	Record   Record
}
