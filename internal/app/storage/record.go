package storage

import "time"

// RecordType tags a stored record by the sensor/source it came from.
// Each type owns an independent ring buffer.
type RecordType string

const (
	RecordBattery       RecordType = "BATTERY"
	RecordEnvironmental RecordType = "ENVIRONMENTAL"
	RecordLocation      RecordType = "LOCATION"
	RecordNetworkQuality RecordType = "NETWORK_QUALITY"
)

// Record is a tagged value stored in a type's ring buffer, or forwarded
// directly on STORAGE_DATA while in passthrough mode.
type Record struct {
	Type      RecordType
	Payload   interface{}
	Timestamp time.Time
}
