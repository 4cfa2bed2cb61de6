// Package apperrors holds the sentinel errors shared across the tracker
// agent's subsystems.
package apperrors

import "errors"

var (
	ErrFailedToReadConfig  = errors.New("failed to read config file")
	ErrFailedToParseConfig = errors.New("failed to parse config file")
	ErrInvalidConfig       = errors.New("invalid configuration")

	ErrInvalidSampleInterval  = errors.New("sample interval must be greater than 0")
	ErrInvalidCloudSyncPeriod = errors.New("cloud sync interval must be greater than 0")
	ErrInvalidStorageMode     = errors.New("storage initial mode must be 'buffer' or 'passthrough'")
	ErrInvalidRingCapacity    = errors.New("storage max records per type must be greater than 0")
	ErrInvalidBatchBufferSize = errors.New("storage batch buffer size must be greater than 0")
	ErrInvalidWatchdogBudget  = errors.New("watchdog wait and processing budgets must be positive and fit within the total budget")
	ErrInvalidBackoffSchedule = errors.New("backoff schedule must have a positive base and a max not less than the base")

	// Bus errors.
	ErrBusTimeout  = errors.New("publish did not complete within the caller's timeout")
	ErrQueueFull   = errors.New("subscriber queue is full")
	ErrBusClosed   = errors.New("bus is closed")
	ErrNoMessage   = errors.New("no message available before wait timeout")
	ErrUnknownType = errors.New("message does not match the channel's declared type")

	// Storage errors.
	ErrBatchActive      = errors.New("a batch session is already active")
	ErrBatchNotFound     = errors.New("no batch session with that id is active")
	ErrPassthroughActive = errors.New("batch requests are not served while storage is in passthrough mode")
	ErrBatchEAgain       = errors.New("no more items in the current batch window")
	ErrUnknownRecordType = errors.New("unknown storage record type")

	// State machine errors.
	ErrUnhandledMessage     = errors.New("message was not claimed by any level of the state machine")
	ErrInvalidRunningHistory = errors.New("running_history must be a RUNNING leaf state")

	// Supervisor errors.
	ErrTaskNotRegistered = errors.New("task is not registered with the supervisor")
	ErrBudgetExceeded    = errors.New("task exceeded its watchdog budget")

	// Shadow parser errors.
	ErrShadowParseFailed = errors.New("failed to parse shadow response payload")

	// Fatal / invariant violation.
	ErrInvariantViolation = errors.New("invariant violation")
)

var (
	As  = errors.As
	Is  = errors.Is
	New = errors.New
)
