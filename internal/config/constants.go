package config

import "time"

// Application metadata
const (
	AppName = "tracker-agent"
	Version = "0.1.0"

	ConfigFile = "tracker.yaml"

	// DefaultFOTAStagingDir is where the fota adapter watches for dropped
	// firmware images when tracker.yaml doesn't override it.
	DefaultFOTAStagingDir = "./fota-staging"
)

// Storage modes
const (
	ModeBuffer      = "buffer"
	ModePassthrough = "passthrough"
)

// Backoff strategies for the cloud adapter's connect retry schedule
const (
	BackoffLinear      = "linear"
	BackoffExponential = "exponential"
)

// Logging defaults
const (
	LogLevel  = "info"
	LogFormat = "console"
)

// Default timing for the configuration table
const (
	DefaultSampleIntervalSec     = 60 * time.Second
	DefaultCloudSyncIntervalSec  = 300 * time.Second
	DefaultStorageMaxRecords     = 64
	DefaultStorageBatchBufSize   = 4096
	DefaultWatchdogTimeoutSec    = 30 * time.Second
	DefaultMsgProcessingTimeout  = 5 * time.Second
	DefaultBusPublishTimeout     = 250 * time.Millisecond
	DefaultSubscriberQueueDepth  = 64
	DefaultRebootDelay           = 2 * time.Second
	DefaultNetworkDisconnectWait = 10 * time.Second
)

// Default cloud connect backoff schedule
const (
	DefaultBackoffBase = 2 * time.Second
	DefaultBackoffMax  = 120 * time.Second
)
