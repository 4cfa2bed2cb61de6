package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/gobwas/glob"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"tracker-agent/internal/app/apperrors"
)

// Config represents the application configuration loaded from tracker.yaml.
type Config struct {
	Sample struct {
		IntervalSec time.Duration `yaml:"interval_sec"`
		Sensors     []string      `yaml:"sensors"`
	} `yaml:"sample"`

	Cloud struct {
		SyncIntervalSec time.Duration `yaml:"sync_interval_sec"`
	} `yaml:"cloud"`

	Storage struct {
		InitialMode     string `yaml:"initial_mode"`
		MaxRecords      int    `yaml:"max_records_per_type"`
		BatchBufferSize int    `yaml:"batch_buffer_size"`
	} `yaml:"storage"`

	Watchdog struct {
		TimeoutSec           time.Duration `yaml:"timeout_sec"`
		MsgProcessingTimeout time.Duration `yaml:"msg_processing_timeout_sec"`
	} `yaml:"watchdog"`

	Backoff struct {
		Strategy string        `yaml:"strategy"`
		Base     time.Duration `yaml:"base"`
		Max      time.Duration `yaml:"max"`
	} `yaml:"backoff"`

	Bus struct {
		PublishTimeout time.Duration `yaml:"publish_timeout"`
		QueueDepth     int           `yaml:"queue_depth"`
	} `yaml:"bus"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	FOTA struct {
		StagingDir string   `yaml:"staging_dir"`
		ImageAllow []string `yaml:"image_allow"`
	} `yaml:"fota"`

	// ShadowCommandAllow lists glob patterns of shadow command keys the
	// device will honor; anything else is logged and discarded.
	ShadowCommandAllow []string `yaml:"shadow_command_allow"`

	Version int
}

// enabledSensorSet is derived once at load time so sample cycles don't
// re-compile glob matchers per dispatch.
type enabledSensorSet struct {
	matchers []glob.Glob
}

func (s enabledSensorSet) Enabled(name string) bool {
	for _, m := range s.matchers {
		if m.Match(name) {
			return true
		}
	}
	return false
}

// DefaultConfig returns the configuration used when no tracker.yaml exists.
func DefaultConfig() *Config {
	cfg := &Config{Version: 1}

	cfg.Sample.IntervalSec = DefaultSampleIntervalSec
	cfg.Sample.Sensors = []string{"*"}

	cfg.Cloud.SyncIntervalSec = DefaultCloudSyncIntervalSec

	cfg.Storage.InitialMode = ModeBuffer
	cfg.Storage.MaxRecords = DefaultStorageMaxRecords
	cfg.Storage.BatchBufferSize = DefaultStorageBatchBufSize

	cfg.Watchdog.TimeoutSec = DefaultWatchdogTimeoutSec
	cfg.Watchdog.MsgProcessingTimeout = DefaultMsgProcessingTimeout

	cfg.Backoff.Strategy = BackoffExponential
	cfg.Backoff.Base = DefaultBackoffBase
	cfg.Backoff.Max = DefaultBackoffMax

	cfg.Bus.PublishTimeout = DefaultBusPublishTimeout
	cfg.Bus.QueueDepth = DefaultSubscriberQueueDepth

	cfg.Logging.Level = LogLevel
	cfg.Logging.Format = LogFormat

	cfg.FOTA.StagingDir = DefaultFOTAStagingDir
	cfg.FOTA.ImageAllow = []string{"*.bin", "*.img"}

	cfg.ShadowCommandAllow = []string{"*"}

	return cfg
}

// Load loads the configuration from ConfigFile, applies defaults for any
// unset field, and validates the result.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigFile)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}

		return nil, apperrors.ErrFailedToReadConfig
	}

	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, apperrors.ErrFailedToReadConfig
	}

	if err := v.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) { dc.TagName = "yaml" }); err != nil {
		return nil, apperrors.ErrFailedToParseConfig
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidConfig, err)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()

	if c.Sample.IntervalSec == 0 {
		c.Sample.IntervalSec = d.Sample.IntervalSec
	}
	if len(c.Sample.Sensors) == 0 {
		c.Sample.Sensors = d.Sample.Sensors
	}
	if c.Cloud.SyncIntervalSec == 0 {
		c.Cloud.SyncIntervalSec = d.Cloud.SyncIntervalSec
	}
	if c.Storage.InitialMode == "" {
		c.Storage.InitialMode = d.Storage.InitialMode
	}
	if c.Storage.MaxRecords == 0 {
		c.Storage.MaxRecords = d.Storage.MaxRecords
	}
	if c.Storage.BatchBufferSize == 0 {
		c.Storage.BatchBufferSize = d.Storage.BatchBufferSize
	}
	if c.Watchdog.TimeoutSec == 0 {
		c.Watchdog.TimeoutSec = d.Watchdog.TimeoutSec
	}
	if c.Watchdog.MsgProcessingTimeout == 0 {
		c.Watchdog.MsgProcessingTimeout = d.Watchdog.MsgProcessingTimeout
	}
	if c.Backoff.Strategy == "" {
		c.Backoff.Strategy = d.Backoff.Strategy
	}
	if c.Backoff.Base == 0 {
		c.Backoff.Base = d.Backoff.Base
	}
	if c.Backoff.Max == 0 {
		c.Backoff.Max = d.Backoff.Max
	}
	if c.Bus.PublishTimeout == 0 {
		c.Bus.PublishTimeout = d.Bus.PublishTimeout
	}
	if c.Bus.QueueDepth == 0 {
		c.Bus.QueueDepth = d.Bus.QueueDepth
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = d.Logging.Format
	}
	if c.FOTA.StagingDir == "" {
		c.FOTA.StagingDir = d.FOTA.StagingDir
	}
	if len(c.FOTA.ImageAllow) == 0 {
		c.FOTA.ImageAllow = d.FOTA.ImageAllow
	}
	if len(c.ShadowCommandAllow) == 0 {
		c.ShadowCommandAllow = d.ShadowCommandAllow
	}
}

// WriteDefault writes a commented-free, default tracker.yaml to path.
func WriteDefault(path string) error {
	out, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrFailedToParseConfig, err)
	}

	return os.WriteFile(path, out, 0o644)
}

// EnabledSensors compiles the configured sensor glob patterns. Which subset
// of sensors a sample cycle queries is
// build/config-defined; the core only needs "enabled sensors are messaged
// once per cycle".
func (c *Config) EnabledSensors() (enabledSensorSet, error) {
	matchers := make([]glob.Glob, 0, len(c.Sample.Sensors))
	for _, pattern := range c.Sample.Sensors {
		g, err := glob.Compile(pattern)
		if err != nil {
			return enabledSensorSet{}, fmt.Errorf("%w: sensor pattern %q: %w", apperrors.ErrInvalidConfig, pattern, err)
		}
		matchers = append(matchers, g)
	}
	return enabledSensorSet{matchers: matchers}, nil
}

// ShadowCommandAllowed reports whether a shadow command key may be acted on.
func (c *Config) ShadowCommandAllowed(key string) bool {
	for _, pattern := range c.ShadowCommandAllow {
		g, err := glob.Compile(pattern)
		if err != nil {
			continue
		}
		if g.Match(key) {
			return true
		}
	}
	return false
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Sample.IntervalSec <= 0 {
		return apperrors.ErrInvalidSampleInterval
	}

	if c.Cloud.SyncIntervalSec <= 0 {
		return apperrors.ErrInvalidCloudSyncPeriod
	}

	if c.Storage.InitialMode != ModeBuffer && c.Storage.InitialMode != ModePassthrough {
		return apperrors.ErrInvalidStorageMode
	}

	if c.Storage.MaxRecords <= 0 {
		return apperrors.ErrInvalidRingCapacity
	}

	if c.Storage.BatchBufferSize <= 0 {
		return apperrors.ErrInvalidBatchBufferSize
	}

	if c.Backoff.Base <= 0 || c.Backoff.Max < c.Backoff.Base {
		return apperrors.ErrInvalidBackoffSchedule
	}

	total, processing := c.Watchdog.TimeoutSec, c.Watchdog.MsgProcessingTimeout
	if total <= 0 || processing <= 0 || processing >= total {
		return apperrors.ErrInvalidWatchdogBudget
	}

	return nil
}
