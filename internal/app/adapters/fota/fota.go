// Package fota implements the FOTA channel collaborator:
// it watches a staging directory for new firmware images, matching
// accepted names with a glob allow-list, and applies the image the state
// machine asks it to once FOTA_APPLYING_IMAGE is entered.
package fota

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"

	"tracker-agent/internal/app/bus"
	"tracker-agent/internal/app/supervisor"
	"tracker-agent/internal/config"
	"tracker-agent/internal/config/logger"
)

// Driver applies a staged firmware image.
type Driver interface {
	ApplyImage(path string) error
}

// Adapter is the FOTA channel task.
type Adapter struct {
	driver         Driver
	watcher        *fsnotify.Watcher
	allow          []glob.Glob
	stagingDir     string
	pendingImage   string
	b              bus.Bus
	sub            *bus.Subscriber
	task           *supervisor.Task
	publishTimeout time.Duration
	log            logger.Logger
}

// New builds the FOTA adapter, starts watching stagingDir and subscribes
// to the FOTA channel. allowPatterns are gobwas/glob patterns an incoming
// image's base name must match before a DOWNLOADING_UPDATE is published.
func New(cfg *config.Config, b bus.Bus, sup supervisor.Supervisor, log logger.Logger, driver Driver, stagingDir string, allowPatterns []string) (*Adapter, error) {
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(stagingDir); err != nil {
		watcher.Close()
		return nil, err
	}

	allow := make([]glob.Glob, 0, len(allowPatterns))
	for _, p := range allowPatterns {
		g, err := glob.Compile(p)
		if err != nil {
			watcher.Close()
			return nil, err
		}
		allow = append(allow, g)
	}

	a := &Adapter{
		driver:         driver,
		watcher:        watcher,
		allow:          allow,
		stagingDir:     stagingDir,
		b:              b,
		publishTimeout: cfg.Bus.PublishTimeout,
		log:            log,
	}

	a.sub = bus.NewSubscriber("fota", cfg.Bus.QueueDepth)
	b.Subscribe(a.sub, bus.ChanFOTA)

	if sup != nil {
		processing := cfg.Watchdog.MsgProcessingTimeout
		wait := cfg.Watchdog.TimeoutSec - processing
		task, err := sup.Register("fota", wait, processing)
		if err != nil {
			watcher.Close()
			return nil, err
		}
		a.task = task
	}

	return a, nil
}

func (a *Adapter) accepted(name string) bool {
	for _, g := range a.allow {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Run serves both the filesystem watch and the FOTA channel until stop
// closes; the two event sources are merged onto one select so exactly one
// goroutine owns adapter state.
func (a *Adapter) Run(stop <-chan struct{}) {
	defer a.watcher.Close()

	for {
		if a.task != nil {
			a.task.FeedWait()
		}

		select {
		case <-stop:
			return

		case ev, ok := <-a.watcher.Events:
			if !ok {
				return
			}
			if a.task != nil {
				a.task.FeedProcessing()
			}
			a.handleFSEvent(ev)

		case err, ok := <-a.watcher.Errors:
			if !ok {
				return
			}
			a.log.Warn().Err(err).Msg("fota watcher error")

		default:
			msg, err := a.b.Wait(a.sub, 500*time.Millisecond)
			if err != nil {
				continue
			}
			if a.task != nil {
				a.task.FeedProcessing()
			}
			a.handleMessage(msg)
		}
	}
}

func (a *Adapter) handleFSEvent(ev fsnotify.Event) {
	if ev.Op&fsnotify.Create == 0 {
		return
	}

	name := filepath.Base(ev.Name)
	if !a.accepted(name) {
		a.log.Debug().Str("name", name).Msg("fota image rejected by allow-list")
		return
	}

	a.pendingImage = ev.Name
	if err := a.b.Publish(bus.ChanFOTA, bus.MsgFOTADownloadingUpdate, name, a.publishTimeout); err != nil {
		a.log.Warn().Err(err).Msg("fota publish failed")
	}
}

func (a *Adapter) handleMessage(msg bus.Message) {
	if msg.Channel != bus.ChanFOTA {
		return
	}

	switch msg.Type {
	case bus.MsgFOTAImageApply:
		a.applyPendingImage()
	case bus.MsgFOTADownloadCancel:
		a.pendingImage = ""
	}
}

func (a *Adapter) applyPendingImage() {
	if a.pendingImage == "" {
		a.log.Warn().Msg("image apply requested with no pending image")
		return
	}

	if err := a.driver.ApplyImage(a.pendingImage); err != nil {
		a.log.Error().Err(err).Str("image", a.pendingImage).Msg("fota apply failed")
		if pubErr := a.b.Publish(bus.ChanFOTA, bus.MsgFOTADownloadFailed, nil, a.publishTimeout); pubErr != nil {
			a.log.Warn().Err(pubErr).Msg("fota publish failed")
		}
		return
	}

	if err := a.b.Publish(bus.ChanFOTA, bus.MsgFOTASuccessRebootNeeded, nil, a.publishTimeout); err != nil {
		a.log.Warn().Err(err).Msg("fota publish failed")
	}
}
