// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/ManuGH/paramlab/internal/log"
	"github.com/ManuGH/paramlab/internal/metrics"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const defaultDebounce = 500 * time.Millisecond

// ConfigHolder holds configuration with atomic reloading capability.
// Only the log level is applied live; other changes need a restart and are
// reported as such.
type ConfigHolder struct {
	mu         sync.RWMutex
	current    AppConfig
	loader     *Loader
	configPath string
	logger     zerolog.Logger
	debounce   time.Duration

	watchMu sync.Mutex
	watcher *fsnotify.Watcher
	timer   *time.Timer
	done    chan struct{}

	reloadMu        sync.RWMutex
	reloadListeners []chan<- AppConfig
}

// NewConfigHolder creates a new configuration holder with initial config.
func NewConfigHolder(initial AppConfig, loader *Loader) *ConfigHolder {
	return &ConfigHolder{
		current:    initial,
		loader:     loader,
		configPath: loader.Path(),
		logger:     log.WithComponent("config"),
		debounce:   defaultDebounce,
	}
}

// Get returns the current configuration (thread-safe read).
func (h *ConfigHolder) Get() AppConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload loads and validates the configuration again. On failure the
// current configuration is kept.
func (h *ConfigHolder) Reload(_ context.Context) error {
	h.logger.Info().Str("event", "config.reload_start").Msg("reloading configuration")

	newCfg, err := h.loader.Load()
	metrics.RecordConfigReload(err == nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("event", "config.reload_failed").
			Msg("failed to load new configuration")
		return fmt.Errorf("load config: %w", err)
	}

	h.mu.Lock()
	oldCfg := h.current
	h.current = newCfg
	h.mu.Unlock()

	if newCfg.Log.Level != oldCfg.Log.Level {
		if err := log.SetLevel(newCfg.Log.Level); err != nil {
			h.logger.Warn().Err(err).Str("level", newCfg.Log.Level).Msg("could not apply log level")
		} else {
			h.logger.Info().
				Str("event", "config.log_level_changed").
				Str("old", oldCfg.Log.Level).
				Str("new", newCfg.Log.Level).
				Msg("log level updated")
		}
	}
	h.logRestartRequired(oldCfg, newCfg)
	h.notifyListeners(newCfg)

	h.logger.Info().
		Str("event", "config.reload_success").
		Msg("configuration reloaded successfully")
	return nil
}

// logRestartRequired names changed sections that only take effect after a
// restart.
func (h *ConfigHolder) logRestartRequired(oldCfg, newCfg AppConfig) {
	changed := make([]string, 0)
	if oldCfg.API != newCfg.API {
		changed = append(changed, "api")
	}
	if oldCfg.Metrics != newCfg.Metrics {
		changed = append(changed, "metrics")
	}
	if oldCfg.Store != newCfg.Store {
		changed = append(changed, "store")
	}
	if oldCfg.Cache != newCfg.Cache {
		changed = append(changed, "cache")
	}
	if oldCfg.Uploads != newCfg.Uploads {
		changed = append(changed, "uploads")
	}
	if oldCfg.Tracing != newCfg.Tracing {
		changed = append(changed, "tracing")
	}
	if oldCfg.Server != newCfg.Server {
		changed = append(changed, "server")
	}
	if len(changed) > 0 {
		h.logger.Warn().
			Str("event", "config.restart_required").
			Strs("sections", changed).
			Msg("configuration changed in sections that apply on restart")
	}
}

// StartWatcher starts watching the config file for changes.
// If no config file is in use, this is a no-op.
func (h *ConfigHolder) StartWatcher(ctx context.Context) error {
	if h.configPath == "" {
		h.logger.Info().
			Str("event", "config.watcher_disabled").
			Msg("config file watcher disabled (using ENV-only configuration)")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	// Watch the directory so atomic replaces (write temp, rename) are seen.
	if err := watcher.Add(filepath.Dir(h.configPath)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}

	h.watchMu.Lock()
	h.watcher = watcher
	h.done = make(chan struct{})
	h.watchMu.Unlock()

	h.logger.Info().
		Str("event", "config.watcher_started").
		Str("path", h.configPath).
		Msg("watching config file for changes")

	go h.watchLoop(ctx, watcher, h.done)
	return nil
}

func (h *ConfigHolder) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	target := filepath.Clean(h.configPath)

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str("event", "config.watcher_stopped").Msg("config watcher stopped")
			h.stopTimer()
			_ = watcher.Close()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				h.stopTimer()
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			h.logger.Debug().
				Str("event", "config.file_changed").
				Str("op", event.Op.String()).
				Msg("config file changed")
			h.scheduleReload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				h.stopTimer()
				return
			}
			h.logger.Error().
				Err(err).
				Str("event", "config.watcher_error").
				Msg("config watcher error")
		}
	}
}

// scheduleReload debounces bursts of events into one reload.
func (h *ConfigHolder) scheduleReload(ctx context.Context) {
	h.watchMu.Lock()
	defer h.watchMu.Unlock()
	if h.timer != nil {
		h.timer.Stop()
	}
	h.timer = time.AfterFunc(h.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		if err := h.Reload(ctx); err != nil {
			h.logger.Error().
				Err(err).
				Str("event", "config.auto_reload_failed").
				Msg("automatic config reload failed")
		}
	})
}

func (h *ConfigHolder) stopTimer() {
	h.watchMu.Lock()
	defer h.watchMu.Unlock()
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
}

// Stop stops the config watcher (if running) and waits for it to exit.
func (h *ConfigHolder) Stop() {
	h.watchMu.Lock()
	watcher, done := h.watcher, h.done
	h.watcher = nil
	h.watchMu.Unlock()

	if watcher == nil {
		return
	}
	_ = watcher.Close()
	<-done
}

// RegisterListener registers a channel to receive config reload notifications.
// Sends are non-blocking; a full channel misses that update.
func (h *ConfigHolder) RegisterListener(ch chan<- AppConfig) {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()
	h.reloadListeners = append(h.reloadListeners, ch)
}

func (h *ConfigHolder) notifyListeners(newCfg AppConfig) {
	h.reloadMu.RLock()
	defer h.reloadMu.RUnlock()
	for _, ch := range h.reloadListeners {
		select {
		case ch <- newCfg:
		default:
			h.logger.Warn().Str("event", "config.listener_full").Msg("config listener channel full, skipping notification")
		}
	}
}
