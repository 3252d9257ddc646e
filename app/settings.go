package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/dharvista/site/datamodels"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// SettingsSource provides the current site settings.
type SettingsSource interface {
	Settings() datamodels.SiteSettings
}

// StaticSettings is a SettingsSource that never changes.
type StaticSettings datamodels.SiteSettings

func (s StaticSettings) Settings() datamodels.SiteSettings {
	return datamodels.SiteSettings(s).WithDefaults()
}

// LoadSettings reads a YAML settings file. Keys missing from the file keep their defaults.
func LoadSettings(path string) (datamodels.SiteSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return datamodels.SiteSettings{}, errors.Join(errors.New("failed to read settings file"), err)
	}
	var s datamodels.SiteSettings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return datamodels.SiteSettings{}, errors.Join(errors.New("failed to parse settings file"), err)
	}
	return s.WithDefaults(), nil
}

// SettingsWatcher serves settings from a file and reloads them whenever the file changes.
// A file that fails to parse is logged and the previous settings are kept.
type SettingsWatcher struct {
	path   string
	logger *slog.Logger

	mu       sync.RWMutex
	current  datamodels.SiteSettings
	reloads  int
	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	stopOnce sync.Once
}

// NewSettingsWatcher loads the settings file once. Call Start to follow changes.
func NewSettingsWatcher(path string, logger *slog.Logger) (*SettingsWatcher, error) {
	s, err := LoadSettings(path)
	if err != nil {
		return nil, err
	}
	return &SettingsWatcher{
		path:    path,
		logger:  logger.With("settings", path),
		current: s,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

func (sw *SettingsWatcher) Settings() datamodels.SiteSettings {
	sw.mu.RLock()
	defer sw.mu.RUnlock()
	return sw.current
}

// Reloads is the number of successful reloads since the watcher started.
func (sw *SettingsWatcher) Reloads() int {
	sw.mu.RLock()
	defer sw.mu.RUnlock()
	return sw.reloads
}

// Start begins watching the settings file. It does not block.
func (sw *SettingsWatcher) Start(ctx context.Context) error {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.running {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Editors often replace the file rather than writing it, so watch the directory.
	if err := watcher.Add(filepath.Dir(sw.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch settings directory: %w", err)
	}
	sw.watcher = watcher
	sw.running = true
	go sw.run(ctx)
	sw.logger.Info("Watching site settings")
	return nil
}

// Stop stops watching and waits for the watch loop to exit.
func (sw *SettingsWatcher) Stop() {
	sw.mu.RLock()
	running := sw.running
	sw.mu.RUnlock()
	if !running {
		return
	}
	sw.stopOnce.Do(func() {
		close(sw.stopCh)
		<-sw.doneCh
		if err := sw.watcher.Close(); err != nil {
			sw.logger.Error("Failed to close settings watcher", "error", err)
		}
	})
}

func (sw *SettingsWatcher) run(ctx context.Context) {
	defer close(sw.doneCh)
	target := filepath.Clean(sw.path)
	for {
		select {
		case <-ctx.Done():
			return
		case <-sw.stopCh:
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			sw.reload()
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.logger.Error("Settings watcher error", "error", err)
		}
	}
}

func (sw *SettingsWatcher) reload() {
	s, err := LoadSettings(sw.path)
	if err != nil {
		sw.logger.Warn("Keeping previous site settings", "error", err)
		return
	}
	sw.mu.Lock()
	sw.current = s
	sw.reloads++
	sw.mu.Unlock()
	sw.logger.Info("Reloaded site settings")
}
