package config

import (
	"context"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/leonardotrapani/captrans/internal/logging"
)

const watchDebounce = 300 * time.Millisecond

// Watcher reports edits to the config file. The running configuration is
// frozen; a valid edit that differs from it is handed to onChange so the
// caller can ask for a restart.
type Watcher struct {
	path     string
	current  *Config
	onChange func(*Config)
	logger   zerolog.Logger

	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
}

func NewWatcher(configPath string, current *Config, onChange func(*Config)) *Watcher {
	return &Watcher{
		path:     configPath,
		current:  current,
		onChange: onChange,
		logger:   logging.WithComponent("config"),
	}
}

// Start watches the config directory until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// editors replace the file, so watch the directory
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return err
	}
	w.watcher = watcher

	w.wg.Add(1)
	go w.watchLoop(ctx)

	w.logger.Info().Str("path", w.path).Msg("Watching config for changes")
	return nil
}

func (w *Watcher) Stop() {
	if w.watcher != nil {
		w.watcher.Close()
	}
	w.wg.Wait()
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer w.wg.Done()
	configFileName := filepath.Base(w.path)

	debounce := time.NewTimer(time.Hour)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != configFileName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounce.Reset(watchDebounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("Config watcher error")

		case <-debounce.C:
			w.check()

		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) check() {
	next, err := LoadFrom(w.path)
	if err != nil {
		w.logger.Warn().Err(err).Msg("Config changed but could not be loaded")
		return
	}
	if err := next.Validate(); err != nil {
		w.logger.Warn().Err(err).Msg("Config changed but is invalid")
		return
	}
	if reflect.DeepEqual(next, w.current) {
		return
	}

	w.logger.Info().Str("path", w.path).Msg("Config changed, restart required to apply")
	w.current = next
	if w.onChange != nil {
		w.onChange(next)
	}
}
