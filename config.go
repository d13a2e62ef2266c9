package quanta

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v2"
)

// Config holds the ambient policy toggles a deployment can tune without
// touching capacity: capacity and chunk size are fixed for a Pool's whole
// lifetime (per spec.md §9, re-init is out of scope), but whether freed
// payload bytes are zeroed is a pure runtime policy and safe to flip live.
type Config struct {
	ZeroOnFree bool `yaml:"zeroOnFree"`
}

// LoadConfig reads and parses a YAML config file. A missing file is not an
// error: it yields the zero-value Config (ZeroOnFree disabled), matching
// the allocator's historical default of leaving freed bytes untouched.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("quanta: read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("quanta: parse config %s: %w", path, err)
	}

	return cfg, nil
}

// SetZeroOnFree toggles whether Release and Resize's shrink/relocate paths
// clear a slot's payload bytes before returning it to the free pool. It
// takes effect on the next call into the Pool; it never touches slots
// already free.
func (p *Pool) SetZeroOnFree(enabled bool) {
	p.zeroOnFree = enabled
}

// ConfigWatcher applies a Config's policy toggles to a Pool on load and
// again every time the backing file changes on disk, using fsnotify the
// same way the teacher's runtime watches its own policy files. It never
// touches the Pool's capacity or region: only ZeroOnFree is live-tunable.
type ConfigWatcher struct {
	pool    *Pool
	watcher *fsnotify.Watcher
	path    string
	errors  chan error
	closed  atomic.Bool
}

// WatchConfig loads path once, applies it to pool, and starts watching the
// file for further changes. Callers must call Close when done to release
// the underlying inotify/kqueue descriptor.
func WatchConfig(pool *Pool, path string) (*ConfigWatcher, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	pool.SetZeroOnFree(cfg.ZeroOnFree)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("quanta: start config watcher: %w", err)
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, fmt.Errorf("quanta: watch config %s: %w", path, err)
	}

	w := &ConfigWatcher{
		pool:    pool,
		watcher: fw,
		path:    path,
		errors:  make(chan error, 1),
	}
	go w.loop()

	return w, nil
}

func (w *ConfigWatcher) loop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			cfg, err := LoadConfig(w.path)
			if err != nil {
				w.reportError(err)
				continue
			}
			w.pool.SetZeroOnFree(cfg.ZeroOnFree)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.reportError(err)
		}
	}
}

func (w *ConfigWatcher) reportError(err error) {
	select {
	case w.errors <- err:
	default:
		// A previous error is still unread; drop this one rather than block
		// the watch loop.
	}
}

// Errors returns the channel ConfigWatcher reports reload failures on. It
// is buffered by one and never closed; readers should select on it
// opportunistically rather than range over it.
func (w *ConfigWatcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watch loop and releases its file descriptor. Safe to
// call more than once.
func (w *ConfigWatcher) Close() error {
	if w.closed.Swap(true) {
		return nil
	}

	return w.watcher.Close()
}
