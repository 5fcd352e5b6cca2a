package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/poltergeist/mlfq/pkg/logger"
	"github.com/poltergeist/mlfq/pkg/types"
)

// ReloadEventType represents the type of reload event
type ReloadEventType string

const (
	ReloadEventTypeModified ReloadEventType = "modified"
	ReloadEventTypeCreated  ReloadEventType = "created"
	ReloadEventTypeRemoved  ReloadEventType = "removed"
	ReloadEventTypeError    ReloadEventType = "error"
)

// ReloadEvent describes one reload attempt. Exactly one of Config and
// Error is set.
type ReloadEvent struct {
	Path      string
	Timestamp time.Time
	Type      ReloadEventType
	Config    *types.SimulationConfig
	Error     error
}

// ReloadCallback is called after every reload attempt.
type ReloadCallback func(ReloadEvent)

// ReloadManager watches a configuration file and reports each valid or
// invalid revision to its callbacks. Bursts of file events are debounced.
type ReloadManager struct {
	path     string
	log      logger.Logger
	manager  *Manager
	debounce time.Duration

	mu        sync.Mutex
	callbacks []ReloadCallback
	watcher   *fsnotify.Watcher
	timer     *time.Timer
	lastMod   time.Time
	lastEvent *ReloadEvent
	done      chan struct{}
}

// NewReloadManager creates a reload manager for path.
func NewReloadManager(path string, log logger.Logger) *ReloadManager {
	if log == nil {
		log = logger.Discard()
	}
	return &ReloadManager{
		path:     path,
		log:      log.WithComponent("config"),
		manager:  NewManager(),
		debounce: 300 * time.Millisecond,
	}
}

// SetDebouncePeriod sets how long to wait for file events to settle.
func (rm *ReloadManager) SetDebouncePeriod(d time.Duration) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.debounce = d
}

// AddCallback registers a reload callback.
func (rm *ReloadManager) AddCallback(cb ReloadCallback) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.callbacks = append(rm.callbacks, cb)
}

// Start begins watching. The directory is watched rather than the file so
// that editors replacing the file by rename are noticed.
func (rm *ReloadManager) Start() error {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.watcher != nil {
		return fmt.Errorf("already watching %s", rm.path)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(rm.path)); err != nil {
		w.Close()
		return fmt.Errorf("failed to watch config directory: %w", err)
	}
	if st, err := os.Stat(rm.path); err == nil {
		rm.lastMod = st.ModTime()
	}

	rm.watcher = w
	rm.done = make(chan struct{})
	go rm.loop(w, rm.done)

	rm.log.Debug("Watching configuration", logger.WithField("path", rm.path))
	return nil
}

// Stop ends watching. It is safe to call more than once.
func (rm *ReloadManager) Stop() error {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.watcher == nil {
		return nil
	}
	close(rm.done)
	if rm.timer != nil {
		rm.timer.Stop()
		rm.timer = nil
	}
	err := rm.watcher.Close()
	rm.watcher = nil
	return err
}

// IsWatching reports whether Start has been called without Stop.
func (rm *ReloadManager) IsWatching() bool {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.watcher != nil
}

// TriggerReload reloads immediately, regardless of modification time.
func (rm *ReloadManager) TriggerReload() {
	rm.reload(ReloadEventTypeModified, true)
}

// LastEvent returns the most recent reload event, or nil.
func (rm *ReloadManager) LastEvent() *ReloadEvent {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.lastEvent
}

func (rm *ReloadManager) loop(w *fsnotify.Watcher, done <-chan struct{}) {
	defer func() {
		if r := recover(); r != nil {
			rm.log.Error("Configuration watcher panic recovered", logger.WithField("panic", r))
		}
	}()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if !rm.matches(ev.Name) {
				continue
			}
			rm.schedule(eventType(ev.Op))
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			rm.log.Error("Configuration watcher error", logger.WithField("error", err))
			rm.notify(ReloadEvent{Type: ReloadEventTypeError, Error: err})
		}
	}
}

func (rm *ReloadManager) matches(name string) bool {
	base := filepath.Base(rm.path)
	got := filepath.Base(name)
	return got == base || (strings.HasPrefix(got, base) && strings.HasSuffix(got, ".tmp"))
}

func eventType(op fsnotify.Op) ReloadEventType {
	switch {
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return ReloadEventTypeRemoved
	case op.Has(fsnotify.Create):
		return ReloadEventTypeCreated
	default:
		return ReloadEventTypeModified
	}
}

func (rm *ReloadManager) schedule(t ReloadEventType) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.watcher == nil {
		return
	}
	if rm.timer != nil {
		rm.timer.Stop()
	}
	rm.timer = time.AfterFunc(rm.debounce, func() { rm.reload(t, false) })
}

func (rm *ReloadManager) reload(t ReloadEventType, force bool) {
	st, err := os.Stat(rm.path)
	if err != nil {
		if t != ReloadEventTypeRemoved {
			t = ReloadEventTypeError
		}
		rm.notify(ReloadEvent{Type: t, Error: fmt.Errorf("configuration unavailable: %w", err)})
		return
	}

	rm.mu.Lock()
	if !force && !st.ModTime().After(rm.lastMod) {
		rm.mu.Unlock()
		return
	}
	rm.lastMod = st.ModTime()
	rm.mu.Unlock()

	cfg, err := rm.manager.LoadConfig(rm.path)
	if err != nil {
		rm.log.Warn("Configuration rejected", logger.WithField("error", err))
		rm.notify(ReloadEvent{Type: ReloadEventTypeError, Error: err})
		return
	}
	rm.log.Info("Configuration reloaded",
		logger.WithField("jobs", len(cfg.Jobs)),
		logger.WithField("policy", cfg.Scheduler.Policy))
	rm.notify(ReloadEvent{Type: t, Config: cfg})
}

func (rm *ReloadManager) notify(ev ReloadEvent) {
	ev.Path = rm.path
	ev.Timestamp = time.Now()

	rm.mu.Lock()
	rm.lastEvent = &ev
	callbacks := append([]ReloadCallback(nil), rm.callbacks...)
	rm.mu.Unlock()

	for _, cb := range callbacks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					rm.log.Error("Reload callback panic recovered", logger.WithField("panic", r))
				}
			}()
			cb(ev)
		}()
	}
}
