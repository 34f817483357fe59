// Package watcher turns filesystem events below the model root into debounced sync scans.
package watcher

import (
	"context"
	"errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"os"
	"path/filepath"
	"print-vault/fsutil"
	"print-vault/settings"
	"strings"
	"sync"
	"time"
)

var ErrModelRootNotSet = errors.New("model root is not set")

type State string

const (
	StateDisabled State = "disabled"
	StateIdle     State = "watching"
	StatePending  State = "pending"
	StateFlushing State = "flushing"
)

// Syncer is what the watcher triggers. The scanner implements it.
type Syncer interface {
	Sync(ctx context.Context, root string) error
	IsScanning() bool
}

type Settings interface {
	Get(ctx context.Context, key string) (string, error)
	GetBool(ctx context.Context, key string) (bool, error)
	SetBool(ctx context.Context, key string, value bool) error
}

type Options struct {
	Debounce time.Duration
	Backstop time.Duration
}

type Status struct {
	State          State      `json:"state"`
	Enabled        bool       `json:"enabled"`
	Root           string     `json:"root,omitempty"`
	WatchCount     int        `json:"watch_count"`
	PendingChanges int        `json:"pending_changes"`
	LastFlush      *time.Time `json:"last_flush,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
}

type Watcher struct {
	syncer   Syncer
	settings Settings
	options  Options
	log      *zap.SugaredLogger
	now      func() time.Time

	mutex      sync.Mutex
	fsWatcher  *fsnotify.Watcher
	cancel     context.CancelFunc
	ctx        context.Context
	root       string
	enabled    bool
	state      State
	watched    map[string]bool
	pending    int
	burstStart time.Time
	timer      *time.Timer
	lastFlush  *time.Time
	lastError  string
}

func New(syncer Syncer, settings Settings, options Options, log *zap.SugaredLogger) *Watcher {
	return &Watcher{
		syncer:   syncer,
		settings: settings,
		options:  options,
		log:      log,
		now:      time.Now,
		state:    StateDisabled,
	}
}

// Initialize starts watching when the persisted settings say so.
func (w *Watcher) Initialize(ctx context.Context) error {
	enabled, err := w.settings.GetBool(ctx, settings.FileWatcherEnabled)

	if err != nil {
		return err
	}

	w.mutex.Lock()
	w.enabled = enabled
	w.mutex.Unlock()

	if !enabled {
		return nil
	}

	root, err := w.settings.Get(ctx, settings.ModelRoot)

	if err != nil {
		return err
	}

	if root == "" {
		w.log.Warn("file watcher is enabled but no model root is set")
		return nil
	}

	return w.Start(root)
}

// Start replaces any current watch set with one rooted at dir.
func (w *Watcher) Start(dir string) error {
	root, err := filepath.Abs(dir)

	if err != nil || !fsutil.IsDir(root) {
		return ErrModelRootNotSet
	}

	w.Stop()

	fsWatcher, err := fsnotify.NewWatcher()

	if err != nil {
		return err
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.fsWatcher = fsWatcher
	w.root = root
	w.enabled = true
	w.state = StateIdle
	w.watched = map[string]bool{}
	w.lastError = ""
	w.refreshWatches()

	go w.loop(fsWatcher)

	w.log.Infow("file watcher started", "root", root, "watches", len(w.watched))
	return nil
}

// Stop releases the watches and drops pending changes. Safe to call when not watching.
func (w *Watcher) Stop() {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}

	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}

	if w.fsWatcher != nil {
		if err := w.fsWatcher.Close(); err != nil {
			w.log.Warnw("could not close file watcher", "error", err)
		}

		w.fsWatcher = nil
		w.log.Infow("file watcher stopped", "root", w.root)
	}

	w.state = StateDisabled
	w.watched = nil
	w.pending = 0
}

// SetEnabled persists the flag and starts or stops watching to match.
func (w *Watcher) SetEnabled(ctx context.Context, enabled bool) error {
	if err := w.settings.SetBool(ctx, settings.FileWatcherEnabled, enabled); err != nil {
		return err
	}

	w.mutex.Lock()
	w.enabled = enabled
	w.mutex.Unlock()

	if !enabled {
		w.Stop()
		return nil
	}

	return w.startFromSettings(ctx)
}

// Restart picks up a changed model root and directories created since the last start.
func (w *Watcher) Restart(ctx context.Context) error {
	w.Stop()

	w.mutex.Lock()
	enabled := w.enabled
	w.mutex.Unlock()

	if !enabled {
		return nil
	}

	return w.startFromSettings(ctx)
}

func (w *Watcher) Status() Status {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	return Status{
		State:          w.state,
		Enabled:        w.enabled,
		Root:           w.root,
		WatchCount:     len(w.watched),
		PendingChanges: w.pending,
		LastFlush:      w.lastFlush,
		LastError:      w.lastError,
	}
}

func (w *Watcher) startFromSettings(ctx context.Context) error {
	root, err := w.settings.Get(ctx, settings.ModelRoot)

	if err != nil {
		return err
	}

	if root == "" {
		return ErrModelRootNotSet
	}

	return w.Start(root)
}

func (w *Watcher) loop(fsWatcher *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return
			}

			w.handleEvent(event)

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}

			w.log.Warnw("file watcher error", "error", err)
			w.mutex.Lock()
			w.lastError = err.Error()
			w.mutex.Unlock()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !qualifies(event) {
		return
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.state == StateDisabled {
		return
	}

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		delete(w.watched, event.Name)
	}

	now := w.now()

	if w.pending == 0 {
		w.burstStart = now
	}

	w.pending++

	if w.state == StateIdle {
		w.state = StatePending
	}

	delay := w.options.Debounce

	// A steady stream of events still gets flushed once the burst is older than the backstop
	if now.Sub(w.burstStart) >= w.options.Backstop {
		delay = 0
	}

	if w.timer != nil {
		w.timer.Stop()
	}

	w.timer = time.AfterFunc(delay, w.flush)
}

func (w *Watcher) flush() {
	w.mutex.Lock()

	if w.state == StateDisabled || w.pending == 0 {
		w.mutex.Unlock()
		return
	}

	if w.syncer.IsScanning() {
		w.log.Infow("scan already running, dropping pending changes", "pending", w.pending)
		w.pending = 0
		w.state = StateIdle
		w.mutex.Unlock()
		return
	}

	flushed := w.pending
	root := w.root
	ctx := w.ctx
	w.state = StateFlushing
	w.mutex.Unlock()

	w.log.Infow("syncing after file changes", "root", root, "changes", flushed)
	err := w.syncer.Sync(ctx, root)

	w.mutex.Lock()
	defer w.mutex.Unlock()

	now := w.now()
	w.lastFlush = &now
	w.pending -= flushed

	if err != nil {
		w.log.Warnw("sync after file changes failed", "root", root, "error", err)
		w.lastError = err.Error()
	}

	if w.state == StateDisabled {
		w.pending = 0
		return
	}

	w.refreshWatches()

	if w.pending > 0 {
		w.state = StatePending
	} else {
		w.pending = 0
		w.state = StateIdle
	}
}

// refreshWatches brings the watches in line with the watch set on disk. Directories removed or
// renamed since the last refresh are dropped and watched again if they are back. Callers hold the mutex.
func (w *Watcher) refreshWatches() {
	if w.fsWatcher == nil {
		return
	}

	wanted := map[string]bool{}
	dirs := watchSet(w.root)

	for _, dir := range dirs {
		wanted[dir] = true
	}

	listed := map[string]bool{}

	for _, dir := range w.fsWatcher.WatchList() {
		if wanted[dir] && w.watched[dir] {
			listed[dir] = true
			continue
		}

		// stale watch, e.g. on a directory renamed away; the error only says it is already gone
		_ = w.fsWatcher.Remove(dir)
	}

	for _, dir := range dirs {
		if listed[dir] {
			continue
		}

		if err := w.fsWatcher.Add(dir); err != nil {
			w.log.Warnw("could not watch directory", "path", dir, "error", err)
		}
	}

	w.watched = map[string]bool{}

	for _, dir := range w.fsWatcher.WatchList() {
		w.watched[dir] = true
	}
}

// watchSet is the root, its immediate children and the designer folders of any Paid folder.
func watchSet(root string) []string {
	dirs := []string{root}

	for _, child := range subdirectories(root) {
		dirs = append(dirs, child)

		paid := filepath.Join(child, "Paid")

		if filepath.Base(child) == "Paid" {
			paid = child
		} else if fsutil.IsDir(paid) {
			dirs = append(dirs, paid)
		} else {
			continue
		}

		dirs = append(dirs, subdirectories(paid)...)
	}

	return dirs
}

func subdirectories(dir string) []string {
	entries, err := os.ReadDir(dir)

	if err != nil {
		return nil
	}

	var dirs []string

	for _, entry := range entries {
		if entry.IsDir() && !fsutil.IsHidden(entry.Name()) {
			dirs = append(dirs, filepath.Join(dir, entry.Name()))
		}
	}

	return dirs
}

func qualifies(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	name := filepath.Base(event.Name)

	return !fsutil.IsHidden(name) &&
		!strings.HasSuffix(name, ".icloud") &&
		!strings.HasSuffix(name, ".tmp") &&
		name != ".DS_Store"
}
