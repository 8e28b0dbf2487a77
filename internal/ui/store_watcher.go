package ui

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/asheshgoplani/occtl/internal/config"
	"github.com/asheshgoplani/occtl/internal/platform"
)

// pollInterval is how often the state database timestamp is checked.
const pollInterval = 2 * time.Second

// StoreWatcher signals the picker to rebuild its rows when the config store
// changes underneath it. Mapping edits come in through fsnotify on
// mappings.toml; state database writes are caught by polling the metadata
// last_modified timestamp, which works on filesystems where fsnotify does
// not (9p, NFS, WSL).
type StoreWatcher struct {
	store     *config.Store
	fsw       *fsnotify.Watcher
	reloadCh  chan struct{}
	closeCh   chan struct{}
	closeOnce sync.Once

	lastModified int64
	modMu        sync.Mutex
}

// NewStoreWatcher creates a watcher over the given store. fsnotify setup
// failure is not fatal; the watcher degrades to polling only.
func NewStoreWatcher(store *config.Store) *StoreWatcher {
	sw := &StoreWatcher{
		store:    store,
		reloadCh: make(chan struct{}, 1),
		closeCh:  make(chan struct{}),
	}
	if ts, err := store.DB().LastModified(); err == nil {
		sw.lastModified = ts
	}

	if warn := platform.CheckFsnotifySupport(store.MappingsPath()); warn != "" {
		uiLog.Warn("store_watcher_polling_only", slog.String("reason", warn))
		return sw
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		uiLog.Warn("store_watcher_fsnotify_failed", slog.String("error", err.Error()))
		return sw
	}
	// Watch the directory, not the file: editors and the atomic
	// tmp+rename in SetMapping replace the inode.
	if err := fsw.Add(filepath.Dir(store.MappingsPath())); err != nil {
		uiLog.Warn("store_watcher_add_failed", slog.String("error", err.Error()))
		fsw.Close()
		return sw
	}
	sw.fsw = fsw
	return sw
}

// Start begins watching (non-blocking).
func (sw *StoreWatcher) Start() {
	go sw.pollLoop()
	if sw.fsw != nil {
		go sw.fsnotifyLoop()
	}
}

// ReloadChannel returns the channel that signals when a reload is needed.
func (sw *StoreWatcher) ReloadChannel() <-chan struct{} {
	return sw.reloadCh
}

func (sw *StoreWatcher) fsnotifyLoop() {
	mappings := sw.store.MappingsPath()
	for {
		select {
		case <-sw.closeCh:
			return
		case event, ok := <-sw.fsw.Events:
			if !ok {
				return
			}
			if event.Name != mappings {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			uiLog.Debug("store_watcher_mappings_changed", slog.String("op", event.Op.String()))
			sw.notify()
		case err, ok := <-sw.fsw.Errors:
			if !ok {
				return
			}
			uiLog.Debug("store_watcher_fsnotify_error", slog.String("error", err.Error()))
		}
	}
}

func (sw *StoreWatcher) pollLoop() {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sw.closeCh:
			return
		case <-ticker.C:
			sw.checkDB()
		}
	}
}

func (sw *StoreWatcher) checkDB() {
	ts, err := sw.store.DB().LastModified()
	if err != nil {
		uiLog.Debug("store_watcher_poll_failed", slog.String("error", err.Error()))
		return
	}

	sw.modMu.Lock()
	changed := ts > sw.lastModified
	if changed {
		sw.lastModified = ts
	}
	sw.modMu.Unlock()

	if changed {
		uiLog.Debug("store_watcher_db_changed", slog.Int64("timestamp", ts))
		sw.notify()
	}
}

// notify does a non-blocking send (drop if channel full).
func (sw *StoreWatcher) notify() {
	select {
	case sw.reloadCh <- struct{}{}:
	default:
	}
}

// Close stops the watcher and releases resources. Safe to call multiple times.
func (sw *StoreWatcher) Close() error {
	var err error
	sw.closeOnce.Do(func() {
		close(sw.closeCh)
		if sw.fsw != nil {
			err = sw.fsw.Close()
		}
	})
	return err
}
