package ui

import (
	"context"
	"log/slog"
	"sync"

	dark "github.com/thiagokokada/dark-mode-go"
)

// ThemeWatcher monitors OS dark mode changes so the picker can restyle
// itself live. Same shape as StoreWatcher: goroutine, buffered channel,
// idempotent Close.
type ThemeWatcher struct {
	changeCh  chan bool // true=dark, false=light
	closeCh   chan struct{}
	closeOnce sync.Once
}

// NewThemeWatcher creates and starts a theme watcher.
// Returns nil if dark mode watching is unavailable on this platform.
func NewThemeWatcher(parentCtx context.Context) *ThemeWatcher {
	ctx, cancel := context.WithCancel(parentCtx)

	events, errs, err := dark.WatchDarkMode(ctx)
	if err != nil {
		cancel()
		uiLog.Warn("theme_watcher_init_failed", slog.String("error", err.Error()))
		return nil
	}

	tw := &ThemeWatcher{
		changeCh: make(chan bool, 1),
		closeCh:  make(chan struct{}),
	}

	go tw.watchLoop(cancel, events, errs)
	return tw
}

func (tw *ThemeWatcher) watchLoop(cancel context.CancelFunc, events <-chan bool, errs <-chan error) {
	defer cancel()
	for {
		select {
		case <-tw.closeCh:
			return
		case isDark, ok := <-events:
			if !ok {
				return
			}
			select {
			case tw.changeCh <- isDark:
			default:
			}
		case err, ok := <-errs:
			if ok && err != nil {
				uiLog.Warn("theme_watcher_error", slog.String("error", err.Error()))
			}
		}
	}
}

// ChangeChannel returns the channel that receives dark mode changes.
func (tw *ThemeWatcher) ChangeChannel() <-chan bool {
	return tw.changeCh
}

// Close stops the watcher goroutine. Safe to call multiple times.
func (tw *ThemeWatcher) Close() {
	tw.closeOnce.Do(func() {
		close(tw.closeCh)
	})
}
