package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/asheshgoplani/occtl/internal/alert"
	"github.com/asheshgoplani/occtl/internal/logging"
	"github.com/asheshgoplani/occtl/internal/tmux"
	"github.com/asheshgoplani/occtl/internal/watch"
)

var watchLog = logging.ForComponent(logging.CompWatch)

// watchTmux is the slice of the tmux client one watch check uses.
type watchTmux interface {
	HasSession(name string) (bool, error)
	CaptureLastLines(session, window string, lines int) (string, error)
	PaneLastActivity(session, window string) (int64, error)
}

// watchDeps are the injectable collaborators of one watch invocation.
// The store is only read: focus lookup plus the alert context fields.
type watchDeps struct {
	store    alert.ContextStore
	tmux     watchTmux
	dispatch func(alert.Alert) map[string]alert.Outcome
	now      func() time.Time
	out      io.Writer
}

func handleWatch(args []string) int {
	fs := newFlagSet("watch")
	name := fs.String("name", "", "session to watch (focused by default)")
	idleSeconds := fs.Int("idle-seconds", watch.DefaultIdleThreshold, "idle threshold in seconds")
	captureLines := fs.Int("capture-lines", 120, "pane lines to inspect")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	store := openStore()
	defer store.Close()

	dispatcher := alert.NewDefaultDispatcher(store.Webhook(), store.AlertRouter())
	deps := watchDeps{
		store:    store,
		tmux:     tmux.NewClient(),
		dispatch: dispatcher.Dispatch,
		now:      time.Now,
		out:      os.Stdout,
	}
	return runWatch(deps, *name, *idleSeconds, *captureLines)
}

// runWatch performs one check of one session: capture the pane, classify it,
// and fan an alert out when the classification warrants one. One line of
// output per check; alert delivery failures never change the outcome.
func runWatch(deps watchDeps, name string, idleSeconds, captureLines int) int {
	session := name
	if session == "" {
		session = deps.store.GetFocus()
	}
	if session == "" {
		fmt.Fprintln(deps.out, "no session provided and nothing focused")
		return 1
	}

	exists, err := deps.tmux.HasSession(session)
	if err != nil {
		fmt.Fprintln(deps.out, err.Error())
		return 1
	}
	if !exists {
		fmt.Fprintf(deps.out, "session not found: %s\n", session)
		return 1
	}

	paneText, err := deps.tmux.CaptureLastLines(session, tmux.DefaultWindow, captureLines)
	if err != nil {
		fmt.Fprintln(deps.out, err.Error())
		return 1
	}
	last, err := deps.tmux.PaneLastActivity(session, tmux.DefaultWindow)
	if err != nil {
		fmt.Fprintln(deps.out, err.Error())
		return 1
	}
	idle := watch.IdleSince(last, deps.now())

	cfg := watch.DefaultConfig()
	cfg.IdleThreshold = idleSeconds
	cls := watch.Classify(watch.Snapshot{
		SessionID:   session,
		Text:        paneText,
		IdleSeconds: idle,
	}, cfg)

	watchLog.Debug("classified",
		slog.String("session", session),
		slog.String("kind", cls.Kind.String()),
		slog.Int("idle_seconds", idle))

	if cls.Alertable() {
		projectDir, host := alert.ResolveContext(deps.store, session)
		if a, ok := alert.FromClassification(session, cls, projectDir, host); ok {
			deps.dispatch(a)
		}
	}

	switch cls.Kind {
	case watch.KindWaitingForInput:
		fmt.Fprintf(deps.out, "notified: %s\tpattern=%s\n", session, cls.Pattern)
	case watch.KindStalled:
		fmt.Fprintf(deps.out, "notified: %s\tstall_pattern=%s\tidle=%ds\n", session, cls.Pattern, cls.IdleSeconds)
	case watch.KindIdle:
		fmt.Fprintf(deps.out, "notified: %s\tidle=%ds\n", session, cls.IdleSeconds)
	default:
		fmt.Fprintf(deps.out, "ok: %s\tidle=%ds\n", session, cls.IdleSeconds)
	}
	return 0
}
