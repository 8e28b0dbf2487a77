package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/asheshgoplani/occtl/internal/alert"
	"github.com/asheshgoplani/occtl/internal/config"
	"github.com/asheshgoplani/occtl/internal/tmux"
	"github.com/asheshgoplani/occtl/internal/ui"
	"github.com/asheshgoplani/occtl/internal/watch"
)

// sessionTmux is the slice of the tmux client the session commands use.
type sessionTmux interface {
	HasSession(name string) (bool, error)
	ListSessions() ([]tmux.SessionInfo, error)
	NewSession(name, workdir string) error
	NewWindow(name, window, workdir string) error
	SendKeys(target string, keys ...string) error
	KillSession(name string) error
	PaneLastActivity(session, window string) (int64, error)
	Attach(name string) error
}

func handleNew(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: occtl new <name>")
		return 2
	}
	store := openStore()
	defer store.Close()
	return runNew(store, tmux.NewClient(), os.Stdout, args[0])
}

// runNew creates a detached session in the mapped directory, starts
// opencode in the main window, and adds logs and shell windows. An
// existing session is just focused.
func runNew(store *config.Store, tm sessionTmux, out io.Writer, name string) int {
	exists, err := tm.HasSession(name)
	if err != nil {
		return reportTmuxError(err)
	}
	if exists {
		if err := store.SetFocus(name); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "exists+focused: %s\n", name)
		return 0
	}

	workdir := store.GetMapping(name)
	if workdir == "" {
		fmt.Fprintf(out, "No mapping for '%s'. Add one:\n  occtl map %s /path/to/project\n", name, name)
		return 1
	}
	if info, err := os.Stat(workdir); err != nil || !info.IsDir() {
		fmt.Fprintf(out, "Mapped directory does not exist: %s\n", workdir)
		return 1
	}

	if err := tm.NewSession(name, workdir); err != nil {
		return reportTmuxError(err)
	}
	if err := tm.SendKeys(name+":"+tmux.DefaultWindow, "opencode", "Enter"); err != nil {
		return reportTmuxError(err)
	}
	if err := tm.NewWindow(name, "logs", workdir); err != nil {
		return reportTmuxError(err)
	}
	if err := tm.NewWindow(name, "shell", workdir); err != nil {
		return reportTmuxError(err)
	}

	if err := store.SetFocus(name); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "created+focused: %s\tdir=%s\n", name, workdir)
	return 0
}

func handleEnsure(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: occtl ensure <name>")
		return 2
	}
	store := openStore()
	defer store.Close()
	return runEnsure(store, tmux.NewClient(), os.Stdout, args[0])
}

// runEnsure creates the session when missing, otherwise just focuses it.
func runEnsure(store *config.Store, tm sessionTmux, out io.Writer, name string) int {
	exists, err := tm.HasSession(name)
	if err != nil {
		return reportTmuxError(err)
	}
	if !exists {
		return runNew(store, tm, out, name)
	}
	if err := store.SetFocus(name); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "focused: %s\n", name)
	return 0
}

func handleLs(_ []string) int {
	return runLs(tmux.NewClient(), os.Stdout)
}

func runLs(tm sessionTmux, out io.Writer) int {
	rows, err := tm.ListSessions()
	if err != nil {
		return reportTmuxError(err)
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "(no tmux sessions)")
		return 0
	}
	for _, r := range rows {
		attached := 0
		if r.Attached {
			attached = 1
		}
		fmt.Fprintf(out, "%s\tattached=%d\twindows=%d\n", r.Name, attached, r.Windows)
	}
	return 0
}

func handleSay(args []string) int {
	fs := newFlagSet("say")
	session := fs.String("session", "", "target session (focused by default)")
	if err := fs.Parse(normalizeArgs(fs, args)); err != nil {
		return 2
	}
	text := strings.Join(fs.Args(), " ")
	if text == "" {
		fmt.Fprintln(os.Stderr, "Usage: occtl say [--session <name>] <text>")
		return 2
	}

	store := openStore()
	defer store.Close()
	return runSay(store, tmux.NewClient(), os.Stdout, *session, text)
}

// runSay types text into the session's main window and presses Enter.
func runSay(store *config.Store, tm sessionTmux, out io.Writer, session, text string) int {
	session = resolveSession(session, store)
	if session == "" {
		fmt.Fprintln(out, "no focused session; run: occtl focus <name>")
		return 1
	}
	exists, err := tm.HasSession(session)
	if err != nil {
		return reportTmuxError(err)
	}
	if !exists {
		fmt.Fprintf(out, "session not found: %s\n", session)
		return 1
	}
	if err := tm.SendKeys(session+":"+tmux.DefaultWindow, text, "Enter"); err != nil {
		return reportTmuxError(err)
	}
	fmt.Fprintf(out, "sent: %s\t%s\n", session, text)
	return 0
}

func handleEnter(args []string) int {
	fs := newFlagSet("enter")
	session := fs.String("session", "", "target session (focused by default)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	store := openStore()
	defer store.Close()
	return runEnter(store, tmux.NewClient(), os.Stdout, *session)
}

// runEnter presses Enter in the session's main window, typically to accept
// a pending prompt.
func runEnter(store *config.Store, tm sessionTmux, out io.Writer, session string) int {
	session = resolveSession(session, store)
	if session == "" {
		fmt.Fprintln(out, "no focused session; run: occtl focus <name>")
		return 1
	}
	exists, err := tm.HasSession(session)
	if err != nil {
		return reportTmuxError(err)
	}
	if !exists {
		fmt.Fprintf(out, "session not found: %s\n", session)
		return 1
	}
	if err := tm.SendKeys(session+":"+tmux.DefaultWindow, "Enter"); err != nil {
		return reportTmuxError(err)
	}
	fmt.Fprintf(out, "enter: %s\n", session)
	return 0
}

func handleKill(args []string) int {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	store := openStore()
	defer store.Close()
	return runKill(store, tmux.NewClient(), os.Stdout, name)
}

// runKill kills a session and clears focus when it pointed at the victim.
func runKill(store *config.Store, tm sessionTmux, out io.Writer, name string) int {
	session := resolveSession(name, store)
	if session == "" {
		fmt.Fprintln(out, "no session provided and nothing focused")
		return 1
	}
	exists, err := tm.HasSession(session)
	if err != nil {
		return reportTmuxError(err)
	}
	if !exists {
		fmt.Fprintf(out, "session not found: %s\n", session)
		return 1
	}
	if err := tm.KillSession(session); err != nil {
		return reportTmuxError(err)
	}
	if store.GetFocus() == session {
		if err := store.SetFocus(""); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	fmt.Fprintf(out, "killed: %s\n", session)
	return 0
}

func handleStatus(_ []string) int {
	store := openStore()
	defer store.Close()
	return runStatus(store, tmux.NewClient(), os.Stdout, func() string {
		return alert.ProbeRelay(alert.DefaultRelayHealthURL)
	})
}

// runStatus prints the focus, alert configuration, relay health, and how
// long the focused session's pane has been quiet.
func runStatus(store *config.Store, tm sessionTmux, out io.Writer, probeRelay func() string) int {
	focus := store.GetFocus()
	mappings, err := store.Mappings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Fprintf(out, "focus:\t%s\n", orNone(focus))
	if dir, ok := mappings[focus]; ok && focus != "" {
		fmt.Fprintf(out, "dir:\t%s\n", dir)
	} else {
		fmt.Fprintln(out, "dir:\t(n/a)")
	}
	fmt.Fprintf(out, "webhook:\t%s\n", setOrNone(store.Webhook()))
	fmt.Fprintf(out, "alert_router:\t%s\n", setOrNone(store.AlertRouter()))
	fmt.Fprintf(out, "relay_token:\t%s\n", setOrNone(store.RelayToken()))
	fmt.Fprintf(out, "relay:\t%s\n", probeRelay())

	idle := "(n/a)"
	if focus != "" {
		if exists, err := tm.HasSession(focus); err == nil && exists {
			if last, err := tm.PaneLastActivity(focus, tmux.DefaultWindow); err == nil {
				idle = fmt.Sprintf("%d", watch.IdleSince(last, time.Now()))
			}
		}
	}
	fmt.Fprintf(out, "idle_seconds:\t%s\n", idle)
	return 0
}

func handleAttach(args []string) int {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	store := openStore()
	defer store.Close()
	return runAttach(store, tmux.NewClient(), os.Stdout, name, pickSessionInteractive)
}

// pickSessionInteractive shows the attach picker. Returns "" when the user
// cancelled or stdin is not a terminal.
func pickSessionInteractive(store *config.Store, tm sessionTmux, out io.Writer) string {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(out, "attach requires a session name in non-interactive mode")
		return ""
	}

	mappings, err := store.Mappings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ""
	}
	live, err := tm.ListSessions()
	if err != nil {
		fmt.Fprintln(out, err.Error())
		return ""
	}

	ui.InitTheme(ui.ResolveTheme())

	sw := ui.NewStoreWatcher(store)
	sw.Start()
	defer sw.Close()

	reload := ui.LiveReload{
		StoreChanged: sw.ReloadChannel(),
		Reload: func() []ui.PickerRow {
			mappings, err := store.Mappings()
			if err != nil {
				return nil
			}
			live, err := tm.ListSessions()
			if err != nil {
				return nil
			}
			return ui.BuildRows(mappings, live, store.GetFocus())
		},
	}
	if tw := ui.NewThemeWatcher(context.Background()); tw != nil {
		defer tw.Close()
		reload.ThemeChanged = tw.ChangeChannel()
	}

	rows := ui.BuildRows(mappings, live, store.GetFocus())
	choice, err := ui.RunPicker(rows, reload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ""
	}
	return choice
}

// runAttach attaches to a session, creating it first when it is mapped but
// not running. With no name it falls back to the interactive picker.
func runAttach(store *config.Store, tm sessionTmux, out io.Writer, name string,
	pick func(*config.Store, sessionTmux, io.Writer) string) int {
	session := name
	if session == "" {
		session = pick(store, tm, out)
	}
	if session == "" {
		fmt.Fprintln(out, "attach cancelled")
		return 1
	}

	exists, err := tm.HasSession(session)
	if err != nil {
		return reportTmuxError(err)
	}
	if !exists {
		if store.GetMapping(session) == "" {
			fmt.Fprintf(out, "session not found: %s\n", session)
			return 1
		}
		if rc := runNew(store, tm, out, session); rc != 0 {
			return rc
		}
	}

	if err := store.SetFocus(session); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := tm.Attach(session); err != nil {
		return reportTmuxError(err)
	}
	return 0
}
