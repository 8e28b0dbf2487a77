// Package tmux is a thin shell-out client for the tmux server. It is the
// snapshot collaborator for the watch core: pane capture and last-activity
// lookups come from here.
package tmux

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/asheshgoplani/occtl/internal/logging"
)

var tmuxLog = logging.ForComponent(logging.CompTmux)

// ErrTmuxNotFound indicates tmux is not installed or not on PATH.
// This is the fatal "session collaborator unavailable" condition.
var ErrTmuxNotFound = errors.New("tmux is not installed or not on PATH")

// DefaultWindow is the window occtl targets for agent interaction and capture.
const DefaultWindow = "main"

// commandTimeout bounds every non-interactive tmux invocation.
const commandTimeout = 3 * time.Second

// Runner executes a tmux command and returns its trimmed stdout.
// Tests inject a fake; production uses execRunner.
type Runner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "tmux", args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", ErrTmuxNotFound
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			details := strings.TrimSpace(stderr.String())
			if details != "" {
				return "", fmt.Errorf("tmux %s: %s: %w", strings.Join(args, " "), details, err)
			}
		}
		return "", fmt.Errorf("tmux %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// SessionInfo describes one live tmux session.
type SessionInfo struct {
	Name     string
	Attached bool
	Windows  int
}

// Client talks to the tmux server.
type Client struct {
	runner Runner
}

// NewClient returns a Client backed by the tmux binary.
func NewClient() *Client {
	return &Client{runner: execRunner{}}
}

// NewClientWithRunner returns a Client with an injected runner (tests).
func NewClientWithRunner(r Runner) *Client {
	return &Client{runner: r}
}

func (c *Client) run(args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	return c.runner.Run(ctx, args...)
}

// HasSession reports whether a session with the given name exists.
// Only returns an error when the tmux server itself is unreachable.
func (c *Client) HasSession(name string) (bool, error) {
	_, err := c.run("has-session", "-t", name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrTmuxNotFound) {
		return false, err
	}
	// Non-zero exit means the session does not exist.
	return false, nil
}

// ListSessions returns all live sessions. A missing tmux server (no sessions
// yet) yields an empty list, not an error.
func (c *Client) ListSessions() ([]SessionInfo, error) {
	out, err := c.run("list-sessions", "-F", "#{session_name}\t#{session_attached}\t#{session_windows}")
	if err != nil {
		if errors.Is(err, ErrTmuxNotFound) {
			return nil, err
		}
		return nil, nil
	}

	var rows []SessionInfo
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 3 {
			tmuxLog.Warn("list_sessions_bad_row", slog.String("row", line))
			continue
		}
		windows, _ := strconv.Atoi(fields[2])
		rows = append(rows, SessionInfo{
			Name:     fields[0],
			Attached: fields[1] != "0",
			Windows:  windows,
		})
	}
	return rows, nil
}

// NewSession creates a detached session with a "main" window in workdir.
func (c *Client) NewSession(name, workdir string) error {
	_, err := c.run("new-session", "-d", "-s", name, "-n", DefaultWindow, "-c", workdir)
	return err
}

// NewWindow adds a named window to an existing session.
func (c *Client) NewWindow(name, window, workdir string) error {
	_, err := c.run("new-window", "-t", name, "-n", window, "-c", workdir)
	return err
}

// SendKeys sends keys to a target ("session:window"). Literal text and key
// names (e.g. "Enter") are passed through as separate arguments.
func (c *Client) SendKeys(target string, keys ...string) error {
	args := append([]string{"send-keys", "-t", target}, keys...)
	_, err := c.run(args...)
	return err
}

// KillSession destroys a session.
func (c *Client) KillSession(name string) error {
	_, err := c.run("kill-session", "-t", name)
	return err
}

// PaneLastActivity returns the unix timestamp of the last pane activity in
// the session's main window, or 0 if tmux reports something unparsable.
func (c *Client) PaneLastActivity(session, window string) (int64, error) {
	out, err := c.run("display-message", "-p", "-t", session+":"+window, "#{pane_last_activity}")
	if err != nil {
		return 0, err
	}
	ts, err := strconv.ParseInt(out, 10, 64)
	if err != nil {
		return 0, nil
	}
	return ts, nil
}

// CaptureLastLines captures the last n lines of the pane, oldest first.
// Returns "" when the capture fails mid-run (session vanished); the tmux
// server being unreachable is still surfaced.
func (c *Client) CaptureLastLines(session, window string, lines int) (string, error) {
	out, err := c.run("capture-pane", "-p", "-t", session+":"+window, "-S", fmt.Sprintf("-%d", lines))
	if err != nil {
		if errors.Is(err, ErrTmuxNotFound) {
			return "", err
		}
		tmuxLog.Debug("capture_failed", slog.String("session", session), slog.String("error", err.Error()))
		return "", nil
	}
	return out, nil
}

// AttachCommand returns the exec.Cmd that attaches to a session. The relay's
// pane stream starts it under a pty; Attach runs it on the caller's terminal.
func AttachCommand(name string) *exec.Cmd {
	return exec.Command("tmux", "attach", "-t", name)
}

// Attach replaces the current terminal with an interactive tmux attach.
// Blocks until the user detaches.
func (c *Client) Attach(name string) error {
	cmd := AttachCommand(name)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return ErrTmuxNotFound
		}
		return fmt.Errorf("tmux attach -t %s: %w", name, err)
	}
	return nil
}
