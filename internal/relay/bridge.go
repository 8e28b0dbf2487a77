package relay

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/gorilla/websocket"

	"github.com/asheshgoplani/occtl/internal/tmux"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The relay binds to the LAN on purpose; the bearer token is the gate.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsClientMessage is what the viewer sends: keystrokes or a resize.
type wsClientMessage struct {
	Type string `json:"type"` // "input" | "resize"
	Data string `json:"data,omitempty"`
	Cols int    `json:"cols,omitempty"`
	Rows int    `json:"rows,omitempty"`
}

// wsConnWriter serializes writes to one websocket connection.
type wsConnWriter struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (w *wsConnWriter) WriteBinary(data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.conn.WriteMessage(websocket.BinaryMessage, data)
}

// paneBridge attaches a tmux client under a pty and pipes its output frames
// to one websocket viewer.
type paneBridge struct {
	session string
	writer  *wsConnWriter

	cmd  *exec.Cmd
	ptmx *os.File

	closeOnce sync.Once
	done      chan struct{}
}

func newPaneBridge(session string, writer *wsConnWriter) (*paneBridge, error) {
	cmd := tmux.AttachCommand(session)

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, fmt.Errorf("start tmux pty: %w", err)
	}

	b := &paneBridge{
		session: session,
		writer:  writer,
		cmd:     cmd,
		ptmx:    ptmx,
		done:    make(chan struct{}),
	}
	go b.streamOutput()
	return b, nil
}

func (b *paneBridge) streamOutput() {
	defer close(b.done)

	buf := make([]byte, 4096)
	for {
		n, err := b.ptmx.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			if writeErr := b.writer.WriteBinary(chunk); writeErr != nil {
				b.Close()
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				relayLog.Debug("pane_stream_ended", slog.String("session", b.session))
			}
			b.Close()
			return
		}
	}
}

func (b *paneBridge) WriteInput(data string) error {
	if data == "" {
		return nil
	}
	_, err := b.ptmx.Write([]byte(data))
	return err
}

func (b *paneBridge) Resize(cols, rows int) error {
	if cols <= 0 || rows <= 0 {
		return fmt.Errorf("invalid dimensions: cols=%d rows=%d", cols, rows)
	}
	return pty.Setsize(b.ptmx, &pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)})
}

func (b *paneBridge) Close() {
	b.closeOnce.Do(func() {
		if b.ptmx != nil {
			_ = b.ptmx.Close()
		}
		if b.cmd != nil && b.cmd.Process != nil {
			// Kill the whole attach process group; a bare Kill leaves the
			// tmux client lingering on some platforms.
			if pgid, err := syscall.Getpgid(b.cmd.Process.Pid); err == nil {
				_ = syscall.Kill(-pgid, syscall.SIGTERM)
			} else {
				_ = b.cmd.Process.Kill()
			}
			_ = b.cmd.Wait()
		}
	})
}

// handlePaneWS upgrades to a websocket and streams the session's pane.
// Token-guarded like /continue; the session name rides in the query string.
func (s *Server) handlePaneWS(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
		return
	}

	session := r.URL.Query().Get("session")
	if session == "" && s.cfg.Focus != nil {
		session = s.cfg.Focus.GetFocus()
	}
	if session == "" || !sessionNameRe.MatchString(session) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid session"})
		return
	}

	exists, err := s.cfg.Tmux.HasSession(session)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "tmux unavailable"})
		return
	}
	if !exists {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "session not found"})
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	bridge, err := newPaneBridge(session, &wsConnWriter{conn: conn})
	if err != nil {
		relayLog.Warn("pane_bridge_failed",
			slog.String("session", session),
			slog.String("error", err.Error()))
		return
	}
	defer bridge.Close()

	relayLog.Info("pane_stream_opened", slog.String("session", session))

	for {
		select {
		case <-s.baseCtx.Done():
			return
		case <-bridge.done:
			return
		default:
		}

		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var msg wsClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "input":
			_ = bridge.WriteInput(msg.Data)
		case "resize":
			_ = bridge.Resize(msg.Cols, msg.Rows)
		}
	}
}
