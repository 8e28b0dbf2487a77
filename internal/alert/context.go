package alert

import (
	"fmt"
	"os"
)

// ContextStore is the read side of the mapping/focus store. The resolver
// never writes.
type ContextStore interface {
	GetMapping(name string) string
	GetFocus() string
}

// ResolveContext looks up a session's display context for alert bodies:
// the mapped project directory (falling back to the focused session's
// mapping, annotated), and the local host name.
func ResolveContext(store ContextStore, session string) (projectDir, host string) {
	projectDir = store.GetMapping(session)
	if projectDir == "" {
		if focus := store.GetFocus(); focus != "" {
			if focusDir := store.GetMapping(focus); focusDir != "" {
				projectDir = fmt.Sprintf("%s (focus:%s)", focusDir, focus)
			}
		}
	}
	if projectDir == "" {
		projectDir = "(unmapped)"
	}

	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return projectDir, host
}
