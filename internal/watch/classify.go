// Package watch classifies a captured pane snapshot: is the agent working,
// waiting for human input, stalled, or merely idle? Classification is a pure
// function of the snapshot and configuration; no I/O happens here.
package watch

import (
	"strings"
	"time"
)

// Kind is the classification outcome for one snapshot.
type Kind int

const (
	// KindNominal: agent appears to be working; nothing to report.
	KindNominal Kind = iota
	// KindWaitingForInput: an explicit wait prompt is visible.
	KindWaitingForInput
	// KindStalled: a stall phrase is visible and the pane has been idle.
	KindStalled
	// KindIdle: no patterns matched but the pane has been idle too long.
	KindIdle
)

func (k Kind) String() string {
	switch k {
	case KindWaitingForInput:
		return "waiting_for_input"
	case KindStalled:
		return "stalled"
	case KindIdle:
		return "idle"
	default:
		return "nominal"
	}
}

// Snapshot is one capture of a session's pane, taken fresh per check and
// never persisted.
type Snapshot struct {
	SessionID   string
	Text        string // raw captured pane text, oldest line first
	IdleSeconds int
}

// Config holds the ordered pattern lists and the idle threshold.
// The lists are data: adding a pattern never touches control flow.
type Config struct {
	WaitPatterns  []Pattern
	StallPatterns []Pattern
	IdleThreshold int // seconds
}

// DefaultIdleThreshold is how long a pane may be quiet before it counts as idle.
const DefaultIdleThreshold = 90

// DefaultConfig returns the built-in patterns and idle threshold.
func DefaultConfig() Config {
	return Config{
		WaitPatterns:  DefaultWaitPatterns,
		StallPatterns: DefaultStallPatterns,
		IdleThreshold: DefaultIdleThreshold,
	}
}

// Classification is the result of classifying one snapshot. Exactly one kind
// holds; Pattern and Evidence are set for pattern-driven kinds.
type Classification struct {
	Kind        Kind
	Pattern     string // label of the matched wait or stall pattern
	Evidence    string // snippet of the matching pane line
	IdleSeconds int
}

// Alertable reports whether this classification should fan out an alert.
func (c Classification) Alertable() bool {
	return c.Kind != KindNominal
}

// Classify turns a snapshot into a classification. Priority is fixed:
// a wait prompt always wins and ignores idle time entirely; a stall phrase
// only counts when corroborated by idleness; otherwise idle time alone
// decides between idle and nominal.
func Classify(snap Snapshot, cfg Config) Classification {
	normalized := strings.ToLower(snap.Text)

	for _, p := range cfg.WaitPatterns {
		if p.Matches(normalized) {
			return Classification{
				Kind:        KindWaitingForInput,
				Pattern:     p.Label,
				Evidence:    SnippetFor(snap.Text, p),
				IdleSeconds: snap.IdleSeconds,
			}
		}
	}

	if snap.IdleSeconds >= cfg.IdleThreshold {
		for _, p := range cfg.StallPatterns {
			if p.Matches(normalized) {
				return Classification{
					Kind:        KindStalled,
					Pattern:     p.Label,
					Evidence:    SnippetFor(snap.Text, p),
					IdleSeconds: snap.IdleSeconds,
				}
			}
		}
		return Classification{Kind: KindIdle, IdleSeconds: snap.IdleSeconds}
	}

	return Classification{Kind: KindNominal, IdleSeconds: snap.IdleSeconds}
}

// IdleSince converts a pane's last-activity unix timestamp into idle seconds.
// Unknown activity (ts <= 0) counts as not idle, and clock skew floors at 0.
func IdleSince(lastActivity int64, now time.Time) int {
	if lastActivity <= 0 {
		return 0
	}
	delta := now.Unix() - lastActivity
	if delta < 0 {
		return 0
	}
	return int(delta)
}
