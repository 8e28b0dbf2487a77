// Package alert builds alert values from pane classifications and fans them
// out to the configured notification channels, best-effort.
package alert

import (
	"fmt"

	"github.com/asheshgoplani/occtl/internal/watch"
)

// Severity of an alert as understood by the alert gateway.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Status of the monitored service as understood by the alert gateway.
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
)

// fingerprint suffixes, one per alertable classification kind
const (
	SuffixPattern = "pattern"
	SuffixStall   = "stall"
	SuffixIdle    = "idle"
)

// Alert is one notification about a session. Transient: constructed,
// dispatched, discarded.
type Alert struct {
	SessionID         string
	Title             string
	Reason            string
	Detail            string
	Snippet           string
	ProjectDir        string
	Host              string
	Severity          Severity
	Status            Status
	FingerprintSuffix string
}

// Body renders the single-line alert body shared by all channels.
func (a Alert) Body() string {
	snippet := a.Snippet
	if snippet == "" {
		snippet = "(none)"
	}
	return fmt.Sprintf("%s; session=%s; project=%s; host=%s; detail=%s; snippet=%s",
		a.Reason, a.SessionID, a.ProjectDir, a.Host, a.Detail, snippet)
}

// Fingerprint is the deduplication key used by downstream alert routing.
// Stable for a given session and suffix.
func (a Alert) Fingerprint() string {
	return "oc-watch-" + a.SessionID + "-" + a.FingerprintSuffix
}

// FromClassification builds the alert for an alertable classification.
// Titles, reasons, severities and fingerprint suffixes are fixed per kind.
// Returns false for nominal classifications.
func FromClassification(sessionID string, c watch.Classification, projectDir, host string) (Alert, bool) {
	base := Alert{
		SessionID:  sessionID,
		Snippet:    c.Evidence,
		ProjectDir: projectDir,
		Host:       host,
		Status:     StatusDegraded,
	}

	switch c.Kind {
	case watch.KindWaitingForInput:
		base.Title = "OpenCode awaiting input"
		base.Reason = "AI agent waiting for input"
		base.Detail = fmt.Sprintf("prompt pattern '%s' matched", c.Pattern)
		base.Severity = SeverityWarning
		base.FingerprintSuffix = SuffixPattern
		return base, true
	case watch.KindStalled:
		base.Title = "OpenCode stalled?"
		base.Reason = "AI agent appears stalled"
		base.Detail = fmt.Sprintf("stall pattern '%s' matched and idle for %ds", c.Pattern, c.IdleSeconds)
		base.Severity = SeverityWarning
		base.FingerprintSuffix = SuffixStall
		return base, true
	case watch.KindIdle:
		base.Title = "OpenCode waiting?"
		base.Reason = "No output detected"
		base.Detail = fmt.Sprintf("idle for %ds", c.IdleSeconds)
		base.Severity = SeverityInfo
		base.FingerprintSuffix = SuffixIdle
		return base, true
	default:
		return Alert{}, false
	}
}
