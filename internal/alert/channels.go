package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/asheshgoplani/occtl/internal/platform"
)

// Outcome of one delivery attempt on one channel.
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Channel is one independent alert-delivery mechanism. Notify must never
// panic its failure across the dispatcher; it reports an Outcome instead of
// an error because there is nothing a caller could do with one.
type Channel interface {
	Name() string
	Notify(ctx context.Context, a Alert) Outcome
}

// DesktopChannel shows a local desktop notice. osascript on macOS (matches
// how the agent sessions themselves are usually driven), beeep elsewhere.
type DesktopChannel struct{}

func (DesktopChannel) Name() string { return "desktop" }

func (DesktopChannel) Notify(ctx context.Context, a Alert) Outcome {
	if platform.IsMacOS() {
		script := fmt.Sprintf("display notification %q with title %q", a.Body(), a.Title)
		cmd := exec.CommandContext(ctx, "/usr/bin/osascript", "-e", script)
		if err := cmd.Run(); err != nil {
			return OutcomeFailed
		}
		return OutcomeSent
	}

	// WSL guests have no notification daemon for beeep to reach; the
	// webhook channels still fire.
	if platform.IsWSL() {
		return OutcomeSkipped
	}

	if err := beeep.Notify(a.Title, a.Body(), ""); err != nil {
		return OutcomeFailed
	}
	return OutcomeSent
}

// DiscordChannel posts the alert to a Discord-compatible chat webhook.
// An empty URL disables the channel without error.
type DiscordChannel struct {
	URL    string
	Client *http.Client
}

func (DiscordChannel) Name() string { return "discord" }

func (c DiscordChannel) Notify(ctx context.Context, a Alert) Outcome {
	if c.URL == "" {
		return OutcomeSkipped
	}

	payload := map[string]string{
		"content": fmt.Sprintf("**%s**\n%s", a.Title, a.Body()),
	}
	return postJSON(ctx, c.Client, c.URL, payload)
}

// GatewayChannel posts the fixed alert-router envelope to the alert gateway.
// An empty URL disables the channel without error.
type GatewayChannel struct {
	URL    string
	Client *http.Client

	// Now overrides the observed-at clock in tests.
	Now func() time.Time
}

func (GatewayChannel) Name() string { return "gateway" }

type gatewayHost struct {
	Name string `json:"name"`
	IP   string `json:"ip"`
}

type gatewayService struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type gatewayCheck struct {
	Name       string `json:"name"`
	ObservedAt string `json:"observed-at"`
	Message    string `json:"message"`
}

type gatewayEnvelope struct {
	Source      string            `json:"source"`
	EventType   string            `json:"event-type"`
	Severity    string            `json:"severity"`
	Status      string            `json:"status"`
	Host        gatewayHost       `json:"host"`
	Service     gatewayService    `json:"service"`
	Check       gatewayCheck      `json:"check"`
	Fingerprint string            `json:"fingerprint"`
	Meta        map[string]string `json:"meta"`
}

func (c GatewayChannel) Notify(ctx context.Context, a Alert) Outcome {
	if c.URL == "" {
		return OutcomeSkipped
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	envelope := gatewayEnvelope{
		Source:    "infra-health-agent",
		EventType: "service.health",
		Severity:  string(a.Severity),
		Status:    string(a.Status),
		Host:      gatewayHost{Name: a.Host, IP: "127.0.0.1"},
		Service:   gatewayService{Name: "oc-watch:" + a.SessionID, Kind: "other"},
		Check: gatewayCheck{
			Name:       "oc-watch",
			ObservedAt: now().UTC().Format(time.RFC3339),
			Message:    a.Body(),
		},
		Fingerprint: a.Fingerprint(),
		Meta:        map[string]string{"source": "occtl"},
	}
	return postJSON(ctx, c.Client, c.URL, envelope)
}

func postJSON(ctx context.Context, client *http.Client, url string, payload any) Outcome {
	body, err := json.Marshal(payload)
	if err != nil {
		return OutcomeFailed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return OutcomeFailed
	}
	req.Header.Set("Content-Type", "application/json")

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return OutcomeFailed
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return OutcomeFailed
	}
	return OutcomeSent
}
