package alert

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"
)

func testAlert() Alert {
	return Alert{
		SessionID:         "api",
		Title:             "OpenCode awaiting input",
		Reason:            "AI agent waiting for input",
		Detail:            "prompt pattern 'confirm?' matched",
		Snippet:           "Confirm? [y/N]",
		ProjectDir:        "/srv/api",
		Host:              "devbox",
		Severity:          SeverityWarning,
		Status:            StatusDegraded,
		FingerprintSuffix: SuffixPattern,
	}
}

func TestDiscordChannelPostsContent(t *testing.T) {
	var got map[string]string
	var contentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	ch := DiscordChannel{URL: srv.URL, Client: srv.Client()}
	a := testAlert()

	if outcome := ch.Notify(context.Background(), a); outcome != OutcomeSent {
		t.Fatalf("outcome = %s, want sent", outcome)
	}
	if contentType != "application/json" {
		t.Errorf("content type = %q", contentType)
	}
	want := "**OpenCode awaiting input**\n" + a.Body()
	if got["content"] != want {
		t.Errorf("content = %q, want %q", got["content"], want)
	}
}

func TestDiscordChannelSkippedWhenUnconfigured(t *testing.T) {
	ch := DiscordChannel{}
	if outcome := ch.Notify(context.Background(), testAlert()); outcome != OutcomeSkipped {
		t.Errorf("outcome = %s, want skipped", outcome)
	}
}

func TestDiscordChannelFailsOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ch := DiscordChannel{URL: srv.URL, Client: srv.Client()}
	if outcome := ch.Notify(context.Background(), testAlert()); outcome != OutcomeFailed {
		t.Errorf("outcome = %s, want failed", outcome)
	}
}

func TestDiscordChannelFailsOnUnreachableHost(t *testing.T) {
	ch := DiscordChannel{
		URL:    "http://127.0.0.1:1/webhook",
		Client: &http.Client{Timeout: 200 * time.Millisecond},
	}
	if outcome := ch.Notify(context.Background(), testAlert()); outcome != OutcomeFailed {
		t.Errorf("outcome = %s, want failed", outcome)
	}
}

func TestGatewayChannelEnvelope(t *testing.T) {
	var got map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	fixed := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	ch := GatewayChannel{
		URL:    srv.URL,
		Client: srv.Client(),
		Now:    func() time.Time { return fixed },
	}
	a := testAlert()

	if outcome := ch.Notify(context.Background(), a); outcome != OutcomeSent {
		t.Fatalf("outcome = %s, want sent", outcome)
	}

	if got["source"] != "infra-health-agent" {
		t.Errorf("source = %v", got["source"])
	}
	if got["event-type"] != "service.health" {
		t.Errorf("event-type = %v", got["event-type"])
	}
	if got["severity"] != "warning" || got["status"] != "degraded" {
		t.Errorf("severity/status = %v/%v", got["severity"], got["status"])
	}
	if got["fingerprint"] != "oc-watch-api-pattern" {
		t.Errorf("fingerprint = %v", got["fingerprint"])
	}

	host := got["host"].(map[string]any)
	if host["name"] != "devbox" || host["ip"] != "127.0.0.1" {
		t.Errorf("host = %v", host)
	}

	service := got["service"].(map[string]any)
	if service["name"] != "oc-watch:api" || service["kind"] != "other" {
		t.Errorf("service = %v", service)
	}

	check := got["check"].(map[string]any)
	if check["name"] != "oc-watch" {
		t.Errorf("check name = %v", check["name"])
	}
	if check["message"] != a.Body() {
		t.Errorf("check message = %v", check["message"])
	}
	observedAt, _ := check["observed-at"].(string)
	if observedAt != "2025-06-01T12:30:00Z" {
		t.Errorf("observed-at = %q", observedAt)
	}
	if !regexp.MustCompile(`Z$`).MatchString(observedAt) {
		t.Error("observed-at must be Z-suffixed UTC")
	}

	meta := got["meta"].(map[string]any)
	if meta["source"] != "occtl" {
		t.Errorf("meta = %v", meta)
	}
}

func TestGatewayChannelSkippedWhenUnconfigured(t *testing.T) {
	ch := GatewayChannel{}
	if outcome := ch.Notify(context.Background(), testAlert()); outcome != OutcomeSkipped {
		t.Errorf("outcome = %s, want skipped", outcome)
	}
}

func TestProbeRelayUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ok", "service": "oc-relay"}`))
	}))
	defer srv.Close()

	if got := ProbeRelay(srv.URL); got != "up" {
		t.Errorf("ProbeRelay = %q, want up", got)
	}
}

func TestProbeRelayDown(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non-200", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}},
		{"wrong status field", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status": "starting"}`))
		}},
		{"garbage body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			if got := ProbeRelay(srv.URL); got != "down" {
				t.Errorf("ProbeRelay = %q, want down", got)
			}
		})
	}
}

func TestProbeRelayUnreachable(t *testing.T) {
	if got := ProbeRelay("http://127.0.0.1:1/health"); got != "down" {
		t.Errorf("ProbeRelay = %q, want down", got)
	}
}
