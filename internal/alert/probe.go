package alert

import (
	"encoding/json"
	"net/http"
	"time"
)

// DefaultRelayHealthURL is where the local relay serves its health check.
const DefaultRelayHealthURL = "http://127.0.0.1:8878/health"

// probeTimeout keeps the health probe well under a second; it is advisory
// and must not slow down a status report.
const probeTimeout = 800 * time.Millisecond

// ProbeRelay reports "up" iff the relay health endpoint answers 200 with a
// status of "ok", otherwise "down". Never returns an error: the relay being
// unreachable is an answer, not a failure.
func ProbeRelay(url string) string {
	client := &http.Client{Timeout: probeTimeout}
	resp, err := client.Get(url)
	if err != nil {
		return "down"
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "down"
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "down"
	}
	if payload.Status != "ok" {
		return "down"
	}
	return "up"
}
