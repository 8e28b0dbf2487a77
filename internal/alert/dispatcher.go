package alert

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/asheshgoplani/occtl/internal/logging"
)

var alertLog = logging.ForComponent(logging.CompAlert)

// webhookTimeout bounds each webhook POST so a hung peer cannot stall a check.
const webhookTimeout = 5 * time.Second

// Dispatcher fans one alert out to every configured channel. Channels are
// mutually isolated: each attempt runs in its own goroutine with its own
// deadline, and a failure on one never prevents the attempt on another.
// Dispatch never returns an error; it is intentionally fire-and-forget.
type Dispatcher struct {
	channels []Channel
}

// NewDispatcher builds a dispatcher over an explicit channel list (tests).
func NewDispatcher(channels ...Channel) *Dispatcher {
	return &Dispatcher{channels: channels}
}

// NewDefaultDispatcher wires the standard three channels. Empty URLs simply
// disable their channel.
func NewDefaultDispatcher(webhookURL, gatewayURL string) *Dispatcher {
	client := &http.Client{Timeout: webhookTimeout}
	return NewDispatcher(
		DesktopChannel{},
		DiscordChannel{URL: webhookURL, Client: client},
		GatewayChannel{URL: gatewayURL, Client: client},
	)
}

// Dispatch attempts delivery on every channel and reports per-channel
// outcomes for observability. Failures are swallowed, never retried.
func (d *Dispatcher) Dispatch(a Alert) map[string]Outcome {
	results := make([]Outcome, len(d.channels))

	var g errgroup.Group
	for i, ch := range d.channels {
		g.Go(func() error {
			// Each channel gets its own context rooted at Background so
			// cancelling one attempt can never cancel another.
			ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
			defer cancel()
			results[i] = safeNotify(ctx, ch, a)
			return nil
		})
	}
	_ = g.Wait()

	outcomes := make(map[string]Outcome, len(d.channels))
	for i, ch := range d.channels {
		outcomes[ch.Name()] = results[i]
		alertLog.Info("channel_outcome",
			slog.String("channel", ch.Name()),
			slog.String("outcome", string(results[i])),
			slog.String("fingerprint", a.Fingerprint()))
	}
	return outcomes
}

// safeNotify contains a misbehaving channel: a panic counts as a failure.
func safeNotify(ctx context.Context, ch Channel, a Alert) (outcome Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			alertLog.Error("channel_panic",
				slog.String("channel", ch.Name()),
				slog.String("recover", fmt.Sprintf("%v", rec)))
			outcome = OutcomeFailed
		}
	}()
	return ch.Notify(ctx, a)
}
