package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asheshgoplani/occtl/internal/relay"
	"github.com/asheshgoplani/occtl/internal/tmux"
)

// shutdownTimeout bounds how long in-flight relay requests may linger after
// a termination signal.
const shutdownTimeout = 5 * time.Second

func handleRelay(args []string) int {
	fs := newFlagSet("relay")
	host := fs.String("host", "0.0.0.0", "listen address")
	port := fs.Int("port", 8878, "listen port")
	token := fs.String("token", "", "bearer token (stored token by default)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	store := openStore()
	defer store.Close()

	authToken := *token
	if authToken == "" {
		authToken = store.RelayToken()
	}
	if authToken == "" {
		fmt.Println("missing relay token; run: occtl set-relay-token <token>")
		return 1
	}

	srv := relay.NewServer(relay.Config{
		ListenAddr: fmt.Sprintf("%s:%d", *host, *port),
		Token:      authToken,
		Tmux:       tmux.NewClient(),
		Focus:      store,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	fmt.Printf("relay listening on %s\n", srv.Addr())

	select {
	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
