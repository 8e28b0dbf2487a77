package main

import (
	"fmt"
	"os"
)

// handleSetWebhook stores the Discord webhook URL. An empty URL clears it.
func handleSetWebhook(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: occtl set-webhook <url>")
		return 2
	}

	store := openStore()
	defer store.Close()

	if err := store.SetWebhook(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if args[0] != "" {
		fmt.Println("webhook set")
	} else {
		fmt.Println("webhook cleared")
	}
	return 0
}

// handleSetAlertRouter stores the alert gateway webhook URL. An empty URL
// clears it.
func handleSetAlertRouter(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: occtl set-alert-router <url>")
		return 2
	}

	store := openStore()
	defer store.Close()

	if err := store.SetAlertRouter(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if args[0] != "" {
		fmt.Println("alert-router set")
	} else {
		fmt.Println("alert-router cleared")
	}
	return 0
}

// handleSetRelayToken stores the relay API bearer token. An empty token
// clears it.
func handleSetRelayToken(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: occtl set-relay-token <token>")
		return 2
	}

	store := openStore()
	defer store.Close()

	if err := store.SetRelayToken(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if args[0] != "" {
		fmt.Println("relay-token set")
	} else {
		fmt.Println("relay-token cleared")
	}
	return 0
}
