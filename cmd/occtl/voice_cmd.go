package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/asheshgoplani/occtl/internal/voice"
)

// handleVoice parses a spoken phrase and executes the matching command.
// Attach verbs become focus-only: the Shortcuts SSH channel is
// non-interactive, so the live screen is opened elsewhere.
func handleVoice(args []string) int {
	phrase := strings.Join(args, " ")
	if strings.TrimSpace(phrase) == "" {
		fmt.Fprintln(os.Stderr, "Usage: occtl voice <phrase>")
		return 2
	}

	intent := voice.Parse(phrase)
	switch intent.Action {
	case voice.ActionStatus:
		return handleStatus(nil)
	case voice.ActionList:
		return handleLs(nil)
	case voice.ActionNew:
		return handleNew([]string{intent.Session})
	case voice.ActionFocus, voice.ActionAttachOrFocus:
		return handleFocus([]string{intent.Session})
	case voice.ActionEnter:
		return handleEnter(nil)
	case voice.ActionSay:
		sayArgs := []string{}
		if intent.Session != "" {
			sayArgs = append(sayArgs, "--session", intent.Session)
		}
		sayArgs = append(sayArgs, intent.Text)
		return handleSay(sayArgs)
	default:
		fmt.Println("unhandled intent")
		return 2
	}
}
