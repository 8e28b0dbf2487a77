package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/asheshgoplani/occtl/internal/config"
	"github.com/asheshgoplani/occtl/internal/logging"
)

const Version = "0.3.0"

// commands is the full subcommand list, shared with shell completion.
var commands = []string{
	"map", "maps", "new", "ensure", "ls", "focus", "focused", "status",
	"say", "enter", "attach", "kill", "watch",
	"set-webhook", "set-alert-router", "set-relay-token",
	"relay", "voice", "completion",
}

// init sets up color profile for consistent terminal colors across environments
func init() {
	initColorProfile()
}

// initColorProfile configures lipgloss color profile based on terminal capabilities.
// Prefers TrueColor for best visuals, falls back to ANSI256 for compatibility.
func initColorProfile() {
	// Allow user override via environment variable
	// OCCTL_COLOR: truecolor, 256, 16, none
	if colorEnv := os.Getenv("OCCTL_COLOR"); colorEnv != "" {
		switch strings.ToLower(colorEnv) {
		case "truecolor", "true", "24bit":
			lipgloss.SetColorProfile(termenv.TrueColor)
			return
		case "256", "ansi256":
			lipgloss.SetColorProfile(termenv.ANSI256)
			return
		case "16", "ansi", "basic":
			lipgloss.SetColorProfile(termenv.ANSI)
			return
		case "none", "off", "ascii":
			lipgloss.SetColorProfile(termenv.Ascii)
			return
		}
	}

	if colorTerm := os.Getenv("COLORTERM"); colorTerm == "truecolor" || colorTerm == "24bit" {
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}

	term := os.Getenv("TERM")
	trueColorTerms := []string{
		"xterm-256color",
		"screen-256color",
		"tmux-256color",
		"xterm-direct",
		"alacritty",
		"kitty",
		"wezterm",
	}
	for _, t := range trueColorTerms {
		if strings.Contains(term, t) || term == t {
			lipgloss.SetColorProfile(termenv.TrueColor)
			return
		}
	}

	lipgloss.SetColorProfile(termenv.ANSI256)
}

// initLogging sets up structured logging. When OCCTL_DEBUG is set, logs go
// to ~/.config/occtl/logs; otherwise they are discarded so command output
// stays clean.
func initLogging() {
	debugMode := os.Getenv("OCCTL_DEBUG") != ""
	cfg := logging.Config{
		Debug:      debugMode,
		Level:      "info",
		Format:     "json",
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 14,
		Compress:   true,
	}
	if debugMode {
		cfg.LogDir = config.LogDir()
		cfg.Level = "debug"
	}
	logging.Init(cfg)
}

func main() {
	initLogging()
	defer logging.Shutdown()

	args := os.Args[1:]
	if len(args) == 0 {
		// Bare invocation shows the status summary.
		os.Exit(handleStatus(nil))
	}

	switch args[0] {
	case "version", "--version", "-v":
		fmt.Printf("occtl v%s\n", Version)
		os.Exit(0)
	case "help", "--help", "-h":
		printHelp()
		os.Exit(0)
	case "map":
		os.Exit(handleMap(args[1:]))
	case "maps":
		os.Exit(handleMaps(args[1:]))
	case "new":
		os.Exit(handleNew(args[1:]))
	case "ensure":
		os.Exit(handleEnsure(args[1:]))
	case "ls":
		os.Exit(handleLs(args[1:]))
	case "focus":
		os.Exit(handleFocus(args[1:]))
	case "focused":
		os.Exit(handleFocused(args[1:]))
	case "status":
		os.Exit(handleStatus(args[1:]))
	case "say":
		os.Exit(handleSay(args[1:]))
	case "enter":
		os.Exit(handleEnter(args[1:]))
	case "attach":
		os.Exit(handleAttach(args[1:]))
	case "kill":
		os.Exit(handleKill(args[1:]))
	case "watch":
		os.Exit(handleWatch(args[1:]))
	case "set-webhook":
		os.Exit(handleSetWebhook(args[1:]))
	case "set-alert-router":
		os.Exit(handleSetAlertRouter(args[1:]))
	case "set-relay-token":
		os.Exit(handleSetRelayToken(args[1:]))
	case "relay":
		os.Exit(handleRelay(args[1:]))
	case "voice":
		os.Exit(handleVoice(args[1:]))
	case "completion":
		os.Exit(handleCompletion(args[1:]))
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printHelp()
		os.Exit(2)
	}
}

func printHelp() {
	fmt.Println("occtl - tmux + OpenCode command center")
	fmt.Println()
	fmt.Println("Usage: occtl <command> [options]")
	fmt.Println()
	fmt.Println("Session commands:")
	fmt.Println("  map <name> <path>       map session name to directory")
	fmt.Println("  maps                    list mappings")
	fmt.Println("  new <name>              create session and start opencode (focuses)")
	fmt.Println("  ensure <name>           create if missing, then focus")
	fmt.Println("  ls                      list tmux sessions")
	fmt.Println("  focus <name>            set focused session")
	fmt.Println("  focused                 print focused session")
	fmt.Println("  status                  show focus + mapping + idle seconds")
	fmt.Println("  say <text>              send text to OpenCode (focused session by default)")
	fmt.Println("  enter                   send Enter (focused session by default)")
	fmt.Println("  attach [name]           attach to a session (interactive picker when omitted)")
	fmt.Println("  kill [name]             kill a session (focused session by default)")
	fmt.Println()
	fmt.Println("Monitoring:")
	fmt.Println("  watch                   prompt-aware waiting alert (focused session by default)")
	fmt.Println("    --name <session>      session to watch")
	fmt.Println("    --idle-seconds <n>    idle threshold (default 90)")
	fmt.Println("    --capture-lines <n>   pane lines to inspect (default 120)")
	fmt.Println()
	fmt.Println("Alert configuration:")
	fmt.Println("  set-webhook <url>       set Discord webhook URL for alerts (optional)")
	fmt.Println("  set-alert-router <url>  set alert gateway webhook URL for alerts (optional)")
	fmt.Println("  set-relay-token <tok>   set token used by occtl relay API")
	fmt.Println()
	fmt.Println("Remote control:")
	fmt.Println("  relay                   run local relay API for Discord button actions")
	fmt.Println("  voice <phrase>          parse a voice phrase and execute (Shortcuts)")
	fmt.Println()
	fmt.Println("  completion <shell>      print completion script (bash, zsh, fish)")
	fmt.Println("  version                 print version")
}
