package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/asheshgoplani/occtl/internal/config"
)

// newFlagSet creates a flag set that reports errors without exiting, so
// handlers can return exit codes themselves.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

// normalizeArgs reorders args so flags come before positional arguments.
// Go's flag package stops parsing at the first non-flag argument, which means
// "say hello --session api" would silently ignore --session. This function
// moves all flags to the front so they get parsed correctly.
func normalizeArgs(fs *flag.FlagSet, args []string) []string {
	boolFlags := make(map[string]bool)
	fs.VisitAll(func(f *flag.Flag) {
		if bf, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && bf.IsBoolFlag() {
			boolFlags[f.Name] = true
		}
	})

	var flags, positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]

		// "--" terminates flag processing
		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}

		if strings.HasPrefix(arg, "-") && arg != "-" {
			flags = append(flags, arg)

			name := strings.TrimLeft(arg, "-")

			// --flag=value carries its value, nothing to move
			if strings.Contains(name, "=") {
				continue
			}

			// If it's not a bool flag, the next arg is its value
			if !boolFlags[name] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, arg)
		}
	}
	return append(flags, positional...)
}

// openStore opens the config store or exits. Every command needs it, and
// there is nothing sensible to do without it.
func openStore() *config.Store {
	store, err := config.OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return store
}

// resolveSession returns the explicit session name, falling back to the
// focused one. Empty means neither was available.
func resolveSession(explicit string, store *config.Store) string {
	if explicit != "" {
		return explicit
	}
	return store.GetFocus()
}

// setOrNone renders a secret-ish config value for status output without
// leaking it.
func setOrNone(value string) string {
	if value != "" {
		return "set"
	}
	return "(none)"
}

// orNone renders an optional value for status output.
func orNone(value string) string {
	if value != "" {
		return value
	}
	return "(none)"
}

// reportTmuxError prints a tmux failure in the command's voice and returns
// the standard failure code.
func reportTmuxError(err error) int {
	fmt.Println(err.Error())
	return 1
}
