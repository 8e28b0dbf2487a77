package main

import (
	"fmt"
	"os"
	"sort"
)

// handleMap maps a session name to a project directory.
func handleMap(args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: occtl map <name> <path>")
		return 2
	}
	name, path := args[0], args[1]

	store := openStore()
	defer store.Close()

	if err := store.SetMapping(name, path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("mapped: %s -> %s\n", name, store.GetMapping(name))
	return 0
}

// handleMaps lists all session mappings, sorted by name.
func handleMaps(_ []string) int {
	store := openStore()
	defer store.Close()

	m, err := store.Mappings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if len(m) == 0 {
		fmt.Println("(no mappings)")
		return 0
	}

	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s\t%s\n", name, m[name])
	}
	return 0
}

// handleFocus sets the focused session.
func handleFocus(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: occtl focus <name>")
		return 2
	}

	store := openStore()
	defer store.Close()

	if err := store.SetFocus(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("focused: %s\n", args[0])
	return 0
}

// handleFocused prints the focused session name (empty line when unset).
func handleFocused(_ []string) int {
	store := openStore()
	defer store.Close()

	fmt.Println(store.GetFocus())
	return 0
}
