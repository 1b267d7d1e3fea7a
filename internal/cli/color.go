package cli

import (
	"os"

	"golang.org/x/term"
)

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// colorEnabled reports whether status colours should be written to f.
// NO_COLOR (https://no-color.org) always wins.
func colorEnabled(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isTerminal(int(f.Fd()))
}
