package mdterm

import (
	"os"
	"strconv"

	"github.com/muesli/reflow/ansi"
	"golang.org/x/term"
)

const (
	ansiReset = "\x1b[0m"

	// DefaultTerminalWidth is used when the terminal size cannot be detected.
	DefaultTerminalWidth = 80
)

// VisibleWidth returns the number of terminal columns s occupies. Escape
// sequences, from ESC up to the next alphabetic character, take no space.
func VisibleWidth(s string) int {
	return ansi.PrintableRuneWidth(s)
}

// TerminalWidth returns the column count of the terminal attached to f,
// then $COLUMNS, then fallback.
func TerminalWidth(f *os.File, fallback int) int {
	if f != nil {
		fd := int(f.Fd())
		if term.IsTerminal(fd) {
			if w, _, err := term.GetSize(fd); err == nil && w > 0 {
				return w
			}
		}
	}
	if value := os.Getenv("COLUMNS"); value != "" {
		if w, err := strconv.Atoi(value); err == nil && w > 0 {
			return w
		}
	}
	return fallback
}
