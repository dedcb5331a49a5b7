// Package ui provides color-coded CLI output helpers shared by
// cmd/mirad and cmd/mira-hook, respecting the NO_COLOR convention and
// automatic TTY detection that fatih/color already applies.
package ui

import (
	"os"

	"github.com/fatih/color"
)

var (
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	green  = color.New(color.FgGreen)
)

// Success prints a green success line to stderr with a checkmark prefix.
func Success(format string, args ...any) {
	_, _ = green.Fprintf(os.Stderr, "✓ "+format+"\n", args...)
}

// Warning prints a yellow warning line to stderr.
func Warning(format string, args ...any) {
	_, _ = yellow.Fprintf(os.Stderr, "⚠ "+format+"\n", args...)
}

// Error prints a red error line to stderr.
func Error(format string, args ...any) {
	_, _ = red.Fprintf(os.Stderr, "✗ "+format+"\n", args...)
}
