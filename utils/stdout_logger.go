package utils

import (
	"io"

	"github.com/fatih/color"
)

func PrintSuccess(w io.Writer, message string) {
	green := color.New(color.FgGreen, color.Bold)
	green.Fprintf(w, "✓ %s\n", message)
}

func PrintError(w io.Writer, message string) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprintf(w, "✗ %s\n", message)
}

func PrintInfo(w io.Writer, message string) {
	yellow := color.New(color.FgYellow)
	yellow.Fprintf(w, "ℹ %s\n", message)
}

func PrintWarning(w io.Writer, message string) {
	magenta := color.New(color.FgMagenta)
	magenta.Fprintf(w, "⚠ %s\n", message)
}
