// Package ui provides terminal output helpers for inventoryctl.
package ui

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

var verboseFlag bool

// InitUI initializes the UI with color and verbose settings.
func InitUI(noColor, verbose bool) {
	verboseFlag = verbose
	if noColor {
		color.NoColor = true
	}
}

// Table displays data in a formatted table.
func Table(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, strings.Join(headers, "\t"))

	separator := make([]string, len(headers))
	for i := range separator {
		separator[i] = strings.Repeat("-", len(headers[i]))
	}
	fmt.Fprintln(w, strings.Join(separator, "\t"))

	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}

	_ = w.Flush()
}

// Spinner wraps a spinner instance for indeterminate progress display.
type Spinner struct {
	spinner *spinner.Spinner
}

// NewSpinner creates a new spinner with the given message.
func NewSpinner(message string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Writer = os.Stderr
	return &Spinner{spinner: s}
}

// Start starts the spinner animation.
func (s *Spinner) Start() {
	s.spinner.Start()
}

// Stop stops the spinner animation and clears the line.
func (s *Spinner) Stop() {
	s.spinner.Stop()
}

// Header prints a bold section header.
func Header(text string) {
	color.New(color.Bold, color.FgCyan).Println(text)
}

// Success prints a green success line.
func Success(format string, args ...any) {
	color.New(color.FgGreen).Printf("✓ "+format+"\n", args...)
}

// Warn prints a yellow warning line.
func Warn(format string, args ...any) {
	color.New(color.FgYellow).Printf("⚠ "+format+"\n", args...)
}

// Field prints a labeled value line.
func Field(label string, value any) {
	color.New(color.Bold).Printf("  %s: ", label)
	fmt.Printf("%v\n", value)
}

// List prints items as bullets.
func List(label string, items []string) {
	color.New(color.Bold).Printf("  %s:\n", label)
	for _, item := range items {
		fmt.Printf("    • %s\n", item)
	}
}

// Verbose prints a line only when verbose output is enabled.
func Verbose(format string, args ...any) {
	if verboseFlag {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
