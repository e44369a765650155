package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

var printer = message.NewPrinter(language.English)

// Nanos formats a duration as integer nanoseconds with thousands separators.
func Nanos(d time.Duration) string {
	return printer.Sprintf("%d ns", d.Nanoseconds())
}

// Report summarizes a finished run.
type Report struct {
	RunID    string
	Dir      string
	Backend  string
	Workers  int
	Groups   int
	Frames   int
	Captured int
	EndsOnly bool
	Total    time.Duration
	Mean     time.Duration
	Metrics  map[string]float64
}

func RenderReport(r Report) string {
	var b strings.Builder

	mode := "full timeline"
	if r.EndsOnly {
		mode = "ends only"
	}

	b.WriteString(dimmer.Render("  "+strings.Repeat("─", 40)) + "\n")
	b.WriteString("  " + cyan.Render(r.RunID) + "  " + dim.Render(mode) + "\n")
	b.WriteString(dimmer.Render("  "+strings.Repeat("─", 40)) + "\n")

	row := func(label, value string) {
		b.WriteString("  " + dim.Render(fmt.Sprintf("%-14s", label)) + value + "\n")
	}
	backend := r.Backend
	if r.Workers > 1 {
		backend = fmt.Sprintf("%s (%d workers)", r.Backend, r.Workers)
	}
	row("backend", white.Render(backend))
	row("groups", white.Render(printer.Sprintf("%d", r.Groups)))
	row("frames", white.Render(printer.Sprintf("%d", r.Frames)))
	row("captured", white.Render(printer.Sprintf("%d", r.Captured)))
	row("device total", green.Render(Nanos(r.Total)))
	row("device mean", green.Render(Nanos(r.Mean)))

	if len(r.Metrics) > 0 {
		names := make([]string, 0, len(r.Metrics))
		for name := range r.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("\n")
		for _, name := range names {
			row(name, magenta.Render(fmt.Sprintf("%.6g", r.Metrics[name])))
		}
	}

	if r.Dir != "" {
		b.WriteString("\n  " + dim.Render("output ") + r.Dir + "\n")
	}
	return b.String()
}

// Warn renders a one-line warning.
func Warn(msg string) string {
	return yellow.Render("  ! ") + msg
}

// Fail renders a one-line error.
func Fail(msg string) string {
	return red.Render("  ✗ ") + msg
}
