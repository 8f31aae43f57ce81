package cmd

import (
	"os"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/term"
)

// Palette for terminal output.
var (
	colorPrimary = lipgloss.Color("#8B5CF6")
	colorTeal    = lipgloss.Color("#14B8A6")
	colorSuccess = lipgloss.Color("#22C55E")
	colorError   = lipgloss.Color("#F43F5E")
	colorDim     = lipgloss.Color("#94A3B8")
)

// styles holds the renderers used by every command. Plain styles are
// used when stdout is not a terminal or NO_COLOR is set.
type styles struct {
	title     lipgloss.Style
	heading   lipgloss.Style
	dim       lipgloss.Style
	answer    lipgloss.Style
	correct   lipgloss.Style
	incorrect lipgloss.Style
}

var out = newStyles(useColor())

func useColor() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return term.IsTerminal(os.Stdout.Fd())
}

func newStyles(color bool) styles {
	plain := lipgloss.NewStyle()
	if !color {
		return styles{plain, plain, plain, plain, plain, plain}
	}
	return styles{
		title:     plain.Bold(true).Foreground(colorPrimary),
		heading:   plain.Bold(true).Foreground(colorTeal),
		dim:       plain.Foreground(colorDim),
		answer:    plain.Foreground(colorSuccess),
		correct:   plain.Bold(true).Foreground(colorSuccess),
		incorrect: plain.Bold(true).Foreground(colorError),
	}
}

// mark renders a ✓ or ✗ for a graded answer.
func (s styles) mark(ok bool) string {
	if ok {
		return s.correct.Render("✓")
	}
	return s.incorrect.Render("✗")
}
