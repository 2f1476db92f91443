package dashboard

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorRed    = lipgloss.Color("#ef4444")
	colorYellow = lipgloss.Color("#eab308")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorDim    = lipgloss.Color("#6b7280")
	colorWhite  = lipgloss.Color("#f9fafb")
)

const (
	checkMark = "[OK]"
	crossMark = "[!!]"
	spinner   = "[..]"
	pendMark  = "[  ]"
	warnMark  = "[??]"
)

// styles holds the render styles for one dashboard. Plain styles are used
// when stdout is not a terminal.
type styles struct {
	title   lipgloss.Style
	section lipgloss.Style
	ready   lipgloss.Style
	failed  lipgloss.Style
	warning lipgloss.Style
	active  lipgloss.Style
	dim     lipgloss.Style
}

func newStyles(colored bool) styles {
	if !colored {
		plain := lipgloss.NewStyle()
		return styles{
			title: plain, section: plain, ready: plain,
			failed: plain, warning: plain, active: plain, dim: plain,
		}
	}
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(colorWhite),
		section: lipgloss.NewStyle().Bold(true).Foreground(colorBlue),
		ready:   lipgloss.NewStyle().Foreground(colorGreen),
		failed:  lipgloss.NewStyle().Foreground(colorRed),
		warning: lipgloss.NewStyle().Foreground(colorYellow),
		active:  lipgloss.NewStyle().Foreground(colorWhite).Bold(true),
		dim:     lipgloss.NewStyle().Foreground(colorDim),
	}
}

// stdoutIsTerminal reports whether stdout is an interactive terminal.
func stdoutIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
