// Package tui renders the day timeline in the terminal with bubbletea.
// It is a consumer of the layout engine: all layout decisions come from
// the timeline/drag/carousel packages.
package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rasheuristics/CalAI-sub003/internal/models"
)

// SourceColors maps event backends to their identity colors.
type SourceColors struct {
	Native  string
	Google  string
	Outlook string
}

// Theme defines the day-view style tokens.
type Theme struct {
	Name string

	Foreground string
	Muted      string
	Accent     string
	GapChip    string
	Preview    string
	Header     string

	Source SourceColors
}

// DefaultTheme returns the stock theme (ANSI-256 codes).
func DefaultTheme() Theme {
	return Theme{
		Name:       "default",
		Foreground: "252",
		Muted:      "240",
		Accent:     "213",
		GapChip:    "238",
		Preview:    "220",
		Header:     "111",
		Source: SourceColors{
			Native:  "75",
			Google:  "114",
			Outlook: "173",
		},
	}
}

// LightTheme returns a variant tuned for light terminal backgrounds.
func LightTheme() Theme {
	t := DefaultTheme()
	t.Name = "light"
	t.Foreground = "236"
	t.Muted = "245"
	t.GapChip = "253"
	t.Header = "25"
	return t
}

// ThemeByName resolves a configured theme name, falling back to the
// default for unknown names.
func ThemeByName(name string) Theme {
	switch name {
	case "light":
		return LightTheme()
	default:
		return DefaultTheme()
	}
}

// sourceColor picks the identity color for an event's backend.
func (t Theme) sourceColor(src models.EventSource) lipgloss.Color {
	switch src {
	case models.SourceGoogle:
		return lipgloss.Color(t.Source.Google)
	case models.SourceOutlook:
		return lipgloss.Color(t.Source.Outlook)
	default:
		return lipgloss.Color(t.Source.Native)
	}
}

type styleSet struct {
	header    lipgloss.Style
	muted     lipgloss.Style
	selected  lipgloss.Style
	gapChip   lipgloss.Style
	gapOpen   lipgloss.Style
	preview   lipgloss.Style
	allDayBar lipgloss.Style
	footer    lipgloss.Style
}

func newStyleSet(t Theme) styleSet {
	return styleSet{
		header:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.Header)).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		selected:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)).Bold(true),
		gapChip:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)).Background(lipgloss.Color(t.GapChip)),
		gapOpen:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		preview:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Preview)).Bold(true),
		allDayBar: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Foreground)).Bold(true),
		footer:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
	}
}
