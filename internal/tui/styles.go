package tui

import "github.com/charmbracelet/lipgloss"

type palette struct {
	Text    lipgloss.Color
	Dim     lipgloss.Color
	Accent  lipgloss.Color
	Done    lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

var (
	lightPalette = palette{
		Text:    lipgloss.Color("#1F2937"),
		Dim:     lipgloss.Color("#6B7280"),
		Accent:  lipgloss.Color("#4F46E5"),
		Done:    lipgloss.Color("#9CA3AF"),
		Success: lipgloss.Color("#15803D"),
		Warning: lipgloss.Color("#B45309"),
		Error:   lipgloss.Color("#B91C1C"),
	}
	darkPalette = palette{
		Text:    lipgloss.Color("#E5E7EB"),
		Dim:     lipgloss.Color("#9CA3AF"),
		Accent:  lipgloss.Color("#818CF8"),
		Done:    lipgloss.Color("#6B7280"),
		Success: lipgloss.Color("#4ADE80"),
		Warning: lipgloss.Color("#FBBF24"),
		Error:   lipgloss.Color("#F87171"),
	}
)

type styles struct {
	Title    lipgloss.Style
	Stats    lipgloss.Style
	Item     lipgloss.Style
	Selected lipgloss.Style
	Done     lipgloss.Style
	Estimate lipgloss.Style
	Help     lipgloss.Style
	Success  lipgloss.Style
	Info     lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
}

func newStyles(dark bool) styles {
	p := lightPalette
	if dark {
		p = darkPalette
	}
	return styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		Stats:    lipgloss.NewStyle().Foreground(p.Dim),
		Item:     lipgloss.NewStyle().Foreground(p.Text),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		Done:     lipgloss.NewStyle().Strikethrough(true).Foreground(p.Done),
		Estimate: lipgloss.NewStyle().Foreground(p.Dim),
		Help:     lipgloss.NewStyle().Foreground(p.Dim),
		Success:  lipgloss.NewStyle().Foreground(p.Success),
		Info:     lipgloss.NewStyle().Foreground(p.Accent),
		Warning:  lipgloss.NewStyle().Foreground(p.Warning),
		Error:    lipgloss.NewStyle().Bold(true).Foreground(p.Error),
	}
}
