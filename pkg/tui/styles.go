package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains the style definitions of the terminal UI
type Styles struct {
	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Input      lipgloss.Style
	Help       lipgloss.Style
	Loading    lipgloss.Style
	Heading    lipgloss.Style
	Answer     lipgloss.Style
	Link       lipgloss.Style
	Dim        lipgloss.Style
	ErrorBox   lipgloss.Style
	ConfigBox  lipgloss.Style
	ErrorTitle lipgloss.Style
	Footer     lipgloss.Style
}

func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginBottom(1),
		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1),
		Help:       lipgloss.NewStyle().Faint(true),
		Loading:    lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		Heading:    lipgloss.NewStyle().Bold(true).MarginTop(1),
		Answer:     lipgloss.NewStyle(),
		Link:       lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Underline(true),
		Dim:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		ErrorTitle: lipgloss.NewStyle().Bold(true),
		ErrorBox: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("203")).
			Foreground(lipgloss.Color("203")).
			Padding(0, 1).
			MarginTop(1),
		ConfigBox: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("214")).
			Foreground(lipgloss.Color("214")).
			Padding(0, 1).
			MarginTop(1),
		Footer: lipgloss.NewStyle().Faint(true).MarginTop(1),
	}
}
