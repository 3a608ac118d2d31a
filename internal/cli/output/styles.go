package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by text output.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Muted   lipgloss.Style

	Success lipgloss.Style
	Warning lipgloss.Style

	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
	StatusRunning lipgloss.Style
}

// NewStyles builds the styles for a lipgloss renderer.
func NewStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header1: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header2: r.NewStyle().Bold(true),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("8")),

		Success: r.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("11")),

		StatusSuccess: r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		StatusFailed:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		StatusRunning: r.NewStyle().Foreground(lipgloss.Color("11")),
	}
}
