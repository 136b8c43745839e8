package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by a Renderer.
type Styles struct {
	Header1  lipgloss.Style
	Header2  lipgloss.Style
	Bold     lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Location lipgloss.Style
	Caret    lipgloss.Style
	Atom     lipgloss.Style
	Negated  lipgloss.Style
	Literal  lipgloss.Style
}

// NewStyles creates the styles for a lipgloss renderer. An ASCII colour
// profile renders every style as plain text.
func NewStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header1:  r.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("12")),
		Header2:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Bold:     r.NewStyle().Bold(true),
		Muted:    r.NewStyle().Foreground(lipgloss.Color("8")),
		Success:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		Warning:  r.NewStyle().Foreground(lipgloss.Color("11")),
		Error:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		Location: r.NewStyle().Bold(true),
		Caret:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		Atom:     r.NewStyle().Foreground(lipgloss.Color("14")),
		Negated:  r.NewStyle().Foreground(lipgloss.Color("13")),
		Literal:  r.NewStyle().Foreground(lipgloss.Color("11")),
	}
}
