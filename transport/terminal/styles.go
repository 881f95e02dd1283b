package terminal

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by the board view
type Styles struct {
	Board  lipgloss.Style
	Head   lipgloss.Style
	Body   lipgloss.Style
	Food   lipgloss.Style
	Empty  lipgloss.Style
	Header lipgloss.Style
	Status lipgloss.Style
	Lost   lipgloss.Style
	Won    lipgloss.Style
	Help   lipgloss.Style
}

// DefaultStyles returns the green-snake-on-dark-board theme
func DefaultStyles() Styles {
	return Styles{
		Board: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")),
		Head:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		Body:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Food:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Empty:  lipgloss.NewStyle().Foreground(lipgloss.Color("236")),
		Header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		Status: lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		Lost:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Won:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}
