package tui

import "github.com/charmbracelet/lipgloss"

// Styles contains the pre-configured lipgloss styles for the search view.
type Styles struct {
	Title    lipgloss.Style
	Prompt   lipgloss.Style
	Selected lipgloss.Style
	Filename lipgloss.Style
	Score    lipgloss.Style
	Snippet  lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style
}

// DefaultStyles returns the default colour scheme.
func DefaultStyles() *Styles {
	var (
		primary = lipgloss.Color("#7C3AED")
		muted   = lipgloss.Color("#6C7086")
		errRed  = lipgloss.Color("#F38BA8")
	)

	return &Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(primary),
		Prompt:   lipgloss.NewStyle().Foreground(primary),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(primary),
		Filename: lipgloss.NewStyle().Bold(true),
		Score:    lipgloss.NewStyle().Foreground(muted),
		Snippet:  lipgloss.NewStyle().Foreground(muted).PaddingLeft(4),
		Status:   lipgloss.NewStyle().Foreground(muted),
		Error:    lipgloss.NewStyle().Foreground(errRed),
	}
}
