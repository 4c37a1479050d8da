package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles of the form.
type Styles struct {
	Title          lipgloss.Style
	Label          lipgloss.Style
	Button         lipgloss.Style
	ButtonFocused  lipgloss.Style
	ButtonDisabled lipgloss.Style
	Error          lipgloss.Style
	Result         lipgloss.Style
	Link           lipgloss.Style
	Meta           lipgloss.Style
	Help           lipgloss.Style
}

func DefaultStyles() Styles {
	accent := lipgloss.Color("#7D56F4")
	muted := lipgloss.Color("#767676")

	button := lipgloss.NewStyle().
		Padding(0, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(muted)

	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true).
			MarginBottom(1),

		Label: lipgloss.NewStyle().
			Width(10).
			Foreground(muted),

		Button: button,

		ButtonFocused: button.
			BorderForeground(accent).
			Foreground(accent).
			Bold(true),

		ButtonDisabled: button.
			Foreground(muted).
			Faint(true),

		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87")).
			Bold(true),

		Result: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(accent).
			PaddingLeft(1),

		Link: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Underline(true),

		Meta: lipgloss.NewStyle().
			Foreground(muted).
			Italic(true),

		Help: lipgloss.NewStyle().
			Foreground(muted).
			MarginTop(1),
	}
}
