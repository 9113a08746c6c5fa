package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/leonardomso/mdlinks/internal/links"
)

// Color palette.
var (
	PrimaryColor   = lipgloss.Color("205") // Pink
	SecondaryColor = lipgloss.Color("241") // Gray
	SuccessColor   = lipgloss.Color("82")  // Green
	ErrorColor     = lipgloss.Color("196") // Red
	InfoColor      = lipgloss.Color("39")  // Blue
	WarningColor   = lipgloss.Color("214") // Orange
)

// Text styles.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	StatusStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			MarginTop(1)

	DetailLabelStyle = lipgloss.NewStyle().
				Foreground(SecondaryColor).
				Bold(true)
)

// SpinnerStyle returns the style for the spinner.
func SpinnerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(PrimaryColor)
}

func badge(bg lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("0")).
		Background(bg).
		Padding(0, 1)
}

// TypeBadge returns a styled badge naming how a link was written.
func TypeBadge(t links.LinkType) string {
	switch t {
	case links.LinkTypeInline:
		return badge(SuccessColor).Render("inline")
	case links.LinkTypeReference:
		return badge(InfoColor).Render("ref")
	case links.LinkTypeAutolink:
		return badge(WarningColor).Render("auto")
	default:
		return badge(SecondaryColor).Render("?")
	}
}
