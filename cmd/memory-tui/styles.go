package main

import "github.com/charmbracelet/lipgloss"

var (
	colorFg      = lipgloss.Color("#ABB2BF")
	colorMuted   = lipgloss.Color("#636B78")
	colorRed     = lipgloss.Color("#E06C75")
	colorGreen   = lipgloss.Color("#98C379")
	colorYellow  = lipgloss.Color("#E5C07B")
	colorBlue    = lipgloss.Color("#61AFEF")
	colorMagenta = lipgloss.Color("#C678DD")
	colorBorder  = lipgloss.Color("#3F4451")
	colorSelect  = lipgloss.Color("#2C313C")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(colorMagenta).
			Bold(true).
			PaddingLeft(1)

	boardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	axisStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	hiddenStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	faceUpStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)

	matchedStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	selectedStyle = lipgloss.NewStyle().
			Background(colorSelect).
			Foreground(colorBlue).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(colorFg).
			PaddingLeft(1)

	wonStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true).
			PaddingLeft(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			PaddingLeft(1)

	logStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			PaddingLeft(1)
)
