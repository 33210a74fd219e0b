package ui

import "github.com/charmbracelet/lipgloss"

// palette is indexed by the store's theme. Black is left out so the accent
// always stays readable.
var palette = []lipgloss.Color{
	"9", "1", // red
	"10", "2", // green
	"11", "3", // yellow
	"12", "4", // blue
	"13", "5", // magenta
	"14", "6", // cyan
	"15", "7", // white, grey
	"8", // dark grey
}

const black = lipgloss.Color("0")

type styles struct {
	Title    lipgloss.Style
	Row      lipgloss.Style
	Selected lipgloss.Style
	Muted    lipgloss.Style
	Status   lipgloss.Style
	Label    lipgloss.Style
	Focused  lipgloss.Style
	Field    lipgloss.Style
	Cursor   lipgloss.Style
	// Filled and Empty draw the two parts of the selected TOTP row.
	Filled lipgloss.Style
	Empty  lipgloss.Style
}

func newStyles(theme int) styles {
	accent := palette[wrapIndex(theme, len(palette))]
	return styles{
		Title:    lipgloss.NewStyle().Bold(true),
		Row:      lipgloss.NewStyle(),
		Selected: lipgloss.NewStyle().Foreground(accent),
		Muted:    lipgloss.NewStyle().Faint(true),
		Status:   lipgloss.NewStyle().Foreground(accent).Italic(true),
		Label:    lipgloss.NewStyle(),
		Focused:  lipgloss.NewStyle().Foreground(accent).Bold(true),
		Field:    lipgloss.NewStyle().Underline(true),
		Cursor:   lipgloss.NewStyle().Foreground(black).Background(lipgloss.Color("15")),
		Filled:   lipgloss.NewStyle().Foreground(black).Background(accent),
		Empty:    lipgloss.NewStyle().Foreground(accent).Background(black),
	}
}

func deleted(s lipgloss.Style) lipgloss.Style {
	return s.Strikethrough(true).Faint(true)
}
