package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/philtim/worldclock/config"
)

// palette holds the colors of one theme
type palette struct {
	title    lipgloss.Color
	time     lipgloss.Color
	muted    lipgloss.Color
	border   lipgloss.Color
	selected lipgloss.Color
	barFg    lipgloss.Color
	barBg    lipgloss.Color
	warn     lipgloss.Color
}

var palettes = map[string]palette{
	config.ThemeDark: {
		title:    lipgloss.Color("86"),
		time:     lipgloss.Color("205"),
		muted:    lipgloss.Color("241"),
		border:   lipgloss.Color("62"),
		selected: lipgloss.Color("212"),
		barFg:    lipgloss.Color("240"),
		barBg:    lipgloss.Color("235"),
		warn:     lipgloss.Color("203"),
	},
	config.ThemeLight: {
		title:    lipgloss.Color("25"),
		time:     lipgloss.Color("161"),
		muted:    lipgloss.Color("244"),
		border:   lipgloss.Color("110"),
		selected: lipgloss.Color("166"),
		barFg:    lipgloss.Color("236"),
		barBg:    lipgloss.Color("253"),
		warn:     lipgloss.Color("160"),
	},
}

// styles are the lipgloss styles derived from a palette
type styles struct {
	theme     string
	title     lipgloss.Style
	time      lipgloss.Style
	date      lipgloss.Style
	muted     lipgloss.Style
	warn      lipgloss.Style
	heading   lipgloss.Style
	highlight lipgloss.Style
	card      lipgloss.Style
	selected  lipgloss.Style
	bar       lipgloss.Style
	barText   lipgloss.Style
}

func newStyles(theme string) styles {
	p, ok := palettes[theme]
	if !ok {
		theme = config.DefaultTheme
		p = palettes[theme]
	}

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.border).
		Padding(0, 2).
		Margin(1, 1, 0, 1) // Top, Right, Bottom, Left margins

	return styles{
		theme:     theme,
		title:     lipgloss.NewStyle().Bold(true).Foreground(p.title).Align(lipgloss.Center).PaddingTop(1).PaddingBottom(1),
		time:      lipgloss.NewStyle().Bold(true).Foreground(p.time).Align(lipgloss.Center),
		date:      lipgloss.NewStyle().Foreground(p.muted).Align(lipgloss.Center),
		muted:     lipgloss.NewStyle().Foreground(p.muted),
		warn:      lipgloss.NewStyle().Foreground(p.warn).Bold(true),
		heading:   lipgloss.NewStyle().Bold(true).Foreground(p.time).Padding(1, 0),
		highlight: lipgloss.NewStyle().Foreground(p.time).Bold(true),
		card:      card,
		selected:  card.BorderForeground(p.selected).BorderStyle(lipgloss.ThickBorder()),
		bar:       lipgloss.NewStyle().Background(p.barBg),
		barText:   lipgloss.NewStyle().Foreground(p.barFg).Background(p.barBg).Padding(0, 1),
	}
}
