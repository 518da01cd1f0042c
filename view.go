package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/philtim/worldclock/catalog"
	"github.com/philtim/worldclock/registry"
)

// View renders the UI
func (m model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	if !m.ready {
		return "Initializing..."
	}

	switch m.state {
	case viewMain:
		return m.renderMain()
	case viewPick:
		return m.renderPick()
	}

	return ""
}

// renderMain renders the clock grid, the fun fact and the command bar
func (m model) renderMain() string {
	m.viewport.SetContent(m.renderClocks())

	fact := m.styles.muted.Width(m.width).Render("  " + m.facts.Current())

	return fmt.Sprintf("%s\n%s\n%s", m.viewport.View(), fact, m.renderCommandBar())
}

// slotTitle names a slot: the configured city while the slot still shows
// its configured timezone, otherwise the catalog name.
func (m model) slotTitle(slot registry.Slot) string {
	if slot.UserLocation {
		if !slot.Resolved {
			return "Your Location"
		}
		return "Your Location · " + catalog.DisplayName(slot.ZoneID)
	}
	if name, ok := m.cfg.CityName(slot.Index, slot.ZoneID); ok {
		return name
	}
	return catalog.DisplayName(slot.ZoneID)
}

// renderClocks renders every slot as a card in a grid. All cards are
// computed against the instant of the last tick.
func (m model) renderClocks() string {
	var cards, titles []string
	var entries []registry.Entry
	for e := range m.reg.SnapshotAll(m.now) {
		entries = append(entries, e)
		titles = append(titles, m.slotTitle(e.Slot))
	}
	user := m.reg.UserLocation()
	if !user.Resolved {
		titles = append(titles, m.slotTitle(user))
	}

	cols := calculateColumns(titles, m.width)

	// Each card has border (2) + padding (4) + margins (2)
	cardOverhead := 8
	cardWidth := m.width/cols - cardOverhead
	if cardWidth < 20 {
		cardWidth = 20 // Minimum width for readability
	}

	for i, e := range entries {
		cards = append(cards, m.renderCard(e, titles[i], cardWidth))
	}
	if !user.Resolved {
		cards = append(cards, m.renderPendingCard(user, titles[len(titles)-1], cardWidth))
	}

	var rows []string
	for start := 0; start < len(cards); start += cols {
		end := start + cols
		if end > len(cards) {
			end = len(cards)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[start:end]...))
	}

	return strings.Join(rows, "\n")
}

func (m model) cardStyle(slot registry.Slot) lipgloss.Style {
	if slot.Index == m.cursor {
		return m.styles.selected
	}
	return m.styles.card
}

// renderCard renders a single clock card
func (m model) renderCard(e registry.Entry, title string, width int) string {
	titleStr := m.styles.title.Width(width).Render(strings.ToUpper(title))

	if e.Err != nil {
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStr,
			m.styles.warn.Width(width).Align(lipgloss.Center).Render("unavailable"),
			m.styles.date.Width(width).PaddingBottom(1).Render(e.Slot.ZoneID),
		)
		return m.cardStyle(e.Slot).Render(content)
	}

	snap := e.Snapshot
	timeStr := m.styles.time.Width(width).Render(snap.Time)
	dateStr := m.styles.date.Width(width).Render(snap.Date)
	zone := snap.OffsetLabel()
	if snap.ZoneAbbreviation != "" {
		zone = snap.ZoneAbbreviation + " · " + zone
	}
	zoneStr := m.styles.date.Width(width).Render(zone)
	hands := m.styles.date.Width(width).PaddingBottom(1).Render(
		fmt.Sprintf("h%s m%s s%s", handGlyph(snap.HourAngleDeg), handGlyph(snap.MinuteAngleDeg), handGlyph(snap.SecondAngleDeg)))

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStr,
		timeStr,
		dateStr,
		zoneStr,
		hands,
	)

	return m.cardStyle(e.Slot).Render(content)
}

// renderPendingCard renders the user-location slot before detection
func (m model) renderPendingCard(slot registry.Slot, title string, width int) string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.title.Width(width).Render(strings.ToUpper(title)),
		m.styles.date.Width(width).PaddingBottom(1).Render("Press l to detect"),
	)
	return m.cardStyle(slot).Render(content)
}

// handGlyphs point clockwise from 12 in 45° steps
var handGlyphs = []string{"↑", "↗", "→", "↘", "↓", "↙", "←", "↖"}

// handGlyph returns the arrow closest to a clock-hand angle
func handGlyph(angle float64) string {
	i := int(math.Round(angle/45)) % len(handGlyphs)
	if i < 0 {
		i += len(handGlyphs)
	}
	return handGlyphs[i]
}

// calculateColumns determines the number of columns based on terminal width and title lengths
func calculateColumns(titles []string, width int) int {
	maxTitleLen := 0
	for _, title := range titles {
		if n := lipgloss.Width(title); n > maxTitleLen {
			maxTitleLen = n
		}
	}

	// The longest date line is 29 chars: "Wednesday, September 30, 2026"
	minContentWidth := maxTitleLen
	if minContentWidth < 29 {
		minContentWidth = 29
	}

	// Border (2), padding (4) and margins (2) per card
	minCardWidth := minContentWidth + 8

	// Try 4 columns first (default preference)
	if width >= minCardWidth*4 {
		return 4
	}

	// Fall back to 2 columns
	if width >= minCardWidth*2 {
		return 2
	}

	// Last resort: 1 column
	return 1
}

// renderPick renders the city picker for the selected slot
func (m model) renderPick() string {
	var b strings.Builder

	b.WriteString(m.styles.heading.Render(fmt.Sprintf("Change clock %d", m.cursor+1)))
	b.WriteString("\n\n")

	b.WriteString("Search city:\n")
	b.WriteString(m.searchInput.View())
	b.WriteString("\n\n")

	if len(m.choices) == 0 {
		b.WriteString(m.styles.muted.Render("No cities found"))
	} else {
		b.WriteString(fmt.Sprintf("Results (%d):\n", len(m.choices)))
		// Show results (limit visible results)
		maxVisible := 10
		start := 0
		if m.selectedChoice >= maxVisible {
			start = m.selectedChoice - maxVisible + 1
		}
		end := start + maxVisible
		if end > len(m.choices) {
			end = len(m.choices)
		}

		for i := start; i < end; i++ {
			c := m.choices[i]
			line := fmt.Sprintf("  %s (%s)", c.Label, c.ZoneID)
			if i == m.selectedChoice {
				line = m.styles.highlight.Render("> " + line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if m.geonamesDB != nil && !m.geonamesReady {
		b.WriteString("\n")
		b.WriteString(m.styles.muted.Render("Loading more cities..."))
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(m.styles.warn.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	b.WriteString("\n")
	b.WriteString(m.styles.muted.Render("↑/↓: Navigate | Enter: Select | ESC: Cancel"))

	return b.String()
}

// renderCommandBar renders the command bar at the bottom
func (m model) renderCommandBar() string {
	leftContent := m.styles.barText.Render("←/→: Select | Enter: Change | l: Locate | t: Theme | q: Quit")

	// Right side: error, status or GeoNames state
	var status string
	switch {
	case m.err != nil:
		status = fmt.Sprintf("Error: %v", m.err)
	case m.status != "":
		status = m.status
	case m.geonamesDB == nil:
		status = "GeoNames: off"
	case m.geonamesReady:
		status = "GeoNames: Ready"
	default:
		status = fmt.Sprintf("%s Loading GeoNames...", spinnerFrames[m.spinnerFrame])
	}
	rightContent := m.styles.barText.Render(status)

	// Calculate spacing to push right content to the right
	spacingWidth := m.width - lipgloss.Width(leftContent) - lipgloss.Width(rightContent)
	if spacingWidth < 0 {
		spacingWidth = 0
	}
	spacing := strings.Repeat(" ", spacingWidth)

	return m.styles.bar.Render(leftContent + spacing + rightContent)
}
