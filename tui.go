package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/philtim/worldclock/catalog"
	"github.com/philtim/worldclock/config"
	"github.com/philtim/worldclock/facts"
	"github.com/philtim/worldclock/geonames"
	"github.com/philtim/worldclock/location"
	"github.com/philtim/worldclock/logger"
	"github.com/philtim/worldclock/registry"
)

// viewState represents the current view state
type viewState int

const (
	viewMain viewState = iota
	viewPick
)

const (
	maxChoices  = 50
	statusDelay = 4 * time.Second
)

// tickMsg carries the instant captured by the scheduler for one refresh
type tickMsg time.Time

// factMsg is sent when the fun fact should rotate
type factMsg time.Time

// spinnerTickMsg is sent to update the spinner animation
type spinnerTickMsg time.Time

// locationMsg carries the result of a location detection
type locationMsg struct {
	zoneID string
	err    error
}

// clearStatusMsg clears the status line unless a newer status replaced it
type clearStatusMsg struct{ id int }

// geonamesReadyMsg is sent when GeoNames database is ready
type geonamesReadyMsg struct{}

// geonamesErrorMsg is sent when GeoNames fails to load
type geonamesErrorMsg struct{ err error }

// choice is one row of the city picker
type choice struct {
	ZoneID string
	Label  string
}

// model represents the application state
type model struct {
	// Core data
	cfg        *config.Config
	reg        *registry.Registry
	facts      *facts.Rotator
	geonamesDB *geonames.Database
	detector   location.Detector
	log        *logger.Logger
	styles     styles
	now        time.Time

	// View state
	state    viewState
	viewport viewport.Model
	ready    bool
	width    int
	height   int
	quitting bool
	cursor   int

	// Status line: transient messages and the last error
	status   string
	statusID int
	err      error

	// Spinner state
	spinnerFrame  int
	geonamesReady bool

	// Pick mode state
	searchInput         textinput.Model
	choices             []choice
	selectedChoice      int
	justEnteredPickMode bool // Flag to prevent initial key from appearing in input
}

func newModel(cfg *config.Config, reg *registry.Registry, db *geonames.Database, detector location.Detector, log *logger.Logger) model {
	ti := textinput.New()
	ti.Placeholder = "Search city..."
	ti.CharLimit = 50
	ti.Width = 50

	return model{
		cfg:         cfg,
		reg:         reg,
		facts:       facts.NewRotator(nil, time.Now().YearDay()),
		geonamesDB:  db,
		detector:    detector,
		log:         log,
		styles:      newStyles(cfg.Theme),
		now:         time.Now(),
		state:       viewMain,
		searchInput: ti,
	}
}

// Init initializes the model
func (m model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.cfg.DetectLocation {
		cmds = append(cmds, detectLocationCmd(m.detector))
	}
	if m.geonamesDB != nil {
		cmds = append(cmds, spinnerTickCmd(), checkGeoNamesCmd(m.geonamesDB))
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyPress(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		if !m.ready {
			// Reserve space for the fact line and the command bar
			m.viewport = viewport.New(msg.Width, msg.Height-3)
			m.viewport.YPosition = 0
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 3
		}

	case tickMsg:
		m.now = time.Time(msg)

	case factMsg:
		m.facts.Next()

	case locationMsg:
		cmds = append(cmds, m.applyLocation(msg))

	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = ""
		}

	case spinnerTickMsg:
		m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
		// Continue spinner animation only if GeoNames is not ready
		if !m.geonamesReady {
			cmds = append(cmds, spinnerTickCmd())
		}

	case geonamesReadyMsg:
		m.geonamesReady = true
		if m.state == viewPick {
			m.refreshChoices()
		}

	case geonamesErrorMsg:
		m.log.Warn("GeoNames unavailable", "error", msg.err)
		m.geonamesReady = true // Stop spinner on error too
		cmds = append(cmds, m.setStatus("City search limited to built-in catalog"))
	}

	// Update sub-components based on state
	if m.state == viewPick {
		// Skip the key that opened the picker
		if !m.justEnteredPickMode {
			before := m.searchInput.Value()
			m.searchInput, cmd = m.searchInput.Update(msg)
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
			if m.searchInput.Value() != before {
				m.refreshChoices()
			}
		} else {
			m.justEnteredPickMode = false
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKeyPress handles keyboard input based on current view state
func (m *model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	switch m.state {
	case viewMain:
		return m.handleMainKeys(msg)
	case viewPick:
		return m.handlePickKeys(msg)
	}
	return nil
}

// handleMainKeys handles keys in main view
func (m *model) handleMainKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return tea.Quit

	case "left", "shift+tab":
		if m.cursor > 0 {
			m.cursor--
		}

	case "right", "tab":
		// the last position is the user-location slot
		if m.cursor < m.reg.Len() {
			m.cursor++
		}

	case "enter":
		if m.cursor == m.reg.Len() {
			return detectLocationCmd(m.detector)
		}
		m.state = viewPick
		m.searchInput.Reset()
		m.selectedChoice = 0
		m.justEnteredPickMode = true
		m.refreshChoices()
		return m.searchInput.Focus()

	case "l":
		return detectLocationCmd(m.detector)

	case "t":
		theme := m.cfg.ToggleTheme()
		m.styles = newStyles(theme)
		if err := m.cfg.Save(); err != nil {
			m.log.Error("Failed to save theme", "error", err)
			m.err = err
			return nil
		}
		m.log.Info("Theme changed", "theme", theme)
		return m.setStatus(fmt.Sprintf("Theme: %s", theme))
	}

	return nil
}

// handlePickKeys handles keys in the city picker
func (m *model) handlePickKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return tea.Quit

	case "esc":
		m.state = viewMain
		m.searchInput.Blur()
		return nil

	case "up":
		if m.selectedChoice > 0 {
			m.selectedChoice--
		}

	case "down":
		if m.selectedChoice < len(m.choices)-1 {
			m.selectedChoice++
		}

	case "enter":
		if m.selectedChoice >= len(m.choices) {
			return nil
		}
		c := m.choices[m.selectedChoice]
		slot, err := m.reg.SetSlotTimezone(m.cursor, c.ZoneID)
		if err != nil {
			m.log.Warn("Slot update rejected", "slot", m.cursor, "zone", c.ZoneID, "error", err)
			m.err = err
			return nil
		}
		m.log.Info("Slot updated", "slot", slot.Index, "zone", slot.ZoneID)
		m.err = nil
		m.state = viewMain
		m.searchInput.Blur()
		return m.setStatus(fmt.Sprintf("Clock %d now shows %s", slot.Index+1, c.Label))
	}

	return nil
}

// refreshChoices rebuilds the picker rows from the catalog and, for longer
// queries, the GeoNames database.
func (m *model) refreshChoices() {
	query := m.searchInput.Value()
	seen := make(map[string]bool)
	var out []choice

	for _, e := range catalog.Search(query, maxChoices) {
		label := e.Label()
		seen[label+e.ZoneID] = true
		out = append(out, choice{ZoneID: e.ZoneID, Label: label})
	}

	if m.geonamesDB != nil && m.geonamesDB.IsReady() {
		for _, city := range m.geonamesDB.Search(query, maxChoices-len(out)) {
			label := fmt.Sprintf("%s, %s", city.Name, city.CountryCode)
			if seen[label+city.Timezone] {
				continue
			}
			seen[label+city.Timezone] = true
			out = append(out, choice{ZoneID: city.Timezone, Label: label})
		}
	}

	m.choices = out
	if m.selectedChoice >= len(m.choices) {
		m.selectedChoice = 0
	}
}

// applyLocation stores a detected location in the user-location slot
func (m *model) applyLocation(msg locationMsg) tea.Cmd {
	if msg.err != nil {
		m.log.Warn("Location detection failed", "error", msg.err)
		m.err = msg.err
		return nil
	}
	slot, err := m.reg.SetUserLocation(msg.zoneID)
	if err != nil {
		m.log.Warn("Detected location rejected", "zone", msg.zoneID, "error", err)
		m.err = err
		return nil
	}
	m.log.Info("Location detected", "zone", slot.ZoneID)
	m.err = nil
	return m.setStatus(fmt.Sprintf("Your location: %s", catalog.DisplayName(slot.ZoneID)))
}

// setStatus shows a transient message that clears itself after statusDelay
func (m *model) setStatus(s string) tea.Cmd {
	m.statusID++
	m.status = s
	id := m.statusID
	return tea.Tick(statusDelay, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

// spinnerFrames are the characters used for the loading animation
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinnerTickCmd returns a command that sends a spinner tick message
func spinnerTickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

// detectLocationCmd resolves the local timezone off the update loop
func detectLocationCmd(d location.Detector) tea.Cmd {
	return func() tea.Msg {
		zoneID, err := d.Detect()
		return locationMsg{zoneID: zoneID, err: err}
	}
}

// checkGeoNamesCmd checks if GeoNames database is ready
func checkGeoNamesCmd(db *geonames.Database) tea.Cmd {
	return func() tea.Msg {
		// Check periodically until ready
		for i := 0; i < 3000; i++ { // Check for up to 5 minutes
			time.Sleep(100 * time.Millisecond)
			if db.IsReady() {
				return geonamesReadyMsg{}
			}
			if err := db.Err(); err != nil {
				return geonamesErrorMsg{err: err}
			}
		}
		return geonamesErrorMsg{err: fmt.Errorf("timeout waiting for GeoNames database")}
	}
}
