// Package config loads and saves the worldclock YAML configuration.
//
// The cities list seeds the clock slots at startup. Slot changes made in the
// UI are not written back; the theme is the only preference that Save
// persists between sessions.
//
// Environment overrides:
//   - WORLDCLOCK_THEME: dark or light
//   - WORLDCLOCK_LOG_LEVEL: debug, info, warn or error
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/philtim/worldclock/clock"
	"github.com/philtim/worldclock/geonames"
)

// Themes
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Defaults
const (
	DefaultTheme    = ThemeDark
	DefaultLogLevel = "info"
)

// ErrInvalidTheme is returned for a theme other than dark or light.
var ErrInvalidTheme = errors.New("invalid theme")

// City represents a clock slot configuration
type City struct {
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

// GeoNames configures the extended city search
type GeoNames struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url,omitempty"`
}

// Config represents the application configuration
type Config struct {
	Cities         []City   `yaml:"cities"`
	Theme          string   `yaml:"theme"`
	DetectLocation bool     `yaml:"detect_location"`
	LogLevel       string   `yaml:"log_level"`
	GeoNames       GeoNames `yaml:"geonames"`

	path string
	// values written by Save; environment and flag overrides never reach them
	saved persisted
}

type persisted struct {
	theme    string
	logLevel string
}

// Default returns the configuration written on first run.
func Default() *Config {
	return &Config{
		Cities: []City{
			{Name: "New York", Timezone: "America/New_York"},
			{Name: "London", Timezone: "Europe/London"},
			{Name: "Tokyo", Timezone: "Asia/Tokyo"},
			{Name: "Sydney", Timezone: "Australia/Sydney"},
		},
		Theme:          DefaultTheme,
		DetectLocation: true,
		LogLevel:       DefaultLogLevel,
		GeoNames: GeoNames{
			Enabled: true,
			URL:     geonames.DefaultURL,
		},
		saved: persisted{theme: DefaultTheme, logLevel: DefaultLogLevel},
	}
}

// Load reads the configuration from path, or from ~/.config/worldclock.yaml
// when path is empty. A missing file is created with the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
		path = p
	}

	// Check if config file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		cfg.path = path
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	// #nosec G304 -- path comes from the --config flag or the user's home directory
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.path = path

	cfg.applyDefaults()
	cfg.saved = persisted{theme: cfg.Theme, logLevel: cfg.LogLevel}
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Theme == "" {
		c.Theme = DefaultTheme
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.GeoNames.URL == "" {
		c.GeoNames.URL = geonames.DefaultURL
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("WORLDCLOCK_THEME"); v != "" {
		c.Theme = strings.ToLower(v)
	}
	if v := os.Getenv("WORLDCLOCK_LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
}

// Validate checks names, timezone identifiers, theme and log level
func (c *Config) Validate() error {
	if len(c.Cities) == 0 {
		return fmt.Errorf("no cities configured")
	}

	for i, city := range c.Cities {
		if city.Name == "" {
			return fmt.Errorf("city at index %d has no name", i)
		}
		if city.Timezone == "" {
			return fmt.Errorf("city '%s' has no timezone", city.Name)
		}
		if !clock.Valid(city.Timezone) {
			return fmt.Errorf("invalid timezone '%s' for city '%s': %w", city.Timezone, city.Name, clock.ErrUnknownTimezone)
		}
	}

	if c.Theme != ThemeDark && c.Theme != ThemeLight {
		return fmt.Errorf("%w: %q (want %q or %q)", ErrInvalidTheme, c.Theme, ThemeDark, ThemeLight)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}

	return nil
}

// Zones returns the configured timezone identifiers in slot order.
func (c *Config) Zones() []string {
	zones := make([]string, len(c.Cities))
	for i, city := range c.Cities {
		zones[i] = city.Timezone
	}
	return zones
}

// CityName returns the configured name for slot index if it still shows
// its configured timezone.
func (c *Config) CityName(index int, zoneID string) (string, bool) {
	if index < 0 || index >= len(c.Cities) || c.Cities[index].Timezone != zoneID {
		return "", false
	}
	return c.Cities[index].Name, true
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string {
	return c.path
}

// SetTheme changes the theme without saving.
func (c *Config) SetTheme(theme string) error {
	if theme != ThemeDark && theme != ThemeLight {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, theme)
	}
	c.Theme = theme
	c.saved.theme = theme
	return nil
}

// ToggleTheme switches between dark and light and returns the new theme.
func (c *Config) ToggleTheme() string {
	if c.Theme == ThemeLight {
		c.Theme = ThemeDark
	} else {
		c.Theme = ThemeLight
	}
	c.saved.theme = c.Theme
	return c.Theme
}

// DefaultPath returns ~/.config/worldclock.yaml
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "worldclock.yaml"), nil
}

// Save writes the configuration back to its file atomically. Theme and log
// level are written as loaded from the file, or as last set with SetTheme or
// ToggleTheme, so overrides from the environment or flags are not persisted.
func (c *Config) Save() error {
	if c.path == "" {
		p, err := DefaultPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		c.path = p
	}

	out := *c
	if c.saved.theme != "" {
		out.Theme = c.saved.theme
	}
	if c.saved.logLevel != "" {
		out.LogLevel = c.saved.logLevel
	}
	if err := out.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configDir := filepath.Dir(c.path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Atomic write: write to temp file, then rename
	tempFile, err := os.CreateTemp(configDir, "worldclock-*.yaml.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempPath, c.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}
