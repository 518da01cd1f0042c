// worldclock shows live clocks for a set of timezones in the terminal.
//
// Usage:
//
//	worldclock                     # interactive clocks
//	worldclock now                 # print the configured clocks once
//	worldclock now Asia/Kolkata    # print specific timezones
//	worldclock zones tokyo         # search the city catalog
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/philtim/worldclock/config"
	"github.com/philtim/worldclock/geonames"
	"github.com/philtim/worldclock/location"
	"github.com/philtim/worldclock/logger"
	"github.com/philtim/worldclock/registry"
	"github.com/philtim/worldclock/scheduler"
	"github.com/philtim/worldclock/version"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "worldclock",
	Short: "Live world clocks in your terminal",
	Long: `worldclock shows the current time for a set of cities, refreshed every
second, with your own location on demand.

Keys:
  ←/→     select a clock
  enter   change the selected city
  l       detect your location
  t       toggle light/dark theme
  q       quit`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/worldclock.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	rootCmd.AddCommand(nowCmd, zonesCmd, versionCmd)
}

// loadConfig loads the configuration and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

// openLog opens the log file under ~/.cache/worldclock. The TUI owns
// stdout, so logs never go to the terminal; without a writable cache
// directory they are discarded.
func openLog() io.WriteCloser {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nopCloser{io.Discard}
	}
	dir := filepath.Join(cacheDir, "worldclock")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nopCloser{io.Discard}
	}
	f, err := os.OpenFile(filepath.Join(dir, "worldclock.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nopCloser{io.Discard}
	}
	return f
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func runTUI(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logFile := openLog()
	defer logFile.Close()
	log := logger.New(cfg.LogLevel, logFile)
	log.Info("worldclock starting",
		"version", version.Version,
		"config_path", cfg.Path(),
		"slots", len(cfg.Cities),
		"theme", cfg.Theme)

	reg, err := registry.New(cfg.Zones())
	if err != nil {
		return fmt.Errorf("error creating clocks: %w", err)
	}

	var geonamesDB *geonames.Database
	if cfg.GeoNames.Enabled {
		geonamesDB = geonames.NewDatabase(geonames.Options{
			URL:    cfg.GeoNames.URL,
			Logger: log.WithFields("component", "geonames"),
		})
		geonamesDB.LoadAsync(ctx)
	}

	m := newModel(cfg, reg, geonamesDB, location.Detector{}, log)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	sched := scheduler.New(scheduler.Options{})
	sched.Start(func(now time.Time) { p.Send(tickMsg(now)) })
	sched.StartFacts(func(now time.Time) { p.Send(factMsg(now)) })
	defer sched.Close()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	log.Info("worldclock stopped")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
