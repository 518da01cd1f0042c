package main

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/philtim/worldclock/catalog"
	"github.com/philtim/worldclock/clock"
	"github.com/philtim/worldclock/config"
	"github.com/philtim/worldclock/version"
)

var nowCmd = &cobra.Command{
	Use:   "now [timezone...]",
	Short: "Print the current time for the configured or given timezones",
	RunE: func(cmd *cobra.Command, args []string) error {
		zones := args
		var cfg *config.Config
		if len(zones) == 0 {
			var err error
			cfg, err = loadConfig()
			if err != nil {
				return err
			}
			zones = cfg.Zones()
		}
		return printNow(cmd.OutOrStdout(), zones, cfg, time.Now())
	},
}

var zonesCmd = &cobra.Command{
	Use:   "zones [query]",
	Short: "List the cities in the catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := ""
		if len(args) == 1 {
			query = args[0]
		}
		return printZones(cmd.OutOrStdout(), query, time.Now())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Info()
		fmt.Fprintf(cmd.OutOrStdout(), "worldclock %s (commit %s, built %s, %s)\n",
			info["version"], info["git_commit"], info["build_date"], info["go_version"])
	},
}

// printNow writes one row per timezone, all computed at the same instant.
// Unknown timezones are shown as unavailable; the command fails only when
// every timezone is unknown.
func printNow(w io.Writer, zones []string, cfg *config.Config, at time.Time) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"City", "Timezone", "Time", "Date", "Offset", "Zone"})
	table.SetAutoWrapText(false)

	failed := 0
	for i, zoneID := range zones {
		name := catalog.DisplayName(zoneID)
		if cfg != nil {
			if n, ok := cfg.CityName(i, zoneID); ok {
				name = n
			}
		}

		snap, err := clock.Compute(zoneID, at)
		if err != nil {
			failed++
			table.Append([]string{name, zoneID, "unavailable", "", "", ""})
			continue
		}
		table.Append([]string{name, zoneID, snap.Time, snap.Date, snap.OffsetLabel(), snap.ZoneAbbreviation})
	}
	table.Render()

	if failed > 0 && failed == len(zones) {
		return fmt.Errorf("no known timezones: %w", clock.ErrUnknownTimezone)
	}
	return nil
}

// printZones lists catalog entries matching query, west to east at instant at.
func printZones(w io.Writer, query string, at time.Time) error {
	entries := catalog.Search(query, len(catalog.Entries()))
	if len(entries) == 0 {
		return fmt.Errorf("no cities match %q", query)
	}

	labels := make(map[string]catalog.Entry, len(entries))
	snaps := make([]clock.Snapshot, 0, len(entries))
	for _, e := range entries {
		snap, err := clock.Compute(e.ZoneID, at)
		if err != nil {
			return err
		}
		labels[e.ZoneID] = e
		snaps = append(snaps, snap)
	}
	clock.SortByOffset(snaps)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"City", "Country", "Timezone", "Offset"})
	for _, snap := range snaps {
		e := labels[snap.ZoneID]
		table.Append([]string{e.City, e.Country, e.ZoneID, snap.OffsetLabel()})
	}
	table.Render()
	return nil
}
