// Package clock computes timezone-localized clock snapshots.
//
// A Snapshot is a pure function of a timezone identifier and an instant:
// the caller supplies "now", so results are reproducible in tests.
package clock

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"
	_ "time/tzdata"
)

const (
	// TimeLayout renders wall-clock time in 24-hour format (HH:MM:SS)
	TimeLayout = "15:04:05"
	// DateLayout renders weekday, month, day and year
	DateLayout = "Monday, January 2, 2006"
)

// ErrUnknownTimezone is returned when the tz database does not know an identifier.
var ErrUnknownTimezone = errors.New("unknown timezone")

// Snapshot is the rendering data for one timezone at one instant.
type Snapshot struct {
	ZoneID           string
	Time             string
	Date             string
	UTCOffsetHours   float64
	ZoneAbbreviation string
	HourAngleDeg     float64
	MinuteAngleDeg   float64
	SecondAngleDeg   float64

	offsetSeconds int
}

var zones sync.Map // zone id -> *time.Location

// LoadZone resolves a timezone identifier, caching the result.
func LoadZone(zoneID string) (*time.Location, error) {
	if loc, ok := zones.Load(zoneID); ok {
		return loc.(*time.Location), nil
	}
	// LoadLocation maps "" to UTC and "Local" to the host zone; neither names a zone.
	if zoneID == "" || zoneID == "Local" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTimezone, zoneID)
	}
	loc, err := time.LoadLocation(zoneID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTimezone, zoneID)
	}
	zones.Store(zoneID, loc)
	return loc, nil
}

// Valid reports whether zoneID is a known timezone identifier.
func Valid(zoneID string) bool {
	_, err := LoadZone(zoneID)
	return err == nil
}

// Compute returns the snapshot for zoneID at instant at.
func Compute(zoneID string, at time.Time) (Snapshot, error) {
	loc, err := LoadZone(zoneID)
	if err != nil {
		return Snapshot{}, err
	}

	t := at.In(loc)
	abbrev, offset := t.Zone()
	hour, minute, second := t.Clock()

	return Snapshot{
		ZoneID:           zoneID,
		Time:             t.Format(TimeLayout),
		Date:             t.Format(DateLayout),
		UTCOffsetHours:   offsetHours(offset),
		ZoneAbbreviation: abbrev,
		HourAngleDeg:     float64(hour%12)*30 + float64(minute)*0.5,
		MinuteAngleDeg:   float64(minute) * 6,
		SecondAngleDeg:   float64(second) * 6,
		offsetSeconds:    offset,
	}, nil
}

// offsetHours converts an offset in seconds to hours, rounded to the minute.
func offsetHours(seconds int) float64 {
	minutes := math.Round(float64(seconds) / 60)
	return minutes / 60
}

// OffsetLabel returns the UTC offset in UTC±HH:MM format
func (s Snapshot) OffsetLabel() string {
	offset := s.offsetSeconds
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}

	hours := offset / 3600
	minutes := (offset % 3600) / 60

	return fmt.Sprintf("UTC%s%02d:%02d", sign, hours, minutes)
}

// DateWithOffset returns the date and UTC offset
// Format: "Monday, January 2, 2006 - UTC±HH:MM"
func (s Snapshot) DateWithOffset() string {
	return fmt.Sprintf("%s - %s", s.Date, s.OffsetLabel())
}

// SortByOffset sorts snapshots by their UTC offset (west to east).
// Snapshots with equal offsets keep their relative order.
func SortByOffset(snaps []Snapshot) {
	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].offsetSeconds < snaps[j].offsetSeconds
	})
}
