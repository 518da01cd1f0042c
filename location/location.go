// Package location resolves the host's local IANA timezone identifier.
package location

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/philtim/worldclock/clock"
)

// ErrNotDetected is returned when no valid local timezone can be found.
var ErrNotDetected = errors.New("local timezone not detected")

const (
	localtimePath = "/etc/localtime"
	timezonePath  = "/etc/timezone"
)

// Detector looks up the local timezone. The zero value queries the host;
// the function fields exist so tests can stub the environment.
type Detector struct {
	Getenv   func(string) string
	Local    func() *time.Location
	Readlink func(string) (string, error)
	ReadFile func(string) ([]byte, error)
}

// Detect returns the local timezone identifier. Candidates are tried in
// order: $TZ, the name of time.Local, the /etc/localtime symlink target and
// /etc/timezone. The first one the tz database accepts wins.
func (d Detector) Detect() (string, error) {
	for _, candidate := range d.candidates() {
		candidate = strings.TrimSpace(candidate)
		if clock.Valid(candidate) {
			return candidate, nil
		}
	}
	return "", ErrNotDetected
}

func (d Detector) candidates() []string {
	getenv := d.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	local := d.Local
	if local == nil {
		local = func() *time.Location { return time.Local }
	}
	readlink := d.Readlink
	if readlink == nil {
		readlink = os.Readlink
	}
	readFile := d.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}

	var out []string
	if tz := getenv("TZ"); tz != "" {
		out = append(out, strings.TrimPrefix(tz, ":"))
	}
	if loc := local(); loc != nil {
		out = append(out, loc.String())
	}
	if target, err := readlink(localtimePath); err == nil {
		if zone, ok := zoneFromPath(target); ok {
			out = append(out, zone)
		}
	}
	if data, err := readFile(timezonePath); err == nil {
		line, _, _ := strings.Cut(string(data), "\n")
		out = append(out, line)
	}
	return out
}

// zoneFromPath extracts "Area/City" from a path such as
// /usr/share/zoneinfo/Area/City.
func zoneFromPath(path string) (string, bool) {
	path = filepath.ToSlash(path)
	_, zone, ok := strings.Cut(path, "zoneinfo/")
	if !ok || zone == "" {
		return "", false
	}
	// some distributions link into zoneinfo/posix/ or zoneinfo/right/
	zone = strings.TrimPrefix(zone, "posix/")
	zone = strings.TrimPrefix(zone, "right/")
	return zone, true
}

// Detect resolves the host's local timezone.
func Detect() (string, error) {
	return Detector{}.Detect()
}
