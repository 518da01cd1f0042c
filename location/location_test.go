package location

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philtim/worldclock/clock"
)

// stub returns a Detector with no host lookups; tests fill in what they need.
func stub() Detector {
	return Detector{
		Getenv:   func(string) string { return "" },
		Local:    func() *time.Location { return time.Local },
		Readlink: func(string) (string, error) { return "", os.ErrNotExist },
		ReadFile: func(string) ([]byte, error) { return nil, os.ErrNotExist },
	}
}

func TestDetectFromTZ(t *testing.T) {
	d := stub()
	d.Getenv = func(key string) string {
		if key == "TZ" {
			return ":Europe/Berlin"
		}
		return ""
	}

	zone, err := d.Detect()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", zone)
}

func TestDetectFromLocalLocation(t *testing.T) {
	d := stub()
	d.Local = func() *time.Location {
		loc, _ := clock.LoadZone("Asia/Tokyo")
		return loc
	}

	zone, err := d.Detect()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", zone)
}

func TestDetectFromLocaltimeLink(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{"/usr/share/zoneinfo/America/Chicago", "America/Chicago"},
		{"../usr/share/zoneinfo/Asia/Kolkata", "Asia/Kolkata"},
		{"/var/db/timezone/zoneinfo/Europe/Paris", "Europe/Paris"},
		{"/usr/share/zoneinfo/posix/Australia/Sydney", "Australia/Sydney"},
	}
	for _, tt := range tests {
		d := stub()
		d.Readlink = func(path string) (string, error) {
			assert.Equal(t, localtimePath, path)
			return tt.target, nil
		}

		zone, err := d.Detect()
		require.NoError(t, err, tt.target)
		assert.Equal(t, tt.want, zone)
	}
}

func TestDetectFromTimezoneFile(t *testing.T) {
	d := stub()
	d.ReadFile = func(path string) ([]byte, error) {
		assert.Equal(t, timezonePath, path)
		return []byte("America/Sao_Paulo\n"), nil
	}

	zone, err := d.Detect()
	require.NoError(t, err)
	assert.Equal(t, "America/Sao_Paulo", zone)
}

func TestDetectSkipsInvalidCandidates(t *testing.T) {
	d := stub()
	d.Getenv = func(string) string { return "Not/AZone" }
	d.Readlink = func(string) (string, error) { return "/usr/share/zoneinfo/Africa/Cairo", nil }

	zone, err := d.Detect()
	require.NoError(t, err)
	assert.Equal(t, "Africa/Cairo", zone)
}

func TestDetectNotDetected(t *testing.T) {
	d := stub()
	d.Readlink = func(string) (string, error) { return "/etc/some-other-file", nil }

	_, err := d.Detect()
	assert.True(t, errors.Is(err, ErrNotDetected))
}
