package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philtim/worldclock/clock"
)

func TestEntriesAreValidZones(t *testing.T) {
	seen := make(map[string]bool)
	for _, e := range Entries() {
		assert.NotEmpty(t, e.City, e.ZoneID)
		assert.True(t, clock.Valid(e.ZoneID), "invalid zone %s", e.ZoneID)
		assert.False(t, seen[e.ZoneID], "duplicate zone %s", e.ZoneID)
		seen[e.ZoneID] = true
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	a := Entries()
	a[0].City = "changed"
	assert.Equal(t, "New York", Entries()[0].City)
}

func TestLookup(t *testing.T) {
	e, ok := Lookup("Asia/Dubai")
	require.True(t, ok)
	assert.Equal(t, "Dubai", e.City)
	assert.Equal(t, "Dubai, UAE", e.Label())

	_, ok = Lookup("Asia/Nowhere")
	assert.False(t, ok)
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		zone string
		want string
	}{
		{"Asia/Kolkata", "Mumbai"},
		{"America/Port_of_Spain", "Port of Spain"},
		{"America/Argentina/Cordoba", "Cordoba"},
		{"Etc/GMT+5", "GMT+5"},
		{"Zulu", "Zulu"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DisplayName(tt.zone), tt.zone)
	}
}

func TestSearch(t *testing.T) {
	t.Run("exact before prefix", func(t *testing.T) {
		got := Search("paris", 10)
		require.NotEmpty(t, got)
		assert.Equal(t, "Europe/Paris", got[0].ZoneID)
	})

	t.Run("matches country and zone id", func(t *testing.T) {
		got := Search("canada", 10)
		require.Len(t, got, 3)
		for _, e := range got {
			assert.Equal(t, "Canada", e.Country)
		}

		got = Search("kolkata", 10)
		require.Len(t, got, 1)
		assert.Equal(t, "Mumbai", got[0].City)
	})

	t.Run("limits results", func(t *testing.T) {
		assert.Len(t, Search("a", 2), 2)
		assert.Len(t, Search("", 4), 4)
		assert.Len(t, Search("", 1000), len(Entries()))
		assert.Empty(t, Search("", 0))
		assert.Empty(t, Search("", -1))
		assert.Empty(t, Search("paris", -3))
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, Search("atlantis", 10))
	})
}
