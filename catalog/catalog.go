// Package catalog maps timezone identifiers to display names for the slot picker.
package catalog

import (
	"strings"
)

// Entry is a selectable city with its IANA timezone identifier.
type Entry struct {
	ZoneID  string
	City    string
	Country string
}

// Label returns "City, Country", or just the city when the country is unknown.
func (e Entry) Label() string {
	if e.Country == "" {
		return e.City
	}
	return e.City + ", " + e.Country
}

// entries is ordered as shown in the picker.
var entries = []Entry{
	{ZoneID: "America/New_York", City: "New York", Country: "United States"},
	{ZoneID: "Europe/London", City: "London", Country: "United Kingdom"},
	{ZoneID: "Asia/Tokyo", City: "Tokyo", Country: "Japan"},
	{ZoneID: "Australia/Sydney", City: "Sydney", Country: "Australia"},
	{ZoneID: "Europe/Paris", City: "Paris", Country: "France"},
	{ZoneID: "Asia/Dubai", City: "Dubai", Country: "UAE"},
	// Americas
	{ZoneID: "America/Los_Angeles", City: "Los Angeles", Country: "United States"},
	{ZoneID: "America/Chicago", City: "Chicago", Country: "United States"},
	{ZoneID: "America/Toronto", City: "Toronto", Country: "Canada"},
	{ZoneID: "America/Vancouver", City: "Vancouver", Country: "Canada"},
	{ZoneID: "America/St_Johns", City: "St. John's", Country: "Canada"},
	{ZoneID: "America/Mexico_City", City: "Mexico City", Country: "Mexico"},
	{ZoneID: "America/Sao_Paulo", City: "São Paulo", Country: "Brazil"},
	{ZoneID: "America/Argentina/Buenos_Aires", City: "Buenos Aires", Country: "Argentina"},
	{ZoneID: "America/Bogota", City: "Bogotá", Country: "Colombia"},
	{ZoneID: "Pacific/Honolulu", City: "Honolulu", Country: "United States"},
	// Europe
	{ZoneID: "Europe/Berlin", City: "Berlin", Country: "Germany"},
	{ZoneID: "Europe/Madrid", City: "Madrid", Country: "Spain"},
	{ZoneID: "Europe/Rome", City: "Rome", Country: "Italy"},
	{ZoneID: "Europe/Amsterdam", City: "Amsterdam", Country: "Netherlands"},
	{ZoneID: "Europe/Zurich", City: "Zurich", Country: "Switzerland"},
	{ZoneID: "Europe/Moscow", City: "Moscow", Country: "Russia"},
	{ZoneID: "Europe/Istanbul", City: "Istanbul", Country: "Turkey"},
	// Asia
	{ZoneID: "Asia/Kolkata", City: "Mumbai", Country: "India"},
	{ZoneID: "Asia/Kathmandu", City: "Kathmandu", Country: "Nepal"},
	{ZoneID: "Asia/Bangkok", City: "Bangkok", Country: "Thailand"},
	{ZoneID: "Asia/Singapore", City: "Singapore", Country: "Singapore"},
	{ZoneID: "Asia/Shanghai", City: "Shanghai", Country: "China"},
	{ZoneID: "Asia/Hong_Kong", City: "Hong Kong", Country: "China"},
	{ZoneID: "Asia/Seoul", City: "Seoul", Country: "South Korea"},
	// Oceania
	{ZoneID: "Australia/Adelaide", City: "Adelaide", Country: "Australia"},
	{ZoneID: "Pacific/Auckland", City: "Auckland", Country: "New Zealand"},
	// Africa
	{ZoneID: "Africa/Cairo", City: "Cairo", Country: "Egypt"},
	{ZoneID: "Africa/Lagos", City: "Lagos", Country: "Nigeria"},
	{ZoneID: "Africa/Johannesburg", City: "Johannesburg", Country: "South Africa"},
	{ZoneID: "Africa/Nairobi", City: "Nairobi", Country: "Kenya"},
	// UTC
	{ZoneID: "UTC", City: "UTC", Country: "Universal Time"},
}

var byZone = func() map[string]Entry {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		m[e.ZoneID] = e
	}
	return m
}()

// Entries returns a copy of the catalog in display order.
func Entries() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Lookup returns the catalog entry for a timezone identifier.
func Lookup(zoneID string) (Entry, bool) {
	e, ok := byZone[zoneID]
	return e, ok
}

// DisplayName returns the city name for zoneID. Zones missing from the
// catalog are named after the last path element of the identifier,
// e.g. "America/Port_of_Spain" becomes "Port of Spain".
func DisplayName(zoneID string) string {
	if e, ok := byZone[zoneID]; ok {
		return e.City
	}
	name := zoneID
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return strings.ReplaceAll(name, "_", " ")
}

// Search returns up to max entries whose city, country or identifier contains
// query, case-insensitively. Exact city matches come first, then prefix
// matches, then the rest. An empty query returns the head of the catalog.
func Search(query string, max int) []Entry {
	if max < 0 {
		max = 0
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		if max > len(entries) {
			max = len(entries)
		}
		return Entries()[:max]
	}

	var exact, prefix, contains []Entry
	for _, e := range entries {
		city := strings.ToLower(e.City)
		switch {
		case city == query:
			exact = append(exact, e)
		case strings.HasPrefix(city, query):
			prefix = append(prefix, e)
		case strings.Contains(city, query),
			strings.Contains(strings.ToLower(e.Country), query),
			strings.Contains(strings.ToLower(e.ZoneID), query):
			contains = append(contains, e)
		}
	}

	results := append(append(exact, prefix...), contains...)
	if len(results) > max {
		results = results[:max]
	}
	return results
}
