package geonames

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// row builds a GeoNames dump line with the fields the parser reads.
func row(name, country, timezone string) string {
	fields := make([]string, 19)
	fields[1] = name
	fields[8] = country
	fields[17] = timezone
	return strings.Join(fields, "\t")
}

var fixture = strings.Join([]string{
	row("Paris", "FR", "Europe/Paris"),
	row("Paris", "US", "America/Chicago"),
	row("Parisot", "FR", "Europe/Paris"),
	row("Comparison", "XX", "Invalid/Zone"),
	row("Nowhere", "XX", ""),
	"short\tline",
	row("Kathmandu", "NP", "Asia/Kathmandu"),
}, "\n") + "\n"

func zipFixture(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(CacheFileName)
	require.NoError(t, err)
	_, err = w.Write([]byte(fixture))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), CacheFileName)
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0644))

	cities, err := parseFile(path)
	require.NoError(t, err)
	assert.Equal(t, []City{
		{Name: "Paris", CountryCode: "FR", Timezone: "Europe/Paris"},
		{Name: "Paris", CountryCode: "US", Timezone: "America/Chicago"},
		{Name: "Parisot", CountryCode: "FR", Timezone: "Europe/Paris"},
		{Name: "Kathmandu", CountryCode: "NP", Timezone: "Asia/Kathmandu"},
	}, cities)
}

func TestLoadDownloadsAndCaches(t *testing.T) {
	var hits atomic.Int64
	body := zipFixture(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	cacheDir := t.TempDir()
	db := NewDatabase(Options{URL: srv.URL, CacheDir: cacheDir, Client: srv.Client()})
	assert.False(t, db.IsReady())

	require.NoError(t, db.Load(context.Background()))
	assert.True(t, db.IsReady())
	assert.NoError(t, db.Err())
	assert.FileExists(t, filepath.Join(cacheDir, CacheFileName))

	// a second database reads the cache without downloading
	again := NewDatabase(Options{URL: srv.URL, CacheDir: cacheDir, Client: srv.Client()})
	require.NoError(t, again.Load(context.Background()))
	assert.Equal(t, int64(1), hits.Load())

	// only the extracted file remains in the cache directory
	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLoadBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	db := NewDatabase(Options{URL: srv.URL, CacheDir: t.TempDir(), Client: srv.Client()})
	err := db.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad status")
	assert.Equal(t, err, db.Err())
	assert.False(t, db.IsReady())
	assert.Nil(t, db.Search("paris", 10))
}

func TestLoadMissingEntry(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("other.txt")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	cacheDir := t.TempDir()
	db := NewDatabase(Options{URL: srv.URL, CacheDir: cacheDir, Client: srv.Client()})
	err = db.Load(context.Background())
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(cacheDir, CacheFileName))
}

func TestSearch(t *testing.T) {
	cacheDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, CacheFileName), []byte(fixture), 0644))

	db := NewDatabase(Options{CacheDir: cacheDir})
	require.NoError(t, db.Load(context.Background()))

	got := db.Search("PARIS", 10)
	require.Len(t, got, 3)
	assert.Equal(t, "Paris", got[0].Name)
	assert.Equal(t, "Paris", got[1].Name)
	assert.Equal(t, "Parisot", got[2].Name)

	assert.Len(t, db.Search("paris", 2), 2)
	assert.Nil(t, db.Search("pa", 10))
	assert.Empty(t, db.Search("atlantis", 10))
}

func TestSearchExactMatchAfterPartials(t *testing.T) {
	cacheDir := t.TempDir()
	dump := strings.Join([]string{
		row("Parisot", "FR", "Europe/Paris"),
		row("Villeparisis", "FR", "Europe/Paris"),
		row("Cormeilles-en-Parisis", "FR", "Europe/Paris"),
		row("Paris", "FR", "Europe/Paris"),
	}, "\n") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, CacheFileName), []byte(dump), 0644))

	db := NewDatabase(Options{CacheDir: cacheDir})
	require.NoError(t, db.Load(context.Background()))

	got := db.Search("paris", 2)
	require.Len(t, got, 2)
	assert.Equal(t, "Paris", got[0].Name)
	assert.Equal(t, "Parisot", got[1].Name)

	assert.Empty(t, db.Search("paris", 0))
	assert.Empty(t, db.Search("paris", -1))
}
