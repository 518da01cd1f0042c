// Package geonames provides the extended city search used by the slot
// picker, backed by the GeoNames cities15000 dump.
package geonames

import (
	"archive/zip"
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/philtim/worldclock/clock"
	"github.com/philtim/worldclock/logger"
)

const (
	// DefaultURL is the download URL for cities with 15000+ population
	DefaultURL = "http://download.geonames.org/export/dump/cities15000.zip"
	// CacheFileName is the name of the cached cities file
	CacheFileName = "cities15000.txt"
	// MinQueryLen is the shortest query Search answers
	MinQueryLen = 3
)

// City represents a city from the GeoNames database
type City struct {
	Name        string
	CountryCode string
	Timezone    string
}

// Options configures where the database comes from.
type Options struct {
	URL      string
	CacheDir string
	Client   *http.Client
	Logger   *logger.Logger
}

// Database holds the GeoNames cities data
type Database struct {
	opts Options

	mu     sync.RWMutex
	cities []City
	ready  bool
	err    error
}

// NewDatabase creates an empty database. Missing options fall back to
// DefaultURL, ~/.cache/worldclock and http.DefaultClient.
func NewDatabase(opts Options) *Database {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Database{opts: opts}
}

// LoadAsync loads the database in a goroutine. Progress is reported
// through IsReady and Err.
func (db *Database) LoadAsync(ctx context.Context) {
	go func() {
		if err := db.Load(ctx); err != nil {
			db.opts.Logger.Warn("GeoNames load failed", "error", err)
		}
	}()
}

// Load downloads the dump unless it is cached, then parses it.
func (db *Database) Load(ctx context.Context) error {
	err := db.load(ctx)
	if err != nil {
		db.mu.Lock()
		db.err = err
		db.mu.Unlock()
	}
	return err
}

func (db *Database) load(ctx context.Context) error {
	cachePath, err := db.cachePath()
	if err != nil {
		return fmt.Errorf("failed to get cache path: %w", err)
	}

	if _, err := os.Stat(cachePath); os.IsNotExist(err) {
		db.opts.Logger.Info("Downloading GeoNames data", "url", db.opts.URL)
		if err := db.downloadAndExtract(ctx, cachePath); err != nil {
			return fmt.Errorf("failed to download GeoNames data: %w", err)
		}
	}

	cities, err := parseFile(cachePath)
	if err != nil {
		return fmt.Errorf("failed to parse GeoNames data: %w", err)
	}

	db.mu.Lock()
	db.cities = cities
	db.ready = true
	db.err = nil
	db.mu.Unlock()

	db.opts.Logger.Info("GeoNames data loaded", "cities", len(cities), "path", cachePath)
	return nil
}

// IsReady returns whether the database is loaded and ready
func (db *Database) IsReady() bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.ready
}

// Err returns the error of the last failed load
func (db *Database) Err() error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.err
}

// Search returns up to maxResults cities matching query, exact name
// matches first. Queries shorter than MinQueryLen return nothing.
func (db *Database) Search(query string, maxResults int) []City {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if !db.ready {
		return nil
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if len(query) < MinQueryLen || maxResults <= 0 {
		return nil
	}

	var exactMatches []City
	var partialMatches []City

	// Keep scanning once the partial list is full; a later exact match
	// still takes precedence.
	for _, city := range db.cities {
		cityNameLower := strings.ToLower(city.Name)

		if cityNameLower == query {
			exactMatches = append(exactMatches, city)
			if len(exactMatches) >= maxResults {
				break
			}
		} else if len(partialMatches) < maxResults && strings.Contains(cityNameLower, query) {
			partialMatches = append(partialMatches, city)
		}
	}

	results := append(exactMatches, partialMatches...)
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	return results
}

func (db *Database) cachePath() (string, error) {
	cacheDir := db.opts.CacheDir
	if cacheDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		cacheDir = filepath.Join(homeDir, ".cache", "worldclock")
	}
	return filepath.Join(cacheDir, CacheFileName), nil
}

// downloadAndExtract downloads the zip file and extracts the cities file
func (db *Database) downloadAndExtract(ctx context.Context, targetPath string) error {
	cacheDir := filepath.Dir(targetPath)
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tempZip, err := os.CreateTemp(cacheDir, "cities-*.zip")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempZip.Name()
	defer os.Remove(tempPath)

	if err := db.download(ctx, tempZip); err != nil {
		tempZip.Close()
		return fmt.Errorf("failed to download file: %w", err)
	}
	if err := tempZip.Close(); err != nil {
		return err
	}

	if err := extractFile(tempPath, CacheFileName, targetPath); err != nil {
		return fmt.Errorf("failed to extract file: %w", err)
	}

	return nil
}

func (db *Database) download(ctx context.Context, out io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, db.opts.URL, nil)
	if err != nil {
		return err
	}
	resp, err := db.opts.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	_, err = io.Copy(out, resp.Body)
	return err
}

// extractFile extracts a specific file from a zip archive. The target is
// written through a temp file so a failed extraction leaves no cache behind.
func extractFile(zipPath, fileName, targetPath string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != fileName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		defer rc.Close()

		tmp := targetPath + ".part"
		out, err := os.Create(tmp)
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, rc); err != nil {
			out.Close()
			os.Remove(tmp)
			return err
		}
		if err := out.Close(); err != nil {
			os.Remove(tmp)
			return err
		}
		return os.Rename(tmp, targetPath)
	}

	return fmt.Errorf("file %s not found in zip archive", fileName)
}

// parseFile parses the tab-separated cities file, keeping only rows whose
// timezone the tz database knows.
func parseFile(path string) ([]City, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cities []City
	scanner := bufio.NewScanner(file)

	// Increase buffer size for long lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")

		// timezone is at index 17
		if len(fields) < 18 {
			continue
		}

		name := fields[1]
		countryCode := fields[8]
		timezone := fields[17]

		if timezone == "" || !clock.Valid(timezone) {
			continue
		}

		cities = append(cities, City{
			Name:        name,
			CountryCode: countryCode,
			Timezone:    timezone,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return cities, nil
}
