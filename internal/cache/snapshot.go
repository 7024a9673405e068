package cache

import (
	"fmt"
	"os"
	"path/filepath"
	goruntime "runtime"

	"github.com/goccy/go-json"
)

// CollectionSnapshot persists a catalog's collection list to disk so the
// collection picker still works when the catalog is unreachable.
type CollectionSnapshot struct {
	dir string
}

// NewCollectionSnapshot creates a snapshot store rooted at dir
func NewCollectionSnapshot(dir string) *CollectionSnapshot {
	return &CollectionSnapshot{dir: dir}
}

// GetCacheDir returns the OS-specific cache directory
func GetCacheDir() string {
	homeDir, _ := os.UserHomeDir()

	switch goruntime.GOOS {
	case "darwin":
		return filepath.Join(homeDir, "Library", "Caches", "stac-explorer", "catalogs")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(homeDir, "AppData", "Roaming")
		}
		return filepath.Join(appData, "stac-explorer", "cache", "catalogs")
	default:
		cacheHome := os.Getenv("XDG_CACHE_HOME")
		if cacheHome == "" {
			cacheHome = filepath.Join(homeDir, ".cache")
		}
		return filepath.Join(cacheHome, "stac-explorer", "catalogs")
	}
}

func (s *CollectionSnapshot) path(catalog string) string {
	return filepath.Join(s.dir, fmt.Sprintf("collections_%s.json", catalog))
}

// Save writes the collection list for one catalog
func (s *CollectionSnapshot) Save(catalog string, collections interface{}) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	data, err := json.Marshal(collections)
	if err != nil {
		return fmt.Errorf("failed to marshal collections: %w", err)
	}

	if err := os.WriteFile(s.path(catalog), data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	return nil
}

// Load reads the collection list for one catalog into out
func (s *CollectionSnapshot) Load(catalog string, out interface{}) error {
	data, err := os.ReadFile(s.path(catalog))
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse snapshot: %w", err)
	}

	return nil
}

// Exists reports whether a snapshot is available for the catalog
func (s *CollectionSnapshot) Exists(catalog string) bool {
	_, err := os.Stat(s.path(catalog))
	return err == nil
}
