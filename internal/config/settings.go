package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"stac-explorer/internal/common"
)

// CustomCatalog represents a user-added STAC catalog
type CustomCatalog struct {
	Name    string `json:"name"`
	URL     string `json:"url"` // STAC API root
	Enabled bool   `json:"enabled"`
}

// UserSettings represents persistent user preferences
type UserSettings struct {
	// Catalog settings
	DefaultCatalog string          `json:"defaultCatalog"` // "earth_search", "planetary_computer", or custom name
	CustomCatalogs []CustomCatalog `json:"customCatalogs"`

	// Search settings
	SearchPageSize   int `json:"searchPageSize"`
	SearchDebounceMs int `json:"searchDebounceMs"`

	// Cache settings
	CacheMaxEntries int `json:"cacheMaxEntries"`

	// Default map settings
	DefaultZoom      int     `json:"defaultZoom"`
	DefaultCenterLat float64 `json:"defaultCenterLat"`
	DefaultCenterLon float64 `json:"defaultCenterLon"`

	// Last session map position
	LastCenterLat float64 `json:"lastCenterLat,omitempty"`
	LastCenterLon float64 `json:"lastCenterLon,omitempty"`
	LastZoom      float64 `json:"lastZoom,omitempty"`

	// Network behavior
	AutoRetryOnRateLimit bool `json:"autoRetryOnRateLimit"`

	// UI preferences
	Theme           string `json:"theme"` // "light", "dark", "system"
	ShowCoordinates bool   `json:"showCoordinates"`

	// Per-install identifier used as the analytics distinct ID
	InstallID string `json:"installId"`
}

// DefaultSettings returns default user settings
func DefaultSettings() *UserSettings {
	return &UserSettings{
		DefaultCatalog:       common.CatalogEarthSearch,
		CustomCatalogs:       []CustomCatalog{},
		SearchPageSize:       50,
		SearchDebounceMs:     300,
		CacheMaxEntries:      256,
		DefaultZoom:          6,
		DefaultCenterLat:     30.0444, // Cairo, Egypt
		DefaultCenterLon:     31.2357,
		AutoRetryOnRateLimit: true,
		Theme:                "system",
		ShowCoordinates:      false,
		InstallID:            uuid.NewString(),
	}
}

// settingsDirOverride redirects settings storage, used by tests
var settingsDirOverride string

// SetSettingsDir overrides the settings directory (pass "" to reset)
func SetSettingsDir(dir string) {
	settingsDirOverride = dir
}

// GetSettingsPath returns the OS-specific settings file path
func GetSettingsPath() string {
	baseDir := settingsDirOverride
	if baseDir == "" {
		homeDir, _ := os.UserHomeDir()
		baseDir = filepath.Join(homeDir, ".stac-explorer", "explorer", "settings")
	}

	os.MkdirAll(baseDir, 0755)

	return filepath.Join(baseDir, "settings.json")
}

// LoadSettings loads user settings from disk
func LoadSettings() (*UserSettings, error) {
	settingsPath := GetSettingsPath()

	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		settings := DefaultSettings()
		// Persist immediately so the install ID is stable across runs
		SaveSettings(settings)
		return settings, nil
	}

	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings UserSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	// Merge with defaults for any missing fields
	defaults := DefaultSettings()
	if settings.DefaultCatalog == "" {
		settings.DefaultCatalog = defaults.DefaultCatalog
	}
	if settings.SearchPageSize == 0 {
		settings.SearchPageSize = defaults.SearchPageSize
	}
	if settings.SearchDebounceMs == 0 {
		settings.SearchDebounceMs = defaults.SearchDebounceMs
	}
	if settings.CacheMaxEntries == 0 {
		settings.CacheMaxEntries = defaults.CacheMaxEntries
	}
	if settings.DefaultZoom == 0 {
		settings.DefaultZoom = defaults.DefaultZoom
	}
	if settings.DefaultCenterLat == 0 && settings.DefaultCenterLon == 0 {
		settings.DefaultCenterLat = defaults.DefaultCenterLat
		settings.DefaultCenterLon = defaults.DefaultCenterLon
	}
	if settings.Theme == "" {
		settings.Theme = defaults.Theme
	}
	if settings.InstallID == "" {
		settings.InstallID = uuid.NewString()
		SaveSettings(&settings)
	}

	return &settings, nil
}

// SaveSettings saves user settings to disk
func SaveSettings(settings *UserSettings) error {
	settingsPath := GetSettingsPath()

	dir := filepath.Dir(settingsPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(settingsPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

// ValidateCustomCatalog validates a custom catalog configuration
func ValidateCustomCatalog(catalog *CustomCatalog) error {
	if strings.TrimSpace(catalog.Name) == "" {
		return fmt.Errorf("catalog name is required")
	}
	if strings.TrimSpace(catalog.URL) == "" {
		return fmt.Errorf("catalog URL is required")
	}
	if !strings.HasPrefix(catalog.URL, "http://") && !strings.HasPrefix(catalog.URL, "https://") {
		return fmt.Errorf("catalog URL must be http(s): %s", catalog.URL)
	}

	// Built-in names are reserved
	for _, builtin := range common.BuiltInCatalogs() {
		if catalog.Name == builtin.Name {
			return fmt.Errorf("catalog name '%s' is reserved", catalog.Name)
		}
	}

	return nil
}
