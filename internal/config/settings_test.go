package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stac-explorer/internal/common"
	"stac-explorer/internal/config"
)

func useTempSettingsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	config.SetSettingsDir(dir)
	t.Cleanup(func() { config.SetSettingsDir("") })
	return dir
}

func TestDefaultSettings(t *testing.T) {
	settings := config.DefaultSettings()

	assert.Equal(t, common.CatalogEarthSearch, settings.DefaultCatalog)
	assert.Equal(t, 50, settings.SearchPageSize)
	assert.Equal(t, 300, settings.SearchDebounceMs)
	assert.Equal(t, 256, settings.CacheMaxEntries)
	assert.True(t, settings.AutoRetryOnRateLimit)
	assert.Equal(t, "system", settings.Theme)

	_, err := uuid.Parse(settings.InstallID)
	assert.NoError(t, err)
}

func TestFirstRunPersistsDefaults(t *testing.T) {
	dir := useTempSettingsDir(t)

	settings, err := config.LoadSettings()
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "settings.json"))
	require.NoError(t, err, "first load should write the settings file")

	// The install ID survives a second load
	again, err := config.LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, settings.InstallID, again.InstallID)
}

func TestLoadMergesDefaults(t *testing.T) {
	dir := useTempSettingsDir(t)

	// A partial file from an older version
	partial := `{"defaultCatalog":"planetary_computer","theme":"dark"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.json"), []byte(partial), 0644))

	settings, err := config.LoadSettings()
	require.NoError(t, err)

	assert.Equal(t, common.CatalogPlanetaryComputer, settings.DefaultCatalog)
	assert.Equal(t, "dark", settings.Theme)
	assert.Equal(t, 50, settings.SearchPageSize)
	assert.Equal(t, 300, settings.SearchDebounceMs)
	assert.Equal(t, 256, settings.CacheMaxEntries)
	assert.NotEmpty(t, settings.InstallID, "missing install ID should be generated")
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	useTempSettingsDir(t)

	settings := config.DefaultSettings()
	settings.DefaultCatalog = common.CatalogPlanetaryComputer
	settings.SearchPageSize = 100
	settings.CustomCatalogs = []config.CustomCatalog{
		{Name: "my-catalog", URL: "https://stac.example.com/v1", Enabled: true},
	}
	settings.LastCenterLat = 48.8566
	settings.LastCenterLon = 2.3522
	settings.LastZoom = 11

	require.NoError(t, config.SaveSettings(settings))

	loaded, err := config.LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, settings.DefaultCatalog, loaded.DefaultCatalog)
	assert.Equal(t, 100, loaded.SearchPageSize)
	assert.Equal(t, settings.CustomCatalogs, loaded.CustomCatalogs)
	assert.Equal(t, settings.LastCenterLat, loaded.LastCenterLat)
	assert.Equal(t, settings.InstallID, loaded.InstallID)
}

func TestLoadCorruptFile(t *testing.T) {
	dir := useTempSettingsDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.json"), []byte("{not json"), 0644))

	_, err := config.LoadSettings()
	assert.Error(t, err)
}

func TestValidateCustomCatalog(t *testing.T) {
	tests := []struct {
		name    string
		catalog config.CustomCatalog
		wantErr string
	}{
		{
			name:    "valid",
			catalog: config.CustomCatalog{Name: "my-catalog", URL: "https://stac.example.com/v1"},
		},
		{
			name:    "missing name",
			catalog: config.CustomCatalog{URL: "https://stac.example.com/v1"},
			wantErr: "name is required",
		},
		{
			name:    "missing URL",
			catalog: config.CustomCatalog{Name: "my-catalog"},
			wantErr: "URL is required",
		},
		{
			name:    "bad scheme",
			catalog: config.CustomCatalog{Name: "my-catalog", URL: "ftp://stac.example.com"},
			wantErr: "must be http(s)",
		},
		{
			name:    "reserved name",
			catalog: config.CustomCatalog{Name: "earth_search", URL: "https://stac.example.com/v1"},
			wantErr: "reserved",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := config.ValidateCustomCatalog(&tt.catalog)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
