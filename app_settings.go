package main

import (
	"fmt"
	"log"

	"stac-explorer/internal/cache"
	"stac-explorer/internal/config"
	"stac-explorer/internal/stac"
)

// ===================
// Settings Management
// ===================

// GetSettings returns current user settings
func (a *App) GetSettings() (*config.UserSettings, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Return a copy to prevent external modifications
	settingsCopy := *a.settings
	return &settingsCopy, nil
}

// SaveSettings saves user settings to disk and updates app state
func (a *App) SaveSettings(settings *config.UserSettings) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Validate settings
	if settings.SearchPageSize <= 0 {
		return fmt.Errorf("search page size must be positive")
	}
	if settings.SearchDebounceMs <= 0 {
		return fmt.Errorf("search debounce must be positive")
	}
	if settings.CacheMaxEntries <= 0 {
		return fmt.Errorf("cache size must be positive")
	}

	// The install ID is not editable
	settings.InstallID = a.settings.InstallID

	// Save to disk
	if err := config.SaveSettings(settings); err != nil {
		return err
	}

	// Update app state
	a.settings = settings
	a.rateLimits.SetAutoRetry(settings.AutoRetryOnRateLimit)

	// Note: Debounce and cache sizing require app restart to take effect
	log.Printf("Settings saved. Debounce and cache settings will apply on next restart.")

	return nil
}

// GetSettingsPath returns the OS-specific settings file path
func (a *App) GetSettingsPath() string {
	return config.GetSettingsPath()
}

// SaveMapPosition saves the current map position for session persistence
// Called on app close or periodically to remember the last viewed location
func (a *App) SaveMapPosition(lat, lon, zoom float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.settings.LastCenterLat = lat
	a.settings.LastCenterLon = lon
	a.settings.LastZoom = zoom

	if err := config.SaveSettings(a.settings); err != nil {
		return err
	}

	log.Printf("Saved map position: lat=%.6f, lon=%.6f, zoom=%.1f", lat, lon, zoom)
	return nil
}

// ===================
// Custom Catalogs
// ===================

// AddCustomCatalog adds a new custom STAC catalog after probing its root
func (a *App) AddCustomCatalog(catalog config.CustomCatalog) error {
	// Validate catalog
	if err := config.ValidateCustomCatalog(&catalog); err != nil {
		return err
	}

	// The URL must point at an actual STAC API root
	if _, err := stac.ValidateCatalogURL(catalog.URL); err != nil {
		return fmt.Errorf("catalog validation failed: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Check for duplicate names
	for _, existing := range a.settings.CustomCatalogs {
		if existing.Name == catalog.Name {
			return fmt.Errorf("catalog with name '%s' already exists", catalog.Name)
		}
	}

	// Add to settings
	a.settings.CustomCatalogs = append(a.settings.CustomCatalogs, catalog)

	// Save settings
	if err := config.SaveSettings(a.settings); err != nil {
		return err
	}

	// Register a client so it is searchable without restart
	if catalog.Enabled {
		snapshot := cache.NewCollectionSnapshot(cache.GetCacheDir())
		a.catalogs[catalog.Name] = stac.NewClient(catalog.Name, catalog.URL, a.rateLimits, a.searchCache, snapshot)
		a.previewServer.AllowCatalogURL(catalog.URL)
	}

	log.Printf("Added custom catalog: %s (%s)", catalog.Name, catalog.URL)
	return nil
}

// RemoveCustomCatalog removes a custom catalog by name
func (a *App) RemoveCustomCatalog(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Find and remove catalog
	found := false
	newCatalogs := make([]config.CustomCatalog, 0)
	for _, catalog := range a.settings.CustomCatalogs {
		if catalog.Name != name {
			newCatalogs = append(newCatalogs, catalog)
		} else {
			found = true
		}
	}

	if !found {
		return fmt.Errorf("catalog '%s' not found", name)
	}

	a.settings.CustomCatalogs = newCatalogs
	delete(a.catalogs, name)

	// Save settings
	if err := config.SaveSettings(a.settings); err != nil {
		return err
	}

	log.Printf("Removed custom catalog: %s", name)
	return nil
}

// UpdateCustomCatalog updates an existing custom catalog
func (a *App) UpdateCustomCatalog(name string, catalog config.CustomCatalog) error {
	if err := config.ValidateCustomCatalog(&catalog); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Find and update catalog
	found := false
	for i, existing := range a.settings.CustomCatalogs {
		if existing.Name == name {
			a.settings.CustomCatalogs[i] = catalog
			found = true
			break
		}
	}

	if !found {
		return fmt.Errorf("catalog '%s' not found", name)
	}

	// Save settings
	if err := config.SaveSettings(a.settings); err != nil {
		return err
	}

	// Swap the live client
	delete(a.catalogs, name)
	if catalog.Enabled {
		snapshot := cache.NewCollectionSnapshot(cache.GetCacheDir())
		a.catalogs[catalog.Name] = stac.NewClient(catalog.Name, catalog.URL, a.rateLimits, a.searchCache, snapshot)
		a.previewServer.AllowCatalogURL(catalog.URL)
	}

	log.Printf("Updated custom catalog: %s", name)
	return nil
}

// ValidateCatalogURL probes a URL for a STAC API root document
func (a *App) ValidateCatalogURL(url string) (bool, error) {
	return stac.ValidateCatalogURL(url)
}

// FetchCatalogInfo returns the root document summary of a catalog URL
func (a *App) FetchCatalogInfo(url string) (*stac.CatalogInfo, error) {
	info, err := stac.FetchCatalogInfo(url)
	if err != nil {
		return nil, err
	}

	log.Printf("Probed catalog %s (STAC %s)", info.URL, info.StacVersion)
	return info, nil
}
