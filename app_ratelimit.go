package main

import (
	"log"

	"stac-explorer/internal/config"
	"stac-explorer/internal/ratelimit"
)

// Rate Limit Management Functions (Wails-exported)

// ManualRetryRateLimit allows user to manually trigger a retry for a rate-limited catalog
func (a *App) ManualRetryRateLimit(catalog string) {
	if a.rateLimits != nil {
		a.rateLimits.ManualRetry(catalog)
	}
}

// GetRateLimitStatus returns the current rate limit state for a catalog
func (a *App) GetRateLimitStatus(catalog string) *ratelimit.Event {
	if a.rateLimits != nil {
		return a.rateLimits.GetCurrentState(catalog)
	}
	return nil
}

// IsRateLimited checks if a catalog is currently rate limited
func (a *App) IsRateLimited(catalog string) bool {
	if a.rateLimits != nil {
		return a.rateLimits.IsRateLimited(catalog)
	}
	return false
}

// SetAutoRetryRateLimit enables or disables automatic rate limit retries
// and persists the preference.
func (a *App) SetAutoRetryRateLimit(enabled bool) {
	if a.rateLimits != nil {
		a.rateLimits.SetAutoRetry(enabled)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.settings != nil {
		a.settings.AutoRetryOnRateLimit = enabled
		if err := config.SaveSettings(a.settings); err != nil {
			log.Printf("Failed to save auto-retry setting: %v", err)
		}
	}
}

// Cache Management Functions (Wails-exported)

// CacheStats represents cache statistics for frontend
type CacheStats struct {
	Entries  int   `json:"entries"`
	Capacity int   `json:"capacity"`
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
}

// GetCacheStats returns current cache statistics
func (a *App) GetCacheStats() CacheStats {
	if a.searchCache == nil {
		return CacheStats{}
	}

	entries, capacity, hits, misses := a.searchCache.Stats()

	return CacheStats{
		Entries:  entries,
		Capacity: capacity,
		Hits:     hits,
		Misses:   misses,
	}
}

// ClearCache removes all cached search results and previews
func (a *App) ClearCache() error {
	if a.searchCache != nil {
		a.searchCache.Clear()
	}
	return nil
}
