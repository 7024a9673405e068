package main

import (
	"context"
	"fmt"
	"log"
	goruntime "runtime"
	"sync"
	"time"

	"github.com/posthog/posthog-go"
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"stac-explorer/internal/cache"
	"stac-explorer/internal/common"
	"stac-explorer/internal/config"
	"stac-explorer/internal/handlers/preview"
	"stac-explorer/internal/history"
	"stac-explorer/internal/query"
	"stac-explorer/internal/ratelimit"
	"stac-explorer/internal/stac"
	"stac-explorer/internal/syncstate"
)

// Linker flags
var (
	PostHogKey  string
	PostHogHost string
	AppVersion  string = "0.0.0-dev"
)

// App struct
type App struct {
	ctx           context.Context
	settings      *config.UserSettings
	catalogs      map[string]*stac.Client
	searchCache   *cache.SearchCache
	coordinator   *syncstate.Coordinator
	history       *history.Stack
	rateLimits    *ratelimit.Handler
	previewServer *preview.Server
	phClient      posthog.Client
	mu            sync.Mutex
	devMode       bool // Enable verbose logging in dev mode only
}

// NewApp creates a new App application struct
func NewApp() *App {
	// Load user settings
	settings, err := config.LoadSettings()
	if err != nil {
		log.Printf("Failed to load settings, using defaults: %v", err)
		settings = config.DefaultSettings()
	}
	log.Printf("Settings loaded from: %s", config.GetSettingsPath())

	// Search/preview cache
	searchCache, err := cache.NewSearchCache(settings.CacheMaxEntries)
	if err != nil {
		log.Printf("Failed to initialize search cache: %v", err)
		searchCache = nil // Continue without cache
	}

	// Rate limit handling for upstream catalogs
	rateLimits := ratelimit.NewHandler(nil)
	rateLimits.SetAutoRetry(settings.AutoRetryOnRateLimit)

	// STAC clients for built-in and enabled custom catalogs
	snapshot := cache.NewCollectionSnapshot(cache.GetCacheDir())
	catalogs := make(map[string]*stac.Client)
	for _, info := range common.BuiltInCatalogs() {
		catalogs[info.Name] = stac.NewClient(info.Name, info.URL, rateLimits, searchCache, snapshot)
	}
	for _, custom := range settings.CustomCatalogs {
		if custom.Enabled {
			catalogs[custom.Name] = stac.NewClient(custom.Name, custom.URL, rateLimits, searchCache, snapshot)
		}
	}

	// Navigation history and the sync coordinator it backs
	hist := history.NewStack()
	coordinator := syncstate.NewCoordinator(hist, debounceInterval(settings))
	hist.SetOnNavigate(func(string) {
		coordinator.RestoreFromURL()
	})

	// Preview proxy, restricted to known catalog hosts
	previewServer := preview.NewServer(searchCache, false)
	for _, client := range catalogs {
		previewServer.AllowCatalogURL(client.BaseURL())
	}

	// Initialize PostHog
	var phClient posthog.Client
	if PostHogKey != "" {
		client, err := posthog.NewWithConfig(PostHogKey, posthog.Config{
			Endpoint: PostHogHost,
		})
		if err != nil {
			log.Printf("Failed to initialize PostHog: %v", err)
		} else {
			phClient = client
		}
	}

	return &App{
		settings:      settings,
		catalogs:      catalogs,
		searchCache:   searchCache,
		coordinator:   coordinator,
		history:       hist,
		rateLimits:    rateLimits,
		previewServer: previewServer,
		phClient:      phClient,
	}
}

// startup is called when the app starts
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	// Wire the coordinator's collaborators to frontend events
	a.coordinator.RegisterSurface(&eventSurface{ctx: ctx, name: "sidebar", event: "sidebar-state-applied"})
	a.coordinator.RegisterSurface(&eventSurface{ctx: ctx, name: "fullsearch", event: "fullsearch-state-applied"})
	a.coordinator.SetNotifier(&eventNotifier{ctx: ctx})
	a.coordinator.SetMapView(&eventMapView{ctx: ctx})
	a.coordinator.SetOnCommit(func(state query.State) {
		wailsRuntime.EventsEmit(ctx, "query-state-changed", state)
	})

	// Rate limit events surface as toasts plus a dedicated event stream
	a.rateLimits.SetOnRateLimit(func(event ratelimit.Event) {
		wailsRuntime.EventsEmit(ctx, "rate-limit", event)
	})
	a.rateLimits.SetOnRetry(func(event ratelimit.Event) {
		wailsRuntime.EventsEmit(ctx, "rate-limit-retry", event)
	})
	a.rateLimits.SetOnRecovered(func(catalog string) {
		wailsRuntime.EventsEmit(ctx, "rate-limit-recovered", catalog)
	})

	// Initialize catalog clients in background
	for name, client := range a.catalogs {
		go func(name string, client *stac.Client) {
			if err := client.Initialize(); err != nil {
				wailsRuntime.LogError(ctx, fmt.Sprintf("Failed to initialize catalog %s: %v", name, err))
			} else {
				wailsRuntime.LogInfo(ctx, fmt.Sprintf("Catalog %s initialized", name))
			}
		}(name, client)
	}

	// Start local preview proxy
	go func() {
		if err := a.previewServer.Start(); err != nil {
			wailsRuntime.LogError(ctx, fmt.Sprintf("Failed to start preview server: %v", err))
		}
	}()

	// Track app start
	a.TrackEvent("app_started", map[string]interface{}{
		"version": a.GetAppVersion(),
		"os":      goruntime.GOOS,
		"arch":    goruntime.GOARCH,
	})
}

// Shutdown cleans up resources
func (a *App) Shutdown(ctx context.Context) {
	if a.rateLimits != nil {
		a.rateLimits.Close()
	}
	if a.phClient != nil {
		a.phClient.Close()
	}
}

// TrackEvent sends an event to PostHog keyed by the per-install ID
func (a *App) TrackEvent(event string, props map[string]interface{}) {
	if a.phClient != nil {
		a.phClient.Enqueue(posthog.Capture{
			DistinctId: a.settings.InstallID,
			Event:      event,
			Properties: props,
		})
	}
}

// GetAppVersion returns the current application version
func (a *App) GetAppVersion() string {
	return AppVersion
}

// GetPreviewServerURL returns the local thumbnail proxy base URL
func (a *App) GetPreviewServerURL() string {
	return a.previewServer.URL()
}

func debounceInterval(settings *config.UserSettings) time.Duration {
	return time.Duration(settings.SearchDebounceMs) * time.Millisecond
}
