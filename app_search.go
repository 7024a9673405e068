package main

import (
	"context"
	"fmt"
	"log"

	"stac-explorer/internal/common"
	"stac-explorer/internal/query"
	"stac-explorer/internal/stac"
)

// Search State Synchronization (Wails-exported)

// NotifyFacetChanged is the entry point for any frontend search surface.
// Never returns an error: a malformed facet silently fails to update
// rather than breaking the search flow.
func (a *App) NotifyFacetChanged(facet string, value interface{}) {
	a.coordinator.NotifyFacetChanged(facet, value)
}

// GetQueryState returns the current shared query state
func (a *App) GetQueryState() query.State {
	return a.coordinator.State()
}

// RestoreFromURL re-applies whatever query string is current in history.
// Called by the frontend once on load.
func (a *App) RestoreFromURL() {
	a.coordinator.RestoreFromURL()
}

// OpenSharedURL decodes a pasted deep link and applies its query state
func (a *App) OpenSharedURL(rawQuery string) {
	a.history.Push(rawQuery)
	a.coordinator.RestoreFromURL()

	a.TrackEvent("shared_url_opened", nil)
}

// GetShareableURL returns the deep link for the current search
func (a *App) GetShareableURL() string {
	encoded := a.coordinator.ShareableQuery()
	if encoded == "" {
		return "stac-explorer://search"
	}
	return "stac-explorer://search?" + encoded
}

// ClearSearch resets all facets to their defaults
func (a *App) ClearSearch() {
	a.coordinator.Clear()
}

// NavigateBack moves one entry back in search history
func (a *App) NavigateBack() bool {
	return a.history.Back()
}

// NavigateForward moves one entry forward in search history
func (a *App) NavigateForward() bool {
	return a.history.Forward()
}

// Catalog Browsing (Wails-exported)

// GetCatalogs returns all catalogs the explorer can search, built-in and custom
func (a *App) GetCatalogs() []common.CatalogInfo {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := common.BuiltInCatalogs()
	for _, custom := range a.settings.CustomCatalogs {
		if custom.Enabled {
			result = append(result, common.CatalogInfo{
				Name:        custom.Name,
				DisplayName: custom.Name,
				URL:         custom.URL,
				BuiltIn:     false,
			})
		}
	}
	return result
}

// GetCollections returns the collections of one catalog
func (a *App) GetCollections(catalog string) ([]stac.Collection, error) {
	client, err := a.catalogClient(catalog)
	if err != nil {
		return nil, err
	}
	return client.GetCollections()
}

// GetCollection returns a single collection by identifier
func (a *App) GetCollection(catalog, id string) (*stac.Collection, error) {
	client, err := a.catalogClient(catalog)
	if err != nil {
		return nil, err
	}
	return client.GetCollection(id)
}

// SearchScenes executes a STAC search for the current query state against
// the catalog the selected collection belongs to.
func (a *App) SearchScenes() (*stac.SearchResponse, error) {
	state := a.coordinator.State()

	catalog := state.CollectionSource
	if catalog == "" {
		a.mu.Lock()
		catalog = a.settings.DefaultCatalog
		a.mu.Unlock()
	}

	client, err := a.catalogClient(catalog)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	pageSize := a.settings.SearchPageSize
	a.mu.Unlock()

	req, err := stac.BuildSearchRequest(state, pageSize)
	if err != nil {
		return nil, err
	}

	ctx := a.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	response, err := client.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	log.Printf("Search on %s: %d scenes", catalog, len(response.Features))
	a.TrackEvent("search_executed", map[string]interface{}{
		"catalog":    catalog,
		"collection": state.Collection,
		"results":    len(response.Features),
	})

	return response, nil
}

func (a *App) catalogClient(catalog string) (*stac.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	client, ok := a.catalogs[catalog]
	if !ok {
		return nil, fmt.Errorf("unknown catalog: %s", catalog)
	}
	return client, nil
}
