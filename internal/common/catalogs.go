package common

// Catalog source constants for consistent naming across the application
const (
	// CatalogEarthSearch is the internal identifier for the Element 84 Earth Search catalog
	CatalogEarthSearch = "earth_search"

	// CatalogPlanetaryComputer is the internal identifier for the Microsoft Planetary Computer catalog
	CatalogPlanetaryComputer = "planetary_computer"

	// DisplayNameEarthSearch is the human-readable name shown in the UI
	DisplayNameEarthSearch = "Earth Search (AWS)"

	// DisplayNamePlanetaryComputer is the human-readable name shown in the UI
	DisplayNamePlanetaryComputer = "Planetary Computer"
)

// Built-in catalog endpoints
const (
	EarthSearchURL        = "https://earth-search.aws.element84.com/v1"
	PlanetaryComputerURL  = "https://planetarycomputer.microsoft.com/api/stac/v1"
)

// CatalogInfo describes one STAC catalog the explorer can browse
type CatalogInfo struct {
	Name        string `json:"name"`        // internal identifier
	DisplayName string `json:"displayName"` // shown in the UI
	URL         string `json:"url"`         // STAC API root
	BuiltIn     bool   `json:"builtIn"`
}

// BuiltInCatalogs returns the catalogs shipped with the application
func BuiltInCatalogs() []CatalogInfo {
	return []CatalogInfo{
		{
			Name:        CatalogEarthSearch,
			DisplayName: DisplayNameEarthSearch,
			URL:         EarthSearchURL,
			BuiltIn:     true,
		},
		{
			Name:        CatalogPlanetaryComputer,
			DisplayName: DisplayNamePlanetaryComputer,
			URL:         PlanetaryComputerURL,
			BuiltIn:     true,
		},
	}
}

// CatalogDisplayName returns the human-readable name for a catalog identifier
func CatalogDisplayName(name string) string {
	switch name {
	case CatalogEarthSearch:
		return DisplayNameEarthSearch
	case CatalogPlanetaryComputer:
		return DisplayNamePlanetaryComputer
	default:
		return name
	}
}
