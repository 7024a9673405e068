package stac

// Collection represents one STAC collection in a catalog
type Collection struct {
	ID          string   `json:"id"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	License     string   `json:"license,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Extent      Extent   `json:"extent,omitempty"`
}

// Extent holds the spatial and temporal coverage of a collection
type Extent struct {
	Spatial  SpatialExtent  `json:"spatial,omitempty"`
	Temporal TemporalExtent `json:"temporal,omitempty"`
}

// SpatialExtent lists coverage bboxes in [west, south, east, north] order
type SpatialExtent struct {
	Bbox [][]float64 `json:"bbox,omitempty"`
}

// TemporalExtent lists coverage intervals as RFC 3339 pairs (null = open)
type TemporalExtent struct {
	Interval [][]*string `json:"interval,omitempty"`
}

// collectionsResponse is the body of GET /collections
type collectionsResponse struct {
	Collections []Collection `json:"collections"`
}

// rootDocument is the catalog landing page, used for validation
type rootDocument struct {
	Type        string `json:"type,omitempty"`
	ID          string `json:"id,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	StacVersion string `json:"stac_version"`
}

// SearchRequest is the POST /search body
type SearchRequest struct {
	Collections []string               `json:"collections,omitempty"`
	Bbox        []float64              `json:"bbox,omitempty"`
	Datetime    string                 `json:"datetime,omitempty"`
	Limit       int                    `json:"limit,omitempty"`
	Query       map[string]interface{} `json:"query,omitempty"`
}

// SearchResponse is the item collection returned by POST /search
type SearchResponse struct {
	Type           string `json:"type"`
	Features       []Item `json:"features"`
	NumberMatched  int    `json:"numberMatched,omitempty"`
	NumberReturned int    `json:"numberReturned,omitempty"`
}

// Item represents one scene in a search result
type Item struct {
	ID         string                 `json:"id"`
	Collection string                 `json:"collection,omitempty"`
	Bbox       []float64              `json:"bbox,omitempty"`
	Geometry   interface{}            `json:"geometry,omitempty"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Assets     map[string]Asset       `json:"assets,omitempty"`
}

// Asset is one downloadable or previewable resource of an item
type Asset struct {
	Href  string   `json:"href"`
	Type  string   `json:"type,omitempty"`
	Title string   `json:"title,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// Datetime returns the item's acquisition timestamp, if present
func (i Item) Datetime() string {
	if i.Properties == nil {
		return ""
	}
	if dt, ok := i.Properties["datetime"].(string); ok {
		return dt
	}
	return ""
}

// CloudCover returns the item's eo:cloud_cover percentage, if present
func (i Item) CloudCover() (float64, bool) {
	if i.Properties == nil {
		return 0, false
	}
	cc, ok := i.Properties["eo:cloud_cover"].(float64)
	return cc, ok
}

// ThumbnailHref returns the best preview asset URL for the item. Assets
// with a thumbnail role win; overview and visual assets are fallbacks.
func (i Item) ThumbnailHref() string {
	if href := i.assetByRole("thumbnail"); href != "" {
		return href
	}
	if asset, ok := i.Assets["thumbnail"]; ok {
		return asset.Href
	}
	if href := i.assetByRole("overview"); href != "" {
		return href
	}
	if asset, ok := i.Assets["visual"]; ok {
		return asset.Href
	}
	return ""
}

func (i Item) assetByRole(role string) string {
	for _, asset := range i.Assets {
		for _, r := range asset.Roles {
			if r == role {
				return asset.Href
			}
		}
	}
	return ""
}
