// Package urlstate converts query state to and from the compact URL
// parameter form used for deep links and session restore.
package urlstate

import (
	"net/url"
	"strconv"

	"stac-explorer/internal/common"
	"stac-explorer/internal/query"
)

// URL parameter keys. Kept short because the encoded form is meant to be
// pasted and shared.
const (
	KeyCollection       = "c"
	KeyCollectionSource = "cs"
	KeyLocationBbox     = "lb"
	KeyLocationName     = "ln"
	KeyDateType         = "dt"
	KeyDateStart        = "ds"
	KeyDateEnd          = "de"
	KeyCloudCover       = "cc"
)

// Encode serializes a query state to a URL query string. Facets equal to
// their default value are omitted so that an empty search yields an empty
// string.
func Encode(s query.State) string {
	values := url.Values{}

	if s.Collection != "" {
		values.Set(KeyCollection, s.Collection)
	}
	if s.CollectionSource != "" {
		values.Set(KeyCollectionSource, s.CollectionSource)
	}
	if s.LocationBbox != nil {
		values.Set(KeyLocationBbox, s.LocationBbox.String())
	}
	if s.LocationName != "" {
		values.Set(KeyLocationName, s.LocationName)
	}
	if s.DateType != "" && s.DateType != query.DateTypeAnytime {
		values.Set(KeyDateType, s.DateType)
	}
	if s.DateStart != "" {
		values.Set(KeyDateStart, s.DateStart)
	}
	if s.DateEnd != "" {
		values.Set(KeyDateEnd, s.DateEnd)
	}
	if s.CloudCover != query.DefaultCloudCover {
		values.Set(KeyCloudCover, strconv.Itoa(s.CloudCover))
	}

	return values.Encode()
}

// Decode parses a URL query string into a query state. Unknown keys are
// ignored and malformed values drop only the facet they belong to - a
// partially restorable URL is preferred over failing the whole decode.
func Decode(rawQuery string) query.State {
	s := query.Default()

	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		// ParseQuery reports the first bad pair but still returns
		// everything it could parse; keep going with that.
		if values == nil {
			return s
		}
	}

	if v := values.Get(KeyCollection); v != "" {
		s.Collection = v
	}
	if v := values.Get(KeyCollectionSource); v != "" {
		s.CollectionSource = v
	}
	if v := values.Get(KeyLocationBbox); v != "" {
		if box, err := common.ParseBoundingBox(v); err == nil {
			s.LocationBbox = &box
		}
	}
	if v := values.Get(KeyLocationName); v != "" {
		s.LocationName = v
	}
	if v := values.Get(KeyDateType); v != "" {
		s.DateType = v
	}
	if v := values.Get(KeyDateStart); v != "" && common.ValidateISO8601(v) {
		s.DateStart = v
	}
	if v := values.Get(KeyDateEnd); v != "" && common.ValidateISO8601(v) {
		s.DateEnd = v
	}
	if v := values.Get(KeyCloudCover); v != "" {
		if cc, err := strconv.Atoi(v); err == nil && cc >= 0 && cc <= 100 {
			s.CloudCover = cc
		}
	}

	return s
}
