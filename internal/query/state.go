package query

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"stac-explorer/internal/common"
)

// Facet name constants - the only keys NotifyFacetChanged accepts
const (
	FacetCollection       = "collection"
	FacetCollectionSource = "collectionSource"
	FacetLocationBbox     = "locationBbox"
	FacetLocationName     = "locationName"
	FacetDateType         = "dateType"
	FacetDateStart        = "dateStart"
	FacetDateEnd          = "dateEnd"
	FacetCloudCover       = "cloudCover"
)

// Date type values. Anything else is treated as a named preset
// (e.g. "last-30-days") and passed through for the UI to interpret.
const (
	DateTypeAnytime = "anytime"
	DateTypeCustom  = "custom"
)

// DefaultCloudCover is the cloud cover threshold applied when none is set
const DefaultCloudCover = 20

// State holds the current value of every search facet. It is the single
// record all UI surfaces and the URL are kept consistent with.
type State struct {
	Collection       string              `json:"collection,omitempty"`
	CollectionSource string              `json:"collectionSource,omitempty"`
	LocationBbox     *common.BoundingBox `json:"locationBbox,omitempty"`
	LocationName     string              `json:"locationName,omitempty"` // decorative label, never parsed
	DateType         string              `json:"dateType"`
	DateStart        string              `json:"dateStart,omitempty"`
	DateEnd          string              `json:"dateEnd,omitempty"`
	CloudCover       int                 `json:"cloudCover"`
}

// Default returns an empty query state with default facet values
func Default() State {
	return State{
		DateType:   DateTypeAnytime,
		CloudCover: DefaultCloudCover,
	}
}

// Clone returns a deep copy of the state
func (s State) Clone() State {
	out := s
	if s.LocationBbox != nil {
		box := *s.LocationBbox
		out.LocationBbox = &box
	}
	return out
}

// Equal reports whether two states hold the same facet values
func (s State) Equal(other State) bool {
	if s.Collection != other.Collection ||
		s.CollectionSource != other.CollectionSource ||
		s.LocationName != other.LocationName ||
		s.DateType != other.DateType ||
		s.DateStart != other.DateStart ||
		s.DateEnd != other.DateEnd ||
		s.CloudCover != other.CloudCover {
		return false
	}
	if (s.LocationBbox == nil) != (other.LocationBbox == nil) {
		return false
	}
	if s.LocationBbox != nil && *s.LocationBbox != *other.LocationBbox {
		return false
	}
	return true
}

// IsDefault reports whether every facet equals its default value
func (s State) IsDefault() bool {
	return s.Equal(Default())
}

// Reset restores all facets to their defaults
func (s *State) Reset() {
	*s = Default()
}

// Set coerces value into the named facet and applies it. Unknown facets
// and values that cannot be coerced return an error; the state is left
// unchanged in that case.
func (s *State) Set(facet string, value interface{}) error {
	switch facet {
	case FacetCollection:
		str, err := coerceString(value)
		if err != nil {
			return fmt.Errorf("collection: %w", err)
		}
		s.Collection = str

	case FacetCollectionSource:
		str, err := coerceString(value)
		if err != nil {
			return fmt.Errorf("collectionSource: %w", err)
		}
		s.CollectionSource = str

	case FacetLocationName:
		str, err := coerceString(value)
		if err != nil {
			return fmt.Errorf("locationName: %w", err)
		}
		s.LocationName = str

	case FacetLocationBbox:
		box, err := coerceBbox(value)
		if err != nil {
			return fmt.Errorf("locationBbox: %w", err)
		}
		s.LocationBbox = box

	case FacetDateType:
		str, err := coerceString(value)
		if err != nil {
			return fmt.Errorf("dateType: %w", err)
		}
		if str == "" {
			str = DateTypeAnytime
		}
		s.DateType = str
		if str == DateTypeAnytime {
			s.DateStart = ""
			s.DateEnd = ""
		}

	case FacetDateStart:
		str, err := coerceDate(value)
		if err != nil {
			return fmt.Errorf("dateStart: %w", err)
		}
		s.DateStart = str

	case FacetDateEnd:
		str, err := coerceDate(value)
		if err != nil {
			return fmt.Errorf("dateEnd: %w", err)
		}
		s.DateEnd = str

	case FacetCloudCover:
		cc, err := coerceCloudCover(value)
		if err != nil {
			return fmt.Errorf("cloudCover: %w", err)
		}
		s.CloudCover = cc

	default:
		return fmt.Errorf("unknown facet: %s", facet)
	}

	return nil
}

// Validate checks cross-facet invariants
func (s State) Validate() error {
	if s.LocationBbox != nil {
		if err := s.LocationBbox.Validate(); err != nil {
			return fmt.Errorf("locationBbox: %w", err)
		}
	}
	if s.CloudCover < 0 || s.CloudCover > 100 {
		return fmt.Errorf("cloudCover out of range: %d", s.CloudCover)
	}
	if s.DateType == DateTypeCustom {
		if s.DateStart == "" || s.DateEnd == "" {
			return fmt.Errorf("custom date range requires both start and end")
		}
		start, err := common.ParseISO8601(s.DateStart)
		if err != nil {
			return fmt.Errorf("dateStart: %w", err)
		}
		end, err := common.ParseISO8601(s.DateEnd)
		if err != nil {
			return fmt.Errorf("dateEnd: %w", err)
		}
		if start.After(end) {
			return fmt.Errorf("dateStart %s is after dateEnd %s", s.DateStart, s.DateEnd)
		}
	}
	return nil
}

func coerceString(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("expected string, got %T", value)
	}
}

func coerceDate(value interface{}) (string, error) {
	str, err := coerceString(value)
	if err != nil {
		return "", err
	}
	if str == "" {
		return "", nil
	}
	if !common.ValidateISO8601(str) {
		return "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", str)
	}
	return str, nil
}

func coerceCloudCover(value interface{}) (int, error) {
	var cc float64
	switch v := value.(type) {
	case int:
		cc = float64(v)
	case int64:
		cc = float64(v)
	case float64:
		cc = v
	case float32:
		cc = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid cloud cover %q", v)
		}
		cc = parsed
	default:
		return 0, fmt.Errorf("expected number, got %T", value)
	}

	if math.IsNaN(cc) || math.IsInf(cc, 0) {
		return 0, fmt.Errorf("cloud cover is not a finite number")
	}

	rounded := int(math.Round(cc))
	if rounded < 0 {
		rounded = 0
	}
	if rounded > 100 {
		rounded = 100
	}
	return rounded, nil
}

func coerceBbox(value interface{}) (*common.BoundingBox, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case common.BoundingBox:
		if err := v.Validate(); err != nil {
			return nil, err
		}
		box := v
		return &box, nil
	case *common.BoundingBox:
		if v == nil {
			return nil, nil
		}
		if err := v.Validate(); err != nil {
			return nil, err
		}
		box := *v
		return &box, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		box, err := common.ParseBoundingBox(v)
		if err != nil {
			return nil, err
		}
		return &box, nil
	case []float64:
		box, err := common.BoundingBoxFromSlice(v)
		if err != nil {
			return nil, err
		}
		return &box, nil
	case []interface{}:
		// JSON arrays arrive from the frontend as []interface{}
		values := make([]float64, 0, len(v))
		for _, item := range v {
			num, ok := item.(float64)
			if !ok {
				return nil, fmt.Errorf("non-numeric bbox component %v", item)
			}
			values = append(values, num)
		}
		box, err := common.BoundingBoxFromSlice(values)
		if err != nil {
			return nil, err
		}
		return &box, nil
	default:
		return nil, fmt.Errorf("expected bbox, got %T", value)
	}
}
