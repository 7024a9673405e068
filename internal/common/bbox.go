package common

import (
	"fmt"
	"strconv"
	"strings"
)

// BoundingBox represents a geographic bounding box in WGS84 degrees
type BoundingBox struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// Validate checks coordinate ranges and edge ordering
func (b BoundingBox) Validate() error {
	if b.West < -180 || b.West > 180 || b.East < -180 || b.East > 180 {
		return fmt.Errorf("longitude out of range: west=%.6f east=%.6f", b.West, b.East)
	}
	if b.South < -90 || b.South > 90 || b.North < -90 || b.North > 90 {
		return fmt.Errorf("latitude out of range: south=%.6f north=%.6f", b.South, b.North)
	}
	if b.West >= b.East {
		return fmt.Errorf("west (%.6f) must be less than east (%.6f)", b.West, b.East)
	}
	if b.South >= b.North {
		return fmt.Errorf("south (%.6f) must be less than north (%.6f)", b.South, b.North)
	}
	return nil
}

// String formats the box as "west,south,east,north" with compact floats
func (b BoundingBox) String() string {
	parts := []string{
		strconv.FormatFloat(b.West, 'f', -1, 64),
		strconv.FormatFloat(b.South, 'f', -1, 64),
		strconv.FormatFloat(b.East, 'f', -1, 64),
		strconv.FormatFloat(b.North, 'f', -1, 64),
	}
	return strings.Join(parts, ",")
}

// Slice returns the box in STAC order [west, south, east, north]
func (b BoundingBox) Slice() []float64 {
	return []float64{b.West, b.South, b.East, b.North}
}

// Center returns the midpoint of the box
func (b BoundingBox) Center() (lat, lon float64) {
	return (b.South + b.North) / 2, (b.West + b.East) / 2
}

// ParseBoundingBox parses a "west,south,east,north" string into a validated box
func ParseBoundingBox(s string) (BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BoundingBox{}, fmt.Errorf("expected 4 comma-separated values, got %d", len(parts))
	}

	values := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return BoundingBox{}, fmt.Errorf("invalid bbox component %q: %w", part, err)
		}
		values[i] = v
	}

	box := BoundingBox{West: values[0], South: values[1], East: values[2], North: values[3]}
	if err := box.Validate(); err != nil {
		return BoundingBox{}, err
	}
	return box, nil
}

// BoundingBoxFromSlice builds a validated box from STAC order [west, south, east, north]
func BoundingBoxFromSlice(values []float64) (BoundingBox, error) {
	if len(values) != 4 {
		return BoundingBox{}, fmt.Errorf("expected 4 bbox values, got %d", len(values))
	}
	box := BoundingBox{West: values[0], South: values[1], East: values[2], North: values[3]}
	if err := box.Validate(); err != nil {
		return BoundingBox{}, err
	}
	return box, nil
}
