// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package stores

import (
	"context"

	"github.com/grosnap/grosnap/spatial"
)

// GeocodingResult represents a geocoding result from any provider.
type GeocodingResult struct {
	Point       spatial.Point
	Confidence  string // high, medium, low
	Provider    string
	DisplayName string
}

// Geocoder resolves a shop address to a coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, address string, city string) (*GeocodingResult, error)
}
