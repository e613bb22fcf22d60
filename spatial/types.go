// Copyright 2026 The GroSnap Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"errors"
	"fmt"
	"math"

	"github.com/uber/h3-go/v4"
)

const (
	earthRadius   = 6371e3 // meters
	earthRadiusKm = 6371.0
)

// ErrInvalidCoordinate is returned (wrapped) for latitudes outside [-90, 90],
// longitudes outside [-180, 180] or non finite values.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// CoordinateError describes which component of a Point is out of range.
type CoordinateError struct {
	Field string
	Value float64
}

func (e *CoordinateError) Error() string {
	return fmt.Sprintf("%s: %s out of range (received: %f)", ErrInvalidCoordinate, e.Field, e.Value)
}

func (e *CoordinateError) Unwrap() error {
	return ErrInvalidCoordinate
}

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewPoint builds a validated Point.
func NewPoint(lat, lng float64) (Point, error) {
	p := Point{Lat: lat, Lng: lng}
	if err := p.Validate(); err != nil {
		return Point{}, err
	}

	return p, nil
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// Validate checks the ranges of both components.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return &CoordinateError{Field: "latitude", Value: p.Lat}
	}

	if math.IsNaN(p.Lng) || p.Lng < -180 || p.Lng > 180 {
		return &CoordinateError{Field: "longitude", Value: p.Lng}
	}

	return nil
}

// HaversineDistance calculates the distance between two points on Earth in meters.
func (p *Point) HaversineDistance(other *Point) float64 {
	return earthRadius * centralAngle(*p, *other)
}

// DistanceKm is the great-circle distance in kilometers using the mean Earth radius.
func DistanceKm(a, b Point) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}

	if err := b.Validate(); err != nil {
		return 0, err
	}

	if a == b {
		return 0, nil
	}

	return earthRadiusKm * centralAngle(a, b), nil
}

func centralAngle(p, other Point) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - p.Lat) * math.Pi / 180
	dLng := (other.Lng - p.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	// rounding can push a slightly above 1 for antipodal points
	a = math.Min(1, math.Max(0, a))

	return 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// CellResolution is the H3 resolution used to index stores. The average
// hexagon edge at resolution 7 is about 1.4 km.
const CellResolution = 7

const cellEdgeKm = 1.406

// Cell returns the H3 cell containing p at CellResolution.
func (p Point) Cell() (int64, error) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), CellResolution)
	if err != nil {
		return 0, fmt.Errorf("error converting to h3 cell at res %d: %w", CellResolution, err)
	}

	return int64(cell), nil
}

// CellsWithin returns the H3 cells whose union covers every point at most
// radiusKm away from p. The result is a superset; callers still filter by
// exact distance.
func (p Point) CellsWithin(radiusKm float64) ([]int64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	origin, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), CellResolution)
	if err != nil {
		return nil, fmt.Errorf("error converting to h3 cell at res %d: %w", CellResolution, err)
	}

	disk, err := h3.GridDisk(origin, ringsFor(radiusKm))
	if err != nil {
		return nil, fmt.Errorf("computing grid disk: %w", err)
	}

	cells := make([]int64, 0, len(disk))
	for _, c := range disk {
		cells = append(cells, int64(c))
	}

	return cells, nil
}

// ringsFor is the k for GridDisk. A k-disk reaches at least (2k+1) inner
// radii from its center cell's center and the origin may sit up to one edge
// away from it; one extra ring absorbs cell size variation.
func ringsFor(radiusKm float64) int {
	if radiusKm <= 0 {
		return 1
	}

	inner := cellEdgeKm * math.Sqrt(3) / 2
	k := math.Ceil(((radiusKm+cellEdgeKm)/inner - 1) / 2)

	return int(k) + 1
}
