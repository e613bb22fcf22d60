// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

// Package ranking orders stores by their great-circle distance to a customer
// and annotates each one with an estimated walking time.
package ranking

import (
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/grosnap/grosnap/spatial"
)

// WalkingSpeedKmh is the assumed average walking speed.
const WalkingSpeedKmh = 5.0

// Candidate is a store eligible for ranking. Stores registered without a
// location have a nil Point and are skipped.
type Candidate struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Point    *spatial.Point `json:"point,omitempty"`
	Category string         `json:"category,omitempty"`
	Address  string         `json:"address,omitempty"`
}

// RankedStore is a Candidate annotated with its distance to the origin.
type RankedStore struct {
	Candidate
	DistanceKm  float64 `json:"distance_km"`
	WalkMinutes int     `json:"walk_minutes"`
}

// Result holds the ranked stores and how many candidates were left out for
// missing or malformed coordinates.
type Result struct {
	Stores  []RankedStore `json:"stores"`
	Skipped int           `json:"skipped"`
}

// ComputeDistanceKm returns the haversine distance between a and b.
func ComputeDistanceKm(a, b spatial.Point) (float64, error) {
	return spatial.DistanceKm(a, b)
}

// EstimateWalkMinutes converts a distance to minutes at WalkingSpeedKmh,
// rounded half away from zero.
func EstimateWalkMinutes(km float64) int {
	if km <= 0 || math.IsNaN(km) {
		return 0
	}

	return int(math.Round(km / WalkingSpeedKmh * 60))
}

// RankStores sorts candidates ascending by distance to origin. Equal distances
// keep their input order. An invalid origin fails the whole call while an
// invalid candidate is only skipped.
func RankStores(origin spatial.Point, candidates []Candidate) (*Result, error) {
	if err := origin.Validate(); err != nil {
		return nil, fmt.Errorf("ranking stores: %w", err)
	}

	result := &Result{Stores: make([]RankedStore, 0, len(candidates))}

	for _, c := range candidates {
		if c.Point == nil {
			result.Skipped++

			continue
		}

		km, err := ComputeDistanceKm(origin, *c.Point)
		if err != nil {
			log.Printf("skipping store %q (%s): %v", c.Name, c.ID, err)

			result.Skipped++

			continue
		}

		result.Stores = append(result.Stores, RankedStore{
			Candidate:   c,
			DistanceKm:  km,
			WalkMinutes: EstimateWalkMinutes(km),
		})
	}

	sort.SliceStable(result.Stores, func(i, j int) bool {
		return result.Stores[i].DistanceKm < result.Stores[j].DistanceKm
	})

	return result, nil
}

// Within returns the prefix of an already ranked slice whose distance does not
// exceed radiusKm.
func Within(ranked []RankedStore, radiusKm float64) []RankedStore {
	n := sort.Search(len(ranked), func(i int) bool {
		return ranked[i].DistanceKm > radiusKm
	})

	return ranked[:n]
}
