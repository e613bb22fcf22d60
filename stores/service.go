// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package stores

import (
	"context"
	"fmt"
	"log"

	"github.com/grosnap/grosnap/ranking"
	"github.com/grosnap/grosnap/spatial"
)

// Service answers the store questions of customers and shopkeepers.
type Service struct {
	repo         Repository
	query        GeoQuery
	geocoder     Geocoder
	radiusMeters int
}

// NewService creates a Service. geocoder may be nil, in which case stores
// registered without coordinates keep none.
func NewService(repo Repository, query GeoQuery, geocoder Geocoder, radiusMeters int) *Service {
	if radiusMeters <= 0 {
		radiusMeters = DefaultRadiusMeters
	}

	return &Service{repo: repo, query: query, geocoder: geocoder, radiusMeters: radiusMeters}
}

// RadiusKm is the configured search radius.
func (s *Service) RadiusKm() float64 {
	return float64(s.radiusMeters) / 1000
}

// Nearby ranks the shops the geographic query service finds around origin.
func (s *Service) Nearby(ctx context.Context, origin spatial.Point) (*ranking.Result, error) {
	if err := origin.Validate(); err != nil {
		return nil, err
	}

	candidates, err := s.query.FindStores(ctx, origin, s.radiusMeters)
	if err != nil {
		if !IsQueryError(err) {
			err = classifyTransportError(err)
		}

		return nil, err
	}

	return ranking.RankStores(origin, candidates)
}

// NearbyRegistered ranks the registry stores within the search radius.
func (s *Service) NearbyRegistered(_ context.Context, origin spatial.Point) (*ranking.Result, error) {
	cells, err := origin.CellsWithin(s.RadiusKm())
	if err != nil {
		return nil, err
	}

	stores, err := s.repo.StoresInCells(cells)
	if err != nil {
		return nil, registryError("querying registry", err)
	}

	res, err := s.rank(origin, stores)
	if err != nil {
		return nil, err
	}

	res.Stores = ranking.Within(res.Stores, s.RadiusKm())

	return res, nil
}

// ListRegistered returns the registry ordered by name.
func (s *Service) ListRegistered(_ context.Context, filter StoreFilter) ([]*Store, error) {
	stores, err := s.repo.ListStores(filter)
	if err != nil {
		return nil, registryError("listing registry", err)
	}

	return stores, nil
}

// RankRegistered returns every matching registry store ranked by distance to
// origin. Stores without coordinates are counted as skipped.
func (s *Service) RankRegistered(ctx context.Context, origin spatial.Point, filter StoreFilter) (*ranking.Result, error) {
	if err := origin.Validate(); err != nil {
		return nil, err
	}

	stores, err := s.ListRegistered(ctx, filter)
	if err != nil {
		return nil, err
	}

	return s.rank(origin, stores)
}

func (s *Service) rank(origin spatial.Point, stores []*Store) (*ranking.Result, error) {
	candidates := make([]ranking.Candidate, len(stores))
	for i, st := range stores {
		candidates[i] = st.Candidate()
	}

	return ranking.RankStores(origin, candidates)
}

// GetStore returns a registry store.
func (s *Service) GetStore(_ context.Context, id string) (*Store, error) {
	st, err := s.repo.GetStore(id)

	return st, registryError("reading registry", err)
}

// Register validates and saves a store. A store without coordinates is
// geocoded from its address; a geocoding failure is logged and the store is
// saved without location.
func (s *Service) Register(ctx context.Context, store *Store) error {
	store.sanitize()

	if err := store.Validate(); err != nil {
		return &ValidationError{Err: err}
	}

	if store.Point == nil && store.Address != "" && s.geocoder != nil {
		res, err := s.geocoder.Geocode(ctx, store.Address, store.City)
		if err != nil {
			log.Printf("geocoding %q for store %q: %v", store.Address, store.Name, err)
		} else {
			p := res.Point
			store.Point = &p

			log.Printf("geocoded %q to %s (%s confidence)", store.Address, p, res.Confidence)
		}
	}

	return registryError("saving store", s.repo.SaveStore(store))
}

// Products returns the inventory of a store.
func (s *Service) Products(_ context.Context, storeID string) ([]*Product, error) {
	if _, err := s.repo.GetStore(storeID); err != nil {
		return nil, registryError("reading registry", err)
	}

	products, err := s.repo.ListProducts(storeID)

	return products, registryError("listing products", err)
}

// SaveProduct adds or updates a product of storeID.
func (s *Service) SaveProduct(_ context.Context, storeID string, p *Product) error {
	p.StoreID = storeID
	if err := p.Validate(); err != nil {
		return &ValidationError{Err: err}
	}

	if p.ID != "" {
		if _, err := s.repo.GetProduct(storeID, p.ID); err != nil {
			return registryError("reading product", err)
		}
	}

	return registryError(fmt.Sprintf("saving product %q", p.Name), s.repo.SaveProduct(p))
}

// DeleteProduct removes a product of storeID.
func (s *Service) DeleteProduct(_ context.Context, storeID, productID string) error {
	return registryError("deleting product", s.repo.DeleteProduct(storeID, productID))
}
