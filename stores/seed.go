// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package stores

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// SeedData represents the JSON seed file format.
type SeedData struct {
	Version     string     `json:"version"`
	LastUpdated time.Time  `json:"last_updated"`
	Stores      []*Store   `json:"stores"`
	Products    []*Product `json:"products"`
}

// ExportToJSON exports the whole registry to a JSON file.
func ExportToJSON(repo Repository, filepath string) error {
	stores, err := repo.ListStores(StoreFilter{})
	if err != nil {
		return fmt.Errorf("listing stores: %w", err)
	}

	products, err := repo.ListAllProducts()
	if err != nil {
		return fmt.Errorf("listing products: %w", err)
	}

	seed := &SeedData{
		Version:     "1.0",
		LastUpdated: time.Now(),
		Stores:      stores,
		Products:    products,
	}

	data, err := json.MarshalIndent(seed, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0o600); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}

// ImportFromJSON imports stores and then products from a JSON file.
func ImportFromJSON(repo Repository, filepath string) (int, error) {
	data, err := os.ReadFile(filepath) // #nosec G304 - filepath is provided by admin
	if err != nil {
		return 0, fmt.Errorf("reading file: %w", err)
	}

	var seed SeedData
	if err := json.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("parsing JSON: %w", err)
	}

	if err := repo.BulkSaveStores(seed.Stores); err != nil {
		return 0, err
	}

	imported := len(seed.Stores)

	for _, p := range seed.Products {
		if err := repo.SaveProduct(p); err != nil {
			return imported, fmt.Errorf("saving product %s: %w", p.Name, err)
		}

		imported++
	}

	return imported, nil
}

// SeedIfEmpty seeds the registry from a JSON file if it has no stores.
func SeedIfEmpty(repo Repository, filepath string) (bool, int, error) {
	count, err := repo.CountStores()
	if err != nil {
		return false, 0, fmt.Errorf("counting stores: %w", err)
	}

	if count > 0 {
		return false, count, nil
	}

	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return false, 0, nil
	}

	imported, err := ImportFromJSON(repo, filepath)
	if err != nil {
		return false, 0, err
	}

	return true, imported, nil
}
