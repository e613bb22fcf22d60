// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

// Package matching implements the item matchers used to reconcile grocery
// lists against store inventories.
package matching

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/grosnap/grosnap/grocery"
	"github.com/grosnap/grosnap/stores"
	"github.com/grosnap/grosnap/utils/textutils"
)

// DefaultThreshold is the minimum cosine similarity for an item to match a
// product name.
const DefaultThreshold = 0.5

// Inventory is the read side of the store registry needed by the matcher.
type Inventory interface {
	ListStores(filter stores.StoreFilter) ([]*stores.Store, error)
	ListAllProducts() ([]*stores.Product, error)
}

// InventoryMatcher matches items against the products registered by the
// shopkeepers, using a bag-of-words cosine similarity.
type InventoryMatcher struct {
	inventory Inventory
	threshold float64
}

// NewInventoryMatcher creates a matcher over inventory. A threshold <= 0
// means DefaultThreshold.
func NewInventoryMatcher(inventory Inventory, threshold float64) *InventoryMatcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	return &InventoryMatcher{inventory: inventory, threshold: threshold}
}

type storeStock struct {
	store    *stores.Store
	products []map[string]int
}

// Match implements grocery.ItemMatcher. Only stores with at least one product
// in stock are reported, the ones carrying more items first.
func (m *InventoryMatcher) Match(ctx context.Context, items []string) ([]grocery.StoreMatch, error) {
	registered, err := m.inventory.ListStores(stores.StoreFilter{})
	if err != nil {
		return nil, fmt.Errorf("loading stores: %w", err)
	}

	products, err := m.inventory.ListAllProducts()
	if err != nil {
		return nil, fmt.Errorf("loading products: %w", err)
	}

	byID := make(map[string]*storeStock, len(registered))
	for _, s := range registered {
		byID[s.ID] = &storeStock{store: s}
	}

	for _, p := range products {
		st, ok := byID[p.StoreID]
		if !ok || !p.InStock() {
			continue
		}

		st.products = append(st.products, vectorize(p.Name))
	}

	itemVectors := make([]map[string]int, len(items))
	for i, item := range items {
		itemVectors[i] = vectorize(stripListMarker(item))
	}

	var matches []grocery.StoreMatch

	for _, s := range registered {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		st := byID[s.ID]
		if len(st.products) == 0 {
			continue
		}

		match := grocery.StoreMatch{StoreID: s.ID, StoreName: s.Name}

		for i, item := range items {
			if m.carries(st, itemVectors[i]) {
				match.Found = append(match.Found, item)
			} else {
				match.NotFound = append(match.NotFound, item)
			}
		}

		matches = append(matches, match)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return len(matches[i].Found) > len(matches[j].Found)
	})

	return matches, nil
}

func (m *InventoryMatcher) carries(st *storeStock, item map[string]int) bool {
	if len(item) == 0 {
		return false
	}

	for _, product := range st.products {
		if contains(product, item) || cosineSimilarity(item, product) >= m.threshold {
			return true
		}
	}

	return false
}

// listMarkerRegex matches the numbering or bullet people put in front of list lines.
var listMarkerRegex = regexp.MustCompile(`^\s*(\d+\s*[.)]|[-*•])\s*`)

func stripListMarker(s string) string {
	return listMarkerRegex.ReplaceAllString(s, "")
}

// nonAlphanumericRegex is used to remove non-alphanumeric characters during text cleaning.
var nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]+`)

// vectorize converts a text into a bag-of-words frequency map after folding
// case and accents.
func vectorize(text string) map[string]int {
	text = nonAlphanumericRegex.ReplaceAllString(textutils.LowerASCIIFolding(text), " ")
	vector := make(map[string]int)

	for _, word := range strings.Fields(text) {
		vector[word]++
	}

	return vector
}

// contains reports whether every word of item appears in product.
func contains(product, item map[string]int) bool {
	for word := range item {
		if product[word] == 0 {
			return false
		}
	}

	return true
}

// cosineSimilarity ranges from 0 (no words in common) to 1 (same words in
// the same proportions).
func cosineSimilarity(v1, v2 map[string]int) float64 {
	dotProduct := 0

	for k, v := range v1 {
		dotProduct += v * v2[k]
	}

	mag1 := 0
	for _, v := range v1 {
		mag1 += v * v
	}

	mag2 := 0
	for _, v := range v2 {
		mag2 += v * v
	}

	if mag1 == 0 || mag2 == 0 {
		return 0
	}

	return float64(dotProduct) / (math.Sqrt(float64(mag1)) * math.Sqrt(float64(mag2)))
}
