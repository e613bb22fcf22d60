// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package grocery

import (
	"context"
	"log"
)

// StoreMatch is what an ItemMatcher reports for a single store. NotFound is
// informative only, the partition is rebuilt from Found.
type StoreMatch struct {
	StoreID   string
	StoreName string
	Found     []string
	NotFound  []string
}

// ItemMatcher matches item names against store inventories.
type ItemMatcher interface {
	Match(ctx context.Context, items []string) ([]StoreMatch, error)
}

// ItemMatcherFunc adapts a function to ItemMatcher.
type ItemMatcherFunc func(ctx context.Context, items []string) ([]StoreMatch, error)

// Match implements ItemMatcher.
func (f ItemMatcherFunc) Match(ctx context.Context, items []string) ([]StoreMatch, error) {
	return f(ctx, items)
}

// StoreMatchReport partitions the items of a list for one store. Every list
// item belongs to exactly one of Found or NotFound, in list order.
type StoreMatchReport struct {
	StoreID       string `json:"store_id"`
	StoreName     string `json:"store"`
	FoundItems    []Item `json:"found_items"`
	NotFoundItems []Item `json:"not_found_items"`
}

// ResolveAgainstStores asks matcher which items each store carries. Names the
// matcher returns that are not part of the list are discarded and logged.
func ResolveAgainstStores(ctx context.Context, list *List, matcher ItemMatcher) ([]StoreMatchReport, error) {
	if list == nil || len(list.Items) == 0 {
		return nil, ErrEmptyList
	}

	members := make(map[string]bool, len(list.Items))
	for _, item := range list.Items {
		members[string(item)] = true
	}

	matches, err := matcher.Match(ctx, list.Names())
	if err != nil {
		return nil, &MatchError{Err: err}
	}

	reports := make([]StoreMatchReport, 0, len(matches))

	for _, m := range matches {
		trusted := make(map[string]bool, len(m.Found))

		for _, name := range m.Found {
			if !members[name] {
				log.Printf("anomaly: matcher reported %q as found at store %q (%s) but it is not in list %s",
					name, m.StoreName, m.StoreID, list.ID)

				continue
			}

			trusted[name] = true
		}

		report := StoreMatchReport{
			StoreID:       m.StoreID,
			StoreName:     m.StoreName,
			FoundItems:    []Item{},
			NotFoundItems: []Item{},
		}

		for _, item := range list.Items {
			if trusted[string(item)] {
				report.FoundItems = append(report.FoundItems, item)
			} else {
				report.NotFoundItems = append(report.NotFoundItems, item)
			}
		}

		reports = append(reports, report)
	}

	return reports, nil
}
