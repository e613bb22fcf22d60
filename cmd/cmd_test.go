// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/grosnap/grosnap/config"
	"github.com/grosnap/grosnap/grocery"
	"github.com/grosnap/grosnap/ranking"
	"github.com/grosnap/grosnap/spatial"
	"github.com/grosnap/grosnap/stores"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	cfg.DBDSN = filepath.Join(t.TempDir(), "grosnap.duckdb")

	return cfg
}

func TestSeedDatabase(t *testing.T) {
	cfg := testConfig(t)

	require.NoError(t, seedDatabase(cfg, "testdata/seed.json"))
	// seeding twice starts over
	require.NoError(t, seedDatabase(cfg, "testdata/seed.json"))

	a, err := openApp(cfg)
	require.NoError(t, err)
	defer a.Close()

	n, err := a.repo.CountStores()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	products, err := a.repo.ListAllProducts()
	require.NoError(t, err)
	assert.Len(t, products, 7)
}

func TestSeededInventoryResolvesLists(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, seedDatabase(cfg, "testdata/seed.json"))

	a, err := openApp(cfg)
	require.NoError(t, err)
	defer a.Close()

	matcher, err := a.matcher()
	require.NoError(t, err)

	list, err := grocery.BuildList("weekly", grocery.NormalizeToItems("1. milk\n2. eggs\n3. rice"))
	require.NoError(t, err)

	reports, err := grocery.ResolveAgainstStores(context.Background(), list, matcher)
	require.NoError(t, err)
	require.Len(t, reports, 3)

	found := make(map[string][]grocery.Item)
	for _, r := range reports {
		found[r.StoreName] = r.FoundItems
	}

	assert.Equal(t, []grocery.Item{"1. milk"}, found["Fresh Mart"], "eggs are out of stock")
	assert.Equal(t, []grocery.Item{"1. milk", "3. rice"}, found["Daily Needs"])
	assert.Equal(t, []grocery.Item{"2. eggs"}, found["Green Basket"])

	var out bytes.Buffer
	printReports(&out, list, reports)
	assert.Contains(t, out.String(), "Daily Needs  2/3")
	assert.Contains(t, out.String(), "✅ 1. milk, 3. rice")
}

func TestSeededRegistryRanks(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, seedDatabase(cfg, "testdata/seed.json"))

	a, err := openApp(cfg)
	require.NoError(t, err)
	defer a.Close()

	svc := stores.NewService(a.repo, nil, nil, cfg.SearchRadiusM)

	res, err := svc.RankRegistered(context.Background(), bangalore(), stores.StoreFilter{})
	require.NoError(t, err)
	require.Len(t, res.Stores, 2)
	assert.Equal(t, "Daily Needs", res.Stores[0].Name)
	assert.Equal(t, 1, res.Skipped)

	var out bytes.Buffer
	printRanked(&out, res)
	assert.Contains(t, out.String(), "  1. Daily Needs")
	assert.Contains(t, out.String(), "1 stores skipped")
}

func TestPrintRankedEmpty(t *testing.T) {
	var out bytes.Buffer
	printRanked(&out, &ranking.Result{})
	assert.Equal(t, "No stores found nearby.\n", out.String())
}

func bangalore() spatial.Point {
	return spatial.Point{Lat: 12.9716, Lng: 77.5946}
}
