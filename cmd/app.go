// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/grosnap/grosnap/config"
	"github.com/grosnap/grosnap/grocery"
	"github.com/grosnap/grosnap/matching"
	"github.com/grosnap/grosnap/orders"
	"github.com/grosnap/grosnap/stores"
	"github.com/grosnap/grosnap/utils/httputils"
	_ "github.com/lib/pq" // register postgres driver
)

// app holds the collaborators shared by the commands.
type app struct {
	cfg     *config.Config
	db      *sql.DB
	dialect stores.Dialect
	repo    stores.Repository
	orders  orders.Repository
	client  *http.Client
}

func openApp(cfg *config.Config) (*app, error) {
	dialect, err := stores.DialectFor(cfg.DBDriver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()

		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	repo := stores.NewRepository(db, dialect)
	if err := repo.CreateSchema(); err != nil {
		db.Close()

		return nil, fmt.Errorf("creating registry schema: %w", err)
	}

	orderRepo := orders.NewRepository(db, dialect)
	if err := orderRepo.CreateSchema(); err != nil {
		db.Close()

		return nil, fmt.Errorf("creating orders schema: %w", err)
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = fmt.Sprintf("grosnap/%s (+https://github.com/grosnap/grosnap)", Version)
	}

	client := httputils.NewClient(httputils.ClientOptions{
		UserAgent:       userAgent,
		Timeout:         cfg.RequestTimeout,
		EnableHTTPTrace: cfg.TraceHTTP,
	})

	return &app{cfg: cfg, db: db, dialect: dialect, repo: repo, orders: orderRepo, client: client}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// storeService wires the Overpass client and, when a key is available, the
// Google geocoder.
func (a *app) storeService(ctx context.Context) *stores.Service {
	var geocoder stores.Geocoder

	if key := stores.ResolveMapsAPIKey(ctx, a.cfg.GoogleMapsAPIKey, a.cfg.GoogleProject); key != "" {
		geocoder = stores.NewGoogleMapsGeocoder(key, a.cfg.GeocodeRegion, a.client)
	}

	query := stores.NewOverpassClient(a.cfg.OverpassURL, a.client)

	return stores.NewService(a.repo, query, geocoder, a.cfg.SearchRadiusM)
}

func (a *app) matcher() (grocery.ItemMatcher, error) {
	switch a.cfg.Matcher {
	case config.MatcherElasticsearch:
		client, err := matching.NewElasticClient(a.cfg.ElasticsearchURL)
		if err != nil {
			return nil, err
		}

		return matching.NewElasticMatcher(client, a.cfg.ESIndex), nil
	case config.MatcherRemote:
		return matching.NewRemoteMatcher(a.cfg.MatcherURL, a.client), nil
	default:
		return matching.NewInventoryMatcher(a.repo, a.cfg.MatchThreshold), nil
	}
}
