// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/grosnap/grosnap/ocr"
	"github.com/grosnap/grosnap/server"
	"github.com/grosnap/grosnap/session"
	"github.com/grosnap/grosnap/stores"
	"github.com/spf13/cobra"
)

var serveSeedFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the JSON API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		a, err := openApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if serveSeedFile != "" {
			seeded, n, err := stores.SeedIfEmpty(a.repo, serveSeedFile)
			if err != nil {
				return fmt.Errorf("seeding registry: %w", err)
			}

			if seeded {
				log.Printf("seeded %d records from %s", n, serveSeedFile)
			}
		}

		matcher, err := a.matcher()
		if err != nil {
			return err
		}

		fmt.Printf("🛒 Matcher: %s\n", cfg.Matcher)
		fmt.Printf("📍 Store search radius: %d m\n", cfg.SearchRadiusM)

		srv := server.New(server.Deps{
			Stores:         a.storeService(ctx),
			Orders:         a.orders,
			Matcher:        matcher,
			Extractor:      ocr.NewClient(cfg.OCRURL, a.client),
			Sessions:       session.NewManager(),
			Cookies:        session.NewCookieStore(cfg.SessionKey()),
			RequestTimeout: cfg.RequestTimeout,
			SessionTTL:     cfg.SessionTTL,
			Version:        Version,
		})

		return srv.Run(ctx, cfg.Addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().String("overpass-url", stores.DefaultOverpassURL, "Overpass API interpreter")
	serveCmd.Flags().Int("radius", stores.DefaultRadiusMeters, "Store search radius in meters")
	serveCmd.Flags().String("ocr-url", "http://localhost:5001", "Text extraction service")
	serveCmd.Flags().String("matcher", "inventory", "Item matcher: inventory, elasticsearch or remote")
	serveCmd.Flags().String("matcher-url", "http://localhost:5000", "Item matching service, for the remote matcher")
	serveCmd.Flags().String("es-url", "http://localhost:9200", "Elasticsearch address, for the elasticsearch matcher")
	serveCmd.Flags().String("es-index", "grosnap-products", "Elasticsearch products index")
	serveCmd.Flags().String("maps-api-key", "", "Google Maps API key used to geocode registered stores")
	serveCmd.Flags().String("project", "", "Google Cloud project holding the geocoding API key")
	serveCmd.Flags().StringVar(&serveSeedFile, "seed", "", "JSON seed file loaded when the registry is empty")
}
