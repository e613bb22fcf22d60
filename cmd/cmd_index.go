// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/grosnap/grosnap/matching"
	"github.com/grosnap/grosnap/stores"
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Pushes the registry products to Elasticsearch",
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

		client, err := matching.NewElasticClient(cfg.ElasticsearchURL)
		if err != nil {
			return err
		}

		indexer := matching.NewElasticIndexer(client, cfg.ESIndex)
		if err := indexer.EnsureIndex(cmd.Context()); err != nil {
			return err
		}

		list, err := a.repo.ListStores(stores.StoreFilter{})
		if err != nil {
			return err
		}

		names := make(map[string]string, len(list))
		for _, s := range list {
			names[s.ID] = s.Name
		}

		products, err := a.repo.ListAllProducts()
		if err != nil {
			return err
		}

		if err := indexer.IndexProducts(cmd.Context(), products, names); err != nil {
			return err
		}

		fmt.Printf("✅ Indexed %d products of %d stores into %s\n", len(products), len(list), cfg.ESIndex)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)

	indexCmd.Flags().String("es-url", "http://localhost:9200", "Elasticsearch address")
	indexCmd.Flags().String("es-index", "grosnap-products", "Elasticsearch products index")
}
