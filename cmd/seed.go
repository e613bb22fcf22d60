// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/grosnap/grosnap/config"
	"github.com/grosnap/grosnap/stores"
	"github.com/spf13/cobra"
)

var seedFile string

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Recreates the registry with data from a JSON seed file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			return seedDatabase(cfg, seedFile)
		},
	}

	cmd.Flags().StringVar(&seedFile, "file", "cmd/testdata/seed.json", "Seed file")

	return cmd
}

func init() {
	rootCmd.AddCommand(newSeedCmd())
}

func seedDatabase(cfg *config.Config, path string) error {
	if cfg.DBDriver == "duckdb" {
		// remove old db if it exists
		_ = os.Remove(cfg.DBDSN)
		_ = os.Remove(cfg.DBDSN + ".wal")
	}

	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.DBDriver != "duckdb" {
		for _, table := range []string{"orders", "products", "stores"} {
			if _, err := a.db.Exec("DELETE FROM " + table); err != nil {
				return fmt.Errorf("clearing %s: %w", table, err)
			}
		}
	}

	n, err := stores.ImportFromJSON(a.repo, path)
	if err != nil {
		return fmt.Errorf("failed to seed from %s: %w", path, err)
	}

	fmt.Printf("Database seeded successfully with %d records.\n", n)

	return nil
}
