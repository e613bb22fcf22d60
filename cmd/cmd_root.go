// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/grosnap/grosnap/config"
	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var rootCmd = &cobra.Command{
	Use:   "grosnap",
	Short: "grocery marketplace backend",
	Long: `
grosnap finds the grocery stores closest to a customer, keeps the registry of
the shops and their inventories, and matches grocery lists (typed or read from
a photo) against what every store carries.
`,
	SilenceUsage: true,
}

var Version = "dev"

var configFile string

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configuration, letting the flags set on cmd win.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (yaml, json or toml)")
	rootCmd.PersistentFlags().String("db-driver", "duckdb", "Database driver: duckdb or postgres")
	rootCmd.PersistentFlags().String("db", "grosnap.duckdb", "Database path or connection string")
	rootCmd.PersistentFlags().Duration("timeout", 30*time.Second, "Timeout of every outbound request")
	rootCmd.PersistentFlags().Bool("trace-http", false, "Display HTTP requests-responses")
}
