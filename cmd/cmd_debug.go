// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/grosnap/grosnap/grocery"
	"github.com/grosnap/grosnap/ocr"
	"github.com/grosnap/grosnap/stores"
	"github.com/grosnap/grosnap/utils/httputils"
	"github.com/spf13/cobra"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

var debugOCRCmd = &cobra.Command{
	Use:   "ocr <image>",
	Short: "Sends an image to the text extraction service and prints the items read",
	Long: `Uploads an image to the text extraction service and prints the items of the
extracted text, one per line.

$ grosnap debug ocr list.jpg
1	milk
2	bread
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		client := httputils.NewClient(httputils.ClientOptions{
			Timeout:             cfg.RequestTimeout,
			EnableHTTPTrace:     cfg.TraceHTTP,
			EnableHTTPBodyTrace: debugTraceBody,
		})

		text, err := ocr.NewClient(cfg.OCRURL, client).Extract(cmd.Context(), filepath.Base(args[0]), f)
		if err != nil {
			return err
		}

		for i, item := range grocery.NormalizeToItems(text) {
			fmt.Printf("%d\t%s\n", i+1, item)
		}

		return nil
	},
}

var debugGeocodeCity string

var debugGeocodeCmd = &cobra.Command{
	Use:   "geocode <address>",
	Short: "Geocodes an address the way store registration does",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		key := stores.ResolveMapsAPIKey(cmd.Context(), cfg.GoogleMapsAPIKey, cfg.GoogleProject)
		if key == "" {
			return fmt.Errorf("no Google Maps API key available")
		}

		client := httputils.NewClient(httputils.ClientOptions{
			Timeout:             cfg.RequestTimeout,
			EnableHTTPTrace:     cfg.TraceHTTP,
			EnableHTTPBodyTrace: debugTraceBody,
		})

		res, err := stores.NewGoogleMapsGeocoder(key, cfg.GeocodeRegion, client).Geocode(cmd.Context(), args[0], debugGeocodeCity)
		if err != nil {
			return err
		}

		s, err := json.Marshal(res)
		if err != nil {
			return err
		}

		fmt.Printf("%s\t\t%s\n", args[0], s)

		return nil
	},
}

var debugTraceBody bool

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugOCRCmd, debugGeocodeCmd)

	debugCmd.PersistentFlags().BoolVar(&debugTraceBody, "trace-http-body", false, "Display HTTP requests-responses bodies")
	debugOCRCmd.Flags().String("ocr-url", "http://localhost:5001", "Text extraction service")
	debugGeocodeCmd.Flags().StringVar(&debugGeocodeCity, "city", "", "City biasing the result")
	debugGeocodeCmd.Flags().String("maps-api-key", "", "Google Maps API key")
	debugGeocodeCmd.Flags().String("project", "", "Google Cloud project holding the geocoding API key")
}
