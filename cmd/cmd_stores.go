// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/grosnap/grosnap/position"
	"github.com/grosnap/grosnap/ranking"
	"github.com/grosnap/grosnap/spatial"
	"github.com/grosnap/grosnap/stores"
	"github.com/grosnap/grosnap/utils/textutils"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var storesCmd = &cobra.Command{
	Use:   "stores",
	Short: "Store registry and nearby search",
}

var storesQuery string

var storesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists the registered stores",
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

		list, err := a.repo.ListStores(stores.StoreFilter{Query: storesQuery})
		if err != nil {
			return err
		}

		a1, b, c := strings.Repeat("─", 36), strings.Repeat("─", 30), strings.Repeat("─", 22)
		fmt.Printf("╭─%-36s─┬─%-30s─┬─%-22s╮\n", a1, b, c)
		fmt.Printf("│ %-36s │ %-30s │ %-22s│\n", "Id", "Name", "Location")
		fmt.Printf("├─%-36s─┼─%-30s─┼─%-22s┤\n", a1, b, c)

		for _, s := range list {
			loc := "-"
			if s.Point != nil {
				loc = s.Point.String()
			}

			fmt.Printf("│ %-36s │ %-30.30s │ %-22.22s│\n", s.ID, s.Name, loc)
		}

		fmt.Printf("╰─%-36s─┴─%-30s─┴─%-22s╯\n", a1, b, c)
		fmt.Printf("%s stores\n", textutils.FormatInt(int64(len(list))))

		return nil
	},
}

var (
	nearbyLat, nearbyLon float64
	nearbySource         string
)

var storesNearbyCmd = &cobra.Command{
	Use:   "nearby",
	Short: "Ranks the grocery stores around a position",
	Example: `
$ grosnap stores nearby --lat 12.9716 --lon 77.5946
`,
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

		ctx := cmd.Context()

		origin, err := position.Fixed(spatial.Point{Lat: nearbyLat, Lng: nearbyLon}).Locate(ctx)
		if err != nil {
			return err
		}

		svc := a.storeService(ctx)

		var res *ranking.Result

		switch nearbySource {
		case "osm":
			res, err = svc.Nearby(ctx, origin)
		case "registry":
			res, err = svc.NearbyRegistered(ctx, origin)
		default:
			err = fmt.Errorf("unknown source %q: expected osm or registry", nearbySource)
		}

		if err != nil {
			return err
		}

		printRanked(os.Stdout, res)

		return nil
	},
}

func printRanked(w io.Writer, res *ranking.Result) {
	if len(res.Stores) == 0 {
		fmt.Fprintln(w, "No stores found nearby.")
	}

	for i, s := range res.Stores {
		fmt.Fprintf(w, "%3d. %-40.40s %9s  %3d min walk  %s\n",
			i+1, s.Name, textutils.FormatKm(s.DistanceKm), s.WalkMinutes, s.ID)
	}

	if res.Skipped > 0 {
		fmt.Fprintf(w, "⚠️  %d stores skipped for missing or invalid coordinates\n", res.Skipped)
	}
}

var storesImportCmd = &cobra.Command{
	Use:   "import <file.xlsx|file.json>",
	Short: "Imports stores and products into the registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		a, err := openApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		path := args[0]

		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			n, err := stores.ImportFromJSON(a.repo, path)
			if err != nil {
				return err
			}

			fmt.Printf("✅ Imported %s records from %s\n", textutils.FormatInt(int64(n)), path)

			return nil
		case ".xlsx":
			return importWorkbook(cmd.Context(), a, path)
		default:
			return fmt.Errorf("unsupported file %s: expected .xlsx or .json", path)
		}
	},
}

func newProgressBar(n int, description string) *progressbar.ProgressBar {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}

	return progressbar.NewOptions(n,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func importWorkbook(ctx context.Context, a *app, path string) error {
	f, err := os.Open(path) // #nosec G304 - path is provided by admin
	if err != nil {
		return err
	}
	defer f.Close()

	wb, err := stores.ReadWorkbook(f)
	if err != nil {
		return err
	}

	for _, skipped := range wb.Skipped {
		log.Printf("Skipping %v", skipped)
	}

	svc := a.storeService(ctx)
	bar := newProgressBar(len(wb.Stores)+len(wb.Products), "Importing "+filepath.Base(path))

	var errs []error

	step := func(what string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", what, err))
		}

		if bar == nil {
			log.Printf("Imported %s", what)
		} else {
			_ = bar.Add(1)
		}
	}

	for _, s := range wb.Stores {
		step("store "+s.Name, svc.Register(ctx, s))
	}

	for _, p := range wb.Products {
		step("product "+p.Name, a.repo.SaveProduct(p))
	}

	for _, err := range errs {
		log.Printf("Import failed - %s", err)
	}

	fmt.Printf("✅ Imported %d stores and %d products (%d failed, %d rows skipped)\n",
		len(wb.Stores), len(wb.Products), len(errs), len(wb.Skipped))

	return errors.Join(errs...)
}

var storesExportCmd = &cobra.Command{
	Use:   "export <file.xlsx|file.json>",
	Short: "Exports the registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		a, err := openApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		path := args[0]

		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			err = stores.ExportToJSON(a.repo, path)
		case ".xlsx":
			err = exportWorkbook(a.repo, path)
		default:
			err = fmt.Errorf("unsupported file %s: expected .xlsx or .json", path)
		}

		if err != nil {
			return err
		}

		fmt.Printf("✅ Exported registry to %s\n", path)

		return nil
	},
}

func exportWorkbook(repo stores.Repository, path string) error {
	list, err := repo.ListStores(stores.StoreFilter{})
	if err != nil {
		return err
	}

	products, err := repo.ListAllProducts()
	if err != nil {
		return err
	}

	f, err := os.Create(path) // #nosec G304 - path is provided by admin
	if err != nil {
		return err
	}

	if err := stores.WriteWorkbook(f, list, products); err != nil {
		f.Close()

		return err
	}

	return f.Close()
}

var registerStore = &stores.Store{}

var registerLat, registerLon float64

var storesRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Registers a store, geocoding its address when no position is given",
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

		if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon") {
			registerStore.Point = &spatial.Point{Lat: registerLat, Lng: registerLon}
		}

		if err := a.storeService(cmd.Context()).Register(cmd.Context(), registerStore); err != nil {
			return err
		}

		fmt.Printf("✅ Registered %q as %s\n", registerStore.Name, registerStore.ID)

		if registerStore.Point == nil {
			fmt.Println("⚠️  The store has no location and won't be ranked")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(storesCmd)
	storesCmd.AddCommand(storesListCmd, storesNearbyCmd, storesImportCmd, storesExportCmd, storesRegisterCmd)

	storesListCmd.Flags().StringVarP(&storesQuery, "query", "q", "", "Filters by name, address or city")

	storesNearbyCmd.Flags().Float64Var(&nearbyLat, "lat", 0, "Latitude of the customer")
	storesNearbyCmd.Flags().Float64Var(&nearbyLon, "lon", 0, "Longitude of the customer")
	storesNearbyCmd.Flags().StringVar(&nearbySource, "source", "osm", "Where to look for stores: osm or registry")
	storesNearbyCmd.Flags().String("overpass-url", stores.DefaultOverpassURL, "Overpass API interpreter")
	storesNearbyCmd.Flags().Int("radius", stores.DefaultRadiusMeters, "Search radius in meters")
	_ = storesNearbyCmd.MarkFlagRequired("lat")
	_ = storesNearbyCmd.MarkFlagRequired("lon")

	storesRegisterCmd.Flags().StringVar(&registerStore.Name, "name", "", "Shop name")
	storesRegisterCmd.Flags().StringVar(&registerStore.Owner, "owner", "", "Owner name")
	storesRegisterCmd.Flags().StringVar(&registerStore.Email, "email", "", "Owner email")
	storesRegisterCmd.Flags().StringVar(&registerStore.Phone, "phone", "", "Phone number")
	storesRegisterCmd.Flags().StringVar(&registerStore.Address, "address", "", "Shop address")
	storesRegisterCmd.Flags().StringVar(&registerStore.City, "city", "", "City")
	storesRegisterCmd.Flags().StringVar(&registerStore.Category, "category", "", "Shop category")
	storesRegisterCmd.Flags().Float64Var(&registerLat, "lat", 0, "Latitude")
	storesRegisterCmd.Flags().Float64Var(&registerLon, "lon", 0, "Longitude")
	storesRegisterCmd.Flags().String("maps-api-key", "", "Google Maps API key used to geocode the address")
	_ = storesRegisterCmd.MarkFlagRequired("name")
}
