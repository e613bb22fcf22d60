// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grosnap/grosnap/grocery"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var listsCmd = &cobra.Command{
	Use:   "lists",
	Short: "Grocery list tools",
}

// readInput reads the whole list from stdin, prompting when it is a terminal.
func readInput(prompt string) (string, error) {
	if isatty.IsTerminal(os.Stdin.Fd()) {
		fmt.Fprintln(os.Stderr, prompt)
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}

	return string(data), nil
}

var listsNormalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Prints the items of a list, one per line",
	Long: `Reads free-form text and prints the grocery items it contains: one per
line, trimmed, blank lines dropped.

$ printf ' milk \n\n bread\r\n' | grosnap lists normalize
1	milk
2	bread
`,
	RunE: func(_ *cobra.Command, _ []string) error {
		raw, err := readInput("Enter the grocery list, one item per line, end with Ctrl-D…")
		if err != nil {
			return err
		}

		for i, item := range grocery.NormalizeToItems(raw) {
			fmt.Printf("%d\t%s\n", i+1, item)
		}

		return nil
	},
}

var listsResolveName string

var listsResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Matches a list read from stdin against the stores",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		raw, err := readInput("Enter the grocery list, one item per line, end with Ctrl-D…")
		if err != nil {
			return err
		}

		list, err := grocery.BuildList(listsResolveName, grocery.NormalizeToItems(raw))
		if err != nil {
			return err
		}

		a, err := openApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		matcher, err := a.matcher()
		if err != nil {
			return err
		}

		reports, err := grocery.ResolveAgainstStores(cmd.Context(), list, matcher)
		if err != nil {
			return err
		}

		printReports(os.Stdout, list, reports)

		return nil
	},
}

func joinItems(items []grocery.Item) string {
	if len(items) == 0 {
		return "-"
	}

	names := make([]string, len(items))
	for i, item := range items {
		names[i] = string(item)
	}

	return strings.Join(names, ", ")
}

func printReports(w io.Writer, list *grocery.List, reports []grocery.StoreMatchReport) {
	fmt.Fprintf(w, "%s (%d items)\n", list.Name, len(list.Items))

	if len(reports) == 0 {
		fmt.Fprintln(w, "No store carries any of the items.")

		return
	}

	for _, r := range reports {
		fmt.Fprintf(w, "\n🏪 %s  %d/%d\n", r.StoreName, len(r.FoundItems), len(list.Items))
		fmt.Fprintf(w, "   ✅ %s\n", joinItems(r.FoundItems))
		fmt.Fprintf(w, "   ❌ %s\n", joinItems(r.NotFoundItems))
	}
}

func init() {
	rootCmd.AddCommand(listsCmd)
	listsCmd.AddCommand(listsNormalizeCmd, listsResolveCmd)

	listsResolveCmd.Flags().StringVar(&listsResolveName, "name", "Grocery List 1", "Name of the list")
	listsResolveCmd.Flags().String("matcher", "inventory", "Item matcher: inventory, elasticsearch or remote")
	listsResolveCmd.Flags().String("matcher-url", "http://localhost:5000", "Item matching service, for the remote matcher")
	listsResolveCmd.Flags().String("es-url", "http://localhost:9200", "Elasticsearch address, for the elasticsearch matcher")
	listsResolveCmd.Flags().String("es-index", "grosnap-products", "Elasticsearch products index")
}
