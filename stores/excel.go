// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package stores

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grosnap/grosnap/spatial"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the registry workbook.
const (
	StoresSheet   = "Stores"
	ProductsSheet = "Products"
)

var (
	storeHeaders   = []string{"ID", "Name", "Owner", "Email", "Phone", "Address", "City", "Category", "Lat", "Lng"}
	productHeaders = []string{"ID", "Store ID", "Name", "Category", "Price", "Stock"}
)

// RowError reports a spreadsheet row that could not be imported.
type RowError struct {
	Sheet string
	Row   int
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s row %d: %v", e.Sheet, e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Workbook is the content of a registry spreadsheet.
type Workbook struct {
	Stores   []*Store
	Products []*Product
	// Skipped holds one *RowError per rejected row.
	Skipped []error
}

// WriteWorkbook writes stores and products as an xlsx document.
func WriteWorkbook(w io.Writer, stores []*Store, products []*Product) error {
	f := excelize.NewFile()
	defer f.Close()

	storeRows := make([][]any, 0, len(stores))

	for _, s := range stores {
		var lat, lng any
		if s.Point != nil {
			lat, lng = s.Point.Lat, s.Point.Lng
		}

		storeRows = append(storeRows, []any{s.ID, s.Name, s.Owner, s.Email, s.Phone, s.Address, s.City, s.Category, lat, lng})
	}

	productRows := make([][]any, 0, len(products))
	for _, p := range products {
		productRows = append(productRows, []any{p.ID, p.StoreID, p.Name, p.Category, p.Price, p.Stock})
	}

	index, err := writeSheet(f, StoresSheet, storeHeaders, storeRows)
	if err != nil {
		return err
	}

	if _, err := writeSheet(f, ProductsSheet, productHeaders, productRows); err != nil {
		return err
	}

	f.SetActiveSheet(index)

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	return f.Write(w)
}

func writeSheet(f *excelize.File, name string, headers []string, rows [][]any) (int, error) {
	index, err := f.NewSheet(name)
	if err != nil {
		return 0, err
	}

	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return 0, err
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}

	if err := sw.SetRow("A1", header); err != nil {
		return 0, err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}

		if err := sw.SetRow(cell, row); err != nil {
			return 0, fmt.Errorf("writing %s row %d: %w", name, i+2, err)
		}
	}

	return index, sw.Flush()
}

// ReadWorkbook parses a registry spreadsheet. Columns are located by header
// name so their order does not matter; a missing Products sheet is fine.
// Invalid rows are reported in Skipped and left out.
func ReadWorkbook(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	wb := &Workbook{}

	rows, err := f.GetRows(StoresSheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s sheet: %w", StoresSheet, err)
	}

	cols := columnIndex(rows)

	for i, row := range rows {
		if i == 0 || isBlank(row) {
			continue
		}

		s, err := storeFromRow(row, cols)
		if err != nil {
			wb.Skipped = append(wb.Skipped, &RowError{Sheet: StoresSheet, Row: i + 1, Err: err})

			continue
		}

		wb.Stores = append(wb.Stores, s)
	}

	if !hasSheet(f, ProductsSheet) {
		return wb, nil
	}

	rows, err = f.GetRows(ProductsSheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s sheet: %w", ProductsSheet, err)
	}

	cols = columnIndex(rows)

	for i, row := range rows {
		if i == 0 || isBlank(row) {
			continue
		}

		p, err := productFromRow(row, cols)
		if err != nil {
			wb.Skipped = append(wb.Skipped, &RowError{Sheet: ProductsSheet, Row: i + 1, Err: err})

			continue
		}

		wb.Products = append(wb.Products, p)
	}

	return wb, nil
}

func hasSheet(f *excelize.File, name string) bool {
	for _, s := range f.GetSheetList() {
		if s == name {
			return true
		}
	}

	return false
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}

type columns map[string]int

func columnIndex(rows [][]string) columns {
	cols := columns{}
	if len(rows) == 0 {
		return cols
	}

	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}

	return cols
}

func (c columns) get(row []string, name string) string {
	i, ok := c[strings.ToLower(name)]
	if !ok || i >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[i])
}

// parseNumber accepts both decimal separators.
func parseNumber(val string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(val), ",", "."), 64)
}

func storeFromRow(row []string, cols columns) (*Store, error) {
	s := &Store{
		ID:       cols.get(row, "ID"),
		Name:     cols.get(row, "Name"),
		Owner:    cols.get(row, "Owner"),
		Email:    cols.get(row, "Email"),
		Phone:    cols.get(row, "Phone"),
		Address:  cols.get(row, "Address"),
		City:     cols.get(row, "City"),
		Category: cols.get(row, "Category"),
	}

	latStr, lngStr := cols.get(row, "Lat"), cols.get(row, "Lng")

	switch {
	case latStr == "" && lngStr == "":
	case latStr == "" || lngStr == "":
		return nil, errors.New("both Lat and Lng are required when one is present")
	default:
		lat, err := parseNumber(latStr)
		if err != nil {
			return nil, fmt.Errorf("parsing Lat %q: %w", latStr, err)
		}

		lng, err := parseNumber(lngStr)
		if err != nil {
			return nil, fmt.Errorf("parsing Lng %q: %w", lngStr, err)
		}

		p, err := spatial.NewPoint(lat, lng)
		if err != nil {
			return nil, err
		}

		s.Point = &p
	}

	s.sanitize()

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

func productFromRow(row []string, cols columns) (*Product, error) {
	p := &Product{
		ID:       cols.get(row, "ID"),
		StoreID:  cols.get(row, "Store ID"),
		Name:     cols.get(row, "Name"),
		Category: cols.get(row, "Category"),
	}

	if v := cols.get(row, "Price"); v != "" {
		price, err := parseNumber(v)
		if err != nil {
			return nil, fmt.Errorf("parsing Price %q: %w", v, err)
		}

		p.Price = price
	}

	if v := cols.get(row, "Stock"); v != "" {
		stock, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parsing Stock %q: %w", v, err)
		}

		p.Stock = stock
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}
