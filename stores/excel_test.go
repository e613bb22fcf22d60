// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package stores

import (
	"bytes"
	"errors"
	"testing"

	"github.com/grosnap/grosnap/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWorkbookRoundTrip(t *testing.T) {
	stores := []*Store{
		{ID: "s1", Name: "Fresh Mart", Email: "asha@example.com", City: "Bengaluru", Category: "supermarket",
			Point: &spatial.Point{Lat: 12.972, Lng: 77.595}},
		{ID: "s2", Name: "Corner Shop", Category: "store"},
	}
	products := []*Product{
		{ID: "p1", StoreID: "s1", Name: "Milk", Category: "dairy", Price: 1.25, Stock: 10},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, stores, products))

	wb, err := ReadWorkbook(&buf)
	require.NoError(t, err)
	assert.Empty(t, wb.Skipped)

	require.Len(t, wb.Stores, 2)
	assert.Equal(t, "s1", wb.Stores[0].ID)
	assert.Equal(t, "Fresh Mart", wb.Stores[0].Name)
	assert.Equal(t, "asha@example.com", wb.Stores[0].Email)
	assert.Equal(t, &spatial.Point{Lat: 12.972, Lng: 77.595}, wb.Stores[0].Point)
	assert.Nil(t, wb.Stores[1].Point)

	require.Len(t, wb.Products, 1)
	assert.Equal(t, *products[0], *wb.Products[0])
}

func TestReadWorkbookHandWritten(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	_, err := f.NewSheet(StoresSheet)
	require.NoError(t, err)

	// columns out of order, decimal commas, a broken row and a blank row
	rows := [][]any{
		{"Lng", "Lat", "Name", "City"},
		{"77,5950", "12,9720", "Fresh Mart", "Bengaluru"},
		{"77.6", "", "Half Located", ""},
		{},
		{"", "", "No Location", ""},
		{"500", "12", "Bad Point", ""},
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(StoresSheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	wb, err := ReadWorkbook(&buf)
	require.NoError(t, err)

	require.Len(t, wb.Stores, 2)
	assert.Equal(t, "Fresh Mart", wb.Stores[0].Name)
	assert.Equal(t, 12.972, wb.Stores[0].Point.Lat)
	assert.Equal(t, "No Location", wb.Stores[1].Name)
	assert.Empty(t, wb.Products)

	require.Len(t, wb.Skipped, 2)

	var rowErr *RowError
	require.True(t, errors.As(wb.Skipped[0], &rowErr))
	assert.Equal(t, 3, rowErr.Row)
	assert.ErrorIs(t, wb.Skipped[1], spatial.ErrInvalidCoordinate)
}

func TestReadWorkbookWithoutStoresSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, err := ReadWorkbook(&buf)
	assert.Error(t, err)
}
