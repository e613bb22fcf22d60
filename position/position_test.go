// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package position

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/grosnap/grosnap/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixed(t *testing.T) {
	p, err := Fixed{Lat: 12.9716, Lng: 77.5946}.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, spatial.Point{Lat: 12.9716, Lng: 77.5946}, p)

	_, err = Fixed{Lat: 120}.Locate(context.Background())

	var pe *Error
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, Invalid, pe.Kind)
	assert.ErrorIs(t, err, spatial.ErrInvalidCoordinate)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Fixed{}.Locate(ctx)
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, Timeout, pe.Kind)
}

func TestQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		want     spatial.Point
		wantKind ErrorKind
		wantErr  bool
	}{
		{name: "lat lon", query: "lat=12.97&lon=77.59", want: spatial.Point{Lat: 12.97, Lng: 77.59}},
		{name: "lat lng", query: "lat=-34.9&lng=-56.16", want: spatial.Point{Lat: -34.9, Lng: -56.16}},
		{name: "denied", query: "error=denied", wantErr: true, wantKind: Denied},
		{name: "timeout", query: "error=timeout", wantErr: true, wantKind: Timeout},
		{name: "unsupported", query: "error=unsupported", wantErr: true, wantKind: Unavailable},
		{name: "missing", query: "", wantErr: true, wantKind: Unavailable},
		{name: "not a number", query: "lat=abc&lon=1", wantErr: true, wantKind: Invalid},
		{name: "out of range", query: "lat=91&lon=1", wantErr: true, wantKind: Invalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			p, err := Query(v).Locate(context.Background())
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.want, p)

				return
			}

			var pe *Error
			require.True(t, errors.As(err, &pe), "got %v", err)
			assert.Equal(t, tt.wantKind, pe.Kind)
			assert.True(t, IsPositioningError(err))
		})
	}
}

func TestQueryHas(t *testing.T) {
	assert.False(t, Query(url.Values{"q": {"x"}}).Has())
	assert.True(t, Query(url.Values{"lat": {"1"}}).Has())
	assert.True(t, Query(url.Values{"error": {"denied"}}).Has())
}
