// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package stores

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geocoderFor(t *testing.T, status int, body string) (*GoogleMapsGeocoder, *string) {
	t.Helper()

	var query string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("address")

		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "in", r.URL.Query().Get("region"))

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	g := NewGoogleMapsGeocoder("test-key", "in", srv.Client())
	g.endpoint = srv.URL

	return g, &query
}

func TestGoogleGeocode(t *testing.T) {
	g, query := geocoderFor(t, http.StatusOK, `{
		"status": "OK",
		"results": [{
			"formatted_address": "12, MG Road, Bengaluru, Karnataka, India",
			"geometry": {"location": {"lat": 12.9750, "lng": 77.6060}, "location_type": "ROOFTOP"}
		}]
	}`)

	res, err := g.Geocode(context.Background(), "12 MG Road", "Bengaluru")
	require.NoError(t, err)
	assert.Equal(t, "12 MG Road, Bengaluru", *query)
	assert.Equal(t, 12.9750, res.Point.Lat)
	assert.Equal(t, 77.6060, res.Point.Lng)
	assert.Equal(t, "high", res.Confidence)
	assert.Equal(t, "google_maps", res.Provider)
}

func TestGoogleGeocodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   ErrorType
	}{
		{"zero results", http.StatusOK, `{"status": "ZERO_RESULTS", "results": []}`, ErrorTypeNotFound},
		{"over limit", http.StatusOK, `{"status": "OVER_QUERY_LIMIT"}`, ErrorTypeQuotaExceeded},
		{"http 429", http.StatusTooManyRequests, ``, ErrorTypeRateLimit},
		{"garbage", http.StatusOK, `not json`, ErrorTypeMalformedResponse},
		{"bad location", http.StatusOK, `{"status": "OK", "results": [{"geometry": {"location": {"lat": 120, "lng": 0}}}]}`, ErrorTypeMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := geocoderFor(t, tt.status, tt.body)

			_, err := g.Geocode(context.Background(), "somewhere", "")

			var ge *GeocodingError
			require.True(t, errors.As(err, &ge), "got %v", err)
			assert.Equal(t, tt.want, ge.Type)
		})
	}
}

func TestGoogleGeocodeWithoutKey(t *testing.T) {
	_, err := NewGoogleMapsGeocoder("", "", nil).Geocode(context.Background(), "x", "")
	assert.ErrorContains(t, err, "api key not configured")
}

func TestResolveMapsAPIKeyPrefersExplicitKey(t *testing.T) {
	assert.Equal(t, "explicit", ResolveMapsAPIKey(context.Background(), "explicit", ""))
}
