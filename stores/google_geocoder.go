// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/grosnap/grosnap/spatial"
)

// GoogleGeocodeURL is the Google Maps Geocoding API endpoint.
const GoogleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleMapsGeocoder uses Google Maps Geocoding API.
type GoogleMapsGeocoder struct {
	apiKey     string
	endpoint   string
	region     string
	httpClient *http.Client
}

// NewGoogleMapsGeocoder creates a new Google Maps geocoder. region is a ccTLD
// used to bias results, it may be empty.
func NewGoogleMapsGeocoder(apiKey, region string, httpClient *http.Client) *GoogleMapsGeocoder {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &GoogleMapsGeocoder{
		apiKey:     apiKey,
		endpoint:   GoogleGeocodeURL,
		region:     region,
		httpClient: httpClient,
	}
}

type googleMapsResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
			LocationType string `json:"location_type"` // ROOFTOP, RANGE_INTERPOLATED, GEOMETRIC_CENTER, APPROXIMATE
		} `json:"geometry"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	Status       string `json:"status"` // OK, ZERO_RESULTS, etc.
	ErrorMessage string `json:"error_message"`
}

var googleStatusTypes = map[string]ErrorType{
	"ZERO_RESULTS":     ErrorTypeNotFound,
	"OVER_QUERY_LIMIT": ErrorTypeQuotaExceeded,
	"OVER_DAILY_LIMIT": ErrorTypeQuotaExceeded,
	"REQUEST_DENIED":   ErrorTypeQuotaExceeded,
	"INVALID_REQUEST":  ErrorTypeInvalidRequest,
}

func (g *GoogleMapsGeocoder) Geocode(ctx context.Context, address string, city string) (*GeocodingResult, error) {
	if g.apiKey == "" {
		return nil, &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "google maps api key not configured"}
	}

	searchQuery := strings.TrimSpace(address)
	if city != "" {
		searchQuery = fmt.Sprintf("%s, %s", searchQuery, city)
	}

	params := url.Values{}
	params.Set("address", searchQuery)
	params.Set("key", g.apiKey)

	if g.region != "" {
		params.Set("region", g.region)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "building geocoding request", Err: err}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		qe := classifyTransportError(err)

		return nil, &GeocodingError{Type: qe.Type, Message: "geocoding request failed", Err: err}
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		qe := ClassifyHTTPError(resp.StatusCode, "")

		return nil, &GeocodingError{Type: qe.Type, Message: fmt.Sprintf("google maps returned status %d", resp.StatusCode)}
	}

	var gmResp googleMapsResponse
	if err := json.NewDecoder(resp.Body).Decode(&gmResp); err != nil {
		return nil, &GeocodingError{Type: ErrorTypeMalformedResponse, Message: "decoding response", Err: err}
	}

	if gmResp.Status != "OK" {
		msg := "google maps status: " + gmResp.Status
		if gmResp.ErrorMessage != "" {
			msg += " (" + gmResp.ErrorMessage + ")"
		}

		return nil, &GeocodingError{Type: googleStatusTypes[gmResp.Status], Message: msg}
	}

	if len(gmResp.Results) == 0 {
		return nil, &GeocodingError{Type: ErrorTypeNotFound, Message: "no results found for address: " + searchQuery}
	}

	result := gmResp.Results[0]

	p, err := spatial.NewPoint(result.Geometry.Location.Lat, result.Geometry.Location.Lng)
	if err != nil {
		return nil, &GeocodingError{Type: ErrorTypeMalformedResponse, Message: "google maps returned an invalid location", Err: err}
	}

	confidence := "low"

	switch result.Geometry.LocationType {
	case "ROOFTOP", "RANGE_INTERPOLATED":
		confidence = "high"
	case "GEOMETRIC_CENTER":
		confidence = "medium"
	}

	return &GeocodingResult{
		Point:       p,
		Confidence:  confidence,
		Provider:    "google_maps",
		DisplayName: result.FormattedAddress,
	}, nil
}
