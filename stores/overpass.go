// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package stores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/grosnap/grosnap/ranking"
	"github.com/grosnap/grosnap/spatial"
	"github.com/grosnap/grosnap/utils/htmlutils"
)

// DefaultOverpassURL is the public Overpass API interpreter.
const DefaultOverpassURL = "https://overpass-api.de/api/interpreter"

// DefaultRadiusMeters is the search radius around the customer.
const DefaultRadiusMeters = 8000

// DefaultShopFilter selects the OSM shop types treated as grocery stores.
const DefaultShopFilter = "convenience|grocery|supermarket"

// GeoQuery finds stores around a point.
type GeoQuery interface {
	FindStores(ctx context.Context, center spatial.Point, radiusMeters int) ([]ranking.Candidate, error)
}

// OverpassClient queries OpenStreetMap shops through the Overpass API.
type OverpassClient struct {
	endpoint   string
	shopFilter string
	httpClient *http.Client
}

// NewOverpassClient creates a client for endpoint (DefaultOverpassURL when empty).
func NewOverpassClient(endpoint string, httpClient *http.Client) *OverpassClient {
	if endpoint == "" {
		endpoint = DefaultOverpassURL
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &OverpassClient{
		endpoint:   endpoint,
		shopFilter: DefaultShopFilter,
		httpClient: httpClient,
	}
}

// BuildQuery returns the Overpass QL for shops within radiusMeters of center.
// Ways are reduced to their center so every element carries a coordinate.
func BuildQuery(center spatial.Point, radiusMeters int, shopFilter string) string {
	around := fmt.Sprintf("(around:%d,%f,%f)", radiusMeters, center.Lat, center.Lng)
	filter := fmt.Sprintf(`["shop"~"%s"]`, shopFilter)

	return fmt.Sprintf("[out:json][timeout:25];\n(\n  node%s%s;\n  way%s%s;\n);\nout center;",
		filter, around, filter, around)
}

type overpassCoord struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type overpassElement struct {
	Type   string            `json:"type"`
	ID     *int64            `json:"id"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *overpassCoord    `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type overpassResponse struct {
	Elements *[]overpassElement `json:"elements"`
	Remark   string             `json:"remark"`
}

// FindStores implements GeoQuery. Zero matching shops is an empty result,
// every other failure is a *QueryError.
func (c *OverpassClient) FindStores(ctx context.Context, center spatial.Point, radiusMeters int) ([]ranking.Candidate, error) {
	if err := center.Validate(); err != nil {
		return nil, err
	}

	if radiusMeters <= 0 {
		radiusMeters = DefaultRadiusMeters
	}

	form := url.Values{}
	form.Set("data", BuildQuery(center, radiusMeters, c.shopFilter))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &QueryError{Type: ErrorTypeInvalidRequest, Message: "building overpass request", Err: err}
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPError(resp.StatusCode, htmlutils.ResponseError(resp))
	}

	return decodeOverpass(resp.Body)
}

func decodeOverpass(r io.Reader) ([]ranking.Candidate, error) {
	var body overpassResponse
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return nil, &QueryError{Type: ErrorTypeMalformedResponse, Message: "decoding overpass response", Err: err}
	}

	if body.Elements == nil {
		return nil, &QueryError{Type: ErrorTypeMalformedResponse, Message: "overpass response has no elements"}
	}

	// a remark with a runtime error comes with partial or no data
	if strings.Contains(body.Remark, "error") {
		return nil, &QueryError{Type: ErrorTypeTimeout, Message: "overpass query failed", Err: errors.New(body.Remark)}
	}

	candidates := make([]ranking.Candidate, 0, len(*body.Elements))

	for i, el := range *body.Elements {
		if el.Type == "" || el.ID == nil {
			return nil, &QueryError{
				Type:    ErrorTypeMalformedResponse,
				Message: fmt.Sprintf("overpass element #%d has no type or id", i),
			}
		}

		candidates = append(candidates, el.candidate())
	}

	return candidates, nil
}

func (el *overpassElement) candidate() ranking.Candidate {
	c := ranking.Candidate{
		ID:       fmt.Sprintf("%s/%d", el.Type, *el.ID),
		Name:     el.Tags["name"],
		Category: el.Tags["shop"],
		Address:  address(el.Tags),
	}

	if c.Name == "" {
		c.Name = UnnamedStore
	}

	if c.Category == "" {
		c.Category = DefaultCategory
	}

	switch {
	case el.Lat != nil && el.Lon != nil:
		c.Point = &spatial.Point{Lat: *el.Lat, Lng: *el.Lon}
	case el.Center != nil && el.Center.Lat != nil && el.Center.Lon != nil:
		c.Point = &spatial.Point{Lat: *el.Center.Lat, Lng: *el.Center.Lon}
	}

	return c
}

func address(tags map[string]string) string {
	if full := tags["addr:full"]; full != "" {
		return full
	}

	street := strings.TrimSpace(tags["addr:housenumber"] + " " + tags["addr:street"])

	parts := make([]string, 0, 2)
	for _, p := range []string{street, tags["addr:city"]} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	return strings.Join(parts, ", ")
}
