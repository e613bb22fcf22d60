// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package matching

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/grosnap/grosnap/grocery"
)

// FindItemsPath is the route of the item matching service.
const FindItemsPath = "/find-items"

// FindItemsRequest is the body accepted by the item matching service. Items
// are sent one per line.
type FindItemsRequest struct {
	Text string `json:"text"`
}

// FindItemsResponse is the reply of the item matching service.
type FindItemsResponse struct {
	StoreResults []grocery.StoreMatchReport `json:"store_results"`
	Message      string                     `json:"message,omitempty"`
}

// RemoteMatcher delegates matching to an item matching service.
type RemoteMatcher struct {
	baseURL    string
	httpClient *http.Client
}

// NewRemoteMatcher creates a matcher for the service at baseURL.
func NewRemoteMatcher(baseURL string, httpClient *http.Client) *RemoteMatcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &RemoteMatcher{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// Match implements grocery.ItemMatcher.
func (m *RemoteMatcher) Match(ctx context.Context, items []string) ([]grocery.StoreMatch, error) {
	payload, err := json.Marshal(FindItemsRequest{Text: strings.Join(items, "\n")})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+FindItemsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

		return nil, fmt.Errorf("item matcher returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	results, ok := raw["store_results"]
	if !ok {
		return nil, fmt.Errorf("malformed response: missing store_results")
	}

	var reports []grocery.StoreMatchReport
	if err := json.Unmarshal(results, &reports); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}

	matches := make([]grocery.StoreMatch, 0, len(reports))

	for i, r := range reports {
		if r.StoreName == "" && r.StoreID == "" {
			return nil, fmt.Errorf("malformed response: store result #%d has no store", i)
		}

		id := r.StoreID
		if id == "" {
			id = r.StoreName
		}

		matches = append(matches, grocery.StoreMatch{
			StoreID:   id,
			StoreName: r.StoreName,
			Found:     itemNames(r.FoundItems),
			NotFound:  itemNames(r.NotFoundItems),
		})
	}

	return matches, nil
}

func itemNames(items []grocery.Item) []string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = string(item)
	}

	return names
}
