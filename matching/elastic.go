// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package matching

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/grosnap/grosnap/grocery"
	"github.com/grosnap/grosnap/stores"
)

// DefaultIndex is the Elasticsearch index holding the products.
const DefaultIndex = "grosnap-products"

// maxStores bounds the store aggregations.
const maxStores = 1000

const productsMapping = `{
  "mappings": {
    "properties": {
      "store_id":   {"type": "keyword"},
      "store_name": {"type": "keyword"},
      "name":       {"type": "text"},
      "category":   {"type": "keyword"},
      "stock":      {"type": "integer"}
    }
  }
}`

type productDoc struct {
	StoreID   string `json:"store_id"`
	StoreName string `json:"store_name"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Stock     int    `json:"stock"`
}

// NewElasticClient creates a client for addresses.
func NewElasticClient(addresses ...string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("creating elasticsearch client: %w", err)
	}

	return client, nil
}

// ElasticIndexer pushes registry products to Elasticsearch.
type ElasticIndexer struct {
	client *elasticsearch.Client
	index  string
}

// NewElasticIndexer creates an indexer for index (DefaultIndex when empty).
func NewElasticIndexer(client *elasticsearch.Client, index string) *ElasticIndexer {
	if index == "" {
		index = DefaultIndex
	}

	return &ElasticIndexer{client: client, index: index}
}

// EnsureIndex creates the products index unless it exists.
func (x *ElasticIndexer) EnsureIndex(ctx context.Context) error {
	res, err := x.client.Indices.Exists([]string{x.index}, x.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("checking index existence: %w", err)
	}
	res.Body.Close()

	if res.StatusCode == 200 {
		return nil
	}

	res, err = x.client.Indices.Create(
		x.index,
		x.client.Indices.Create.WithBody(strings.NewReader(productsMapping)),
		x.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("creating index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return responseError("creating index", res)
	}

	return nil
}

// IndexProducts bulk-indexes products, keyed by product ID. storeNames maps
// store IDs to display names.
func (x *ElasticIndexer) IndexProducts(ctx context.Context, products []*stores.Product, storeNames map[string]string) error {
	if len(products) == 0 {
		return nil
	}

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)

	for _, p := range products {
		meta := map[string]any{"index": map[string]any{"_index": x.index, "_id": p.ID}}
		if err := enc.Encode(meta); err != nil {
			return err
		}

		doc := productDoc{StoreID: p.StoreID, StoreName: storeNames[p.StoreID], Name: p.Name, Category: p.Category, Stock: p.Stock}
		if err := enc.Encode(doc); err != nil {
			return err
		}
	}

	req := esapi.BulkRequest{Body: &buf, Refresh: "true"}

	res, err := req.Do(ctx, x.client)
	if err != nil {
		return fmt.Errorf("bulk indexing: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return responseError("bulk indexing", res)
	}

	var body struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			ID    string          `json:"_id"`
			Error json.RawMessage `json:"error"`
		} `json:"items"`
	}

	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return fmt.Errorf("decoding bulk response: %w", err)
	}

	if !body.Errors {
		return nil
	}

	var errs []error

	for _, item := range body.Items {
		for _, r := range item {
			if len(r.Error) > 0 {
				errs = append(errs, fmt.Errorf("indexing product %s: %s", r.ID, r.Error))
			}
		}
	}

	return errors.Join(errs...)
}

// ElasticMatcher finds, for every item, the stores with a product whose name
// matches it, tolerating typos.
type ElasticMatcher struct {
	client *elasticsearch.Client
	index  string
}

// NewElasticMatcher creates a matcher over index (DefaultIndex when empty).
func NewElasticMatcher(client *elasticsearch.Client, index string) *ElasticMatcher {
	if index == "" {
		index = DefaultIndex
	}

	return &ElasticMatcher{client: client, index: index}
}

func storesAgg() map[string]any {
	return map[string]any{
		"stores": map[string]any{
			"terms": map[string]any{"field": "store_id", "size": maxStores},
			"aggs": map[string]any{
				"names": map[string]any{"terms": map[string]any{"field": "store_name", "size": 1}},
			},
		},
	}
}

func inStock() map[string]any {
	return map[string]any{"range": map[string]any{"stock": map[string]any{"gt": 0}}}
}

func itemQuery(item string) map[string]any {
	return map[string]any{
		"size": 0,
		"query": map[string]any{
			"bool": map[string]any{
				"must": []any{
					map[string]any{"match": map[string]any{
						"name": map[string]any{"query": stripListMarker(item), "fuzziness": "AUTO", "operator": "and"},
					}},
				},
				"filter": []any{inStock()},
			},
		},
		"aggs": storesAgg(),
	}
}

type bucket struct {
	Key   string `json:"key"`
	Names struct {
		Buckets []struct {
			Key string `json:"key"`
		} `json:"buckets"`
	} `json:"names"`
}

type msearchResponse struct {
	Responses []struct {
		Status       int             `json:"status"`
		Error        json.RawMessage `json:"error"`
		Aggregations *struct {
			Stores struct {
				Buckets []bucket `json:"buckets"`
			} `json:"stores"`
		} `json:"aggregations"`
	} `json:"responses"`
}

// Match implements grocery.ItemMatcher with a single multi search: the first
// search lists every store with stock, the rest one per item.
func (m *ElasticMatcher) Match(ctx context.Context, items []string) ([]grocery.StoreMatch, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	header := map[string]any{"index": m.index}

	searches := []any{map[string]any{
		"size":  0,
		"query": map[string]any{"bool": map[string]any{"filter": []any{inStock()}}},
		"aggs":  storesAgg(),
	}}
	for _, item := range items {
		searches = append(searches, itemQuery(item))
	}

	for _, s := range searches {
		if err := enc.Encode(header); err != nil {
			return nil, err
		}

		if err := enc.Encode(s); err != nil {
			return nil, err
		}
	}

	req := esapi.MsearchRequest{Body: &buf}

	res, err := req.Do(ctx, m.client)
	if err != nil {
		return nil, fmt.Errorf("searching products: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, responseError("searching products", res)
	}

	var body msearchResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	if len(body.Responses) != len(searches) {
		return nil, fmt.Errorf("malformed search response: %d results for %d searches", len(body.Responses), len(searches))
	}

	for i, r := range body.Responses {
		if len(r.Error) > 0 {
			return nil, fmt.Errorf("search #%d failed: %s", i, r.Error)
		}

		if r.Aggregations == nil {
			return nil, fmt.Errorf("malformed search response: search #%d has no aggregations", i)
		}
	}

	matches := make([]grocery.StoreMatch, 0, len(body.Responses[0].Aggregations.Stores.Buckets))
	index := make(map[string]int)

	for _, b := range body.Responses[0].Aggregations.Stores.Buckets {
		name := stores.UnnamedStore
		if len(b.Names.Buckets) > 0 {
			name = b.Names.Buckets[0].Key
		}

		index[b.Key] = len(matches)
		matches = append(matches, grocery.StoreMatch{StoreID: b.Key, StoreName: name})
	}

	for i, item := range items {
		carried := make(map[string]bool)
		for _, b := range body.Responses[i+1].Aggregations.Stores.Buckets {
			carried[b.Key] = true
		}

		for id, j := range index {
			if carried[id] {
				matches[j].Found = append(matches[j].Found, item)
			} else {
				matches[j].NotFound = append(matches[j].NotFound, item)
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return len(matches[i].Found) > len(matches[j].Found)
	})

	return matches, nil
}

func responseError(action string, res *esapi.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))

	return fmt.Errorf("%s: status %d: %s", action, res.StatusCode, strings.TrimSpace(string(body)))
}
