// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package matching

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/grosnap/grosnap/grocery"
	"github.com/grosnap/grosnap/stores"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findItemsServer(t *testing.T, status int, body string) (*httptest.Server, *FindItemsRequest) {
	t.Helper()

	var received FindItemsRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, FindItemsPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv, &received
}

func TestRemoteMatcher(t *testing.T) {
	srv, received := findItemsServer(t, http.StatusOK, `{
		"store_results": [
			{"store": "Fresh Mart", "found_items": ["milk"], "not_found_items": ["bread"]},
			{"store_id": "s2", "store": "Daily Needs", "found_items": [], "not_found_items": ["milk", "bread"]}
		],
		"message": "Items matched"
	}`)

	got, err := NewRemoteMatcher(srv.URL+"/", nil).Match(context.Background(), []string{"milk", "bread"})
	require.NoError(t, err)
	assert.Equal(t, "milk\nbread", received.Text)

	assert.Equal(t, []grocery.StoreMatch{
		{StoreID: "Fresh Mart", StoreName: "Fresh Mart", Found: []string{"milk"}, NotFound: []string{"bread"}},
		{StoreID: "s2", StoreName: "Daily Needs", Found: []string{}, NotFound: []string{"milk", "bread"}},
	}, got)
}

func TestRemoteMatcherEmptyResults(t *testing.T) {
	srv, _ := findItemsServer(t, http.StatusOK, `{"store_results": []}`)

	got, err := NewRemoteMatcher(srv.URL, nil).Match(context.Background(), []string{"milk"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRemoteMatcherFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error": "boom"}`},
		{"not json", http.StatusOK, `<html></html>`},
		{"missing store_results", http.StatusOK, `{"message": "ok"}`},
		{"wrong shape", http.StatusOK, `{"store_results": {"store": "x"}}`},
		{"store without name", http.StatusOK, `{"store_results": [{"found_items": ["milk"]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := findItemsServer(t, tt.status, tt.body)

			_, err := NewRemoteMatcher(srv.URL, nil).Match(context.Background(), []string{"milk"})
			require.Error(t, err)
		})
	}
}

func TestRemoteMatcherRateLimited(t *testing.T) {
	srv, _ := findItemsServer(t, http.StatusTooManyRequests, "slow down")

	list, err := grocery.BuildList("l", []grocery.Item{"milk"})
	require.NoError(t, err)

	_, err = grocery.ResolveAgainstStores(context.Background(), list, NewRemoteMatcher(srv.URL, nil))
	require.Error(t, err)
	assert.True(t, grocery.IsMatchError(err))
	assert.False(t, stores.IsQueryError(err), "matcher failures are not store query failures")
	assert.Contains(t, err.Error(), "item matcher returned status 429: slow down")
}
