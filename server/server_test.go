// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/gin-gonic/gin"
	"github.com/grosnap/grosnap/grocery"
	"github.com/grosnap/grosnap/matching"
	"github.com/grosnap/grosnap/orders"
	"github.com/grosnap/grosnap/ranking"
	"github.com/grosnap/grosnap/session"
	"github.com/grosnap/grosnap/spatial"
	"github.com/grosnap/grosnap/stores"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type geoQueryFunc func(ctx context.Context, center spatial.Point, radiusMeters int) ([]ranking.Candidate, error)

func (f geoQueryFunc) FindStores(ctx context.Context, center spatial.Point, radiusMeters int) ([]ranking.Candidate, error) {
	return f(ctx, center, radiusMeters)
}

type extractorFunc func(ctx context.Context, filename string, image io.Reader) (string, error)

func (f extractorFunc) Extract(ctx context.Context, filename string, image io.Reader) (string, error) {
	return f(ctx, filename, image)
}

var bangalore = spatial.Point{Lat: 12.9716, Lng: 77.5946}

func pt(lat, lng float64) *spatial.Point {
	return &spatial.Point{Lat: lat, Lng: lng}
}

type testEnv struct {
	repo      stores.Repository
	query     geoQueryFunc
	extractor extractorFunc
	handler   http.Handler
}

func setupServerTest(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := stores.NewRepository(db, stores.DuckDB)
	require.NoError(t, repo.CreateSchema())

	orderRepo := orders.NewRepository(db, stores.DuckDB)
	require.NoError(t, orderRepo.CreateSchema())

	env := &testEnv{repo: repo}
	env.query = func(_ context.Context, _ spatial.Point, _ int) ([]ranking.Candidate, error) {
		return []ranking.Candidate{
			{ID: "node/2", Name: "Far Store", Point: pt(13.0186, 77.5946)},
			{ID: "node/1", Name: "Near Store", Point: pt(12.9720, 77.5950)},
			{ID: "node/3", Name: "Nowhere"},
		}, nil
	}
	env.extractor = func(_ context.Context, _ string, _ io.Reader) (string, error) {
		return "1. milk\n2. bread\n", nil
	}

	svc := stores.NewService(repo,
		geoQueryFunc(func(ctx context.Context, c spatial.Point, r int) ([]ranking.Candidate, error) {
			return env.query(ctx, c, r)
		}), nil, 8000)

	srv := New(Deps{
		Stores:  svc,
		Orders:  orderRepo,
		Matcher: matching.NewInventoryMatcher(repo, 0),
		Extractor: extractorFunc(func(ctx context.Context, name string, r io.Reader) (string, error) {
			return env.extractor(ctx, name, r)
		}),
		Cookies: session.NewCookieStore([]byte("test-secret")),
		Version: "test",
	})
	env.handler = srv.Handler()

	return env
}

// client keeps the session cookie between requests.
type client struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func (e *testEnv) client(t *testing.T) *client {
	return &client{t: t, handler: e.handler, cookies: make(map[string]*http.Cookie)}
}

func (c *client) send(req *http.Request) *httptest.ResponseRecorder {
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	for _, cookie := range w.Result().Cookies() {
		c.cookies[cookie.Name] = cookie
	}

	return w
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)

		r = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req)
}

func (c *client) upload(path, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	c.t.Helper()

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	require.NoError(c.t, err)
	_, err = part.Write(data)
	require.NoError(c.t, err)
	require.NoError(c.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.send(req)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())

	return v
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	return decode[map[string]string](t, w)["error"]
}

// seedStores registers two stores with inventory through the registry. ravi
// owns s1 and meera owns s2.
func seedStores(t *testing.T, repo stores.Repository) {
	t.Helper()

	for _, st := range []*stores.Store{
		{ID: "s1", Name: "Fresh Mart", Point: pt(12.9720, 77.5950), UserID: "ravi"},
		{ID: "s2", Name: "Daily Needs", Point: pt(12.9800, 77.6000), UserID: "meera"},
	} {
		require.NoError(t, repo.SaveStore(st))
	}

	for _, p := range []*stores.Product{
		{StoreID: "s1", Name: "Whole Milk", Stock: 4, Price: 30},
		{StoreID: "s2", Name: "Brown Bread", Stock: 2, Price: 45},
		{StoreID: "s2", Name: "Toned Milk", Stock: 0, Price: 28},
	} {
		require.NoError(t, repo.SaveProduct(p))
	}
}

func TestHealth(t *testing.T) {
	env := setupServerTest(t)

	w := env.client(t).do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "test", decode[map[string]string](t, w)["version"])
}

func TestNearbyStores(t *testing.T) {
	env := setupServerTest(t)
	c := env.client(t)

	w := c.do(http.MethodGet, "/api/stores/nearby?lat=12.9716&lon=77.5946", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Origin   spatial.Point         `json:"origin"`
		RadiusKm float64               `json:"radius_km"`
		Stores   []ranking.RankedStore `json:"stores"`
		Skipped  int                   `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))

	assert.Equal(t, bangalore, res.Origin)
	assert.Equal(t, 8.0, res.RadiusKm)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Stores, 2)
	assert.Equal(t, "Near Store", res.Stores[0].Name)
	assert.Equal(t, 1, res.Stores[0].WalkMinutes)
	assert.Equal(t, "Far Store", res.Stores[1].Name)
	assert.InDelta(t, 5.2, res.Stores[1].DistanceKm, 0.05)
}

func TestNearbyStoresErrors(t *testing.T) {
	env := setupServerTest(t)
	c := env.client(t)

	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"missing position", "", http.StatusBadRequest},
		{"permission denied", "?error=denied", http.StatusBadRequest},
		{"out of range", "?lat=91&lon=0", http.StatusBadRequest},
		{"not a number", "?lat=north&lon=0", http.StatusBadRequest},
		{"unknown source", "?lat=1&lon=1&source=yellow-pages", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := c.do(http.MethodGet, "/api/stores/nearby"+tt.query, nil)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.NotEmpty(t, errorMessage(t, w))
		})
	}

	env.query = func(_ context.Context, _ spatial.Point, _ int) ([]ranking.Candidate, error) {
		return nil, &stores.QueryError{Type: stores.ErrorTypeTimeout, Message: "store query timed out"}
	}

	w := c.do(http.MethodGet, "/api/stores/nearby?lat=12.9716&lon=77.5946", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, errorMessage(t, w), "timed out")
}

func TestRegistryStores(t *testing.T) {
	env := setupServerTest(t)
	seedStores(t, env.repo)
	require.NoError(t, env.repo.SaveStore(&stores.Store{ID: "s3", Name: "No Location"}))

	c := env.client(t)

	w := c.do(http.MethodGet, "/api/stores", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string][]stores.Store](t, w)["stores"], 3)

	w = c.do(http.MethodGet, "/api/stores?lat=12.9716&lon=77.5946", nil)
	require.Equal(t, http.StatusOK, w.Code)

	ranked := decode[struct {
		Stores  []ranking.RankedStore `json:"stores"`
		Skipped int                   `json:"skipped"`
	}](t, w)
	require.Len(t, ranked.Stores, 2)
	assert.Equal(t, "s1", ranked.Stores[0].ID)
	assert.Equal(t, 1, ranked.Skipped)

	w = c.do(http.MethodGet, "/api/stores/nearby?lat=12.9716&lon=77.5946&source=registry", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[struct {
		Stores []ranking.RankedStore `json:"stores"`
	}](t, w).Stores, 2)

	w = c.do(http.MethodGet, "/api/stores?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = c.do(http.MethodGet, "/api/stores/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShopkeeperRoutes(t *testing.T) {
	env := setupServerTest(t)
	c := env.client(t)

	store := map[string]any{
		"shopName":    "Corner Shop",
		"ownerName":   "Ravi",
		"ownerEmail":  "ravi@example.com",
		"shopAddress": "12 MG Road",
		"point":       map[string]float64{"lat": 12.9721, "lng": 77.5951},
	}

	w := c.do(http.MethodPost, "/api/stores", store)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = c.do(http.MethodPost, "/api/session/login", map[string]string{"role": "shopkeeper", "user": "ravi"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = c.do(http.MethodPost, "/api/stores", store)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode[stores.Store](t, w)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "ravi", created.UserID)

	w = c.do(http.MethodPost, "/api/stores", map[string]any{"shopName": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	base := "/api/stores/" + created.ID + "/products"

	w = c.do(http.MethodPost, base, map[string]any{"name": "Basmati Rice", "price": 120.5, "stock": 10})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	product := decode[stores.Product](t, w)

	w = c.do(http.MethodPut, base+"/"+product.ID, map[string]any{"name": "Basmati Rice 5kg", "price": 540, "stock": 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = c.do(http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)

	products := decode[map[string][]stores.Product](t, w)["products"]
	require.Len(t, products, 1)
	assert.Equal(t, "Basmati Rice 5kg", products[0].Name)

	w = c.do(http.MethodPut, base+"/missing", map[string]any{"name": "x", "stock": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = c.do(http.MethodDelete, base+"/"+product.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = c.do(http.MethodDelete, base+"/"+product.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = c.do(http.MethodPost, "/api/stores/missing/products", map[string]any{"name": "x", "stock": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShopkeeperCannotManageOtherStores(t *testing.T) {
	env := setupServerTest(t)
	seedStores(t, env.repo)
	require.NoError(t, env.repo.SaveStore(&stores.Store{ID: "cli", Name: "Imported Store"}))

	products, err := env.repo.ListProducts("s1")
	require.NoError(t, err)
	require.NotEmpty(t, products)

	meera := env.client(t)
	require.Equal(t, http.StatusOK, meera.do(http.MethodPost, "/api/session/login",
		map[string]string{"role": "shopkeeper", "user": "meera"}).Code)

	base := "/api/stores/s1/products"

	w := meera.do(http.MethodPost, base, map[string]any{"name": "Paneer", "price": 90, "stock": 5})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = meera.do(http.MethodPut, base+"/"+products[0].ID, map[string]any{"name": "Whole Milk", "price": 1, "stock": 0})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = meera.do(http.MethodDelete, base+"/"+products[0].ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = meera.do(http.MethodGet, "/api/stores/s1/orders", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// stores without an owner are managed from the command line only
	w = meera.do(http.MethodPost, "/api/stores/cli/products", map[string]any{"name": "Paneer", "stock": 5})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// her own store is fine
	w = meera.do(http.MethodPost, "/api/stores/s2/products", map[string]any{"name": "Paneer", "price": 90, "stock": 5})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	after, err := env.repo.ListProducts("s1")
	require.NoError(t, err)
	assert.Equal(t, products, after)

	w = meera.do(http.MethodPost, "/api/session/login", map[string]string{"role": "shopkeeper", "user": " "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = meera.do(http.MethodPost, "/api/stores/missing/products", map[string]any{"name": "x", "stock": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLists(t *testing.T) {
	env := setupServerTest(t)
	seedStores(t, env.repo)

	c := env.client(t)

	w := c.do(http.MethodPost, "/api/lists", map[string]string{"text": "\n  \n"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = c.do(http.MethodPost, "/api/lists", map[string]string{"text": "milk\r\n\r\n bread \n"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	list := decode[grocery.List](t, w)
	assert.Equal(t, "Grocery List 1", list.Name)
	assert.Equal(t, []grocery.Item{"milk", "bread"}, list.Items)

	w = c.do(http.MethodPost, "/api/lists/"+list.ID+"/resolve", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[resolvedList](t, w)
	require.Len(t, res.Reports, 2)

	byStore := make(map[string]grocery.StoreMatchReport)
	for _, r := range res.Reports {
		byStore[r.StoreID] = r
	}

	assert.Equal(t, []grocery.Item{"milk"}, byStore["s1"].FoundItems)
	assert.Equal(t, []grocery.Item{"bread"}, byStore["s1"].NotFoundItems)
	assert.Equal(t, []grocery.Item{"bread"}, byStore["s2"].FoundItems, "out of stock milk is not found")
	assert.Equal(t, []grocery.Item{"milk"}, byStore["s2"].NotFoundItems)

	other := env.client(t)
	w = other.do(http.MethodGet, "/api/lists/"+list.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "lists belong to their session")

	w = c.do(http.MethodGet, "/api/lists", nil)
	assert.Len(t, decode[map[string][]grocery.List](t, w)["lists"], 1)

	w = c.do(http.MethodDelete, "/api/lists/"+list.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = c.do(http.MethodPost, "/api/lists/"+list.ID+"/resolve", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFindItems(t *testing.T) {
	env := setupServerTest(t)
	seedStores(t, env.repo)

	c := env.client(t)

	w := c.do(http.MethodPost, "/find-items", map[string]string{"text": "milk\nbread"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[matching.FindItemsResponse](t, w)
	assert.Len(t, res.StoreResults, 2)
	assert.NotEmpty(t, res.Message)

	w = c.do(http.MethodPost, "/find-items", map[string]string{"text": "   "})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = c.do(http.MethodPost, "/find-items", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOCRFlow(t *testing.T) {
	env := setupServerTest(t)
	seedStores(t, env.repo)

	c := env.client(t)

	w := c.do(http.MethodGet, "/api/ocr", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "idle", decode[map[string]any](t, w)["state"])

	w = c.do(http.MethodPost, "/api/ocr/submit", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = c.upload("/api/ocr/upload", "notes.txt", "text/plain", []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = c.upload("/api/ocr/upload", "list.png", "image/png", []byte("PNG..."))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	snap := decode[map[string]any](t, w)
	assert.Equal(t, "text_extracted", snap["state"])
	assert.Equal(t, "1. milk\n2. bread\n", snap["text"])

	w = c.do(http.MethodPut, "/api/ocr/text", map[string]string{"text": "milk\nbread\n"})
	require.Equal(t, http.StatusOK, w.Code)

	w = c.do(http.MethodPost, "/api/ocr/submit", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[resolvedList](t, w)
	assert.Equal(t, "OCR List 1", res.List.Name)
	assert.Len(t, res.Reports, 2)

	w = c.do(http.MethodGet, "/api/lists", nil)
	assert.Len(t, decode[map[string][]grocery.List](t, w)["lists"], 1)

	w = c.do(http.MethodPut, "/api/ocr/text", map[string]string{"text": " \n "})
	require.Equal(t, http.StatusOK, w.Code)

	w = c.do(http.MethodPost, "/api/ocr/submit", map[string]string{"name": "Empty"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestOCRUploadFailure(t *testing.T) {
	env := setupServerTest(t)
	env.extractor = func(_ context.Context, _ string, _ io.Reader) (string, error) {
		return "", errors.New("connection refused")
	}

	c := env.client(t)

	w := c.upload("/api/ocr/upload", "list.png", "image/png", []byte("PNG..."))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, errorMessage(t, w), "connection refused")

	w = c.do(http.MethodGet, "/api/ocr", nil)
	assert.Equal(t, "error", decode[map[string]any](t, w)["state"])

	w = c.do(http.MethodPost, "/api/ocr/retry", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "file_selected", decode[map[string]any](t, w)["state"])

	w = c.do(http.MethodDelete, "/api/ocr", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "idle", decode[map[string]any](t, w)["state"])

	// the flow keeps serving after a reset
	w = c.do(http.MethodDelete, "/api/ocr", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = c.do(http.MethodGet, "/api/ocr", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "idle", decode[map[string]any](t, w)["state"])
}

func TestOrders(t *testing.T) {
	env := setupServerTest(t)
	seedStores(t, env.repo)

	customer := env.client(t)
	require.Equal(t, http.StatusOK, customer.do(http.MethodPost, "/api/session/login",
		map[string]string{"role": "customer", "user": "asha"}).Code)

	w := customer.do(http.MethodPost, "/api/orders", map[string]any{
		"storeId": "s1",
		"items":   []map[string]any{{"name": "Whole Milk", "quantity": 2, "price": 30}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	order := decode[orders.Order](t, w)
	assert.Equal(t, "asha", order.Customer)
	assert.Equal(t, orders.Pending, order.Status)
	assert.Equal(t, 60.0, order.Total)

	w = customer.do(http.MethodPost, "/api/orders", map[string]any{"storeId": "missing", "items": []any{}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = customer.do(http.MethodPost, "/api/orders", map[string]any{"storeId": "s1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = customer.do(http.MethodPost, "/api/orders/"+order.ID+"/accept", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	shop := env.client(t)
	require.Equal(t, http.StatusOK, shop.do(http.MethodPost, "/api/session/login",
		map[string]string{"role": "shopkeeper", "user": "ravi"}).Code)

	other := env.client(t)
	require.Equal(t, http.StatusOK, other.do(http.MethodPost, "/api/session/login",
		map[string]string{"role": "shopkeeper", "user": "meera"}).Code)

	w = other.do(http.MethodPost, "/api/orders/"+order.ID+"/accept", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = other.do(http.MethodPost, "/api/orders/missing/accept", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = shop.do(http.MethodGet, "/api/stores/s1/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string][]orders.Order](t, w)["orders"], 1)

	w = shop.do(http.MethodPost, "/api/orders/"+order.ID+"/ship", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	for _, action := range []string{"accept", "ship"} {
		w = shop.do(http.MethodPost, "/api/orders/"+order.ID+"/"+action, nil)
		require.Equal(t, http.StatusOK, w.Code, action)
	}

	w = shop.do(http.MethodPost, "/api/orders/"+order.ID+"/refund", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = customer.do(http.MethodGet, "/api/orders/"+order.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, orders.Shipped, decode[orders.Order](t, w).Status)
}

func TestSessionRoutes(t *testing.T) {
	env := setupServerTest(t)
	c := env.client(t)

	w := c.do(http.MethodPost, "/api/session/intro", nil)
	require.Equal(t, http.StatusOK, w.Code)

	info := decode[session.Info](t, w)
	assert.True(t, info.IntroShown)
	assert.False(t, info.LoggedIn)

	w = c.do(http.MethodPost, "/api/session/login", map[string]string{"role": "admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = c.do(http.MethodPost, "/api/session/login", map[string]string{"role": "customer", "user": "asha"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[session.Info](t, w).LoggedIn)

	w = c.do(http.MethodPost, "/api/session/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	info = decode[session.Info](t, w)
	assert.False(t, info.LoggedIn)
	assert.True(t, info.IntroShown)

	w = c.do(http.MethodDelete, "/api/session", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = c.do(http.MethodGet, "/api/session", nil)
	assert.False(t, decode[session.Info](t, w).IntroShown, "a new session starts after teardown")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&spatial.CoordinateError{Field: "lat", Value: 91}, http.StatusBadRequest},
		{grocery.ErrEmptyList, http.StatusUnprocessableEntity},
		{grocery.ErrBusy, http.StatusConflict},
		{&grocery.MatchError{Err: errors.New("boom")}, http.StatusBadGateway},
		{&grocery.ExtractionError{Message: "blank"}, http.StatusBadGateway},
		{&stores.QueryError{Type: stores.ErrorTypeMalformedResponse}, http.StatusBadGateway},
		{&stores.QueryError{Type: stores.ErrorTypeRegistry}, http.StatusInternalServerError},
		{stores.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: Fresh Mart", errNotStoreOwner), http.StatusForbidden},
		{session.ErrMissingUser, http.StatusBadRequest},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), "%v", tt.err)
	}
}
