package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/ecocart/internal/domain"
	"github.com/vladislavdragonenkov/ecocart/internal/notify"
	"github.com/vladislavdragonenkov/ecocart/internal/service/cart"
	"github.com/vladislavdragonenkov/ecocart/internal/service/catalog"
	"github.com/vladislavdragonenkov/ecocart/internal/service/checkout"
	"github.com/vladislavdragonenkov/ecocart/internal/service/httpapi"
	"github.com/vladislavdragonenkov/ecocart/internal/storage/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	entry := logger.WithField("component", "test")

	feed := notify.NewFeed(10)
	registry := cart.NewRegistry(memory.NewKVStore(), cart.WithSink(feed), cart.WithLogger(entry))
	products := memory.NewProductCatalog([]domain.Product{
		{ID: "p1", Name: "Bloom Cup", Type: domain.ProductTypeCup, Brand: "EcoBloom", Price: domain.MustParseMoney("12.00"), InStock: true, Rating: 4.8},
		{ID: "p2", Name: "Cotton Pads", Type: domain.ProductTypePad, Brand: "PureCycle", Price: domain.MustParseMoney("3.50"), InStock: true, Rating: 4.5},
		{ID: "p3", Name: "Tampons", Type: domain.ProductTypeTampon, Brand: "Natracare", Price: domain.MustParseMoney("5.75"), InStock: false},
	})
	checkoutSvc := checkout.NewService(registry, memory.NewPharmacyDirectory(nil), memory.NewOrderRepository(),
		checkout.WithProcessingDelay(0),
		checkout.WithSink(feed),
		checkout.WithLogger(entry),
	)

	handler := httpapi.NewHandler(httpapi.Dependencies{
		Carts:          registry,
		Catalog:        catalog.NewService(products, entry),
		Checkout:       checkoutSvc,
		Feed:           feed,
		Logger:         entry,
		RequestTimeout: 5 * time.Second,
	})

	server := httptest.NewServer(handler.Routes())
	t.Cleanup(server.Close)
	return server
}

func do(t *testing.T, server *httptest.Server, method, path, session string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err)
	if session != "" {
		req.Header.Set(httpapi.SessionHeader, session)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return resp, nil
	}
	if obj, ok := decoded.(map[string]any); ok {
		return resp, obj
	}
	return resp, map[string]any{"_list": decoded}
}

func TestAPI_CartLifecycle(t *testing.T) {
	server := newTestServer(t)

	resp, body := do(t, server, http.MethodPost, "/api/v1/cart/items", "alice", map[string]string{"product_id": "p1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "alice", resp.Header.Get(httpapi.SessionHeader))
	assert.Equal(t, float64(1), body["total_items"])

	do(t, server, http.MethodPost, "/api/v1/cart/items", "alice", map[string]string{"product_id": "p1"})
	resp, body = do(t, server, http.MethodPost, "/api/v1/cart/items", "alice", map[string]string{"product_id": "p2"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	assert.Equal(t, float64(3), body["total_items"])
	assert.Equal(t, "27.50", body["total_price"])
	summary := body["summary"].(map[string]any)
	assert.Equal(t, "2.20", summary["tax"])
	assert.Equal(t, "0.00", summary["shipping"])
	assert.Equal(t, "29.70", summary["grand_total"])

	items := body["items"].([]any)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, float64(2), first["quantity"])
	assert.Equal(t, "24.00", first["subtotal"])
	assert.Equal(t, "12.00", first["product"].(map[string]any)["price"])

	resp, body = do(t, server, http.MethodPut, "/api/v1/cart/items/p1", "alice", map[string]int{"quantity": 0})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["total_items"])
	assert.Equal(t, "3.50", body["total_price"])

	resp, body = do(t, server, http.MethodGet, "/api/v1/cart/summary", "alice", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "3.78", body["grand_total"])

	resp, body = do(t, server, http.MethodDelete, "/api/v1/cart/items/p2", "alice", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["total_items"])

	// Другая сессия не видит корзину alice.
	_, body = do(t, server, http.MethodGet, "/api/v1/cart", "bob", nil)
	assert.Equal(t, "bob", body["session"])
	assert.Empty(t, body["items"])
}

func TestAPI_AddItemErrors(t *testing.T) {
	server := newTestServer(t)

	cases := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"unknown product", map[string]string{"product_id": "nope"}, http.StatusNotFound, "not_found"},
		{"out of stock", map[string]string{"product_id": "p3"}, http.StatusConflict, "out_of_stock"},
		{"empty id", map[string]string{"product_id": " "}, http.StatusBadRequest, "invalid_argument"},
		{"unknown field", map[string]string{"sku": "p1"}, http.StatusBadRequest, "invalid_request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := do(t, server, http.MethodPost, "/api/v1/cart/items", "", tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, body["code"])
		})
	}
}

func TestAPI_UpdateQuantityRequiresValue(t *testing.T) {
	server := newTestServer(t)

	resp, body := do(t, server, http.MethodPut, "/api/v1/cart/items/p1", "", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_quantity", body["code"])
}

func TestAPI_UpdateQuantityAboveLimit(t *testing.T) {
	server := newTestServer(t)

	resp, _ := do(t, server, http.MethodPost, "/api/v1/cart/items", "alice", map[string]string{"product_id": "p1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := do(t, server, http.MethodPut, "/api/v1/cart/items/p1", "alice", map[string]int{"quantity": domain.MaxLineQuantity + 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_argument", body["code"])

	_, body = do(t, server, http.MethodGet, "/api/v1/cart", "alice", nil)
	assert.Equal(t, float64(1), body["total_items"])
	assert.Equal(t, "12.00", body["total_price"])

	resp, body = do(t, server, http.MethodPut, "/api/v1/cart/items/p1", "alice", map[string]int{"quantity": domain.MaxLineQuantity})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "11988.00", body["total_price"])
}

func TestAPI_Catalog(t *testing.T) {
	server := newTestServer(t)

	resp, body := do(t, server, http.MethodGet, "/api/v1/products?sort=price-low", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := body["_list"].([]any)
	require.Len(t, list, 3)
	assert.Equal(t, "p2", list[0].(map[string]any)["id"])

	_, body = do(t, server, http.MethodGet, "/api/v1/products?type=cup", "", nil)
	assert.Len(t, body["_list"].([]any), 1)

	_, body = do(t, server, http.MethodGet, "/api/v1/products?q=purecycle", "", nil)
	assert.Len(t, body["_list"].([]any), 1)

	resp, body = do(t, server, http.MethodGet, "/api/v1/products?sort=random", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_argument", body["code"])

	resp, body = do(t, server, http.MethodGet, "/api/v1/products/p3", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["in_stock"])
	assert.Equal(t, "5.75", body["price"])

	resp, _ = do(t, server, http.MethodGet, "/api/v1/products/zzz", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_Checkout(t *testing.T) {
	server := newTestServer(t)

	resp, body := do(t, server, http.MethodPost, "/api/v1/checkout", "alice", map[string]string{"pharmacy_id": "ph-1"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "cart_empty", body["code"])

	do(t, server, http.MethodPost, "/api/v1/cart/items", "alice", map[string]string{"product_id": "p1"})

	resp, body = do(t, server, http.MethodPost, "/api/v1/checkout", "alice", map[string]string{"pharmacy_id": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "please select a pharmacy for pickup", body["error"])

	resp, _ = do(t, server, http.MethodPost, "/api/v1/checkout", "alice", map[string]string{"pharmacy_id": "ph-404"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = do(t, server, http.MethodPost, "/api/v1/checkout", "alice", map[string]string{"pharmacy_id": "ph-1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID := body["id"].(string)
	assert.Equal(t, "confirmed", body["status"])
	assert.Equal(t, "12.96", body["summary"].(map[string]any)["grand_total"])

	_, cartBody := do(t, server, http.MethodGet, "/api/v1/cart", "alice", nil)
	assert.Equal(t, float64(0), cartBody["total_items"])

	resp, body = do(t, server, http.MethodGet, "/api/v1/orders/"+orderID, "alice", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Green Leaf Pharmacy", body["pharmacy"].(map[string]any)["name"])

	resp, _ = do(t, server, http.MethodGet, "/api/v1/orders/"+orderID, "mallory", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = do(t, server, http.MethodGet, "/api/v1/orders", "alice", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["_list"].([]any), 1)

	resp, _ = do(t, server, http.MethodGet, "/api/v1/orders?limit=0", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = do(t, server, http.MethodGet, "/api/v1/pharmacies", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["_list"].([]any), 3)
}

func TestAPI_Notifications(t *testing.T) {
	server := newTestServer(t)

	do(t, server, http.MethodPost, "/api/v1/cart/items", "alice", map[string]string{"product_id": "p1"})
	do(t, server, http.MethodPost, "/api/v1/cart/items", "alice", map[string]string{"product_id": "p1"})
	do(t, server, http.MethodDelete, "/api/v1/cart", "alice", nil)

	resp, body := do(t, server, http.MethodGet, "/api/v1/notifications", "alice", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := body["_list"].([]any)
	require.Len(t, list, 3)

	titles := make([]string, 0, len(list))
	for _, raw := range list {
		titles = append(titles, raw.(map[string]any)["description"].(string))
	}
	assert.Equal(t, "Bloom Cup added to cart", titles[0])
	assert.Equal(t, "Bloom Cup quantity updated", titles[1])
	assert.True(t, strings.HasPrefix(titles[2], "All items removed"))

	_, body = do(t, server, http.MethodGet, "/api/v1/notifications", "bob", nil)
	assert.Empty(t, body["_list"])
}
