package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/netmon"
	"storefront/internal/remote"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
	"storefront/internal/subscription"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-api-key"

type testServer struct {
	handler http.Handler
	monitor *netmon.Manual
	remote  *FakeCatalog
	store   repository.CatalogRepository
}

func setupTestServer(t *testing.T, store repository.CatalogRepository, products int) *testServer {
	t.Helper()

	logger := zerolog.Nop()
	fake := NewFakeCatalog(t, products)
	monitor := netmon.NewManual(true)
	m := metrics.New()

	rc := remote.New(config.RemoteConfig{
		BaseURL:           fake.URL,
		Timeout:           5 * time.Second,
		RequestsPerSecond: 1000,
		Burst:             100,
	}, logger)

	synchronizer := catalog.New(rc, store, monitor, catalog.Config{PageSize: 20, Observer: m}, logger)

	productService := service.NewProductService(synchronizer, store, rc, monitor, logger)
	c := cart.New(logger)
	subscriptionService := service.NewSubscriptionService(subscription.NewPlanner(logger), logger)

	h := router.New(router.Handlers{
		Product:      handler.NewProductHandler(productService, logger),
		Cart:         handler.NewCartHandler(service.NewCartService(c, productService, logger), logger),
		Subscription: handler.NewSubscriptionHandler(subscriptionService, logger),
		Order:        handler.NewOrderHandler(service.NewOrderService(c, subscriptionService, logger), logger),
	}, router.Options{
		APIKey:  testAPIKey,
		Metrics: m,
		Online:  monitor.Online,
	}, logger)

	return &testServer{handler: h, monitor: monitor, remote: fake, store: store}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-API-Key", testAPIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()

	s.handler.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

func TestCatalogAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	store := SetupPostgresStore(t)
	s := setupTestServer(t, store, 45)

	t.Run("refresh fetches the first page and rewrites the cache", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/products/refresh", nil)
		require.Equal(t, http.StatusOK, w.Code)

		view := decodeBody[model.CatalogView](t, w)
		assert.Len(t, view.Products, 20)
		assert.Equal(t, 45, view.Total)
		assert.True(t, view.Online)
		assert.Nil(t, view.Notice)
		assert.Equal(t, "online", w.Header().Get("X-Network-Status"))

		w = s.do(t, http.MethodGet, "/api/cache", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 20, decodeBody[handler.CacheStatus](t, w).Count)
	})

	t.Run("load more pages until the catalogue is exhausted", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/products/more", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeBody[model.CatalogView](t, w).Products, 40)

		w = s.do(t, http.MethodPost, "/api/products/more", nil)
		require.Equal(t, http.StatusOK, w.Code)
		view := decodeBody[model.CatalogView](t, w)
		assert.Len(t, view.Products, 45)
		assert.Equal(t, 45, view.Products[44].ID)
		assert.False(t, view.HasMore())

		before := s.remote.Requests()
		w = s.do(t, http.MethodPost, "/api/products/more", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, before, s.remote.Requests())

		// Load more never writes to the cache.
		count, err := store.Count(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 20, count)
	})

	t.Run("remote failure falls back to the cache", func(t *testing.T) {
		s.remote.Fail(true)
		defer s.remote.Fail(false)

		w := s.do(t, http.MethodPost, "/api/products/refresh", nil)
		require.Equal(t, http.StatusOK, w.Code)

		view := decodeBody[model.CatalogView](t, w)
		assert.Len(t, view.Products, 20)
		require.NotNil(t, view.Notice)
		assert.Equal(t, model.NoticeShowingCached, view.Notice.Kind)
	})

	t.Run("offline refresh serves the cache without the network", func(t *testing.T) {
		s.monitor.Set(false)
		defer s.monitor.Set(true)

		before := s.remote.Requests()
		w := s.do(t, http.MethodPost, "/api/products/refresh", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "offline", w.Header().Get("X-Network-Status"))

		view := decodeBody[model.CatalogView](t, w)
		assert.False(t, view.Online)
		assert.Len(t, view.Products, 20)
		assert.Equal(t, before, s.remote.Requests())
	})

	t.Run("product details come from the cache when offline", func(t *testing.T) {
		s.monitor.Set(false)
		defer s.monitor.Set(true)

		w := s.do(t, http.MethodGet, "/api/products/3", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Test Product 3", decodeBody[model.Product](t, w).Title)

		w = s.do(t, http.MethodGet, "/api/products/30", nil)
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, model.ErrCodeUnavailable, decodeBody[model.ErrorResponse](t, w).Error)
	})

	t.Run("product details fall through to the remote when online", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/products/30", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 30, decodeBody[model.Product](t, w).ID)

		w = s.do(t, http.MethodGet, "/api/products/999", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("clearing the cache", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, "/api/cache", nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		s.monitor.Set(false)
		defer s.monitor.Set(true)

		w = s.do(t, http.MethodPost, "/api/products/refresh", nil)
		require.Equal(t, http.StatusOK, w.Code)
		view := decodeBody[model.CatalogView](t, w)
		assert.Empty(t, view.Products)
		require.NotNil(t, view.Notice)
		assert.Equal(t, model.NoticeOfflineEmpty, view.Notice.Kind)
	})
}

func TestCheckoutAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	s := setupTestServer(t, SetupPostgresStore(t), 10)

	w := s.do(t, http.MethodPost, "/api/products/refresh", nil)
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("empty cart cannot be ordered", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/orders", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, model.ErrCodeEmptyCart, decodeBody[model.ErrorResponse](t, w).Error)
	})

	t.Run("order with a weekend subscription", func(t *testing.T) {
		for _, id := range []int{1, 2, 1} {
			w := s.do(t, http.MethodPost, "/api/cart/items", model.AddToCartRequest{ProductID: id})
			require.Equal(t, http.StatusCreated, w.Code)
		}

		w := s.do(t, http.MethodGet, "/api/cart", nil)
		require.Equal(t, http.StatusOK, w.Code)
		c := decodeBody[model.CartResponse](t, w)
		require.Len(t, c.Items, 2)
		assert.Equal(t, 2, c.Items[0].Quantity)
		assert.True(t, decimal.RequireFromString("5.5").Equal(c.Total), "got %s", c.Total)

		w = s.do(t, http.MethodPost, "/api/orders", model.OrderRequest{
			Subscription: &model.ConfirmRequest{
				SummaryRequest: model.SummaryRequest{Plan: model.PlanWeekend},
				Location:       model.LocationRequest{Popular: "Downtown"},
			},
		})
		require.Equal(t, http.StatusCreated, w.Code)

		order := decodeBody[model.Order](t, w)
		require.NotNil(t, order.Subscription)
		// 30 days always hold at least eight weekend days, which caps the discount.
		assert.Equal(t, 20, order.Subscription.TotalDiscount)
		assert.Equal(t, "Downtown San Francisco, CA", order.Subscription.DeliveryLocation.Address)
		assert.True(t, decimal.RequireFromString("5.5").Equal(order.Subtotal), "got %s", order.Subtotal)
		assert.True(t, decimal.RequireFromString("1.1").Equal(order.Discount), "got %s", order.Discount)
		assert.True(t, decimal.RequireFromString("4.4").Equal(order.Total), "got %s", order.Total)

		w = s.do(t, http.MethodGet, "/api/cart", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decodeBody[model.CartResponse](t, w).Items)

		w = s.do(t, http.MethodGet, "/api/orders/"+order.ID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, order.ID, decodeBody[model.Order](t, w).ID)
	})

	t.Run("invalid subscription keeps the cart", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/cart/items", model.AddToCartRequest{ProductID: 3})
		require.Equal(t, http.StatusCreated, w.Code)

		w = s.do(t, http.MethodPost, "/api/orders", model.OrderRequest{
			Subscription: &model.ConfirmRequest{
				SummaryRequest: model.SummaryRequest{Plan: model.PlanRandom},
				Location:       model.LocationRequest{Popular: "Downtown"},
			},
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, model.ErrCodeNoDaysSelected, decodeBody[model.ErrorResponse](t, w).Error)

		w = s.do(t, http.MethodGet, "/api/cart", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeBody[model.CartResponse](t, w).Items, 1)
	})

	t.Run("requests without an API key are rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
		w := httptest.NewRecorder()
		s.handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		req = httptest.NewRequest(http.MethodGet, "/health", nil)
		w = httptest.NewRecorder()
		s.handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
