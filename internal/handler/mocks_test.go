package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	"storefront/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) Catalog() model.CatalogView {
	return m.Called().Get(0).(model.CatalogView)
}

func (m *MockProductService) Refresh(ctx context.Context) (model.CatalogView, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.CatalogView), args.Error(1)
}

func (m *MockProductService) LoadMore(ctx context.Context) (model.CatalogView, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.CatalogView), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id int) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) CacheCount(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockProductService) ClearCache(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockProductService) CachedProducts(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Get() model.CartResponse {
	return m.Called().Get(0).(model.CartResponse)
}

func (m *MockCartService) Add(ctx context.Context, productID int) (model.CartItem, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(model.CartItem), args.Error(1)
}

func (m *MockCartService) Remove(productID int) error {
	return m.Called(productID).Error(0)
}

func (m *MockCartService) Clear() {
	m.Called()
}

// MockSubscriptionService is a mock implementation of SubscriptionService.
type MockSubscriptionService struct {
	mock.Mock
}

func (m *MockSubscriptionService) Plans() []model.Plan {
	return m.Called().Get(0).([]model.Plan)
}

func (m *MockSubscriptionService) Locations() []model.PopularLocation {
	return m.Called().Get(0).([]model.PopularLocation)
}

func (m *MockSubscriptionService) Summarize(req model.SummaryRequest) (model.SubscriptionSummary, error) {
	args := m.Called(req)
	return args.Get(0).(model.SubscriptionSummary), args.Error(1)
}

func (m *MockSubscriptionService) Confirm(ctx context.Context, req model.ConfirmRequest) (*model.Subscription, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subscription), args.Error(1)
}

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

// serve routes a single request through a chi router so path parameters resolve.
func serve(method, pattern, target string, body io.Reader, h http.HandlerFunc) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
