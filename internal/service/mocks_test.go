package service

import (
	"context"

	"storefront/internal/model"

	"github.com/stretchr/testify/mock"
)

// MockSynchronizer is a mock implementation of CatalogSynchronizer.
type MockSynchronizer struct {
	mock.Mock
}

func (m *MockSynchronizer) Snapshot() model.CatalogView {
	args := m.Called()
	return args.Get(0).(model.CatalogView)
}

func (m *MockSynchronizer) Refresh(ctx context.Context) (model.CatalogView, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.CatalogView), args.Error(1)
}

func (m *MockSynchronizer) LoadMore(ctx context.Context) (model.CatalogView, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.CatalogView), args.Error(1)
}

// MockCatalogRepository is a mock implementation of CatalogRepository.
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) EnsureSchema(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCatalogRepository) ReplaceAll(ctx context.Context, products []model.Product) error {
	return m.Called(ctx, products).Error(0)
}

func (m *MockCatalogRepository) ReadAll(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockCatalogRepository) GetByID(ctx context.Context, id int) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockCatalogRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockCatalogRepository) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCatalogRepository) Close() error {
	return m.Called().Error(0)
}

// MockRemoteClient is a mock implementation of remote.Client.
type MockRemoteClient struct {
	mock.Mock
}

func (m *MockRemoteClient) FetchPage(ctx context.Context, limit, offset int) (*model.CatalogPage, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CatalogPage), args.Error(1)
}

func (m *MockRemoteClient) FetchByID(ctx context.Context, id int) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

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
