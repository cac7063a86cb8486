package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// SetupPostgresStore starts a PostgreSQL container and returns a catalogue
// store backed by it.
func SetupPostgresStore(t *testing.T) repository.CatalogRepository {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := postgresContainer.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := postgresContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	store, err := repository.New(ctx, config.StoreConfig{
		Driver: config.StoreDriverPostgres,
		Database: config.DatabaseConfig{
			Host:            host,
			Port:            port.Int(),
			User:            "testuser",
			Password:        "testpass",
			Database:        "testdb",
			MaxConnections:  10,
			MinConnections:  2,
			MaxConnLifetime: 300,
		},
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to open postgres store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})

	return store
}

// SetupRedisStore starts a Redis container and returns a catalogue store
// backed by it.
func SetupRedisStore(t *testing.T) repository.CatalogRepository {
	t.Helper()

	ctx := context.Background()

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	addr, err := redisContainer.PortEndpoint(ctx, "6379/tcp", "")
	if err != nil {
		t.Fatalf("failed to get redis endpoint: %v", err)
	}

	client, err := database.NewRedis(ctx, config.RedisConfig{Addr: addr}, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}

	store := repository.NewRedisRepository(client, "it", zerolog.Nop())
	t.Cleanup(func() {
		store.Close()
	})

	return store
}

// FakeCatalog is an in-process stand-in for the remote catalogue API.
type FakeCatalog struct {
	*httptest.Server
	products []model.Product
	failing  atomic.Bool
	requests atomic.Int64
}

// NewFakeCatalog serves n generated products.
func NewFakeCatalog(t *testing.T, n int) *FakeCatalog {
	t.Helper()

	f := &FakeCatalog{products: TestProducts(n)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)

	return f
}

// Fail makes every catalogue request return 503 until reset.
func (f *FakeCatalog) Fail(failing bool) {
	f.failing.Store(failing)
}

// Requests returns the number of GET requests served.
func (f *FakeCatalog) Requests() int64 {
	return f.requests.Load()
}

func (f *FakeCatalog) serve(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	f.requests.Add(1)
	if f.failing.Load() {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if r.URL.Path == "/products" {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		start := min(skip, len(f.products))
		end := min(start+limit, len(f.products))

		json.NewEncoder(w).Encode(model.CatalogPage{
			Products: f.products[start:end],
			Total:    len(f.products),
			Skip:     skip,
			Limit:    limit,
		})
		return
	}

	id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/products/"))
	if err != nil || id < 1 || id > len(f.products) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Product not found"}`))
		return
	}
	json.NewEncoder(w).Encode(f.products[id-1])
}

// TestProducts generates n products with IDs 1..n.
func TestProducts(n int) []model.Product {
	products := make([]model.Product, n)
	for i := range products {
		id := i + 1
		products[i] = model.Product{
			ID:                 id,
			Title:              "Test Product " + strconv.Itoa(id),
			Description:        "Integration test product",
			Price:              decimal.New(int64(id)*10+5, -1),
			DiscountPercentage: 5,
			Rating:             4.2,
			Stock:              10 * id,
			Brand:              "Acme",
			Category:           "groceries",
			Thumbnail:          "https://cdn.example.com/" + strconv.Itoa(id) + ".png",
			Images:             []string{"https://cdn.example.com/" + strconv.Itoa(id) + "-1.png"},
		}
	}
	return products
}
