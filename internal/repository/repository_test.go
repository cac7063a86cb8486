package repository

import (
	"context"
	"sync"
	"testing"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProducts(ids ...int) []model.Product {
	products := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		products = append(products, model.Product{
			ID:                 id,
			Title:              "Product " + string(rune('A'+id%26)),
			Description:        "A product for testing",
			Price:              decimal.New(int64(id)*100+99, -2),
			DiscountPercentage: 5.5,
			Rating:             4.2,
			Stock:              10 * id,
			Brand:              "Acme",
			Category:           "beauty",
			Thumbnail:          "https://cdn.example.com/thumb.png",
			Images:             []string{"https://cdn.example.com/1.png", "https://cdn.example.com/2.png"},
		})
	}
	return products
}

// runRepositoryContract exercises the behaviour every backend must share.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) CatalogRepository) {
	ctx := context.Background()

	t.Run("Empty store", func(t *testing.T) {
		repo := newRepo(t)

		products, err := repo.ReadAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, products)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)

		p, err := repo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("ReplaceAll then ReadAll orders by ID", func(t *testing.T) {
		repo := newRepo(t)

		require.NoError(t, repo.ReplaceAll(ctx, testProducts(3, 1, 2)))

		products, err := repo.ReadAll(ctx)
		require.NoError(t, err)
		require.Len(t, products, 3)
		assert.Equal(t, 1, products[0].ID)
		assert.Equal(t, 2, products[1].ID)
		assert.Equal(t, 3, products[2].ID)
		assert.Equal(t, testProducts(1)[0], products[0])
	})

	t.Run("ReplaceAll discards previous contents", func(t *testing.T) {
		repo := newRepo(t)

		require.NoError(t, repo.ReplaceAll(ctx, testProducts(1, 2, 3, 4)))
		require.NoError(t, repo.ReplaceAll(ctx, testProducts(10, 11)))

		products, err := repo.ReadAll(ctx)
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, 10, products[0].ID)
		assert.Equal(t, 11, products[1].ID)

		old, err := repo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, old)
	})

	t.Run("Duplicate IDs keep the last record", func(t *testing.T) {
		repo := newRepo(t)

		products := testProducts(5, 5)
		products[1].Title = "Updated"
		require.NoError(t, repo.ReplaceAll(ctx, products))

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		p, err := repo.GetByID(ctx, 5)
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "Updated", p.Title)
	})

	t.Run("Nil images read back as empty", func(t *testing.T) {
		repo := newRepo(t)

		products := testProducts(7)
		products[0].Images = nil
		require.NoError(t, repo.ReplaceAll(ctx, products))

		p, err := repo.GetByID(ctx, 7)
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Empty(t, p.Images)
	})

	t.Run("Count and Clear", func(t *testing.T) {
		repo := newRepo(t)

		require.NoError(t, repo.ReplaceAll(ctx, testProducts(1, 2, 3)))

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		require.NoError(t, repo.Clear(ctx))

		count, err = repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)

		products, err := repo.ReadAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, products)
	})

	t.Run("ReplaceAll with empty slice empties the store", func(t *testing.T) {
		repo := newRepo(t)

		require.NoError(t, repo.ReplaceAll(ctx, testProducts(1, 2)))
		require.NoError(t, repo.ReplaceAll(ctx, nil))

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("Reads during a replace see one whole catalogue", func(t *testing.T) {
		repo := newRepo(t)

		first := testProducts(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
		second := testProducts(11, 12, 13, 14, 15, 16, 17, 18, 19, 20)
		require.NoError(t, repo.ReplaceAll(ctx, first))

		var wg sync.WaitGroup
		done := make(chan struct{})

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer close(done)
			for i := 0; i < 50; i++ {
				next := second
				if i%2 == 1 {
					next = first
				}
				if err := repo.ReplaceAll(ctx, next); err != nil {
					t.Errorf("replace failed: %v", err)
					return
				}
			}
		}()

		for r := 0; r < 4; r++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					select {
					case <-done:
						return
					default:
					}

					products, err := repo.ReadAll(ctx)
					if err != nil {
						t.Errorf("read failed: %v", err)
						return
					}
					if len(products) != 10 {
						t.Errorf("read %d products, want 10", len(products))
						return
					}
					low := products[0].ID <= 10
					for _, p := range products {
						if (p.ID <= 10) != low {
							t.Errorf("read mixed catalogues: %v", products)
							return
						}
					}
				}
			}()
		}

		wg.Wait()

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 10, count)
	})

	t.Run("Concurrent replaces leave no stray products", func(t *testing.T) {
		repo := newRepo(t)

		sets := [][]model.Product{
			testProducts(1, 2, 3, 4, 5),
			testProducts(6, 7, 8, 9, 10),
		}

		var wg sync.WaitGroup
		for _, set := range sets {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 25; i++ {
					if err := repo.ReplaceAll(ctx, set); err != nil {
						t.Errorf("replace failed: %v", err)
						return
					}
				}
			}()
		}
		wg.Wait()

		products, err := repo.ReadAll(ctx)
		require.NoError(t, err)
		require.Len(t, products, 5)

		cached := make(map[int]bool, len(products))
		for _, p := range products {
			cached[p.ID] = true
		}

		for id := 1; id <= 10; id++ {
			p, err := repo.GetByID(ctx, id)
			require.NoError(t, err)
			if cached[id] {
				assert.NotNil(t, p, "product %d", id)
			} else {
				assert.Nil(t, p, "product %d", id)
			}
		}
	})

	t.Run("Prices read back exactly", func(t *testing.T) {
		repo := newRepo(t)

		products := testProducts(1, 2, 3)
		products[0].Price = decimal.RequireFromString("0.1")
		products[1].Price = decimal.RequireFromString("19.99")
		products[2].Price = decimal.RequireFromString("1234567.89")
		require.NoError(t, repo.ReplaceAll(ctx, products))

		got, err := repo.ReadAll(ctx)
		require.NoError(t, err)
		require.Len(t, got, 3)
		for i := range products {
			assert.True(t, products[i].Price.Equal(got[i].Price), "product %d: got %s", got[i].ID, got[i].Price)
		}

		total := got[0].Price.Add(got[1].Price)
		assert.Equal(t, "20.09", total.String())
	})
}
