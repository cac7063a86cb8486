package repository

import (
	"context"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price NUMERIC NOT NULL CHECK (price >= 0),
		discount_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
		rating DOUBLE PRECISION NOT NULL DEFAULT 0,
		stock INTEGER NOT NULL DEFAULT 0,
		brand TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		thumbnail TEXT NOT NULL DEFAULT '',
		images TEXT[] NOT NULL DEFAULT '{}'
	);
	CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
`

const postgresProductColumns = `id, title, description, price, discount_percentage, rating, stock, brand, category, thumbnail, images`

// postgresSelectColumns reads price as text so it parses without float rounding.
const postgresSelectColumns = `id, title, description, price::text, discount_percentage, rating, stock, brand, category, thumbnail, images`

// postgresRepository implements CatalogRepository using PostgreSQL.
type postgresRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresRepository creates a new PostgreSQL-backed catalogue cache.
func NewPostgresRepository(pool *pgxpool.Pool, logger zerolog.Logger) CatalogRepository {
	return &postgresRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "postgres").Logger(),
	}
}

func (r *postgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, postgresSchema); err != nil {
		r.logger.Error().Err(err).Msg("failed to create products table")
		return storeError("ensure schema", err)
	}
	return nil
}

// ReplaceAll deletes every row and batch-inserts products in one transaction.
func (r *postgresRepository) ReplaceAll(ctx context.Context, products []model.Product) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return storeError("replace all", fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback(ctx)

	// Serialises writers; readers keep their snapshot.
	if _, err := tx.Exec(ctx, `LOCK TABLE products IN EXCLUSIVE MODE`); err != nil {
		r.logger.Error().Err(err).Msg("failed to lock products table")
		return storeError("replace all", fmt.Errorf("failed to lock products: %w", err))
	}

	if _, err := tx.Exec(ctx, `DELETE FROM products`); err != nil {
		r.logger.Error().Err(err).Msg("failed to delete cached products")
		return storeError("replace all", fmt.Errorf("failed to delete products: %w", err))
	}

	if len(products) > 0 {
		query := `
			INSERT INTO products (` + postgresProductColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO UPDATE SET
				title = EXCLUDED.title,
				description = EXCLUDED.description,
				price = EXCLUDED.price,
				discount_percentage = EXCLUDED.discount_percentage,
				rating = EXCLUDED.rating,
				stock = EXCLUDED.stock,
				brand = EXCLUDED.brand,
				category = EXCLUDED.category,
				thumbnail = EXCLUDED.thumbnail,
				images = EXCLUDED.images
		`

		batch := &pgx.Batch{}
		for _, p := range products {
			images := p.Images
			if images == nil {
				images = []string{}
			}
			batch.Queue(query, p.ID, p.Title, p.Description, p.Price.String(), p.DiscountPercentage,
				p.Rating, p.Stock, p.Brand, p.Category, p.Thumbnail, images)
		}

		results := tx.SendBatch(ctx, batch)
		for i := range products {
			if _, err := results.Exec(); err != nil {
				results.Close()
				r.logger.Error().Err(err).Int("product_id", products[i].ID).Msg("failed to insert product")
				return storeError("replace all", fmt.Errorf("failed to insert product %d: %w", products[i].ID, err))
			}
		}
		if err := results.Close(); err != nil {
			return storeError("replace all", fmt.Errorf("failed to close batch: %w", err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Msg("failed to commit transaction")
		return storeError("replace all", fmt.Errorf("failed to commit transaction: %w", err))
	}

	r.logger.Debug().Int("count", len(products)).Msg("catalogue cache replaced")

	return nil
}

func (r *postgresRepository) ReadAll(ctx context.Context) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+postgresSelectColumns+` FROM products ORDER BY id`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, storeError("read all", fmt.Errorf("failed to query products: %w", err))
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := scanPostgresProduct(rows, &p); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, storeError("read all", fmt.Errorf("failed to scan product: %w", err))
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, storeError("read all", fmt.Errorf("error iterating products: %w", err))
	}

	return products, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int) (*model.Product, error) {
	var p model.Product
	row := r.pool.QueryRow(ctx, `SELECT `+postgresSelectColumns+` FROM products WHERE id = $1`, id)
	if err := scanPostgresProduct(row, &p); err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Int("product_id", id).Msg("product not cached")
			return nil, nil
		}
		r.logger.Error().Err(err).Int("product_id", id).Msg("failed to query product")
		return nil, storeError("get by id", fmt.Errorf("failed to query product: %w", err))
	}
	return &p, nil
}

func (r *postgresRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		r.logger.Error().Err(err).Msg("failed to count products")
		return 0, storeError("count", fmt.Errorf("failed to count products: %w", err))
	}
	return count, nil
}

func (r *postgresRepository) Clear(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM products`); err != nil {
		r.logger.Error().Err(err).Msg("failed to clear products")
		return storeError("clear", fmt.Errorf("failed to clear products: %w", err))
	}
	r.logger.Info().Msg("catalogue cache cleared")
	return nil
}

func (r *postgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func scanPostgresProduct(row pgx.Row, p *model.Product) error {
	var price string
	err := row.Scan(&p.ID, &p.Title, &p.Description, &price, &p.DiscountPercentage,
		&p.Rating, &p.Stock, &p.Brand, &p.Category, &p.Thumbnail, &p.Images)
	if err != nil {
		return err
	}

	p.Price, err = decimal.NewFromString(price)
	if err != nil {
		return fmt.Errorf("failed to parse price of product %d: %w", p.ID, err)
	}
	return nil
}
