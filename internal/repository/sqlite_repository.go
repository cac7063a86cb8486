package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		price TEXT NOT NULL,
		discount_percentage REAL NOT NULL DEFAULT 0,
		rating REAL,
		stock INTEGER,
		brand TEXT,
		category TEXT,
		thumbnail TEXT,
		images TEXT
	);
`

const sqliteProductColumns = `id, title, description, price, discount_percentage, rating, stock, brand, category, thumbnail, images`

// sqliteRepository implements CatalogRepository on the on-device SQLite file.
type sqliteRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewSQLiteRepository creates a SQLite-backed catalogue cache.
func NewSQLiteRepository(db *sql.DB, logger zerolog.Logger) CatalogRepository {
	return &sqliteRepository{
		db:     db,
		logger: logger.With().Str("repository", "sqlite").Logger(),
	}
}

func (r *sqliteRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sqliteSchema); err != nil {
		r.logger.Error().Err(err).Msg("failed to create products table")
		return storeError("ensure schema", err)
	}
	return nil
}

func (r *sqliteRepository) ReplaceAll(ctx context.Context, products []model.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return storeError("replace all", fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
		r.logger.Error().Err(err).Msg("failed to delete cached products")
		return storeError("replace all", fmt.Errorf("failed to delete products: %w", err))
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO products (`+sqliteProductColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return storeError("replace all", fmt.Errorf("failed to prepare insert: %w", err))
	}
	defer stmt.Close()

	for _, p := range products {
		images, err := encodeImages(p.Images)
		if err != nil {
			return storeError("replace all", err)
		}
		_, err = stmt.ExecContext(ctx, p.ID, p.Title, p.Description, p.Price.String(), p.DiscountPercentage,
			p.Rating, p.Stock, p.Brand, p.Category, p.Thumbnail, images)
		if err != nil {
			r.logger.Error().Err(err).Int("product_id", p.ID).Msg("failed to insert product")
			return storeError("replace all", fmt.Errorf("failed to insert product %d: %w", p.ID, err))
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error().Err(err).Msg("failed to commit transaction")
		return storeError("replace all", fmt.Errorf("failed to commit transaction: %w", err))
	}

	r.logger.Debug().Int("count", len(products)).Msg("catalogue cache replaced")

	return nil
}

func (r *sqliteRepository) ReadAll(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+sqliteProductColumns+` FROM products ORDER BY id`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, storeError("read all", fmt.Errorf("failed to query products: %w", err))
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanSQLiteProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, storeError("read all", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, storeError("read all", fmt.Errorf("error iterating products: %w", err))
	}

	return products, nil
}

func (r *sqliteRepository) GetByID(ctx context.Context, id int) (*model.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sqliteProductColumns+` FROM products WHERE id = ?`, id)

	p, err := scanSQLiteProduct(row)
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Debug().Int("product_id", id).Msg("product not cached")
			return nil, nil
		}
		r.logger.Error().Err(err).Int("product_id", id).Msg("failed to query product")
		return nil, storeError("get by id", err)
	}

	return p, nil
}

func (r *sqliteRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		r.logger.Error().Err(err).Msg("failed to count products")
		return 0, storeError("count", fmt.Errorf("failed to count products: %w", err))
	}
	return count, nil
}

func (r *sqliteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM products`); err != nil {
		r.logger.Error().Err(err).Msg("failed to clear products")
		return storeError("clear", fmt.Errorf("failed to clear products: %w", err))
	}
	r.logger.Info().Msg("catalogue cache cleared")
	return nil
}

func (r *sqliteRepository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteProduct(row rowScanner) (*model.Product, error) {
	var (
		p           model.Product
		description sql.NullString
		rating      sql.NullFloat64
		stock       sql.NullInt64
		brand       sql.NullString
		category    sql.NullString
		thumbnail   sql.NullString
		images      sql.NullString
	)

	err := row.Scan(&p.ID, &p.Title, &description, &p.Price, &p.DiscountPercentage,
		&rating, &stock, &brand, &category, &thumbnail, &images)
	if err != nil {
		return nil, err
	}

	p.Description = description.String
	p.Rating = rating.Float64
	p.Stock = int(stock.Int64)
	p.Brand = brand.String
	p.Category = category.String
	p.Thumbnail = thumbnail.String

	p.Images, err = decodeImages(images.String)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func encodeImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	data, err := json.Marshal(images)
	if err != nil {
		return "", fmt.Errorf("failed to encode images: %w", err)
	}
	return string(data), nil
}

func decodeImages(raw string) ([]string, error) {
	images := []string{}
	if raw == "" {
		return images, nil
	}
	if err := json.Unmarshal([]byte(raw), &images); err != nil {
		return nil, fmt.Errorf("failed to decode images: %w", err)
	}
	return images, nil
}
