// Package seed loads cache seed bundles: gzip-compressed JSON-lines files
// holding one product per line.
package seed

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"storefront/internal/config"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// Loader reads a seed bundle.
type Loader interface {
	// Load reads the bundle at path and returns its products.
	Load(ctx context.Context, path string) ([]model.Product, error)
}

// NewLoader builds the loader described by cfg: S3 first when enabled,
// then the local file system.
func NewLoader(ctx context.Context, cfg config.SeedConfig, logger zerolog.Logger) Loader {
	fileLoader := NewFileLoader(logger)

	var s3 Loader
	if cfg.S3Enabled {
		var err error
		s3, err = NewS3Loader(ctx, cfg.Bucket, cfg.Region, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("S3 seed loader unavailable, using local file system only")
		}
	}

	return NewFallbackLoader(s3, fileLoader, cfg.Prefix, cfg.S3Enabled, logger)
}

// Bootstrap fills an empty store from the bundle at path. A store that
// already holds products is left alone. It returns the number of products
// written.
func Bootstrap(ctx context.Context, loader Loader, store repository.CatalogRepository, path string, logger zerolog.Logger) (int, error) {
	count, err := store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count cached products: %w", err)
	}

	if count > 0 {
		logger.Debug().Int("cached", count).Msg("cache already populated, skipping seed")
		return 0, nil
	}

	products, err := loader.Load(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("failed to load seed bundle: %w", err)
	}

	if len(products) == 0 {
		return 0, nil
	}

	if err := store.ReplaceAll(ctx, products); err != nil {
		return 0, fmt.Errorf("failed to write seed products: %w", err)
	}

	logger.Info().Int("products", len(products)).Str("path", path).Msg("cache seeded")

	return len(products), nil
}

// Write encodes products as a seed bundle.
func Write(w io.Writer, products []model.Product) error {
	gzipWriter := gzip.NewWriter(w)

	encoder := json.NewEncoder(gzipWriter)
	for _, p := range products {
		if err := encoder.Encode(p); err != nil {
			gzipWriter.Close()
			return fmt.Errorf("failed to encode product %d: %w", p.ID, err)
		}
	}

	if err := gzipWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush seed bundle: %w", err)
	}
	return nil
}

// decode reads a gzipped JSON-lines stream. Blank lines are skipped and a
// later line with the same ID replaces an earlier one.
func decode(ctx context.Context, r io.Reader, source string) ([]model.Product, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gzipReader.Close()

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	products := []model.Product{}
	index := make(map[int]int)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var p model.Product
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			return nil, fmt.Errorf("invalid product on line %d of %s: %w", lineNo, source, err)
		}
		if p.ID <= 0 {
			return nil, fmt.Errorf("invalid product on line %d of %s: missing id", lineNo, source)
		}
		if p.Images == nil {
			p.Images = []string{}
		}

		if i, ok := index[p.ID]; ok {
			products[i] = p
			continue
		}
		index[p.ID] = len(products)
		products = append(products, p)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading seed bundle %s: %w", source, err)
	}

	return products, nil
}
