package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"storefront/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

const maxWatchRetries = 50

// redisRepository implements CatalogRepository on Redis. Each product is a
// JSON string under "<prefix>:product:<id>"; a sorted set scored by ID keeps
// the membership and the read order. Every operation that touches more than
// one key runs under WATCH on the sorted set.
type redisRepository struct {
	client *redis.Client
	prefix string
	logger zerolog.Logger
}

// NewRedisRepository creates a Redis-backed catalogue cache.
func NewRedisRepository(client *redis.Client, prefix string, logger zerolog.Logger) CatalogRepository {
	return &redisRepository{
		client: client,
		prefix: prefix,
		logger: logger.With().Str("repository", "redis").Logger(),
	}
}

func (r *redisRepository) idsKey() string {
	return r.prefix + ":product_ids"
}

func (r *redisRepository) productKey(id string) string {
	return r.prefix + ":product:" + id
}

// EnsureSchema is a no-op; Redis keys are created on write.
func (r *redisRepository) EnsureSchema(ctx context.Context) error {
	return nil
}

func (r *redisRepository) ReplaceAll(ctx context.Context, products []model.Product) error {
	payloads := make(map[int][]byte, len(products))
	for _, p := range products {
		data, err := json.Marshal(p)
		if err != nil {
			return storeError("replace all", fmt.Errorf("failed to encode product %d: %w", p.ID, err))
		}
		payloads[p.ID] = data
	}

	err := r.watch(ctx, func(tx *redis.Tx) error {
		oldIDs, err := tx.ZRange(ctx, r.idsKey(), 0, -1).Result()
		if err != nil {
			return fmt.Errorf("failed to read product ids: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			r.queueDelete(ctx, pipe, oldIDs)
			for id, data := range payloads {
				pipe.Set(ctx, r.productKey(strconv.Itoa(id)), data, 0)
				pipe.ZAdd(ctx, r.idsKey(), &redis.Z{Score: float64(id), Member: strconv.Itoa(id)})
			}
			return nil
		})
		return err
	})
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to replace cached products")
		return storeError("replace all", fmt.Errorf("failed to replace products: %w", err))
	}

	r.logger.Debug().Int("count", len(payloads)).Msg("catalogue cache replaced")

	return nil
}

func (r *redisRepository) ReadAll(ctx context.Context) ([]model.Product, error) {
	var (
		ids    []string
		values []interface{}
	)

	err := r.watch(ctx, func(tx *redis.Tx) error {
		var err error
		ids, err = tx.ZRange(ctx, r.idsKey(), 0, -1).Result()
		if err != nil {
			return fmt.Errorf("failed to read product ids: %w", err)
		}
		if len(ids) == 0 {
			values = nil
			return nil
		}

		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = r.productKey(id)
		}

		values, err = tx.MGet(ctx, keys...).Result()
		if err != nil {
			return fmt.Errorf("failed to read products: %w", err)
		}

		// EXEC fails if a replace touched the id set since WATCH.
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.ZCard(ctx, r.idsKey())
			return nil
		})
		return err
	})
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read products")
		return nil, storeError("read all", err)
	}

	products := make([]model.Product, 0, len(values))
	for i, value := range values {
		if value == nil {
			r.logger.Warn().Str("product_id", ids[i]).Msg("product id without payload")
			continue
		}
		raw, ok := value.(string)
		if !ok {
			return nil, storeError("read all", fmt.Errorf("unexpected value type %T for product %s", value, ids[i]))
		}
		var p model.Product
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, storeError("read all", fmt.Errorf("failed to decode product %s: %w", ids[i], err))
		}
		products = append(products, p)
	}

	return products, nil
}

func (r *redisRepository) GetByID(ctx context.Context, id int) (*model.Product, error) {
	raw, err := r.client.Get(ctx, r.productKey(strconv.Itoa(id))).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug().Int("product_id", id).Msg("product not cached")
			return nil, nil
		}
		r.logger.Error().Err(err).Int("product_id", id).Msg("failed to read product")
		return nil, storeError("get by id", fmt.Errorf("failed to read product: %w", err))
	}

	var p model.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, storeError("get by id", fmt.Errorf("failed to decode product %d: %w", id, err))
	}
	return &p, nil
}

func (r *redisRepository) Count(ctx context.Context) (int, error) {
	n, err := r.client.ZCard(ctx, r.idsKey()).Result()
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to count products")
		return 0, storeError("count", fmt.Errorf("failed to count products: %w", err))
	}
	return int(n), nil
}

func (r *redisRepository) Clear(ctx context.Context) error {
	err := r.watch(ctx, func(tx *redis.Tx) error {
		ids, err := tx.ZRange(ctx, r.idsKey(), 0, -1).Result()
		if err != nil {
			return fmt.Errorf("failed to read product ids: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			r.queueDelete(ctx, pipe, ids)
			return nil
		})
		return err
	})
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to clear products")
		return storeError("clear", fmt.Errorf("failed to clear products: %w", err))
	}

	r.logger.Info().Msg("catalogue cache cleared")
	return nil
}

func (r *redisRepository) Close() error {
	return r.client.Close()
}

// watch runs fn as an optimistic transaction on the id set, retrying while
// a concurrent writer keeps invalidating it.
func (r *redisRepository) watch(ctx context.Context, fn func(tx *redis.Tx) error) error {
	for attempt := 1; attempt <= maxWatchRetries; attempt++ {
		err := r.client.Watch(ctx, fn, r.idsKey())
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		r.logger.Debug().Int("attempt", attempt).Msg("product ids changed during transaction, retrying")
	}
	return fmt.Errorf("product ids kept changing after %d attempts", maxWatchRetries)
}

func (r *redisRepository) queueDelete(ctx context.Context, pipe redis.Pipeliner, ids []string) {
	if len(ids) > 0 {
		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = r.productKey(id)
		}
		pipe.Del(ctx, keys...)
	}
	pipe.Del(ctx, r.idsKey())
}
