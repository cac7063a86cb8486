// Package remote talks to the paginated product catalogue API.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"storefront/internal/config"
	"storefront/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Client fetches catalogue data from the remote API.
//
// Transport failures, non-2xx responses and undecodable bodies are returned
// as *model.NetworkError. Cancellation of the caller's context is returned
// as the context error itself.
type Client interface {
	// FetchPage returns up to limit products starting at offset.
	FetchPage(ctx context.Context, limit, offset int) (*model.CatalogPage, error)

	// FetchByID returns a single product, or model.ErrProductNotFound.
	FetchByID(ctx context.Context, id int) (*model.Product, error)
}

// httpClient implements Client over a DummyJSON-compatible HTTP API.
type httpClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// New creates a remote catalogue client. Requests are paced by a token
// bucket of cfg.RequestsPerSecond with cfg.Burst capacity.
func New(cfg config.RemoteConfig, logger zerolog.Logger) Client {
	return NewWithHTTPClient(cfg, &http.Client{Timeout: cfg.Timeout}, logger)
}

// NewWithHTTPClient creates a client using the given *http.Client.
func NewWithHTTPClient(cfg config.RemoteConfig, hc *http.Client, logger zerolog.Logger) Client {
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}

	return &httpClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: hc,
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logger.With().Str("component", "remote").Logger(),
	}
}

func (c *httpClient) FetchPage(ctx context.Context, limit, offset int) (*model.CatalogPage, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("skip", strconv.Itoa(offset))

	var page model.CatalogPage
	if err := c.getJSON(ctx, "fetch page", "/products?"+query.Encode(), &page); err != nil {
		return nil, err
	}

	if page.Products == nil {
		page.Products = []model.Product{}
	}

	c.logger.Debug().
		Int("limit", limit).
		Int("offset", offset).
		Int("received", len(page.Products)).
		Int("total", page.Total).
		Msg("fetched catalogue page")

	return &page, nil
}

func (c *httpClient) FetchByID(ctx context.Context, id int) (*model.Product, error) {
	var product model.Product
	err := c.getJSON(ctx, "fetch product", "/products/"+strconv.Itoa(id), &product)
	if err != nil {
		if netErr, ok := err.(*model.NetworkError); ok && netErr.StatusCode == http.StatusNotFound {
			return nil, model.ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (c *httpClient) getJSON(ctx context.Context, op, path string, dest any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &model.NetworkError{Op: op, Err: fmt.Errorf("rate limiter: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &model.NetworkError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn().Err(err).Str("op", op).Msg("remote request failed")
		return &model.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		c.logger.Warn().Int("status", resp.StatusCode).Str("op", op).Msg("remote returned error status")
		return &model.NetworkError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", resp.Status),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &model.NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}

	return nil
}
