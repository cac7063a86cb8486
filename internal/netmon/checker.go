package netmon

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// CheckerConfig configures a Checker.
type CheckerConfig struct {
	URL      string
	Interval time.Duration
	Timeout  time.Duration
}

// Checker is a Monitor that periodically issues a HEAD request against a
// URL. Any HTTP response counts as reachable; a transport error or timeout
// counts as unreachable.
type Checker struct {
	*state
	cfg    CheckerConfig
	client *http.Client
	logger zerolog.Logger
}

// NewChecker creates a Checker. It reports offline until the first check
// completes.
func NewChecker(cfg CheckerConfig, logger zerolog.Logger) *Checker {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}

	return &Checker{
		state:  newState(false),
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With().Str("component", "netmon").Logger(),
	}
}

// Check sends one request and records the result.
func (c *Checker) Check(ctx context.Context) bool {
	online := c.reach(ctx)
	if ctx.Err() != nil {
		return c.Online()
	}
	if c.set(online) {
		c.logger.Info().Bool("online", online).Msg("connectivity changed")
	}
	return online
}

// Run checks immediately and then on every interval until ctx is done.
func (c *Checker) Run(ctx context.Context) {
	c.Check(ctx)

	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Check(ctx)
		}
	}
}

func (c *Checker) reach(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.cfg.URL, nil)
	if err != nil {
		c.logger.Error().Err(err).Str("url", c.cfg.URL).Msg("invalid check URL")
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Msg("check failed")
		return false
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	return true
}
