// Package catalog keeps the displayed product list in step with the remote
// catalogue, the local cache and network reachability.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront/internal/model"
	"storefront/internal/netmon"
	"storefront/internal/remote"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// DefaultPageSize is the number of products requested per page.
const DefaultPageSize = 20

// Load outcomes reported to an Observer.
const (
	OutcomeRemote        = "remote"
	OutcomeCacheFallback = "cache_fallback"
	OutcomeOfflineCache  = "offline_cache"
	OutcomeNoop          = "noop"
	OutcomeRejected      = "rejected"
	OutcomeError         = "error"
)

// Observer receives one call per Refresh or LoadMore.
type Observer interface {
	ObserveLoad(op, outcome string, elapsed time.Duration)
}

// Config configures a Synchronizer.
type Config struct {
	PageSize int
	Observer Observer
}

// Synchronizer produces the display-ready product list. At most one load
// runs at a time; a second Refresh or LoadMore issued while one is in
// flight fails with model.ErrLoadInFlight.
type Synchronizer struct {
	remote   remote.Client
	store    repository.CatalogRepository
	monitor  netmon.Monitor
	pageSize int
	observer Observer
	logger   zerolog.Logger

	mu      sync.Mutex
	items   []model.Product
	total   int
	cursor  int
	notice  *model.Notice
	online  bool
	loading bool
	pending bool
	retry   chan struct{}
}

// New creates a Synchronizer. The store schema must already exist.
func New(rc remote.Client, store repository.CatalogRepository, monitor netmon.Monitor, cfg Config, logger zerolog.Logger) *Synchronizer {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}

	return &Synchronizer{
		remote:   rc,
		store:    store,
		monitor:  monitor,
		pageSize: cfg.PageSize,
		observer: cfg.Observer,
		logger:   logger.With().Str("component", "catalog").Logger(),
		items:    []model.Product{},
		online:   monitor.Online(),
		retry:    make(chan struct{}, 1),
	}
}

// PageSize returns the configured page size.
func (s *Synchronizer) PageSize() int {
	return s.pageSize
}

// Snapshot returns a copy of the current display state with the monitor's
// current connectivity.
func (s *Synchronizer) Snapshot() model.CatalogView {
	online := s.monitor.Online()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(online)
}

// lastView returns the display state with the connectivity seen by the
// most recent load.
func (s *Synchronizer) lastView() model.CatalogView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(s.online)
}

// checkOnline asks the monitor and records the answer for lastView.
func (s *Synchronizer) checkOnline() bool {
	online := s.monitor.Online()

	s.mu.Lock()
	s.online = online
	s.mu.Unlock()

	return online
}

// Refresh reloads the first page. Online, it fetches offset 0, rewrites the
// cache with that page and falls back to the cache on a network failure.
// Offline, it serves the first page of the cache.
func (s *Synchronizer) Refresh(ctx context.Context) (model.CatalogView, error) {
	start := time.Now()

	if !s.begin(false) {
		s.observe("refresh", OutcomeRejected, start)
		return model.CatalogView{}, model.ErrLoadInFlight
	}
	defer s.end()

	outcome, err := s.refresh(ctx)
	if err != nil {
		s.observe("refresh", OutcomeError, start)
		return s.lastView(), fmt.Errorf("failed to refresh catalogue: %w", err)
	}

	s.observe("refresh", outcome, start)
	return s.lastView(), nil
}

func (s *Synchronizer) refresh(ctx context.Context) (string, error) {
	if !s.checkOnline() {
		snapshot, err := s.store.ReadAll(ctx)
		if err != nil {
			return "", err
		}

		first := snapshot[:min(s.pageSize, len(snapshot))]
		notice := model.NoticeNone
		if len(snapshot) == 0 {
			notice = model.NoticeOfflineEmpty
		}

		s.commit(dedupe(nil, first), len(snapshot), len(first), notice)
		s.logger.Info().Int("cached", len(snapshot)).Msg("refreshed catalogue from cache while offline")
		return OutcomeOfflineCache, nil
	}

	page, err := s.remote.FetchPage(ctx, s.pageSize, 0)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		s.logger.Warn().Err(err).Msg("remote refresh failed, falling back to cache")
		return s.refreshFromCache(ctx)
	}

	// An empty page leaves the cache untouched.
	if len(page.Products) > 0 {
		if err := s.store.ReplaceAll(ctx, page.Products); err != nil {
			return "", err
		}
	}

	items := dedupe(nil, page.Products)
	s.commit(items, max(page.Total, len(items)), s.pageSize, model.NoticeNone)

	s.logger.Info().
		Int("received", len(items)).
		Int("total", page.Total).
		Msg("refreshed catalogue from remote")

	return OutcomeRemote, nil
}

func (s *Synchronizer) refreshFromCache(ctx context.Context) (string, error) {
	snapshot, err := s.store.ReadAll(ctx)
	if err != nil {
		return "", err
	}

	if len(snapshot) == 0 {
		s.commit([]model.Product{}, 0, 0, model.NoticeNoData)
		return OutcomeCacheFallback, nil
	}

	items := dedupe(nil, snapshot)
	s.commit(items, len(items), len(items), model.NoticeShowingCached)
	return OutcomeCacheFallback, nil
}

// LoadMore appends the next page. It does nothing when the list is empty
// or already holds total products. Online it fetches at the cursor without
// touching the cache; offline, or when that fetch fails, it appends the
// next window of the cache beyond what is displayed.
func (s *Synchronizer) LoadMore(ctx context.Context) (model.CatalogView, error) {
	start := time.Now()

	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		s.observe("load_more", OutcomeRejected, start)
		return model.CatalogView{}, model.ErrLoadInFlight
	}
	if len(s.items) == 0 || len(s.items) >= s.total {
		view := s.viewLocked(s.online)
		s.mu.Unlock()
		s.observe("load_more", OutcomeNoop, start)
		return view, nil
	}
	s.loading = true
	cursor := s.cursor
	s.mu.Unlock()
	defer s.end()

	outcome, err := s.loadMore(ctx, cursor)
	if err != nil {
		s.observe("load_more", OutcomeError, start)
		return s.lastView(), fmt.Errorf("failed to load more products: %w", err)
	}

	s.observe("load_more", outcome, start)
	return s.lastView(), nil
}

func (s *Synchronizer) loadMore(ctx context.Context, cursor int) (string, error) {
	if !s.checkOnline() {
		if err := s.appendFromCache(ctx, false); err != nil {
			return "", err
		}
		return OutcomeOfflineCache, nil
	}

	page, err := s.remote.FetchPage(ctx, s.pageSize, cursor)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		s.logger.Warn().Err(err).Int("offset", cursor).Msg("remote page fetch failed, falling back to cache")
		if err := s.appendFromCache(ctx, true); err != nil {
			return "", err
		}
		return OutcomeCacheFallback, nil
	}

	s.mu.Lock()
	s.items = dedupe(s.items, page.Products)
	s.cursor = cursor + s.pageSize
	s.total = max(page.Total, len(s.items))
	if len(page.Products) == 0 {
		// The remote has nothing past the cursor.
		s.total = len(s.items)
	}
	s.notice = nil
	s.mu.Unlock()

	s.logger.Debug().
		Int("offset", cursor).
		Int("received", len(page.Products)).
		Msg("appended remote page")

	return OutcomeRemote, nil
}

func (s *Synchronizer) appendFromCache(ctx context.Context, afterNetworkError bool) error {
	snapshot, err := s.store.ReadAll(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := len(s.items)
	var batch []model.Product
	if start < len(snapshot) {
		batch = snapshot[start:min(start+s.pageSize, len(snapshot))]
	}

	s.items = dedupe(s.items, batch)
	s.cursor += len(batch)
	s.total = max(len(snapshot), len(s.items))
	s.notice = nil
	if afterNetworkError && len(batch) > 0 {
		s.notice = model.NewNotice(model.NoticeNetworkShowingCached)
	}

	return nil
}

// Run consumes connectivity transitions until ctx is done, refreshing on
// each one. A transition seen while a load is in flight is held and
// handled once that load completes.
func (s *Synchronizer) Run(ctx context.Context) error {
	events, unsubscribe := s.monitor.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case online, ok := <-events:
			if !ok {
				return nil
			}
			s.logger.Info().Bool("online", online).Msg("connectivity changed")
			s.mu.Lock()
			s.online = online
			s.mu.Unlock()
			s.refreshOnEvent(ctx)
		case <-s.retry:
			s.refreshOnEvent(ctx)
		}
	}
}

func (s *Synchronizer) refreshOnEvent(ctx context.Context) {
	start := time.Now()

	if !s.begin(true) {
		s.logger.Debug().Msg("load in flight, deferring connectivity refresh")
		return
	}
	defer s.end()

	outcome, err := s.refresh(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Error().Err(err).Msg("connectivity refresh failed")
		}
		s.observe("refresh", OutcomeError, start)
		return
	}
	s.observe("refresh", outcome, start)
}

// begin marks a load in flight. When one is already running it returns
// false, and if deferIfBusy is set the caller's refresh is queued.
func (s *Synchronizer) begin(deferIfBusy bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loading {
		if deferIfBusy {
			s.pending = true
		}
		return false
	}
	s.loading = true
	return true
}

func (s *Synchronizer) end() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = false
	if s.pending {
		s.pending = false
		select {
		case s.retry <- struct{}{}:
		default:
		}
	}
}

func (s *Synchronizer) commit(items []model.Product, total, cursor int, notice model.NoticeKind) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = items
	s.total = total
	s.cursor = cursor
	s.notice = model.NewNotice(notice)
}

func (s *Synchronizer) viewLocked(online bool) model.CatalogView {
	items := make([]model.Product, len(s.items))
	copy(items, s.items)

	return model.CatalogView{
		Products: items,
		Total:    s.total,
		Cursor:   s.cursor,
		Online:   online,
		Loading:  s.loading,
		Notice:   s.notice,
	}
}

func (s *Synchronizer) observe(op, outcome string, start time.Time) {
	if s.observer != nil {
		s.observer.ObserveLoad(op, outcome, time.Since(start))
	}
}

// dedupe appends next to list, replacing entries whose ID is already
// present instead of adding a second row.
func dedupe(list, next []model.Product) []model.Product {
	out := make([]model.Product, len(list), len(list)+len(next))
	copy(out, list)

	index := make(map[int]int, len(out)+len(next))
	for i, p := range out {
		index[p.ID] = i
	}

	for _, p := range next {
		if i, ok := index[p.ID]; ok {
			out[i] = p
			continue
		}
		index[p.ID] = len(out)
		out = append(out, p)
	}

	return out
}
