package recdex

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recdex/internal/corpus"
	"github.com/kailas-cloud/recdex/internal/db"
	dbRedis "github.com/kailas-cloud/recdex/internal/db/redis"
	"github.com/kailas-cloud/recdex/internal/domain/item"
	domrec "github.com/kailas-cloud/recdex/internal/domain/recommend"
	"github.com/kailas-cloud/recdex/internal/repository/reccache"
	healthuc "github.com/kailas-cloud/recdex/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/recdex/internal/usecase/recommend"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is a fitted recommender over a fixed set of items.
// Safe for concurrent use.
type Client struct {
	index     *domrec.Index
	store     db.Store
	recSvc    *recommenduc.Service
	healthSvc *healthuc.Service
	obs       *observer
}

// New fits the vocabulary over items and builds the index.
// With WithValkey or WithRedis the result cache is connected before New returns.
func New(items []Item, opts ...Option) (*Client, error) {
	cfg := defaultClientConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	domItems := make([]item.Item, len(items))
	for i, it := range items {
		if domItems[i], err = itemToDomain(it); err != nil {
			obs.observe(opBuild, start, err, slog.Int("items", len(items)))
			return nil, fmt.Errorf("recdex: %w", err)
		}
	}

	ix, err := domrec.Build(domItems, cfg.vectorizer, domrec.WithWorkers(cfg.workers))
	if err != nil {
		obs.observe(opBuild, start, err, slog.Int("items", len(items)))
		return nil, fmt.Errorf("recdex: %w", err)
	}
	obs.observe(opBuild, start, nil,
		slog.Int("items", ix.Len()), slog.Int("terms", ix.Vocabulary().Len()))
	obs.observeIndex(ix.Len(), ix.Vocabulary().Len())

	store := cfg.store
	if store == nil && len(cfg.addrs) > 0 {
		if store, err = createStore(cfg); err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), defaultReadinessTimeout)
		defer cancel()
		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("recdex: cache not ready: %w", err)
		}
	}

	return wireClient(ix, store, cfg, obs), nil
}

// ReadCSV loads items from a CSV stream with a header row.
func ReadCSV(r io.Reader, cols Columns) ([]Item, error) {
	domItems, err := corpus.LoadCSV(r, cols.toDomain())
	if err != nil {
		return nil, fmt.Errorf("recdex: %w", err)
	}
	items := make([]Item, len(domItems))
	for i, it := range domItems {
		items[i] = itemFromDomain(it)
	}
	return items, nil
}

// ReadFile loads items from a corpus file. Files ending in .parquet are read
// as Parquet, anything else as CSV with a header row.
func ReadFile(path string, cols Columns) ([]Item, error) {
	domItems, err := corpus.LoadFile(path, cols.toDomain())
	if err != nil {
		return nil, fmt.Errorf("recdex: %w", err)
	}
	items := make([]Item, len(domItems))
	for i, it := range domItems {
		items[i] = itemFromDomain(it)
	}
	return items, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.addrs,
			Password:   cfg.password,
			Standalone: cfg.standalone,
		})
		if err != nil {
			return nil, fmt.Errorf("recdex: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("recdex: unknown driver %q", cfg.driver)
	}
}

func wireClient(ix *domrec.Index, store db.Store, cfg *clientConfig, obs *observer) *Client {
	var (
		rec    recommenduc.Recommender = ix
		pinger healthuc.CachePinger
	)
	if store != nil {
		rec = reccache.New(ix, store, cfg.cacheTTL, nil, zap.NewNop())
		pinger = store
	}

	limits := recommenduc.Limits{DefaultK: cfg.defaultK, MaxK: cfg.maxK}
	return &Client{
		index:     ix,
		store:     store,
		recSvc:    recommenduc.New(ix, rec, limits, zap.NewNop()),
		healthSvc: healthuc.New(ix, pinger),
		obs:       obs,
	}
}

// Close releases the cache connection, if any.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Len returns the number of indexed items.
func (c *Client) Len() int { return c.index.Len() }

// Vocabulary returns the fitted terms in column order.
func (c *Client) Vocabulary() []string { return c.index.Vocabulary().Terms() }

// Recommend returns up to k items most similar to the item titled title,
// best first. When several items share the title the first one is used.
// k == 0 uses the default k; k above the maximum is clamped.
// An item whose tags contain no vocabulary term yields an empty result.
func (c *Client) Recommend(ctx context.Context, title string, k int) (_ []Recommendation, err error) {
	start := time.Now()
	defer func() { c.obs.observe(opRecommend, start, err, slog.String("title", title), slog.Int("k", k)) }()

	res, err := c.recSvc.Recommend(ctx, title, k)
	if err != nil {
		return nil, fmt.Errorf("recommend %q: %w", title, err)
	}
	c.obs.observeResults(len(res.Items))
	return recommendationsFromDomain(res.Items), nil
}

// RecommendByID is Recommend keyed by item id.
func (c *Client) RecommendByID(ctx context.Context, id int64, k int) (_ []Recommendation, err error) {
	start := time.Now()
	defer func() { c.obs.observe(opRecommendByID, start, err, slog.Int64("id", id), slog.Int("k", k)) }()

	res, err := c.recSvc.RecommendByID(ctx, id, k)
	if err != nil {
		return nil, fmt.Errorf("recommend %d: %w", id, err)
	}
	c.obs.observeResults(len(res.Items))
	return recommendationsFromDomain(res.Items), nil
}

// Item returns the item with the given id.
func (c *Client) Item(ctx context.Context, id int64) (Item, error) {
	it, err := c.recSvc.Item(ctx, id)
	if err != nil {
		return Item{}, fmt.Errorf("item %d: %w", id, err)
	}
	return itemFromDomain(it), nil
}

// Lookup returns the first item titled title.
func (c *Client) Lookup(title string) (Item, error) {
	it, err := c.index.Lookup(title)
	if err != nil {
		return Item{}, fmt.Errorf("lookup: %w", err)
	}
	return itemFromDomain(it), nil
}

// Score returns the cosine similarity of two items. The result is NaN when
// either item has no vocabulary term; such pairs are incomparable.
func (c *Client) Score(idA, idB int64) (float64, error) {
	s, err := c.index.Score(idA, idB)
	if err != nil {
		return s, fmt.Errorf("score: %w", err)
	}
	return s, nil
}

// Terms returns the limit most frequent vocabulary terms, count desc.
// limit <= 0 returns every term.
func (c *Client) Terms(limit int) []Term {
	terms := c.recSvc.Terms(context.Background(), limit)
	out := make([]Term, len(terms))
	for i, t := range terms {
		out[i] = Term{Term: t.Term, Count: t.Count}
	}
	return out
}

// HealthStatus represents the aggregated client health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component → "ok"/"error"
}

// Health checks the index and, when configured, the cache.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{Status: string(report.Status), Checks: checks}
}

// Ping checks cache connectivity. Without a cache it always succeeds.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe(opPing, start, err) }()

	if c.store == nil {
		return nil
	}
	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
