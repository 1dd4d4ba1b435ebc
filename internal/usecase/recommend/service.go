// Package recommend serves recommendation and corpus statistics queries.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recdex/internal/domain"
	"github.com/kailas-cloud/recdex/internal/domain/item"
	domrec "github.com/kailas-cloud/recdex/internal/domain/recommend"
	"github.com/kailas-cloud/recdex/internal/domain/vectorizer"
	"github.com/kailas-cloud/recdex/internal/metrics"
)

// DefaultMaxK caps k when no limit is configured.
const DefaultMaxK = 100

const (
	lookupTitle = "title"
	lookupID    = "id"
)

// Limits bounds the k accepted by the service.
type Limits struct {
	DefaultK int
	MaxK     int
}

// Result is a ranked answer to a query item.
type Result struct {
	Query item.Item
	K     int
	Items []domrec.Recommendation
}

// Service answers recommendation queries against a loaded index.
type Service struct {
	index  Index
	rec    Recommender
	limits Limits
	logger *zap.Logger
}

// New creates a recommendation service. rec can be nil, then the index must implement Recommender.
func New(index Index, rec Recommender, limits Limits, logger *zap.Logger) *Service {
	if rec == nil {
		rec, _ = index.(Recommender)
	}
	if limits.DefaultK <= 0 {
		limits.DefaultK = domrec.DefaultK
	}
	if limits.MaxK <= 0 {
		limits.MaxK = DefaultMaxK
	}
	if limits.DefaultK > limits.MaxK {
		limits.DefaultK = limits.MaxK
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{index: index, rec: rec, limits: limits, logger: logger}
}

// Limits returns the effective k limits.
func (s *Service) Limits() Limits { return s.limits }

// Recommend returns up to k items similar to the first item titled title.
// k == 0 selects the default; k above the maximum is clamped.
func (s *Service) Recommend(ctx context.Context, title string, k int) (Result, error) {
	start := time.Now()

	q, err := s.index.Lookup(title)
	if err != nil {
		s.observe(lookupTitle, start, 0, err)
		return Result{}, fmt.Errorf("lookup: %w", err)
	}

	res, err := s.recommend(ctx, q, k)
	s.observe(lookupTitle, start, len(res.Items), err)
	return res, err
}

// RecommendByID returns up to k items similar to the item with the given id.
func (s *Service) RecommendByID(ctx context.Context, id int64, k int) (Result, error) {
	start := time.Now()

	q, err := s.index.Item(id)
	if err != nil {
		s.observe(lookupID, start, 0, err)
		return Result{}, fmt.Errorf("get item: %w", err)
	}

	res, err := s.recommend(ctx, q, k)
	s.observe(lookupID, start, len(res.Items), err)
	return res, err
}

func (s *Service) recommend(ctx context.Context, q item.Item, k int) (Result, error) {
	k, err := s.effectiveK(k)
	if err != nil {
		return Result{}, err
	}

	recs, err := s.rec.RecommendByID(ctx, q.ID(), k)
	if err != nil {
		return Result{}, fmt.Errorf("recommend: %w", err)
	}

	s.logger.Debug("Recommendations computed",
		zap.Int64("item_id", q.ID()),
		zap.String("title", q.Title()),
		zap.Int("k", k),
		zap.Int("results", len(recs)),
	)
	return Result{Query: q, K: k, Items: recs}, nil
}

func (s *Service) effectiveK(k int) (int, error) {
	switch {
	case k < 0:
		return 0, fmt.Errorf("%w: k must not be negative, got %d", domain.ErrInvalidRange, k)
	case k == 0:
		return s.limits.DefaultK, nil
	case k > s.limits.MaxK:
		return s.limits.MaxK, nil
	default:
		return k, nil
	}
}

// Item returns a single item by id.
func (s *Service) Item(_ context.Context, id int64) (item.Item, error) {
	it, err := s.index.Item(id)
	if err != nil {
		return item.Item{}, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// Terms returns the limit most frequent vocabulary terms, count desc,
// ties in vocabulary order. limit <= 0 returns every term.
func (s *Service) Terms(_ context.Context, limit int) []vectorizer.TermCount {
	terms := s.index.TermFrequencies()
	sort.SliceStable(terms, func(i, j int) bool { return terms[i].Count > terms[j].Count })
	if limit > 0 && limit < len(terms) {
		terms = terms[:limit]
	}
	return terms
}

// Size returns the number of indexed items.
func (s *Service) Size() int { return s.index.Len() }

func (s *Service) observe(lookup string, start time.Time, results int, err error) {
	metrics.RecommendDuration.WithLabelValues(lookup).Observe(time.Since(start).Seconds())
	metrics.RecommendRequestsTotal.WithLabelValues(lookup, statusOf(err)).Inc()
	if err == nil {
		metrics.RecommendResults.Observe(float64(results))
		return
	}
	if statusOf(err) == "error" {
		s.logger.Error("Recommendation failed", zap.String("lookup", lookup), zap.Error(err))
	}
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrUnknownTitle), errors.Is(err, domain.ErrItemNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidRange):
		return "invalid"
	default:
		return "error"
	}
}
