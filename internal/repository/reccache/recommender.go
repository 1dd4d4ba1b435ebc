// Package reccache caches recommendation results in a key-value store.
package reccache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recdex/internal/db"
	"github.com/kailas-cloud/recdex/internal/domain/item"
	"github.com/kailas-cloud/recdex/internal/domain/recommend"
)

// KeyPrefix namespaces cache keys.
const KeyPrefix = "recdex:rec:"

// entrySize is the encoded size of one (id, score) pair.
const entrySize = 16

// store is the consumer interface for the recommendation cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// recommender is the cached source. *recommend.Index satisfies it.
type recommender interface {
	RecommendByID(ctx context.Context, id int64, k int) ([]recommend.Recommendation, error)
	Item(id int64) (item.Item, error)
	Fingerprint() string
}

// CachedRecommender caches ranked (id, score) lists keyed by index fingerprint,
// query id and k. Items are hydrated from the index on a hit.
type CachedRecommender struct {
	inner      recommender
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner recommender,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedRecommender {
	return &CachedRecommender{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// RecommendByID returns cached recommendations or computes and stores them.
// Cache failures are logged and bypassed.
func (c *CachedRecommender) RecommendByID(
	ctx context.Context, id int64, k int,
) ([]recommend.Recommendation, error) {
	key := c.cacheKey(id, k)

	if recs, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return recs, nil
	}

	c.incCache("miss")

	recs, err := c.inner.RecommendByID(ctx, id, k)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}

	c.putToCache(ctx, key, recs)
	return recs, nil
}

func (c *CachedRecommender) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedRecommender) cacheKey(id int64, k int) string {
	return KeyPrefix + c.inner.Fingerprint() + ":" + strconv.FormatInt(id, 10) + ":" + strconv.Itoa(k)
}

func (c *CachedRecommender) getFromCache(ctx context.Context, key string) ([]recommend.Recommendation, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached recommendations", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	entries, err := decodeEntries(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached recommendations", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	recs := make([]recommend.Recommendation, len(entries))
	for i, e := range entries {
		it, err := c.inner.Item(e.id)
		if err != nil {
			c.logger.Warn("Cached recommendation refers to unknown item",
				zap.String("key", key), zap.Int64("id", e.id))
			return nil, false
		}
		recs[i] = recommend.Recommendation{Item: it, Score: e.score}
	}
	return recs, true
}

func (c *CachedRecommender) putToCache(ctx context.Context, key string, recs []recommend.Recommendation) {
	if err := c.store.SetWithTTL(ctx, key, encodeEntries(recs), c.ttl); err != nil {
		c.logger.Warn("Failed to cache recommendations", zap.String("key", key), zap.Error(err))
	}
}

type entry struct {
	id    int64
	score float64
}

func encodeEntries(recs []recommend.Recommendation) []byte {
	buf := make([]byte, len(recs)*entrySize)
	for i, r := range recs {
		off := i * entrySize
		binary.LittleEndian.PutUint64(buf[off:], uint64(r.Item.ID()))
		binary.LittleEndian.PutUint64(buf[off+8:], math.Float64bits(r.Score))
	}
	return buf
}

func decodeEntries(data []byte) ([]entry, error) {
	if len(data)%entrySize != 0 {
		return nil, fmt.Errorf("invalid recommendation cache data: len=%d (not multiple of %d)", len(data), entrySize)
	}
	out := make([]entry, len(data)/entrySize)
	for i := range out {
		off := i * entrySize
		out[i] = entry{
			id:    int64(binary.LittleEndian.Uint64(data[off:])),
			score: math.Float64frombits(binary.LittleEndian.Uint64(data[off+8:])),
		}
	}
	return out, nil
}
