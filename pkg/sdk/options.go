package recdex

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/recdex/internal/db"
	"github.com/kailas-cloud/recdex/internal/domain/vectorizer"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	vectorizer vectorizer.Config
	workers    int
	defaultK   int
	maxK       int

	// result cache, optional
	driver     string // "valkey" or "redis"
	addrs      []string
	password   string
	standalone bool
	cacheTTL   time.Duration
	store      db.Store

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

func defaultClientConfig() *clientConfig {
	return &clientConfig{
		vectorizer: vectorizer.DefaultConfig(),
		workers:    1,
		cacheTTL:   time.Hour,
	}
}

// WithMinDF drops terms found in less than this fraction of items. Default 0.
func WithMinDF(v float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorizer.MinDF = v
	})
}

// WithMaxDF drops terms found in more than this fraction of items. Default 1.
func WithMaxDF(v float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorizer.MaxDF = v
	})
}

// WithMaxFeatures keeps only the n most frequent terms. 0 keeps all. Default 5000.
func WithMaxFeatures(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorizer.MaxFeatures = n
	})
}

// WithNGramRange counts runs of lo..hi consecutive tokens as terms. Default (1, 1).
func WithNGramRange(lo, hi int) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorizer.NGramRange = vectorizer.NGramRange{Min: lo, Max: hi}
	})
}

// WithStopWords replaces the built-in English stop list. No words disables stop word removal.
func WithStopWords(words ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorizer.StopWords = append([]string(nil), words...)
	})
}

// WithTokenPattern extracts tokens as matches of a regular expression
// instead of splitting on whitespace.
func WithTokenPattern(pattern string) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorizer.TokenPattern = pattern
	})
}

// WithLowercase toggles lowercasing before tokenization. Default true.
func WithLowercase(on bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorizer.Lowercase = on
	})
}

// WithWorkers scans large corpora with n goroutines. n <= 0 uses GOMAXPROCS. Default 1.
func WithWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.workers = n
	})
}

// WithLimits sets the k used when a query passes 0 and the largest k accepted.
// Defaults: 5 and 100.
func WithLimits(defaultK, maxK int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultK = defaultK
		c.maxK = maxK
	})
}

// WithValkey caches recommendations in a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis caches recommendations in a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithStandalone disables cluster topology discovery for the cache.
func WithStandalone() Option {
	return optionFunc(func(c *clientConfig) {
		c.standalone = true
	})
}

// WithCacheTTL sets how long cached recommendations live. Default 1h.
func WithCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

// withStore injects a ready cache store (tests).
func withStore(s db.Store) Option {
	return optionFunc(func(c *clientConfig) {
		c.store = s
	})
}
