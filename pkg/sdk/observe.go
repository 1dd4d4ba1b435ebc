package recdex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/recdex/internal/domain"
)

// Operation names used as the "operation" label and the "op" log attribute.
const (
	opBuild         = "build"
	opRecommend     = "recommend"
	opRecommendByID = "recommend_by_id"
	opPing          = "ping"
)

// Status label values.
const (
	statusOK       = "ok"
	statusNotFound = "not_found"
	statusInvalid  = "invalid"
	statusError    = "error"
)

// sdkMetrics holds prometheus metrics registered for the SDK.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	results    prometheus.Histogram
	index      *prometheus.GaugeVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recdex",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Total SDK operations by type and status.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "recdex",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"operation"}),
		results: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "recdex",
			Subsystem: "sdk",
			Name:      "recommendation_results",
			Help:      "Items returned per recommendation call.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
		index: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "recdex",
			Subsystem: "sdk",
			Name:      "index_size",
			Help:      "Size of the most recently built index.",
		}, []string{"dimension"}), // "items" / "terms"
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.results); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.index); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or, when an equal one is already
// registered, swaps in the existing instance.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("recdex: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("recdex: metric already registered with incompatible type: %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// statusOf maps an operation error to its status label.
func statusOf(err error) string {
	switch {
	case err == nil:
		return statusOK
	case errors.Is(err, domain.ErrUnknownTitle), errors.Is(err, domain.ErrItemNotFound):
		return statusNotFound
	case errors.Is(err, domain.ErrInvalidRange),
		errors.Is(err, domain.ErrInvalidConfig),
		errors.Is(err, domain.ErrInvalidCorpus),
		errors.Is(err, domain.ErrEmptyVocabulary):
		return statusInvalid
	default:
		return statusError
	}
}

// observer provides logging and metrics for SDK operations. A nil logger or
// registerer disables the corresponding half.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

// observe records one finished operation. attrs are added to the log entry.
func (o *observer) observe(op string, start time.Time, err error, attrs ...slog.Attr) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	status := statusOf(err)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}

	if o.logger == nil {
		return
	}
	attrs = append(attrs, slog.String("op", op), slog.Duration("duration", dur))
	switch status {
	case statusOK:
		o.logger.LogAttrs(context.Background(), slog.LevelDebug, "operation completed", attrs...)
	case statusError:
		attrs = append(attrs, slog.Any("error", err))
		o.logger.LogAttrs(context.Background(), slog.LevelWarn, "operation failed", attrs...)
	default:
		attrs = append(attrs, slog.String("status", status), slog.Any("error", err))
		o.logger.LogAttrs(context.Background(), slog.LevelInfo, "operation rejected", attrs...)
	}
}

// observeResults records how many items a recommendation call returned.
func (o *observer) observeResults(n int) {
	if o == nil || o.metrics == nil {
		return
	}
	o.metrics.results.Observe(float64(n))
}

// observeIndex publishes the size of a freshly built index.
func (o *observer) observeIndex(items, terms int) {
	if o == nil || o.metrics == nil {
		return
	}
	o.metrics.index.WithLabelValues("items").Set(float64(items))
	o.metrics.index.WithLabelValues("terms").Set(float64(terms))
}
