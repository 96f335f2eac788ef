package gradientkb

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// retrieverMetrics holds prometheus metrics registered for the retriever.
type retrieverMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	nodes      *prometheus.HistogramVec
}

func newRetrieverMetrics(reg prometheus.Registerer) (*retrieverMetrics, error) {
	m := &retrieverMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gradientkb",
			Subsystem: "retriever",
			Name:      "operations_total",
			Help:      "Total retrieval calls by operation and status.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gradientkb",
			Subsystem: "retriever",
			Name:      "operation_duration_seconds",
			Help:      "Retrieval call duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"operation"}),
		nodes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gradientkb",
			Subsystem: "retriever",
			Name:      "nodes_returned",
			Help:      "Number of nodes returned per successful retrieval.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}, []string{"operation"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.nodes); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("gradientkb: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("gradientkb: register metric: %w", err)
	}
	return nil
}

// observer provides logging and metrics for retrieval calls.
type observer struct {
	logger  *zap.Logger
	metrics *retrieverMetrics
}

func newObserver(logger *zap.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *retrieverMetrics
	if reg != nil {
		var err error
		m, err = newRetrieverMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

func (o *observer) observe(op string, start time.Time, nodes int, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	if o.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
		if err == nil {
			o.metrics.nodes.WithLabelValues(op).Observe(float64(nodes))
		}
	}

	if o.logger != nil {
		if err != nil {
			o.logger.Warn("retrieval failed",
				zap.String("op", op),
				zap.Duration("duration", dur),
				zap.Error(err),
			)
		} else {
			o.logger.Debug("retrieval completed",
				zap.String("op", op),
				zap.Duration("duration", dur),
				zap.Int("nodes", nodes),
			)
		}
	}
}
