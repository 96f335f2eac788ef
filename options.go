package gradientkb

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Result count bounds and defaults.
const (
	MinNumResults     = 1
	MaxNumResults     = 100
	DefaultNumResults = 5
	DefaultTimeout    = 60 * time.Second
)

// Option configures the Retriever.
type Option interface {
	apply(*retrieverConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*retrieverConfig)

func (f optionFunc) apply(c *retrieverConfig) { f(c) }

type retrieverConfig struct {
	numResults int
	alpha      *float64
	filters    *Filter
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithNumResults sets how many results to request per query (1-100).
// Default: 5.
func WithNumResults(n int) Option {
	return optionFunc(func(c *retrieverConfig) {
		c.numResults = n
	})
}

// WithAlpha sets the hybrid search weight: 0 is pure keyword, 1 is pure semantic.
// Unset means the server default.
func WithAlpha(alpha float64) Option {
	return optionFunc(func(c *retrieverConfig) {
		c.alpha = &alpha
	})
}

// WithFilters sets the metadata filter applied to every query.
func WithFilters(f Filter) Option {
	return optionFunc(func(c *retrieverConfig) {
		c.filters = &f
	})
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) Option {
	return optionFunc(func(c *retrieverConfig) {
		c.baseURL = url
	})
}

// WithTimeout bounds each retrieval round trip. Default: 60s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *retrieverConfig) {
		c.timeout = d
	})
}

// WithHTTPClient sets the underlying HTTP client. Its Timeout, if set, wins over WithTimeout.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *retrieverConfig) {
		c.httpClient = hc
	})
}

// WithLogger enables structured logging for retrieval calls.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *retrieverConfig) {
		c.logger = l
	})
}

// WithPrometheus registers retrieval metrics (call counts, durations and node counts)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *retrieverConfig) {
		c.metricsReg = reg
	})
}
