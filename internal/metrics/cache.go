package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// CacheTotal counts result cache lookups by outcome.
var CacheTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_total",
		Help:      "Retrieval result cache hits and misses",
	},
	[]string{"result"}, // "hit" / "miss"
)

var registerCache sync.Once

// RegisterCacheMetrics registers the cache counter on the default registry. Safe to call more than once.
func RegisterCacheMetrics() {
	registerCache.Do(func() {
		prometheus.MustRegister(CacheTotal)
	})
}
