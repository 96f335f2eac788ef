// Package cache provides a Redis-backed result cache for retrievers.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/gradientkb/schema"
)

// DefaultKeyPrefix is prepended to every cache key.
const DefaultKeyPrefix = "gradientkb:retrieve:"

// store is the consumer interface for the result cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Config configures a CachedRetriever.
type Config struct {
	// Namespace separates entries produced under different retriever settings.
	Namespace string
	KeyPrefix string
	TTL       time.Duration
}

// CachedRetriever caches retrieval results in a key-value store.
type CachedRetriever struct {
	inner      schema.Retriever
	store      store
	prefix     string
	namespace  string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

var (
	_ schema.Retriever      = (*CachedRetriever)(nil)
	_ schema.AsyncRetriever = (*CachedRetriever)(nil)
)

// NewRetriever creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly; may be nil.
func NewRetriever(
	inner schema.Retriever,
	s store,
	cfg Config,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedRetriever {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedRetriever{
		inner:      inner,
		store:      s,
		prefix:     prefix,
		namespace:  cfg.Namespace,
		ttl:        cfg.TTL,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Retrieve returns cached nodes or calls the inner retriever.
// Errors of the inner retriever are returned as is and never cached.
func (c *CachedRetriever) Retrieve(ctx context.Context, q schema.QueryBundle) ([]schema.NodeWithScore, error) {
	// Blank queries are rejected by the inner retriever; no cache round trip.
	if isBlank(q) {
		return c.inner.Retrieve(ctx, q)
	}
	key := c.cacheKey(q.QueryStr)

	if nodes, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return nodes, nil
	}

	c.incCache("miss")

	nodes, err := c.inner.Retrieve(ctx, q)
	if err != nil {
		return nil, err
	}

	c.putToCache(ctx, key, nodes)
	return nodes, nil
}

// RetrieveAsync checks the cache and, on a miss, uses the inner non-blocking path
// when the inner retriever has one. The cache lookup itself happens before returning.
func (c *CachedRetriever) RetrieveAsync(ctx context.Context, q schema.QueryBundle) *schema.Future {
	async, hasAsync := c.inner.(schema.AsyncRetriever)
	if isBlank(q) {
		if hasAsync {
			return async.RetrieveAsync(ctx, q)
		}
		future, resolve := schema.NewFuture()
		resolve(c.inner.Retrieve(ctx, q))
		return future
	}

	key := c.cacheKey(q.QueryStr)
	future, resolve := schema.NewFuture()

	if nodes, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		resolve(nodes, nil)
		return future
	}

	c.incCache("miss")

	go func() {
		var (
			nodes []schema.NodeWithScore
			err   error
		)
		if hasAsync {
			nodes, err = async.RetrieveAsync(ctx, q).Wait(context.WithoutCancel(ctx))
		} else {
			nodes, err = c.inner.Retrieve(ctx, q)
		}
		if err == nil {
			c.putToCache(context.WithoutCancel(ctx), key, nodes)
		}
		resolve(nodes, err)
	}()
	return future
}

func isBlank(q schema.QueryBundle) bool {
	return strings.TrimSpace(q.QueryStr) == ""
}

func (c *CachedRetriever) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedRetriever) cacheKey(query string) string {
	h := sha256.New()
	h.Write([]byte(c.namespace))
	h.Write([]byte{0})
	h.Write([]byte(query))
	return c.prefix + hex.EncodeToString(h.Sum(nil))
}

func (c *CachedRetriever) getFromCache(ctx context.Context, key string) ([]schema.NodeWithScore, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached result", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	nodes, err := decodeNodes(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached result", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return nodes, true
}

func (c *CachedRetriever) putToCache(ctx context.Context, key string, nodes []schema.NodeWithScore) {
	data, err := encodeNodes(nodes)
	if err != nil {
		c.logger.Warn("Failed to encode result for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache result", zap.String("key", key), zap.Error(err))
	}
}

// Namespace derives a stable cache namespace from the values that shape a result set.
func Namespace(parts ...any) string {
	data, err := json.Marshal(parts)
	if err != nil {
		return ""
	}
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:8])
}
