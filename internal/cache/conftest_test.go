package cache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gradientkb/schema"
)

type mockRetriever struct {
	nodes []schema.NodeWithScore
	err   error
	calls int
}

func (m *mockRetriever) Retrieve(_ context.Context, _ schema.QueryBundle) ([]schema.NodeWithScore, error) {
	m.calls++
	return m.nodes, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

// memStore is an in-memory store that keeps what was written.
type memStore struct {
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func newTestCachedRetriever(t *testing.T, inner *mockRetriever, s store) *CachedRetriever {
	t.Helper()
	return NewRetriever(inner, s, Config{Namespace: "ns", TTL: time.Minute}, nil, zap.NewNop())
}

// mockAsyncRetriever also exposes the non-blocking path.
type mockAsyncRetriever struct {
	mockRetriever
	asyncCalls int
}

func (m *mockAsyncRetriever) RetrieveAsync(_ context.Context, _ schema.QueryBundle) *schema.Future {
	m.asyncCalls++
	f, resolve := schema.NewFuture()
	resolve(m.nodes, m.err)
	return f
}
