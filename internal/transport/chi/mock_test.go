package chi

import (
	"context"

	"github.com/kailas-cloud/gradientkb/schema"
)

type mockRetriever struct {
	retrieveFn func(ctx context.Context, q schema.QueryBundle) ([]schema.NodeWithScore, error)
	syncCalls  int
	asyncCalls int
	lastQuery  string
}

func (m *mockRetriever) Retrieve(ctx context.Context, q schema.QueryBundle) ([]schema.NodeWithScore, error) {
	m.syncCalls++
	m.lastQuery = q.QueryStr
	if m.retrieveFn != nil {
		return m.retrieveFn(ctx, q)
	}
	return []schema.NodeWithScore{}, nil
}

func (m *mockRetriever) RetrieveAsync(ctx context.Context, q schema.QueryBundle) *schema.Future {
	m.asyncCalls++
	m.lastQuery = q.QueryStr
	f, resolve := schema.NewFuture()
	if m.retrieveFn != nil {
		resolve(m.retrieveFn(ctx, q))
	} else {
		resolve([]schema.NodeWithScore{}, nil)
	}
	return f
}

type mockCachePinger struct {
	err error
}

func (m *mockCachePinger) Ping(_ context.Context) error { return m.err }
