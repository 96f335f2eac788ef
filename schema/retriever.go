package schema

import "context"

// Retriever returns scored nodes for a query, blocking until the result is ready.
type Retriever interface {
	Retrieve(ctx context.Context, query QueryBundle) ([]NodeWithScore, error)
}

// AsyncRetriever starts a retrieval and returns immediately.
// The outcome is delivered through the returned Future.
type AsyncRetriever interface {
	RetrieveAsync(ctx context.Context, query QueryBundle) *Future
}
