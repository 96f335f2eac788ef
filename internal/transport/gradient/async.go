package gradient

import (
	"context"
	"time"
)

// Outcome is the result of an asynchronous retrieval call.
type Outcome struct {
	Response *RetrieveResponse
	Err      error
}

// AsyncClient performs retrieval calls without blocking the caller.
type AsyncClient struct {
	client *Client
}

// NewAsyncClient creates an AsyncClient with the same settings semantics as NewClient.
func NewAsyncClient(cfg Config) *AsyncClient {
	return &AsyncClient{client: NewClient(cfg)}
}

// Timeout returns the effective request timeout.
func (a *AsyncClient) Timeout() time.Duration { return a.client.Timeout() }

// RetrieveDocuments starts the call in its own goroutine. The channel receives
// exactly one Outcome and is buffered, so an abandoned call does not leak.
func (a *AsyncClient) RetrieveDocuments(ctx context.Context, req *RetrieveRequest) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		resp, err := a.client.RetrieveDocuments(ctx, req)
		out <- Outcome{Response: resp, Err: err}
	}()
	return out
}
