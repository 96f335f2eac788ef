package gradientkb

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/gradientkb/internal/transport/gradient"
)

// --- documentsClient mock ---

type mockDocumentsClient struct {
	retrieveFn func(ctx context.Context, req *gradient.RetrieveRequest) (*gradient.RetrieveResponse, error)
	calls      int
	lastReq    *gradient.RetrieveRequest
}

func (m *mockDocumentsClient) RetrieveDocuments(
	ctx context.Context, req *gradient.RetrieveRequest,
) (*gradient.RetrieveResponse, error) {
	m.calls++
	m.lastReq = req
	return m.retrieveFn(ctx, req)
}

// --- asyncDocumentsClient mock ---

type mockAsyncDocumentsClient struct {
	retrieveFn func(ctx context.Context, req *gradient.RetrieveRequest) (*gradient.RetrieveResponse, error)
	calls      int
	lastReq    *gradient.RetrieveRequest
}

func (m *mockAsyncDocumentsClient) RetrieveDocuments(
	ctx context.Context, req *gradient.RetrieveRequest,
) <-chan gradient.Outcome {
	m.calls++
	m.lastReq = req
	out := make(chan gradient.Outcome, 1)
	resp, err := m.retrieveFn(ctx, req)
	out <- gradient.Outcome{Response: resp, Err: err}
	return out
}

// --- helpers ---

func respond(resp *gradient.RetrieveResponse, err error) func(
	context.Context, *gradient.RetrieveRequest,
) (*gradient.RetrieveResponse, error) {
	return func(context.Context, *gradient.RetrieveRequest) (*gradient.RetrieveResponse, error) {
		return resp, err
	}
}

func testRetriever(
	t *testing.T,
	client documentsClient,
	asyncClient asyncDocumentsClient,
	opts ...Option,
) *Retriever {
	t.Helper()
	r, err := New("kb-test", "test-token", opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if client != nil {
		r.client = func() documentsClient { return client }
	}
	if asyncClient != nil {
		r.asyncClient = func() asyncDocumentsClient { return asyncClient }
	}
	return r
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func testStart() time.Time { return time.Now() }
