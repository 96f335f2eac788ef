package gradientkb

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/kailas-cloud/gradientkb/internal/transport/gradient"
	"github.com/kailas-cloud/gradientkb/schema"
)

// Internal interfaces for substitution in tests.
type documentsClient interface {
	RetrieveDocuments(ctx context.Context, req *gradient.RetrieveRequest) (*gradient.RetrieveResponse, error)
}

type asyncDocumentsClient interface {
	RetrieveDocuments(ctx context.Context, req *gradient.RetrieveRequest) <-chan gradient.Outcome
}

// Retriever queries a Gradient knowledge base and returns scored nodes.
// It is safe for concurrent use.
type Retriever struct {
	knowledgeBaseID string
	numResults      int
	alpha           *float64
	filters         *gradient.Filter
	baseURL         string
	timeout         time.Duration

	// Built on first use and reused afterwards.
	client      func() documentsClient
	asyncClient func() asyncDocumentsClient

	obs *observer
}

var (
	_ schema.Retriever      = (*Retriever)(nil)
	_ schema.AsyncRetriever = (*Retriever)(nil)
)

// New creates a Retriever for the given knowledge base.
// No network call is made; transport clients are created lazily.
func New(knowledgeBaseID, apiToken string, opts ...Option) (*Retriever, error) {
	cfg := &retrieverConfig{
		numResults: DefaultNumResults,
		timeout:    DefaultTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if err := validate(knowledgeBaseID, apiToken, cfg); err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	tc := gradient.Config{
		APIToken:   apiToken,
		BaseURL:    cfg.baseURL,
		Timeout:    cfg.timeout,
		HTTPClient: cfg.httpClient,
	}

	baseURL := cfg.baseURL
	if baseURL == "" {
		baseURL = gradient.DefaultBaseURL
	}

	return &Retriever{
		knowledgeBaseID: knowledgeBaseID,
		numResults:      cfg.numResults,
		alpha:           cfg.alpha,
		filters:         toTransportFilter(cfg.filters),
		baseURL:         baseURL,
		timeout:         cfg.timeout,
		client: sync.OnceValue(func() documentsClient {
			return gradient.NewClient(tc)
		}),
		asyncClient: sync.OnceValue(func() asyncDocumentsClient {
			return gradient.NewAsyncClient(tc)
		}),
		obs: obs,
	}, nil
}

func validate(knowledgeBaseID, apiToken string, cfg *retrieverConfig) error {
	if knowledgeBaseID == "" {
		return ErrKnowledgeBaseIDRequired
	}
	if apiToken == "" {
		return ErrAPITokenRequired
	}
	if cfg.numResults < MinNumResults || cfg.numResults > MaxNumResults {
		return fmt.Errorf("%w: must be between %d and %d, got %d",
			ErrInvalidNumResults, MinNumResults, MaxNumResults, cfg.numResults)
	}
	if a := cfg.alpha; a != nil && (math.IsNaN(*a) || *a < 0 || *a > 1) {
		return fmt.Errorf("%w: got %v", ErrInvalidAlpha, *a)
	}
	if cfg.timeout <= 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidTimeout, cfg.timeout)
	}
	return nil
}

// KnowledgeBaseID returns the queried knowledge base.
func (r *Retriever) KnowledgeBaseID() string { return r.knowledgeBaseID }

// NumResults returns the number of results requested per query.
func (r *Retriever) NumResults() int { return r.numResults }

// Alpha returns the hybrid search weight and whether one is set.
func (r *Retriever) Alpha() (float64, bool) {
	if r.alpha == nil {
		return 0, false
	}
	return *r.alpha, true
}

// BaseURL returns the effective API base URL.
func (r *Retriever) BaseURL() string { return r.baseURL }

// Timeout returns the configured request timeout.
func (r *Retriever) Timeout() time.Duration { return r.timeout }

// Retrieve queries the knowledge base and blocks until the nodes are ready.
// Transport and API errors are returned as produced by the transport client.
func (r *Retriever) Retrieve(ctx context.Context, query schema.QueryBundle) (nodes []schema.NodeWithScore, err error) {
	start := time.Now()
	defer func() { r.obs.observe("retrieve", start, len(nodes), err) }()

	req, err := r.request(query)
	if err != nil {
		return nil, err
	}

	resp, err := r.client().RetrieveDocuments(ctx, req)
	if err != nil {
		return nil, err //nolint:wrapcheck // transport errors are part of the contract
	}
	return convertToNodes(r.knowledgeBaseID, resp, r.numResults), nil
}

// RetrieveAsync starts a query and returns immediately. The network call is the
// only step that runs concurrently; conversion happens once the response arrives.
func (r *Retriever) RetrieveAsync(ctx context.Context, query schema.QueryBundle) *schema.Future {
	start := time.Now()
	f, resolve := schema.NewFuture()

	req, err := r.request(query)
	if err != nil {
		r.obs.observe("retrieve_async", start, 0, err)
		resolve(nil, err)
		return f
	}

	pending := r.asyncClient().RetrieveDocuments(ctx, req)
	go func() {
		out := <-pending
		if out.Err != nil {
			r.obs.observe("retrieve_async", start, 0, out.Err)
			resolve(nil, out.Err)
			return
		}
		nodes := convertToNodes(r.knowledgeBaseID, out.Response, r.numResults)
		r.obs.observe("retrieve_async", start, len(nodes), nil)
		resolve(nodes, nil)
	}()
	return f
}

func (r *Retriever) request(query schema.QueryBundle) (*gradient.RetrieveRequest, error) {
	if strings.TrimSpace(query.QueryStr) == "" {
		return nil, ErrEmptyQuery
	}
	return &gradient.RetrieveRequest{
		KnowledgeBaseID: r.knowledgeBaseID,
		Query:           query.QueryStr,
		NumResults:      r.numResults,
		Alpha:           r.alpha,
		Filters:         r.filters,
	}, nil
}
