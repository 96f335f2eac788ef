// Package gradient is an HTTP client for the DigitalOcean Gradient knowledge base
// retrieval API.
package gradient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kailas-cloud/gradientkb/internal/version"
)

const (
	// DefaultBaseURL is the public knowledge base retrieval endpoint.
	DefaultBaseURL = "https://kbaas.do-ai.run"
	// DefaultTimeout bounds a single retrieval round trip.
	DefaultTimeout = 60 * time.Second
)

var userAgent = "gradientkb-go/" + version.Version

// Config holds transport settings shared by Client and AsyncClient.
type Config struct {
	APIToken   string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client performs blocking retrieval calls.
type Client struct {
	httpClient *http.Client
	server     string
	token      string
}

// NewClient creates a Client. Empty BaseURL and zero Timeout fall back to the defaults.
// A caller-supplied HTTPClient is copied; its Timeout is kept when already set.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var hc http.Client
	if cfg.HTTPClient != nil {
		hc = *cfg.HTTPClient
	}
	if hc.Timeout == 0 {
		hc.Timeout = timeout
	}

	server := cfg.BaseURL
	if server == "" {
		server = DefaultBaseURL
	}
	if !strings.HasSuffix(server, "/") {
		server += "/"
	}

	return &Client{httpClient: &hc, server: server, token: cfg.APIToken}
}

// Timeout returns the effective request timeout.
func (c *Client) Timeout() time.Duration { return c.httpClient.Timeout }

// RetrieveDocuments queries a knowledge base. Non-2xx responses return *APIError.
// An empty 2xx body yields an empty response.
func (c *Client) RetrieveDocuments(ctx context.Context, req *RetrieveRequest) (*RetrieveResponse, error) {
	httpReq, err := NewRetrieveDocumentsRequest(c.server, req)
	if err != nil {
		return nil, err
	}
	httpReq = httpReq.WithContext(ctx)
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("retrieve documents: %w", err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, parseAPIError(resp)
	}

	var out RetrieveResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			return &RetrieveResponse{}, nil
		}
		return nil, fmt.Errorf("decode retrieve response: %w", err)
	}
	return &out, nil
}

func drainAndClose(r io.ReadCloser) {
	_, _ = io.Copy(io.Discard, r)
	_ = r.Close()
}
