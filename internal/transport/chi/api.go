package chi

import "github.com/kailas-cloud/gradientkb/schema"

// ErrorCode is a machine-readable error code in API responses.
type ErrorCode string

// Error codes returned by the sidecar.
const (
	ErrorCodeBadRequest      ErrorCode = "bad_request"
	ErrorCodeEmptyQuery      ErrorCode = "empty_query"
	ErrorCodeUnauthorized    ErrorCode = "unauthorized"
	ErrorCodeUpstreamError   ErrorCode = "upstream_error"
	ErrorCodeUpstreamTimeout ErrorCode = "upstream_timeout"
	ErrorCodeInternalError   ErrorCode = "internal_error"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// RetrieveRequest is the body of POST /v1/retrieve.
type RetrieveRequest struct {
	Query string `json:"query"`
}

// RetrieveResponse is the body of a successful retrieval.
type RetrieveResponse struct {
	Nodes []Node `json:"nodes"`
	Count int    `json:"count"`
}

// Node is a scored node in API responses.
type Node struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

func nodesToAPI(nodes []schema.NodeWithScore) RetrieveResponse {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		md := n.Node.Metadata
		if md == nil {
			md = map[string]any{}
		}
		out[i] = Node{
			ID:       n.Node.ID,
			Text:     n.Node.Text,
			Score:    n.Score,
			Metadata: md,
		}
	}
	return RetrieveResponse{Nodes: out, Count: len(out)}
}
