// Package chi exposes a retriever over HTTP using the chi router.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/gradientkb"
	"github.com/kailas-cloud/gradientkb/internal/logger"
	"github.com/kailas-cloud/gradientkb/internal/version"
	healthuc "github.com/kailas-cloud/gradientkb/internal/usecase/health"
	"github.com/kailas-cloud/gradientkb/schema"
)

const maxBodyBytes = 1 << 20

// errorHandler tries to handle a retrieval error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// retriever is what the server needs from the retrieval stack.
type retriever interface {
	schema.Retriever
	schema.AsyncRetriever
}

// Server serves retrieval requests.
type Server struct {
	retriever     retriever
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(r retriever, health *healthuc.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		retriever: r,
		health:    health,
		logger:    logger,
		errorHandlers: []errorHandler{
			sentinelHandler(gradientkb.ErrEmptyQuery, http.StatusBadRequest, ErrorCodeEmptyQuery),
			upstreamAPIErrorHandler,
			timeoutHandler,
		},
	}
}

// Mount registers the API routes on r.
func (s *Server) Mount(r chi.Router) {
	r.Post("/v1/retrieve", s.Retrieve)
	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// Retrieve handles POST /v1/retrieve. With ?mode=async the non-blocking path is used.
func (s *Server) Retrieve(w http.ResponseWriter, r *http.Request) {
	var req RetrieveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	q := schema.NewQueryBundle(req.Query)

	var (
		nodes []schema.NodeWithScore
		err   error
	)
	switch mode := r.URL.Query().Get("mode"); mode {
	case "", "sync":
		nodes, err = s.retriever.Retrieve(r.Context(), q)
	case "async":
		nodes, err = s.retriever.RetrieveAsync(r.Context(), q).Wait(r.Context())
	default:
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, fmt.Sprintf("unknown mode %q", mode))
		return
	}
	if err != nil {
		s.handleRetrieveError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, nodesToAPI(nodes))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Version: version.Version,
		Checks:  checks,
	})
}

func (s *Server) handleRetrieveError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("retrieval error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

// upstreamAPIErrorHandler maps knowledge base API failures to 502, keeping the upstream status in the message.
func upstreamAPIErrorHandler(w http.ResponseWriter, err error) bool {
	var apiErr *gradientkb.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	writeError(w, http.StatusBadGateway, ErrorCodeUpstreamError,
		fmt.Sprintf("knowledge base returned %d: %s", apiErr.StatusCode, apiErr.Message))
	return true
}

func timeoutHandler(w http.ResponseWriter, err error) bool {
	var netErr net.Error
	if !errors.Is(err, context.DeadlineExceeded) && !(errors.As(err, &netErr) && netErr.Timeout()) {
		return false
	}
	writeError(w, http.StatusGatewayTimeout, ErrorCodeUpstreamTimeout, "knowledge base request timed out")
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
