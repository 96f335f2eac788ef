package gradientkb

import (
	"errors"

	"github.com/kailas-cloud/gradientkb/internal/transport/gradient"
)

// Configuration and query errors. Use errors.Is() to check.
var (
	ErrKnowledgeBaseIDRequired = errors.New("gradientkb: knowledge base id is required")
	ErrAPITokenRequired        = errors.New("gradientkb: api token is required")
	ErrInvalidNumResults       = errors.New("gradientkb: num results out of range")
	ErrInvalidAlpha            = errors.New("gradientkb: alpha must be within [0, 1]")
	ErrInvalidTimeout          = errors.New("gradientkb: timeout must be positive")
	ErrEmptyQuery              = errors.New("gradientkb: query is empty")
)

// APIError is returned when the knowledge base API answers with a non-2xx status.
// Use errors.As() to inspect it.
type APIError = gradient.APIError
