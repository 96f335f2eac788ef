package gradient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const maxErrorBody = 4096

// APIError is returned for non-2xx responses from the knowledge base API.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gradient api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gradient api error %d", e.StatusCode)
}

func parseAPIError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
	}
	msg := extractMessage(body)
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg, Body: body}
}

// extractMessage pulls a human-readable message out of the common error body shapes:
// {"message": ...}, {"detail": ...} and {"error": "..."}.
func extractMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Error   any    `json:"error"`
	}
	if json.Unmarshal(body, &parsed) != nil {
		return ""
	}
	switch {
	case parsed.Message != "":
		return parsed.Message
	case parsed.Detail != "":
		return parsed.Detail
	}
	if s, ok := parsed.Error.(string); ok {
		return s
	}
	return ""
}
