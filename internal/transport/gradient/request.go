package gradient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/oapi-codegen/runtime"
)

// NewRetrieveDocumentsRequest builds the POST /v1/{knowledge_base_id}/retrieve request.
// server must end with a slash.
func NewRetrieveDocumentsRequest(server string, req *RetrieveRequest) (*http.Request, error) {
	buf, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return newRetrieveDocumentsRequestWithBody(server, req.KnowledgeBaseID, bytes.NewReader(buf))
}

func newRetrieveDocumentsRequestWithBody(server, knowledgeBaseID string, body io.Reader) (*http.Request, error) {
	pathParam0, err := runtime.StyleParamWithLocation(
		"simple", false, "knowledge_base_id", runtime.ParamLocationPath, knowledgeBaseID,
	)
	if err != nil {
		return nil, fmt.Errorf("encode knowledge_base_id: %w", err)
	}

	serverURL, err := url.Parse(server)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	operationPath := fmt.Sprintf("/v1/%s/retrieve", pathParam0)
	if operationPath[0] == '/' {
		operationPath = "." + operationPath
	}

	queryURL, err := serverURL.Parse(operationPath)
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, queryURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}
