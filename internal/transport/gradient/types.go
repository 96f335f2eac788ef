package gradient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// RetrieveRequest is the body of a knowledge base retrieval call.
type RetrieveRequest struct {
	KnowledgeBaseID string   `json:"-"`
	Query           string   `json:"query"`
	NumResults      int      `json:"num_results"`
	Alpha           *float64 `json:"alpha,omitempty"`
	Filters         *Filter  `json:"filters,omitempty"`
}

// Filter is a metadata filter expression with must/must_not semantics.
// It is forwarded to the API as is.
type Filter struct {
	Must    []Condition `json:"must,omitempty"`
	MustNot []Condition `json:"must_not,omitempty"`
}

// Condition is a single filter clause.
type Condition struct {
	Key      string `json:"key"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// RetrieveResponse is the body returned by a retrieval call.
type RetrieveResponse struct {
	Results      []Result `json:"results"`
	TotalResults int      `json:"total_results"`
}

// UnmarshalJSON requires an object with a list (or null) of results.
// A missing or mistyped total_results decodes to 0.
func (r *RetrieveResponse) UnmarshalJSON(data []byte) error {
	*r = RetrieveResponse{}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("response is not an object: %w", err)
	}

	if v := raw["results"]; !isNull(v) {
		if err := json.Unmarshal(v, &r.Results); err != nil {
			return fmt.Errorf("results: %w", err)
		}
	}
	r.TotalResults = countField(raw["total_results"])
	return nil
}

// Result is one retrieved record. Every field is optional: nil means the
// field was absent, null, or of a type that could not be interpreted.
type Result struct {
	TextContent    *string
	Score          *float64
	RelevanceScore *float64
	DocumentID     *string
	ChunkID        *string
	Source         *string
	Metadata       map[string]any
}

// UnmarshalJSON decodes a record field by field and never fails.
// A record that is not a JSON object decodes to an empty Result.
func (r *Result) UnmarshalJSON(data []byte) error {
	*r = Result{}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil //nolint:nilerr // malformed records degrade to "no fields"
	}

	r.TextContent = textField(raw["text_content"])
	r.Score = floatField(raw["score"])
	r.RelevanceScore = floatField(raw["relevance_score"])
	r.DocumentID = idField(raw["document_id"])
	r.ChunkID = idField(raw["chunk_id"])
	r.Source = idField(raw["source"])
	r.Metadata = objectField(raw["metadata"])
	return nil
}

// MarshalJSON writes only the fields that are present.
func (r Result) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 7)
	if r.TextContent != nil {
		out["text_content"] = *r.TextContent
	}
	if r.Score != nil {
		out["score"] = *r.Score
	}
	if r.RelevanceScore != nil {
		out["relevance_score"] = *r.RelevanceScore
	}
	if r.DocumentID != nil {
		out["document_id"] = *r.DocumentID
	}
	if r.ChunkID != nil {
		out["chunk_id"] = *r.ChunkID
	}
	if r.Source != nil {
		out["source"] = *r.Source
	}
	if r.Metadata != nil {
		out["metadata"] = r.Metadata
	}
	return json.Marshal(out)
}

func isNull(v json.RawMessage) bool {
	return len(v) == 0 || bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func textField(v json.RawMessage) *string {
	if isNull(v) {
		return nil
	}
	var s string
	if json.Unmarshal(v, &s) != nil {
		return nil
	}
	return &s
}

// idField accepts strings and numbers; numbers keep their literal form.
func idField(v json.RawMessage) *string {
	if s := textField(v); s != nil {
		return s
	}
	if isNull(v) {
		return nil
	}
	var n json.Number
	if json.Unmarshal(v, &n) != nil {
		return nil
	}
	s := n.String()
	return &s
}

// floatField accepts numbers and numeric strings.
func floatField(v json.RawMessage) *float64 {
	if isNull(v) {
		return nil
	}
	var f float64
	if json.Unmarshal(v, &f) != nil {
		var s string
		if json.Unmarshal(v, &s) != nil {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// countField accepts non-negative integral numbers and numeric strings.
func countField(v json.RawMessage) int {
	f := floatField(v)
	if f == nil || *f < 0 || *f > math.MaxInt32 || *f != math.Trunc(*f) {
		return 0
	}
	return int(*f)
}

func objectField(v json.RawMessage) map[string]any {
	if isNull(v) {
		return nil
	}
	var m map[string]any
	if json.Unmarshal(v, &m) != nil {
		return nil
	}
	return m
}
