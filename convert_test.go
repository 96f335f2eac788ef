package gradientkb

import (
	"testing"

	"github.com/google/uuid"

	"github.com/kailas-cloud/gradientkb/internal/transport/gradient"
)

func TestConvertToNodes_Example(t *testing.T) {
	resp := &gradient.RetrieveResponse{Results: []gradient.Result{
		{
			TextContent: strPtr("Paris is the capital of France"),
			Score:       floatPtr(0.92),
			DocumentID:  strPtr("doc-1"),
			ChunkID:     strPtr("c-1"),
			Source:      strPtr("wiki"),
		},
		{
			TextContent: strPtr("France is in Europe"),
			DocumentID:  strPtr("doc-2"),
		},
	}}

	nodes := convertToNodes("kb", resp, 5)
	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(nodes))
	}

	first := nodes[0]
	if first.Score != 0.92 {
		t.Errorf("first score = %v", first.Score)
	}
	if first.Node.ID != "c-1" {
		t.Errorf("first id = %q, want chunk id", first.Node.ID)
	}
	wantFirst := map[string]any{"document_id": "doc-1", "chunk_id": "c-1", "source": "wiki"}
	if len(first.Node.Metadata) != len(wantFirst) {
		t.Errorf("first metadata = %v", first.Node.Metadata)
	}
	for k, v := range wantFirst {
		if first.Node.Metadata[k] != v {
			t.Errorf("first metadata[%s] = %v, want %v", k, first.Node.Metadata[k], v)
		}
	}

	second := nodes[1]
	if second.Score != 1.0 {
		t.Errorf("second score = %v, want 1.0", second.Score)
	}
	if len(second.Node.Metadata) != 1 || second.Node.Metadata["document_id"] != "doc-2" {
		t.Errorf("second metadata = %v", second.Node.Metadata)
	}
	if _, ok := second.Node.Metadata["chunk_id"]; ok {
		t.Error("chunk_id key must be absent")
	}
	if _, ok := second.Node.Metadata["source"]; ok {
		t.Error("source key must be absent")
	}
	if _, err := uuid.Parse(second.Node.ID); err != nil {
		t.Errorf("fallback id %q is not a uuid: %v", second.Node.ID, err)
	}
}

func TestConvertToNodes_EmptyAndAbsent(t *testing.T) {
	tests := []struct {
		name string
		resp *gradient.RetrieveResponse
	}{
		{"nil response", nil},
		{"nil results", &gradient.RetrieveResponse{}},
		{"empty results", &gradient.RetrieveResponse{Results: []gradient.Result{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes := convertToNodes("kb", tt.resp, 5)
			if nodes == nil {
				t.Fatal("expected empty slice, got nil")
			}
			if len(nodes) != 0 {
				t.Fatalf("expected no nodes, got %d", len(nodes))
			}
		})
	}
}

func TestConvertToNodes_DropsRecordsWithoutText(t *testing.T) {
	resp := &gradient.RetrieveResponse{Results: []gradient.Result{
		{TextContent: strPtr("first"), Score: floatPtr(0.9)},
		{Score: floatPtr(0.8), DocumentID: strPtr("no-text")},
		{TextContent: strPtr(""), Score: floatPtr(0.7)},
		{TextContent: strPtr("second"), Score: floatPtr(0.6)},
	}}

	nodes := convertToNodes("kb", resp, 10)
	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(nodes))
	}
	if nodes[0].Node.Text != "first" || nodes[1].Node.Text != "second" {
		t.Errorf("order not preserved: %q, %q", nodes[0].Node.Text, nodes[1].Node.Text)
	}
}

func TestRecordScore(t *testing.T) {
	tests := []struct {
		name string
		rec  gradient.Result
		want float64
	}{
		{"score", gradient.Result{Score: floatPtr(0.4), RelevanceScore: floatPtr(0.9)}, 0.4},
		{"relevance fallback", gradient.Result{RelevanceScore: floatPtr(0.9)}, 0.9},
		{"default", gradient.Result{}, 1.0},
		{"zero score kept", gradient.Result{Score: floatPtr(0)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := recordScore(&tt.rec); got != tt.want {
				t.Errorf("score = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecordMetadata_FreeFormWins(t *testing.T) {
	rec := gradient.Result{
		TextContent: strPtr("x"),
		DocumentID:  strPtr("doc-1"),
		Source:      strPtr("computed"),
		Metadata:    map[string]any{"source": "record", "page": float64(42)},
	}

	m := recordMetadata(&rec)
	if m["source"] != "record" {
		t.Errorf("source = %v, want record metadata to win", m["source"])
	}
	if m["page"] != float64(42) {
		t.Errorf("page = %v", m["page"])
	}
	if m["document_id"] != "doc-1" {
		t.Errorf("document_id = %v", m["document_id"])
	}
}

func TestRecordMetadata_NullChunkIDNeverSet(t *testing.T) {
	rec := gradient.Result{
		TextContent: strPtr("x"),
		Metadata:    map[string]any{"chunk_id": nil, "lang": nil},
	}

	m := recordMetadata(&rec)
	if _, ok := m["chunk_id"]; ok {
		t.Error("chunk_id must not be set to nil")
	}
	if v, ok := m["lang"]; !ok || v != nil {
		t.Errorf("other nil fields are merged verbatim, got %v, %v", v, ok)
	}
}

func TestConvertToNodes_ChunkIDFromMetadata(t *testing.T) {
	resp := &gradient.RetrieveResponse{Results: []gradient.Result{
		{TextContent: strPtr("x"), Metadata: map[string]any{"chunk_id": "meta-chunk"}},
	}}

	nodes := convertToNodes("kb", resp, 5)
	if nodes[0].Node.ID != "meta-chunk" {
		t.Errorf("id = %q", nodes[0].Node.ID)
	}
}

func TestConvertToNodes_FallbackIDsDeterministicAndDistinct(t *testing.T) {
	resp := &gradient.RetrieveResponse{Results: []gradient.Result{
		{TextContent: strPtr("same")},
		{TextContent: strPtr("same")},
	}}

	a := convertToNodes("kb", resp, 5)
	b := convertToNodes("kb", resp, 5)
	if a[0].Node.ID != b[0].Node.ID || a[1].Node.ID != b[1].Node.ID {
		t.Error("ids must be stable across conversions")
	}
	if a[0].Node.ID == a[1].Node.ID {
		t.Error("ids must differ by position")
	}
	other := convertToNodes("kb-other", resp, 5)
	if other[0].Node.ID == a[0].Node.ID {
		t.Error("ids must differ across knowledge bases")
	}
}

func TestConvertToNodes_CapsAtLimit(t *testing.T) {
	results := make([]gradient.Result, 8)
	for i := range results {
		results[i] = gradient.Result{TextContent: strPtr("text")}
	}

	nodes := convertToNodes("kb", &gradient.RetrieveResponse{Results: results}, 3)
	if len(nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(nodes))
	}
	if all := convertToNodes("kb", &gradient.RetrieveResponse{Results: results}, 0); len(all) != 8 {
		t.Fatalf("limit 0 must not cap, got %d", len(all))
	}
}

func TestNodeID_ChunkIDFromMetadataMustBeScalar(t *testing.T) {
	tests := []struct {
		name    string
		chunkID any
		want    string
	}{
		{"string", "meta-chunk", "meta-chunk"},
		{"integral number", float64(42), "42"},
		{"fractional number", 1.5, "1.5"},
		{"object", map[string]any{"a": float64(1)}, ""},
		{"list", []any{"a", "b"}, ""},
		{"bool", true, ""},
		{"empty string", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &gradient.RetrieveResponse{Results: []gradient.Result{
				{TextContent: strPtr("x"), Metadata: map[string]any{"chunk_id": tt.chunkID}},
			}}
			nodes := convertToNodes("kb", resp, 0)
			if len(nodes) != 1 {
				t.Fatalf("expected 1 node, got %d", len(nodes))
			}
			id := nodes[0].Node.ID
			if tt.want != "" {
				if id != tt.want {
					t.Errorf("id = %q, want %q", id, tt.want)
				}
				return
			}
			if _, err := uuid.Parse(id); err != nil {
				t.Errorf("expected generated UUID, got %q", id)
			}
		})
	}
}
