package main

import (
	"testing"

	"github.com/kailas-cloud/gradientkb"
	"github.com/kailas-cloud/gradientkb/internal/config"
	"go.uber.org/zap"
)

func TestRetrieverOptions_BuildValidRetriever(t *testing.T) {
	alpha := 0.7
	g := config.GradientConfig{
		KnowledgeBaseID: "kb",
		APIToken:        "tok",
		BaseURL:         "https://kb.example.com",
		NumResults:      12,
		Alpha:           &alpha,
		TimeoutSec:      30,
		Filters: config.FilterConfig{
			Must: []config.ConditionConfig{{Key: "lang", Operator: "eq", Value: "en"}},
		},
	}

	r, err := gradientkb.New(g.KnowledgeBaseID, g.APIToken, retrieverOptions(g, zap.NewNop())...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.NumResults() != 12 || r.BaseURL() != "https://kb.example.com" {
		t.Errorf("num results = %d, base url = %q", r.NumResults(), r.BaseURL())
	}
	if a, ok := r.Alpha(); !ok || a != 0.7 {
		t.Errorf("alpha = %v, %v", a, ok)
	}
}

func TestFilterFromConfig(t *testing.T) {
	f := filterFromConfig(config.FilterConfig{
		MustNot: []config.ConditionConfig{{Key: "year", Operator: "lt", Value: 2020}},
	})
	if f.Must != nil {
		t.Errorf("expected nil must, got %v", f.Must)
	}
	if len(f.MustNot) != 1 || f.MustNot[0].Operator != gradientkb.OpLt {
		t.Errorf("unexpected must_not: %+v", f.MustNot)
	}
	if !filterFromConfig(config.FilterConfig{}).IsEmpty() {
		t.Error("empty config must produce an empty filter")
	}
}

func TestCacheNamespace(t *testing.T) {
	a := config.GradientConfig{KnowledgeBaseID: "kb", NumResults: 5}
	b := a
	b.NumResults = 6
	if cacheNamespace(a) == cacheNamespace(b) {
		t.Error("namespace must depend on num_results")
	}
	if cacheNamespace(a) != cacheNamespace(a) {
		t.Error("namespace must be deterministic")
	}
}
