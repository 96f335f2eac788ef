package cache

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/gradientkb/schema"
)

type cachedNode struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func encodeNodes(nodes []schema.NodeWithScore) ([]byte, error) {
	out := make([]cachedNode, len(nodes))
	for i, n := range nodes {
		out[i] = cachedNode{
			ID:       n.Node.ID,
			Text:     n.Node.Text,
			Score:    n.Score,
			Metadata: n.Node.Metadata,
		}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal nodes: %w", err)
	}
	return data, nil
}

// decodeNodes restores cached nodes. Numeric metadata values come back as float64.
func decodeNodes(data []byte) ([]schema.NodeWithScore, error) {
	var in []cachedNode
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("unmarshal nodes: %w", err)
	}
	nodes := make([]schema.NodeWithScore, len(in))
	for i, n := range in {
		md := n.Metadata
		if md == nil {
			md = map[string]any{}
		}
		nodes[i] = schema.NodeWithScore{
			Node:  schema.TextNode{ID: n.ID, Text: n.Text, Metadata: md},
			Score: n.Score,
		}
	}
	return nodes, nil
}
