// Package schema defines the node/score data model consumed by retrieval-augmented
// generation pipelines, and the retriever contracts that produce it.
package schema

// TextNode is a unit of retrieved text with its metadata.
type TextNode struct {
	ID       string
	Text     string
	Metadata map[string]any
}

// NodeWithScore pairs a node with its relevance score.
type NodeWithScore struct {
	Node  TextNode
	Score float64
}

// NodeID returns the identifier of the wrapped node.
func (n NodeWithScore) NodeID() string { return n.Node.ID }

// Text returns the text of the wrapped node.
func (n NodeWithScore) Text() string { return n.Node.Text }

// QueryBundle carries a retrieval query.
type QueryBundle struct {
	QueryStr string
}

// NewQueryBundle wraps a plain query string.
func NewQueryBundle(query string) QueryBundle {
	return QueryBundle{QueryStr: query}
}

// String returns the query text.
func (q QueryBundle) String() string { return q.QueryStr }
