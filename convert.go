package gradientkb

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/kailas-cloud/gradientkb/internal/transport/gradient"
	"github.com/kailas-cloud/gradientkb/schema"
)

// Metadata keys set on every node when the record carries the field.
const (
	MetadataDocumentID = "document_id"
	MetadataChunkID    = "chunk_id"
	MetadataSource     = "source"
)

// DefaultScore is assigned when a record carries neither score nor relevance_score.
const DefaultScore = 1.0

// nodeNamespace seeds deterministic node ids for records without a chunk id.
var nodeNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte(gradient.DefaultBaseURL))

// convertToNodes turns API records into scored nodes, preserving order.
// Records without text are skipped. At most limit nodes are returned (limit <= 0: no cap).
func convertToNodes(knowledgeBaseID string, resp *gradient.RetrieveResponse, limit int) []schema.NodeWithScore {
	if resp == nil || len(resp.Results) == 0 {
		return []schema.NodeWithScore{}
	}

	capacity := len(resp.Results)
	if limit > 0 && limit < capacity {
		capacity = limit
	}
	nodes := make([]schema.NodeWithScore, 0, capacity)

	for idx := range resp.Results {
		if limit > 0 && len(nodes) == limit {
			break
		}
		rec := &resp.Results[idx]
		if rec.TextContent == nil || *rec.TextContent == "" {
			continue
		}

		metadata := recordMetadata(rec)
		nodes = append(nodes, schema.NodeWithScore{
			Node: schema.TextNode{
				ID:       nodeID(knowledgeBaseID, idx, rec, metadata),
				Text:     *rec.TextContent,
				Metadata: metadata,
			},
			Score: recordScore(rec),
		})
	}
	return nodes
}

func recordScore(rec *gradient.Result) float64 {
	switch {
	case rec.Score != nil:
		return *rec.Score
	case rec.RelevanceScore != nil:
		return *rec.RelevanceScore
	default:
		return DefaultScore
	}
}

// recordMetadata builds node metadata. Free-form record metadata wins on key
// collision, except that chunk_id is never set to nil.
func recordMetadata(rec *gradient.Result) map[string]any {
	m := make(map[string]any, 3+len(rec.Metadata))
	if rec.DocumentID != nil {
		m[MetadataDocumentID] = *rec.DocumentID
	}
	if rec.ChunkID != nil {
		m[MetadataChunkID] = *rec.ChunkID
	}
	if rec.Source != nil {
		m[MetadataSource] = *rec.Source
	}
	for k, v := range rec.Metadata {
		if k == MetadataChunkID && v == nil {
			continue
		}
		m[k] = v
	}
	return m
}

// nodeID uses the chunk id when there is one. Otherwise it derives a UUIDv5
// from the knowledge base, position, document and text, so the same response
// always yields the same ids.
func nodeID(knowledgeBaseID string, idx int, rec *gradient.Result, metadata map[string]any) string {
	if id, ok := scalarID(metadata[MetadataChunkID]); ok {
		return id
	}

	var docID string
	if rec.DocumentID != nil {
		docID = *rec.DocumentID
	}
	name := knowledgeBaseID + "\x00" + strconv.Itoa(idx) + "\x00" + docID + "\x00" + *rec.TextContent
	return uuid.NewSHA1(nodeNamespace, []byte(name)).String()
}

// scalarID formats a string or number as an id. Objects, lists and empty
// strings are not ids.
func scalarID(v any) (string, bool) {
	var id string
	switch t := v.(type) {
	case string:
		id = t
	case float64:
		id = strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		id = strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, json.Number:
		id = fmt.Sprint(t)
	default:
		return "", false
	}
	return id, id != ""
}
