package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vietsaga/vietsaga/pkg/component/milvus"
	"github.com/vietsaga/vietsaga/pkg/utils/json"
)

// chunkOutputFields are the metadata columns fetched per search hit.
var chunkOutputFields = []string{"chunk_id", "text", "source", "period", "entities"}

// milvusStore implements VectorStore on the Milvus component.
type milvusStore struct {
	client *milvus.Client
}

var _ VectorStore = (*milvusStore)(nil)

// NewMilvusStore creates a Milvus-backed VectorStore.
func NewMilvusStore(client *milvus.Client) VectorStore {
	return &milvusStore{client: client}
}

func (s *milvusStore) Search(ctx context.Context, vector []float32, topK int, periodTags []string) ([]ChunkDoc, error) {
	results, err := s.client.Search(ctx, vector, topK, buildPeriodExpr(periodTags), chunkOutputFields)
	if errors.Is(err, milvus.ErrCollectionNotReady) {
		return nil, ErrIndexNotReady
	}
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	docs := make([]ChunkDoc, 0, len(results))
	for _, hit := range results {
		doc := ChunkDoc{
			ChunkID: hit.ID,
			Score:   float64(hit.Score),
		}
		if v, ok := hit.Metadata["chunk_id"].(int64); ok {
			doc.ChunkID = v
		}
		if v, ok := hit.Metadata["text"].(string); ok {
			doc.Text = v
		}
		if v, ok := hit.Metadata["source"].(string); ok {
			doc.Source = v
		}
		if v, ok := hit.Metadata["period"].(string); ok {
			doc.Dynasty = v
		}
		if v, ok := hit.Metadata["entities"].(string); ok && v != "" {
			// Entities are stored as a JSON array; a bare string is kept
			// as a single entity for backward compatibility.
			var entities []string
			if err := json.Unmarshal([]byte(v), &entities); err != nil {
				entities = []string{v}
			}
			doc.Entities = entities
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *milvusStore) Ready(ctx context.Context) bool {
	return s.client.Ready(ctx)
}

func (s *milvusStore) Count(ctx context.Context) (int64, error) {
	count, err := s.client.Count(ctx)
	if errors.Is(err, milvus.ErrCollectionNotReady) {
		return 0, ErrIndexNotReady
	}
	return count, err
}

// buildPeriodExpr renders a Milvus filter expression restricting hits to the
// given period tags, e.g. `period in ["Le","LeSo","HauLe"]`.
func buildPeriodExpr(periodTags []string) string {
	if len(periodTags) == 0 {
		return ""
	}
	quoted := make([]string, len(periodTags))
	for i, tag := range periodTags {
		quoted[i] = `"` + tag + `"`
	}
	return "period in [" + strings.Join(quoted, ",") + "]"
}
