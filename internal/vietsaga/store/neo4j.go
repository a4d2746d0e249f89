package store

import (
	"context"
	"fmt"

	"github.com/vietsaga/vietsaga/pkg/component/neo4j"
)

// neo4jStore implements GraphStore on the Neo4j component.
type neo4jStore struct {
	client *neo4j.Client
}

var _ GraphStore = (*neo4jStore)(nil)

// NewGraphStore creates a Neo4j-backed GraphStore.
func NewGraphStore(client *neo4j.Client) GraphStore {
	return &neo4jStore{client: client}
}

func (s *neo4jStore) LinksForChunks(ctx context.Context, chunkIDs []int64, limit int) ([]GraphLinkRec, error) {
	links, err := s.client.LinksForChunks(ctx, chunkIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("graph lookup failed: %w", err)
	}

	recs := make([]GraphLinkRec, 0, len(links))
	for _, link := range links {
		recs = append(recs, GraphLinkRec{
			Relation:    link.Relation,
			Description: link.Description,
			ChunkID:     link.ChunkID,
		})
	}
	return recs, nil
}
