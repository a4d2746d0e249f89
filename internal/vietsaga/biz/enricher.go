package biz

import (
	"context"

	"github.com/kart-io/logger"

	"github.com/vietsaga/vietsaga/internal/pkg/textutil"
	"github.com/vietsaga/vietsaga/internal/vietsaga/store"
)

// graphLinkLimit caps relations fetched per routing request.
const graphLinkLimit = 4

// Enricher decorates retrieved chunks with knowledge-graph relations.
type Enricher struct {
	graph store.GraphStore
}

// NewEnricher creates an enricher over the graph store.
func NewEnricher(graph store.GraphStore) *Enricher {
	return &Enricher{graph: graph}
}

// Links fetches graph relations for the retrieved chunks. Graph failures
// degrade to no links; the evidence trail is decoration, not evidence.
func (e *Enricher) Links(ctx context.Context, docs []store.ChunkDoc) []GraphLink {
	if e.graph == nil || len(docs) == 0 {
		return nil
	}
	chunkIDs := make([]int64, 0, len(docs))
	for _, doc := range docs {
		chunkIDs = append(chunkIDs, doc.ChunkID)
	}
	recs, err := e.graph.LinksForChunks(ctx, chunkIDs, graphLinkLimit)
	if err != nil {
		logger.Warnw("Graph lookup failed", "error", err)
		return nil
	}
	links := make([]GraphLink, 0, len(recs))
	for _, rec := range recs {
		links = append(links, GraphLink{
			Relation:    rec.Relation,
			Description: rec.Description,
			ChunkID:     rec.ChunkID,
		})
	}
	return links
}

// EnsureLinks guarantees a non-empty trail whenever evidence exists,
// deriving one link per chunk from the first three chunks when the graph
// returned nothing.
func EnsureLinks(docs []store.ChunkDoc, links []GraphLink) []GraphLink {
	if len(links) > 0 {
		return links
	}
	var fallback []GraphLink
	for i, doc := range docs {
		if i == 3 {
			break
		}
		relation := doc.Dynasty
		if relation == "" {
			relation = "Tư liệu"
		}
		fallback = append(fallback, GraphLink{
			Relation:    relation,
			Description: textutil.Summarize(doc.Text, summarizeLimit),
			ChunkID:     doc.ChunkID,
		})
	}
	return fallback
}
