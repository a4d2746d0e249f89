package biz

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/kart-io/logger"

	"github.com/vietsaga/vietsaga/internal/pkg/textutil"
	"github.com/vietsaga/vietsaga/internal/vietsaga/store"
)

// contextSourcePath labels chunks whose origin metadata is missing.
const contextSourcePath = "rag/viet_nam_su_luoc.pdf"

// summarizeLimit caps chunk text shown in routing responses.
const summarizeLimit = 220

// Retriever fetches evidence chunks for a classified question.
type Retriever struct {
	vector   store.VectorStore
	embedder EmbeddingClient
	catalog  *Catalog
	topK     int
}

// EmbeddingClient is the slice of the LLM provider the retriever needs.
type EmbeddingClient interface {
	EmbedSingle(ctx context.Context, text string) ([]float32, error)
}

// NewRetriever creates a retriever over the vector store.
func NewRetriever(vector store.VectorStore, embedder EmbeddingClient, catalog *Catalog, topK int) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	return &Retriever{vector: vector, embedder: embedder, catalog: catalog, topK: topK}
}

// Retrieve embeds the question and searches the vector store, scoped to the
// analysis' retrieval period tags. An index that is not ready degrades to an
// empty result instead of failing the request. When an entity was detected
// the result is narrowed to chunks mentioning it, falling back to the
// unfiltered set if that would empty the result.
func (r *Retriever) Retrieve(ctx context.Context, question string, analysis RequestAnalysis) ([]store.ChunkDoc, error) {
	vector, err := r.embedder.EmbedSingle(ctx, question)
	if err != nil {
		return nil, err
	}

	docs, err := r.vector.Search(ctx, vector, r.topK, analysis.RAGPeriods)
	if err != nil {
		if errors.Is(err, store.ErrIndexNotReady) {
			logger.Warnw("Vector index not ready, serving without context")
			return nil, nil
		}
		return nil, err
	}

	docs = filterByEntity(docs, analysis.CharacterEvent)
	if len(docs) > r.topK {
		docs = docs[:r.topK]
	}
	return docs, nil
}

// PeriodMismatch reports whether any retrieved chunk belongs to a period
// other than the one the question resolved to.
func (r *Retriever) PeriodMismatch(periodCode string, docs []store.ChunkDoc) bool {
	if periodCode == "" || len(docs) == 0 {
		return false
	}
	docCodes := map[string]struct{}{}
	for _, doc := range docs {
		if doc.Dynasty == "" {
			continue
		}
		normalized := textutil.Normalize(doc.Dynasty)
		docCodes[r.catalog.MapDocPeriod(normalized)] = struct{}{}
	}
	if len(docCodes) == 0 {
		return false
	}
	for code := range docCodes {
		if code != periodCode {
			return true
		}
	}
	return false
}

// FormatChunks converts raw chunks into the learner-facing shape, with
// summarized text and a source display including the passage hint.
func FormatChunks(docs []store.ChunkDoc) []ContextChunk {
	formatted := make([]ContextChunk, 0, len(docs))
	for _, doc := range docs {
		if len(formatted) == 5 {
			break
		}
		sourceDisplay := doc.Source
		if sourceDisplay == "" {
			sourceDisplay = contextSourcePath
		}
		if doc.ChunkID != 0 {
			sourceDisplay += " · đoạn " + strconv.FormatInt(doc.ChunkID, 10)
		}
		entities := doc.Entities
		if entities == nil {
			entities = []string{}
		}
		formatted = append(formatted, ContextChunk{
			ChunkID:  doc.ChunkID,
			Text:     textutil.Summarize(doc.Text, summarizeLimit),
			Source:   sourceDisplay,
			Dynasty:  doc.Dynasty,
			Entities: entities,
			Score:    doc.Score,
		})
	}
	return formatted
}

func filterByEntity(docs []store.ChunkDoc, characterEvent string) []store.ChunkDoc {
	if characterEvent == "" {
		return docs
	}
	normalizedEntity := textutil.Normalize(characterEvent)
	var filtered []store.ChunkDoc
	for _, doc := range docs {
		if strings.Contains(textutil.Normalize(doc.Text), normalizedEntity) {
			filtered = append(filtered, doc)
		}
	}
	if len(filtered) == 0 {
		return docs
	}
	return filtered
}
