// Package store defines the persistence interfaces consumed by the chat
// orchestration layer: similarity search, graph lookups and the
// conversation log.
package store

import (
	"context"
	"errors"

	"github.com/vietsaga/vietsaga/internal/model"
)

// ErrIndexNotReady reports that the vector index has not been built yet.
// Callers treat it as "no evidence available", never as a request failure.
var ErrIndexNotReady = errors.New("store: vector index not ready")

// ChunkDoc is one retrieved knowledge passage.
type ChunkDoc struct {
	ChunkID  int64
	Text     string
	Source   string
	Dynasty  string
	Entities []string
	Score    float64
}

// VectorStore performs similarity search over the knowledge collection.
type VectorStore interface {
	// Search returns up to topK chunks nearest to the query vector,
	// optionally restricted to the given storage period tags. Returns
	// ErrIndexNotReady when the backing collection is absent or empty.
	Search(ctx context.Context, vector []float32, topK int, periodTags []string) ([]ChunkDoc, error)

	// Ready reports whether the index holds documents.
	Ready(ctx context.Context) bool

	// Count returns the number of indexed documents.
	Count(ctx context.Context) (int64, error)
}

// GraphLinkRec is one relationship summary from the knowledge graph.
type GraphLinkRec struct {
	Relation    string
	Description string
	ChunkID     int64
}

// GraphStore fetches relationship trails for retrieved chunks.
type GraphStore interface {
	// LinksForChunks tolerates an empty id list by returning empty, and
	// returns empty rather than erroring when the graph backend was never
	// reachable.
	LinksForChunks(ctx context.Context, chunkIDs []int64, limit int) ([]GraphLinkRec, error)
}

// ConversationStore persists conversations and their append-only message log.
// All lookups are scoped to the owning user.
type ConversationStore interface {
	Create(ctx context.Context, conv *model.Conversation) error
	Find(ctx context.Context, id, userID uint64) (*model.Conversation, error)
	List(ctx context.Context, userID uint64) ([]*model.Conversation, error)
	Delete(ctx context.Context, id, userID uint64) error

	// Messages returns the full history in chronological order.
	Messages(ctx context.Context, conversationID uint64) ([]*model.ConversationMessage, error)

	// RecentMessages returns the most recent limit messages in
	// chronological order.
	RecentMessages(ctx context.Context, conversationID uint64, limit int) ([]*model.ConversationMessage, error)

	CountMessages(ctx context.Context, conversationID uint64) (int64, error)

	// AppendExchange appends the user and assistant turns atomically and
	// bumps the conversation's last activity timestamp.
	AppendExchange(ctx context.Context, conversationID uint64, userText, assistantText string) error
}
