package biz

import (
	"context"
	"errors"
	"sync"

	"github.com/vietsaga/vietsaga/internal/model"
	"github.com/vietsaga/vietsaga/internal/vietsaga/store"
	"github.com/vietsaga/vietsaga/pkg/llm"
)

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) EmbedSingle(_ context.Context, _ string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeVector struct {
	docs  []store.ChunkDoc
	err   error
	ready bool
	count int64

	lastTopK    int
	lastPeriods []string
}

func (f *fakeVector) Search(_ context.Context, _ []float32, topK int, periodTags []string) ([]store.ChunkDoc, error) {
	f.lastTopK = topK
	f.lastPeriods = periodTags
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

func (f *fakeVector) Ready(_ context.Context) bool { return f.ready }

func (f *fakeVector) Count(_ context.Context) (int64, error) { return f.count, nil }

type fakeGraph struct {
	recs []store.GraphLinkRec
	err  error
}

func (f *fakeGraph) LinksForChunks(_ context.Context, _ []int64, _ int) ([]store.GraphLinkRec, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.recs, nil
}

// fakeChat scripts one-shot and streaming completions.
type fakeChat struct {
	reply     string
	chatErr   error
	chunks    []llm.StreamChunk
	streamErr error

	lastMessages []llm.Message
	lastOpts     *llm.ChatOptions

	// lastStreamMessages is written only by ChatStream, so the streamed
	// prompt survives the synthesis calls that follow the stream.
	lastStreamMessages []llm.Message
}

func (f *fakeChat) Chat(_ context.Context, messages []llm.Message, opts *llm.ChatOptions) (string, error) {
	f.lastMessages = messages
	f.lastOpts = opts
	if f.chatErr != nil {
		return "", f.chatErr
	}
	return f.reply, nil
}

func (f *fakeChat) ChatStream(_ context.Context, messages []llm.Message, opts *llm.ChatOptions) (<-chan llm.StreamChunk, error) {
	f.lastMessages = messages
	f.lastStreamMessages = messages
	f.lastOpts = opts
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	out := make(chan llm.StreamChunk, len(f.chunks))
	for _, c := range f.chunks {
		out <- c
	}
	close(out)
	return out, nil
}

func (f *fakeChat) Name() string { return "fake" }

// memoryConvStore is an in-memory conversation store.
type memoryConvStore struct {
	mu       sync.Mutex
	nextID   uint64
	convs    map[uint64]*model.Conversation
	messages map[uint64][]*model.ConversationMessage

	appendErr error
}

func newMemoryConvStore() *memoryConvStore {
	return &memoryConvStore{
		nextID:   1,
		convs:    map[uint64]*model.Conversation{},
		messages: map[uint64][]*model.ConversationMessage{},
	}
}

func (m *memoryConvStore) Create(_ context.Context, conv *model.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	conv.ID = m.nextID
	m.nextID++
	m.convs[conv.ID] = conv
	return nil
}

func (m *memoryConvStore) Find(_ context.Context, id, userID uint64) (*model.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conv, ok := m.convs[id]
	if !ok || conv.UserID != userID {
		return nil, store.ErrConversationNotFound
	}
	return conv, nil
}

func (m *memoryConvStore) List(_ context.Context, userID uint64) ([]*model.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Conversation
	for _, conv := range m.convs {
		if conv.UserID == userID {
			out = append(out, conv)
		}
	}
	return out, nil
}

func (m *memoryConvStore) Delete(_ context.Context, id, userID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	conv, ok := m.convs[id]
	if !ok || conv.UserID != userID {
		return store.ErrConversationNotFound
	}
	delete(m.convs, id)
	delete(m.messages, id)
	return nil
}

func (m *memoryConvStore) Messages(_ context.Context, conversationID uint64) ([]*model.ConversationMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.ConversationMessage{}, m.messages[conversationID]...), nil
}

func (m *memoryConvStore) RecentMessages(_ context.Context, conversationID uint64, limit int) ([]*model.ConversationMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.messages[conversationID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return append([]*model.ConversationMessage{}, msgs...), nil
}

func (m *memoryConvStore) CountMessages(_ context.Context, conversationID uint64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.messages[conversationID])), nil
}

func (m *memoryConvStore) AppendExchange(_ context.Context, conversationID uint64, userText, assistantText string) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.convs[conversationID]; !ok {
		return errors.New("unknown conversation")
	}
	m.messages[conversationID] = append(m.messages[conversationID],
		&model.ConversationMessage{ConversationID: conversationID, Role: model.RoleUser, Content: userText},
		&model.ConversationMessage{ConversationID: conversationID, Role: model.RoleAssistant, Content: assistantText},
	)
	return nil
}

func mustCatalog(t interface{ Fatalf(string, ...interface{}) }) *Catalog {
	catalog, err := NewCatalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return catalog
}
