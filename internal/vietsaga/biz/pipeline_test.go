package biz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vserrors "github.com/vietsaga/vietsaga/pkg/errors"
	"github.com/vietsaga/vietsaga/pkg/llm"
)

func newTestService(t *testing.T, chat *fakeChat, vector *fakeVector, convStore *memoryConvStore) *Service {
	t.Helper()
	catalog := mustCatalog(t)
	if vector == nil {
		vector = &fakeVector{ready: true, count: 100}
	}
	if convStore == nil {
		convStore = newMemoryConvStore()
	}
	policy := NewVoicePolicy("classic")
	return NewService(ServiceConfig{
		Catalog:       catalog,
		Analyzer:      NewAnalyzer(catalog),
		Retriever:     NewRetriever(vector, &fakeEmbedder{}, catalog, 5),
		Enricher:      NewEnricher(&fakeGraph{}),
		VoicePolicy:   policy,
		Conversations: NewConversationManager(convStore, catalog, 10),
		Synthesizer:   NewSynthesizer(chat, catalog, "Việt Nam Sử Lược"),
		Suggestions:   NewSuggestionService(chat, catalog, policy),
		Chat:          chat,
		RouteCache:    NewRouteCache(nil, nil),
		Workers:       nil,
		ConvStore:     convStore,
		Vector:        vector,
	})
}

func collectEvents(t *testing.T, events <-chan ChatEvent) []ChatEvent {
	t.Helper()
	var out []ChatEvent
	for ev := range events {
		out = append(out, ev)
	}
	return out
}

func TestChatStream_HappyPath(t *testing.T) {
	chat := &fakeChat{
		chunks: []llm.StreamChunk{
			{Content: "Thăng "},
			{Content: "Long"},
			{Done: true},
		},
		chatErr: errors.New("synthesis goes to fallback"),
	}
	convStore := newMemoryConvStore()
	svc := newTestService(t, chat, nil, convStore)

	conv, events, err := svc.ChatStream(context.Background(), 7, ChatRequest{
		AgentID: "agent_ly",
		Query:   "Vì sao dời đô?",
	})
	require.NoError(t, err)
	require.NotNil(t, conv)

	got := collectEvents(t, events)
	require.Len(t, got, 4)

	assert.Equal(t, EventContent, got[0].Type)
	assert.Equal(t, "Thăng ", got[0].Content)
	assert.Equal(t, EventContent, got[1].Type)
	assert.Equal(t, "Long", got[1].Content)

	metadata := got[2]
	assert.Equal(t, EventMetadata, metadata.Type)
	assert.Equal(t, conv.ID, metadata.SessionID)
	// Graph links always fall back to the two baseline relations.
	assert.Len(t, metadata.GraphLinks, 2)

	assert.Equal(t, EventDone, got[3].Type)

	// The exchange was persisted with the assembled answer.
	msgs, err := convStore.Messages(context.Background(), conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Vì sao dời đô?", msgs[0].Content)
	assert.Equal(t, "Thăng Long", msgs[1].Content)
}

func TestChatStream_SystemPromptCarriesVoiceAndHistory(t *testing.T) {
	chat := &fakeChat{chunks: []llm.StreamChunk{{Done: true}}, chatErr: errors.New("no synthesis")}
	convStore := newMemoryConvStore()
	svc := newTestService(t, chat, nil, convStore)

	conv, events, err := svc.ChatStream(context.Background(), 7, ChatRequest{AgentID: "agent_ly", Query: "hỏi 1"})
	require.NoError(t, err)
	collectEvents(t, events)

	_, events, err = svc.ChatStream(context.Background(), 7, ChatRequest{
		AgentID:   "agent_ly",
		Query:     "hỏi 2",
		SessionID: conv.ID,
	})
	require.NoError(t, err)
	collectEvents(t, events)

	msgs := chat.lastStreamMessages
	require.NotEmpty(t, msgs)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "Nhập vai Lý Công Uẩn")
	assert.Contains(t, msgs[0].Content, "Xưng ")
	// History from the first exchange precedes the new question.
	assert.Equal(t, llm.RoleUser, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "hỏi 1")
	last := msgs[len(msgs)-1]
	assert.Equal(t, llm.RoleUser, last.Role)
	assert.Contains(t, last.Content, "Câu hỏi của người học: hỏi 2")

	// The synthesis calls that follow the stream overwrite the one-shot
	// capture; the stream snapshot must be unaffected.
	require.NotEmpty(t, chat.lastMessages)
	assert.NotEqual(t, chat.lastMessages[0].Content, msgs[0].Content)
}

func TestChatStream_UnknownAgent(t *testing.T) {
	svc := newTestService(t, &fakeChat{}, nil, nil)

	_, _, err := svc.ChatStream(context.Background(), 7, ChatRequest{AgentID: "agent_bogus", Query: "x"})
	require.Error(t, err)
	assert.True(t, vserrors.ErrAgentNotFound.Is(err))
}

func TestChatStream_EmptyQuery(t *testing.T) {
	svc := newTestService(t, &fakeChat{}, nil, nil)

	_, _, err := svc.ChatStream(context.Background(), 7, ChatRequest{AgentID: "agent_ly"})
	assert.True(t, vserrors.ErrEmptyQuestion.Is(err))
}

func TestChatStream_AgentMismatchSurfacesBeforeStreaming(t *testing.T) {
	chat := &fakeChat{chunks: []llm.StreamChunk{{Done: true}}, chatErr: errors.New("n/a")}
	svc := newTestService(t, chat, nil, nil)

	conv, events, err := svc.ChatStream(context.Background(), 7, ChatRequest{AgentID: "agent_tran", Query: "x"})
	require.NoError(t, err)
	collectEvents(t, events)

	_, _, err = svc.ChatStream(context.Background(), 7, ChatRequest{
		AgentID:   "agent_ly",
		Query:     "y",
		SessionID: conv.ID,
	})
	require.Error(t, err)
	assert.True(t, vserrors.ErrAgentMismatch.Is(err))
}

func TestChatStream_MidStreamFailureEmitsErrorAndSkipsPersistence(t *testing.T) {
	chat := &fakeChat{
		chunks: []llm.StreamChunk{
			{Content: "một phần"},
			{Err: errors.New("connection reset")},
		},
	}
	convStore := newMemoryConvStore()
	svc := newTestService(t, chat, nil, convStore)

	conv, events, err := svc.ChatStream(context.Background(), 7, ChatRequest{AgentID: "agent_ly", Query: "x"})
	require.NoError(t, err)

	got := collectEvents(t, events)
	require.Len(t, got, 2)
	assert.Equal(t, EventContent, got[0].Type)
	assert.Equal(t, EventError, got[1].Type)
	assert.NotEmpty(t, got[1].Message)

	msgs, err := convStore.Messages(context.Background(), conv.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestChatStream_UpstreamRefusalEmitsErrorFrame(t *testing.T) {
	chat := &fakeChat{streamErr: errors.New("401 unauthorized")}
	svc := newTestService(t, chat, nil, nil)

	_, events, err := svc.ChatStream(context.Background(), 7, ChatRequest{AgentID: "agent_ly", Query: "x"})
	require.NoError(t, err)

	got := collectEvents(t, events)
	require.Len(t, got, 1)
	assert.Equal(t, EventError, got[0].Type)
}

func TestRoute_EndToEnd(t *testing.T) {
	vector := &fakeVector{docs: lyDocs()}
	chat := &fakeChat{chatErr: errors.New("n/a")}
	svc := newTestService(t, chat, vector, nil)

	result, err := svc.Route(context.Background(), []llm.Message{
		{Role: llm.RoleAssistant, Content: "Chào con"},
		{Role: llm.RoleUser, Content: "Chiếu dời đô nói gì?"},
	}, "")

	require.NoError(t, err)
	assert.Equal(t, "agent_ly", result.CallAgent)
	assert.False(t, result.PeriodMismatch)
	assert.Equal(t, FlagNone, result.FlagWarning)
	assert.NotEmpty(t, result.Context)
	assert.NotEmpty(t, result.GraphLinks)
	assert.Contains(t, result.QueryToAgent, "[Nhân vật/Sự kiện] Chiếu dời đô")
}

func TestRoute_EmptyQuestion(t *testing.T) {
	svc := newTestService(t, &fakeChat{}, nil, nil)

	_, err := svc.Route(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "   "}}, "")
	assert.True(t, vserrors.ErrEmptyQuestion.Is(err))
}

func TestRoute_MismatchFlag(t *testing.T) {
	vector := &fakeVector{docs: lyDocs()}
	svc := newTestService(t, &fakeChat{}, vector, nil)

	// Evidence is tagged Ly but the caller pins the Nguyễn agent.
	result, err := svc.Route(context.Background(), []llm.Message{
		{Role: llm.RoleUser, Content: "Chiếu dời đô nói gì?"},
	}, "agent_nguyen")

	require.NoError(t, err)
	assert.Equal(t, "agent_nguyen", result.CallAgent)
	assert.True(t, result.PeriodMismatch)
	assert.Equal(t, FlagMismatch, result.FlagWarning)
}

func TestHealth(t *testing.T) {
	vector := &fakeVector{ready: true, count: 1234}
	svc := newTestService(t, &fakeChat{}, vector, nil)

	status := svc.Health(context.Background())

	assert.True(t, status.Ready)
	assert.Equal(t, int64(1234), status.DocCount)
}
