package biz

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietsaga/vietsaga/internal/model"
	"github.com/vietsaga/vietsaga/pkg/errors"
	"github.com/vietsaga/vietsaga/pkg/llm"
)

func TestResumeOrCreate_CreatesWithHeroFromMetadata(t *testing.T) {
	convStore := newMemoryConvStore()
	m := NewConversationManager(convStore, mustCatalog(t), 10)

	conv, err := m.ResumeOrCreate(context.Background(), 7, "agent_ly", 0, map[string]string{
		"hero_name": "Lý Thường Kiệt",
		"topic":     "Chống Tống",
	})

	require.NoError(t, err)
	assert.NotZero(t, conv.ID)
	assert.Equal(t, "Lý Thường Kiệt", conv.HeroName)
	require.NotNil(t, conv.Topic)
	assert.Equal(t, "Chống Tống", *conv.Topic)
}

func TestResumeOrCreate_HeroDefaultsToPersona(t *testing.T) {
	m := NewConversationManager(newMemoryConvStore(), mustCatalog(t), 10)

	conv, err := m.ResumeOrCreate(context.Background(), 7, "agent_ly", 0, nil)

	require.NoError(t, err)
	assert.Equal(t, "Lý Công Uẩn", conv.HeroName)
	assert.Nil(t, conv.Topic)
}

func TestResumeOrCreate_ResumesExisting(t *testing.T) {
	convStore := newMemoryConvStore()
	m := NewConversationManager(convStore, mustCatalog(t), 10)

	created, err := m.ResumeOrCreate(context.Background(), 7, "agent_tran", 0, nil)
	require.NoError(t, err)

	resumed, err := m.ResumeOrCreate(context.Background(), 7, "agent_tran", created.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, created.ID, resumed.ID)
}

func TestResumeOrCreate_AgentMismatchConflicts(t *testing.T) {
	convStore := newMemoryConvStore()
	m := NewConversationManager(convStore, mustCatalog(t), 10)

	created, err := m.ResumeOrCreate(context.Background(), 7, "agent_tran", 0, nil)
	require.NoError(t, err)

	_, err = m.ResumeOrCreate(context.Background(), 7, "agent_ly", created.ID, nil)
	require.Error(t, err)
	assert.True(t, errors.ErrAgentMismatch.Is(err))
	assert.Contains(t, err.Error(), "conversation thuộc về agent_tran, không thể dùng agent_ly")
}

func TestResumeOrCreate_UnknownSession(t *testing.T) {
	m := NewConversationManager(newMemoryConvStore(), mustCatalog(t), 10)

	_, err := m.ResumeOrCreate(context.Background(), 7, "agent_tran", 999, nil)
	require.Error(t, err)
	assert.True(t, errors.ErrConversationNotFound.Is(err))
}

func TestResumeOrCreate_OtherUsersSessionInvisible(t *testing.T) {
	convStore := newMemoryConvStore()
	m := NewConversationManager(convStore, mustCatalog(t), 10)

	created, err := m.ResumeOrCreate(context.Background(), 7, "agent_tran", 0, nil)
	require.NoError(t, err)

	_, err = m.ResumeOrCreate(context.Background(), 8, "agent_tran", created.ID, nil)
	assert.True(t, errors.ErrConversationNotFound.Is(err))
}

func TestWindowedHistory_CapsAtWindow(t *testing.T) {
	convStore := newMemoryConvStore()
	m := NewConversationManager(convStore, mustCatalog(t), 10)

	conv, err := m.ResumeOrCreate(context.Background(), 7, "agent_ly", 0, nil)
	require.NoError(t, err)

	// 8 exchanges, 16 messages total.
	for i := 0; i < 8; i++ {
		require.NoError(t, m.AppendExchange(context.Background(), conv.ID,
			fmt.Sprintf("câu hỏi %d", i), fmt.Sprintf("trả lời %d", i)))
	}

	history, err := m.WindowedHistory(context.Background(), conv.ID)
	require.NoError(t, err)
	require.Len(t, history, 10)

	// Chronological order, oldest surviving message first.
	assert.Equal(t, llm.RoleUser, history[0].Role)
	assert.Equal(t, "câu hỏi 3", history[0].Content)
	assert.Equal(t, llm.RoleAssistant, history[9].Role)
	assert.Equal(t, "trả lời 7", history[9].Content)
}

func TestWindowedHistory_MapsRoles(t *testing.T) {
	convStore := newMemoryConvStore()
	m := NewConversationManager(convStore, mustCatalog(t), 10)

	conv, err := m.ResumeOrCreate(context.Background(), 7, "agent_ly", 0, nil)
	require.NoError(t, err)
	require.NoError(t, m.AppendExchange(context.Background(), conv.ID, "hỏi", "đáp"))

	history, err := m.WindowedHistory(context.Background(), conv.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, []llm.Message{
		{Role: llm.RoleUser, Content: "hỏi"},
		{Role: llm.RoleAssistant, Content: "đáp"},
	}, history)
}

func TestConversationModelRoles(t *testing.T) {
	assert.Equal(t, "user", model.RoleUser)
	assert.Equal(t, "assistant", model.RoleAssistant)
}
