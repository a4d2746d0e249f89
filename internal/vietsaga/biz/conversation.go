package biz

import (
	"context"
	stderrors "errors"

	"github.com/vietsaga/vietsaga/internal/model"
	"github.com/vietsaga/vietsaga/internal/vietsaga/store"
	"github.com/vietsaga/vietsaga/pkg/errors"
	"github.com/vietsaga/vietsaga/pkg/llm"
)

// ConversationManager owns the session lifecycle around a chat exchange.
type ConversationManager struct {
	conversations store.ConversationStore
	catalog       *Catalog
	historyWindow int
}

// NewConversationManager creates a manager over the conversation store.
func NewConversationManager(conversations store.ConversationStore, catalog *Catalog, historyWindow int) *ConversationManager {
	if historyWindow <= 0 {
		historyWindow = 10
	}
	return &ConversationManager{
		conversations: conversations,
		catalog:       catalog,
		historyWindow: historyWindow,
	}
}

// ResumeOrCreate loads the session identified by sessionID, or creates a
// fresh one when sessionID is zero. A session is permanently bound to its
// agent: resuming with a different agent id is a conflict, never a rebind.
func (m *ConversationManager) ResumeOrCreate(ctx context.Context, userID uint64, agentID string, sessionID uint64, metadata map[string]string) (*model.Conversation, error) {
	if sessionID != 0 {
		conv, err := m.conversations.Find(ctx, sessionID, userID)
		if err != nil {
			if stderrors.Is(err, store.ErrConversationNotFound) {
				return nil, errors.ErrConversationNotFound
			}
			return nil, err
		}
		if conv.AgentID != agentID {
			return nil, errors.ErrAgentMismatch.WithMessage(
				"conversation thuộc về %s, không thể dùng %s", conv.AgentID, agentID)
		}
		return conv, nil
	}

	heroName := metadata["hero_name"]
	if heroName == "" {
		heroName = m.catalog.Profile(agentID).PersonaName
	}
	conv := &model.Conversation{
		UserID:   userID,
		AgentID:  agentID,
		HeroName: heroName,
	}
	if topic, ok := metadata["topic"]; ok && topic != "" {
		conv.Topic = &topic
	}
	if err := m.conversations.Create(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// WindowedHistory returns the most recent exchanges of the session as LLM
// messages, oldest first, capped at the configured window.
func (m *ConversationManager) WindowedHistory(ctx context.Context, conversationID uint64) ([]llm.Message, error) {
	records, err := m.conversations.RecentMessages(ctx, conversationID, m.historyWindow)
	if err != nil {
		return nil, err
	}
	history := make([]llm.Message, 0, len(records))
	for _, rec := range records {
		history = append(history, llm.Message{
			Role:    llm.Role(rec.Role),
			Content: rec.Content,
		})
	}
	return history, nil
}

// AppendExchange persists one user/assistant turn pair.
func (m *ConversationManager) AppendExchange(ctx context.Context, conversationID uint64, userText, assistantText string) error {
	return m.conversations.AppendExchange(ctx, conversationID, userText, assistantText)
}
