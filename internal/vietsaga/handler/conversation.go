package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vietsaga/vietsaga/pkg/errors"
)

// ListConversations returns the caller's conversations, most recent first.
func (h *ChatHandler) ListConversations(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	summaries, err := h.service.ListConversations(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]ConversationResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, toConversationResponse(s.Conversation, s.MessageCount))
	}
	c.JSON(http.StatusOK, out)
}

// ConversationCreateRequest starts a named conversation with an agent.
type ConversationCreateRequest struct {
	AgentID  string  `json:"agent_id" binding:"required"`
	HeroName string  `json:"hero_name" binding:"required"`
	Topic    *string `json:"topic"`
}

// CreateConversation starts a conversation bound to one agent.
func (h *ChatHandler) CreateConversation(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req ConversationCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.ErrBadRequest.WithMessage("%s", err.Error()))
		return
	}

	conv, err := h.service.CreateConversation(c.Request.Context(), userID, req.AgentID, req.HeroName, req.Topic)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toConversationResponse(conv, 0))
}

// MessageResponse is one stored chat turn.
type MessageResponse struct {
	ID        uint64    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationMessagesResponse is one conversation with its full history.
type ConversationMessagesResponse struct {
	Conversation ConversationResponse `json:"conversation"`
	Messages     []MessageResponse    `json:"messages"`
}

// ConversationMessages returns a conversation and its messages in
// chronological order.
func (h *ChatHandler) ConversationMessages(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	conversationID, ok := pathID(c)
	if !ok {
		return
	}

	conv, msgs, err := h.service.ConversationMessages(c.Request.Context(), userID, conversationID)
	if err != nil {
		writeError(c, err)
		return
	}

	messages := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		messages = append(messages, MessageResponse{
			ID:        m.ID,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, ConversationMessagesResponse{
		Conversation: toConversationResponse(conv, int64(len(messages))),
		Messages:     messages,
	})
}

// DeleteConversation removes a conversation and its message log.
func (h *ChatHandler) DeleteConversation(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	conversationID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteConversation(c.Request.Context(), userID, conversationID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":         "Đã xóa conversation thành công",
		"conversation_id": conversationID,
	})
}

func pathID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		writeError(c, errors.ErrBadRequest.WithMessage("invalid conversation id"))
		return 0, false
	}
	return id, true
}
