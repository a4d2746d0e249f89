// Package handler provides the HTTP handlers of the chat service.
package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vietsaga/vietsaga/internal/model"
	"github.com/vietsaga/vietsaga/internal/pkg/middleware"
	"github.com/vietsaga/vietsaga/internal/vietsaga/biz"
	"github.com/vietsaga/vietsaga/pkg/errors"
)

// ChatHandler handles the routing, streaming chat and conversation APIs.
type ChatHandler struct {
	service *biz.Service
}

// NewChatHandler creates a ChatHandler over the orchestration service.
func NewChatHandler(service *biz.Service) *ChatHandler {
	return &ChatHandler{service: service}
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func writeError(c *gin.Context, err error) {
	e := errors.FromError(err)
	c.JSON(e.HTTP, ErrorResponse{Code: e.Code, Reason: e.Reason, Message: e.Message})
}

func currentUser(c *gin.Context) (uint64, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		writeError(c, errors.ErrUnauthorized)
	}
	return userID, ok
}

// MessagePayload is one chat turn in a request body.
type MessagePayload struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationResponse is one conversation in API responses.
type ConversationResponse struct {
	ID            uint64    `json:"id"`
	AgentID       string    `json:"agent_id"`
	HeroName      string    `json:"hero_name"`
	Topic         *string   `json:"topic,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	LastMessageAt time.Time `json:"last_message_at"`
	MessageCount  int64     `json:"message_count"`
}

func toConversationResponse(conv *model.Conversation, messageCount int64) ConversationResponse {
	return ConversationResponse{
		ID:            conv.ID,
		AgentID:       conv.AgentID,
		HeroName:      conv.HeroName,
		Topic:         conv.Topic,
		CreatedAt:     conv.CreatedAt,
		LastMessageAt: conv.LastMessageAt,
		MessageCount:  messageCount,
	}
}
