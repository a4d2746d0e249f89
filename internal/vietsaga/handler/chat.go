package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/vietsaga/vietsaga/internal/vietsaga/biz"
	"github.com/vietsaga/vietsaga/pkg/errors"
	"github.com/vietsaga/vietsaga/pkg/llm"
	"github.com/vietsaga/vietsaga/pkg/utils/json"
)

// RouterRequest asks for a routing decision over a running dialogue.
type RouterRequest struct {
	Messages []MessagePayload `json:"messages" binding:"required"`
	AgentID  string           `json:"agent_id"`
}

// Route classifies the latest learner question and returns the full routing
// decision with scoped evidence.
func (h *ChatHandler) Route(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	var req RouterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.ErrBadRequest.WithMessage("%s", err.Error()))
		return
	}

	messages := make([]llm.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, llm.Message{Role: llm.Role(m.Role), Content: m.Content})
	}

	result, err := h.service.Route(c.Request.Context(), messages, req.AgentID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AgentChatRequest starts or resumes a streamed persona exchange.
type AgentChatRequest struct {
	AgentID   string            `json:"agent_id" binding:"required"`
	Query     string            `json:"query" binding:"required"`
	SessionID uint64            `json:"session_id"`
	Metadata  map[string]string `json:"metadata"`
}

type contentFrame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type metadataFrame struct {
	Type       string             `json:"type"`
	Sources    []biz.ContextChunk `json:"sources"`
	GraphLinks []biz.GraphLink    `json:"graph_links"`
	SessionID  string             `json:"session_id"`
}

type errorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Chat streams the persona's answer as server-sent events: content frames in
// generation order, one metadata frame, then the [DONE] terminator.
func (h *ChatHandler) Chat(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req AgentChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.ErrBadRequest.WithMessage("%s", err.Error()))
		return
	}

	_, events, err := h.service.ChatStream(c.Request.Context(), userID, biz.ChatRequest{
		AgentID:   req.AgentID,
		Query:     req.Query,
		SessionID: req.SessionID,
		Metadata:  req.Metadata,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)

	for ev := range events {
		switch ev.Type {
		case biz.EventContent:
			writeFrame(c, contentFrame{Type: "content", Content: ev.Content})
		case biz.EventMetadata:
			sources := ev.Sources
			if sources == nil {
				sources = []biz.ContextChunk{}
			}
			links := ev.GraphLinks
			if links == nil {
				links = []biz.GraphLink{}
			}
			writeFrame(c, metadataFrame{
				Type:       "metadata",
				Sources:    sources,
				GraphLinks: links,
				SessionID:  strconv.FormatUint(ev.SessionID, 10),
			})
		case biz.EventError:
			writeFrame(c, errorFrame{Type: "error", Message: ev.Message})
		case biz.EventDone:
			writeRaw(c, "data: [DONE]\n\n")
		}
	}
}

func writeFrame(c *gin.Context, frame any) {
	data, err := json.Marshal(frame)
	if err != nil {
		logger.Errorw("Failed to marshal SSE frame", "error", err)
		return
	}
	writeRaw(c, "data: "+string(data)+"\n\n")
}

func writeRaw(c *gin.Context, payload string) {
	if _, err := c.Writer.WriteString(payload); err != nil {
		return
	}
	c.Writer.Flush()
}

// AgentSuggestionRequest asks for the opening greeting and starter questions.
type AgentSuggestionRequest struct {
	AgentID  string `json:"agent_id" binding:"required"`
	HeroName string `json:"hero_name"`
}

// AgentSuggestionResponse carries the greeting and starter questions.
type AgentSuggestionResponse struct {
	Greeting    string   `json:"greeting"`
	Suggestions []string `json:"suggestions"`
}

// Suggestions returns the persona's greeting and three starter questions.
func (h *ChatHandler) Suggestions(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	var req AgentSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.ErrBadRequest.WithMessage("%s", err.Error()))
		return
	}

	greeting, suggestions := h.service.Suggestions(c.Request.Context(), req.AgentID, req.HeroName)
	c.JSON(http.StatusOK, AgentSuggestionResponse{Greeting: greeting, Suggestions: suggestions})
}

// FeedbackRequest records a learner rating for one exchange.
type FeedbackRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	MessageID string `json:"message_id"`
	Rating    int    `json:"rating"`
	Notes     string `json:"notes"`
}

// Feedback acknowledges a rating. Ratings are logged for offline review.
func (h *ChatHandler) Feedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.ErrBadRequest.WithMessage("%s", err.Error()))
		return
	}

	logger.Infow("Learner feedback received",
		"session_id", req.SessionID, "message_id", req.MessageID, "rating", req.Rating)
	c.JSON(http.StatusOK, gin.H{"message": "Đã ghi nhận đánh giá", "session_id": req.SessionID})
}
