package biz

import (
	"context"
	"sync"

	"github.com/kart-io/logger"

	"github.com/vietsaga/vietsaga/internal/model"
	"github.com/vietsaga/vietsaga/pkg/errors"
	"github.com/vietsaga/vietsaga/pkg/llm"
)

// ChatEventType discriminates the frames of a streaming answer.
type ChatEventType string

const (
	// EventContent carries one answer fragment.
	EventContent ChatEventType = "content"
	// EventMetadata carries the post-answer citations and graph trail.
	EventMetadata ChatEventType = "metadata"
	// EventError reports a failed generation. Terminal.
	EventError ChatEventType = "error"
	// EventDone closes a successful stream. Terminal.
	EventDone ChatEventType = "done"
)

// ChatEvent is one frame of the streaming answer.
type ChatEvent struct {
	Type       ChatEventType
	Content    string
	Sources    []ContextChunk
	GraphLinks []GraphLink
	SessionID  uint64
	Message    string
}

// ChatRequest is one streaming chat invocation.
type ChatRequest struct {
	AgentID   string
	Query     string
	SessionID uint64
	Metadata  map[string]string
}

// ChatStream resolves the session, streams the persona's answer and closes
// with a metadata frame. Events arrive on the returned channel in order;
// the channel is closed after the terminal frame. The returned conversation
// is already resolved, so session errors surface here rather than as error
// frames.
func (s *Service) ChatStream(ctx context.Context, userID uint64, req ChatRequest) (*model.Conversation, <-chan ChatEvent, error) {
	if !s.catalog.IsKnownAgent(req.AgentID) {
		return nil, nil, errors.ErrAgentNotFound
	}
	if req.Query == "" {
		return nil, nil, errors.ErrEmptyQuestion
	}

	conv, err := s.conversations.ResumeOrCreate(ctx, userID, req.AgentID, req.SessionID, req.Metadata)
	if err != nil {
		return nil, nil, err
	}

	history, err := s.conversations.WindowedHistory(ctx, conv.ID)
	if err != nil {
		return nil, nil, err
	}

	profile := s.catalog.Profile(req.AgentID)
	voice := s.voicePolicy.Select(profile, conv.HeroName)

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: ComposeSystemPrompt(profile, voice)})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: ComposeUserPrompt(req.Query)})

	events := make(chan ChatEvent, 16)
	go s.runStream(ctx, conv, req, messages, events)
	return conv, events, nil
}

// runStream drives one answer: forward fragments, then synthesize metadata
// and persist the exchange. Client cancellation stops at the next fragment
// boundary without persisting; upstream failure emits a single error frame
// without persisting.
func (s *Service) runStream(ctx context.Context, conv *model.Conversation, req ChatRequest, messages []llm.Message, events chan<- ChatEvent) {
	defer close(events)

	// Refusal before any fragment is an availability failure; a break after
	// fragments started flowing is a generation failure.
	stream, err := s.chat.ChatStream(ctx, messages, nil)
	if err != nil {
		logger.Errorw("Answer stream failed to start", "agent_id", req.AgentID, "error", err)
		events <- ChatEvent{Type: EventError, Message: errors.ErrUpstreamUnavailable.Message}
		return
	}

	var answer []byte
	for chunk := range stream {
		if chunk.Err != nil {
			if ctx.Err() != nil {
				logger.Infow("Answer stream cancelled by client", "session_id", conv.ID)
				return
			}
			logger.Errorw("Answer stream broke mid-flight", "session_id", conv.ID, "error", chunk.Err)
			events <- ChatEvent{Type: EventError, Message: errors.ErrGenerationFailure.Message}
			return
		}
		if chunk.Done {
			break
		}
		if chunk.Content == "" {
			continue
		}
		answer = append(answer, chunk.Content...)
		select {
		case events <- ChatEvent{Type: EventContent, Content: chunk.Content}:
		case <-ctx.Done():
			return
		}
	}
	if ctx.Err() != nil {
		return
	}

	fullAnswer := string(answer)
	sources, links := s.synthesizeMetadata(ctx, fullAnswer, req.AgentID)

	if err := s.conversations.AppendExchange(ctx, conv.ID, req.Query, fullAnswer); err != nil {
		logger.Errorw("Failed to persist exchange", "session_id", conv.ID, "error", err)
	}

	select {
	case events <- ChatEvent{Type: EventMetadata, Sources: sources, GraphLinks: links, SessionID: conv.ID}:
	case <-ctx.Done():
		return
	}
	events <- ChatEvent{Type: EventDone}
}

// synthesizeMetadata derives citations and graph links concurrently on the
// worker pool, falling back to inline execution when the pool is saturated.
func (s *Service) synthesizeMetadata(ctx context.Context, answer, agentID string) ([]ContextChunk, []GraphLink) {
	var (
		wg      sync.WaitGroup
		sources []ContextChunk
		links   []GraphLink
	)

	run := func(task func()) {
		wg.Add(1)
		wrapped := func() {
			defer wg.Done()
			task()
		}
		if s.workers == nil || s.workers.Submit(wrapped) != nil {
			wrapped()
		}
	}

	synthCtx, cancel := withTimeout(ctx, s.timeouts.Synthesis)
	defer cancel()

	run(func() { sources = s.synthesizer.ExtractSources(synthCtx, answer, agentID) })
	run(func() { links = s.synthesizer.ExtractGraphLinks(synthCtx, answer, agentID) })
	wg.Wait()

	return sources, links
}
