package biz

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/vietsaga/vietsaga/internal/model"
	"github.com/vietsaga/vietsaga/internal/pkg/pool"
	"github.com/vietsaga/vietsaga/internal/vietsaga/store"
	"github.com/vietsaga/vietsaga/pkg/errors"
	"github.com/vietsaga/vietsaga/pkg/llm"
)

// RouteResult is the routing decision for one learner question.
type RouteResult struct {
	CallAgent      string         `json:"call_agent"`
	QueryToAgent   string         `json:"query_to_agent"`
	Context        []ContextChunk `json:"context"`
	GraphLinks     []GraphLink    `json:"graph_links"`
	PeriodMismatch bool           `json:"period_mismatch"`
	FlagWarning    string         `json:"flag_warning"`
}

// FlagMismatch marks retrieved evidence that belongs to another era.
const FlagMismatch = "[CẢNH BÁO LỆCH THỜI ĐẠI]"

// FlagNone marks a clean routing result.
const FlagNone = "NO"

// Timeouts bounds the evidence-gathering calls. A zero duration leaves the
// call bounded only by the request context.
type Timeouts struct {
	Retrieval time.Duration
	Graph     time.Duration
	Synthesis time.Duration
}

// Service is the chat orchestration facade consumed by the HTTP handlers.
type Service struct {
	catalog       *Catalog
	analyzer      *Analyzer
	retriever     *Retriever
	enricher      *Enricher
	voicePolicy   VoicePolicy
	conversations *ConversationManager
	synthesizer   *Synthesizer
	suggestions   *SuggestionService
	chat          llm.ChatProvider
	routeCache    *RouteCache
	workers       *pool.Pool
	convStore     store.ConversationStore
	vector        store.VectorStore
	timeouts      Timeouts
}

// ServiceConfig carries the assembled collaborators for the service.
type ServiceConfig struct {
	Catalog       *Catalog
	Analyzer      *Analyzer
	Retriever     *Retriever
	Enricher      *Enricher
	VoicePolicy   VoicePolicy
	Conversations *ConversationManager
	Synthesizer   *Synthesizer
	Suggestions   *SuggestionService
	Chat          llm.ChatProvider
	RouteCache    *RouteCache
	Workers       *pool.Pool
	ConvStore     store.ConversationStore
	Vector        store.VectorStore
	Timeouts      Timeouts
}

// NewService assembles the orchestration facade.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		catalog:       cfg.Catalog,
		analyzer:      cfg.Analyzer,
		retriever:     cfg.Retriever,
		enricher:      cfg.Enricher,
		voicePolicy:   cfg.VoicePolicy,
		conversations: cfg.Conversations,
		synthesizer:   cfg.Synthesizer,
		suggestions:   cfg.Suggestions,
		chat:          cfg.Chat,
		routeCache:    cfg.RouteCache,
		workers:       cfg.Workers,
		convStore:     cfg.ConvStore,
		vector:        cfg.Vector,
		timeouts:      cfg.Timeouts,
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// Catalog exposes the persona catalog.
func (s *Service) Catalog() *Catalog { return s.catalog }

// ExtractLatestQuestion returns the newest non-empty user turn, falling back
// to the last message of any role.
func ExtractLatestQuestion(messages []llm.Message) string {
	if len(messages) == 0 {
		return ""
	}
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != llm.RoleUser {
			continue
		}
		if candidate := strings.TrimSpace(messages[i].Content); candidate != "" {
			return candidate
		}
	}
	return strings.TrimSpace(messages[len(messages)-1].Content)
}

// Route classifies the latest user question, retrieves scoped evidence and
// shapes the full routing decision.
func (s *Service) Route(ctx context.Context, messages []llm.Message, agentID string) (*RouteResult, error) {
	question := ExtractLatestQuestion(messages)
	if question == "" {
		return nil, errors.ErrEmptyQuestion
	}

	if cached := s.routeCache.Get(ctx, question, agentID); cached != nil {
		return cached, nil
	}

	analysis := s.analyzer.Analyze(question)
	if agentID != "" {
		analysis = s.analyzer.OverrideForAgent(analysis, agentID)
	}

	retrievalCtx, cancelRetrieval := withTimeout(ctx, s.timeouts.Retrieval)
	docs, err := s.retriever.Retrieve(retrievalCtx, question, analysis)
	cancelRetrieval()
	if err != nil {
		return nil, err
	}

	graphCtx, cancelGraph := withTimeout(ctx, s.timeouts.Graph)
	links := EnsureLinks(docs, s.enricher.Links(graphCtx, docs))
	cancelGraph()

	mismatch := s.retriever.PeriodMismatch(analysis.PeriodCode, docs)
	flag := FlagNone
	if mismatch {
		flag = FlagMismatch
	}

	result := &RouteResult{
		CallAgent:      analysis.AgentID,
		QueryToAgent:   s.analyzer.ComposeAgentQuery(analysis, question),
		Context:        FormatChunks(docs),
		GraphLinks:     links,
		PeriodMismatch: mismatch,
		FlagWarning:    flag,
	}
	s.routeCache.Set(ctx, question, agentID, result)
	return result, nil
}

// Suggestions produces the opening greeting and starter questions.
func (s *Service) Suggestions(ctx context.Context, agentID, heroName string) (string, []string) {
	return s.suggestions.Generate(ctx, agentID, heroName)
}

// ConversationSummary is one conversation with its message count.
type ConversationSummary struct {
	Conversation *model.Conversation
	MessageCount int64
}

// ListConversations returns the user's conversations, most recent first.
func (s *Service) ListConversations(ctx context.Context, userID uint64) ([]ConversationSummary, error) {
	convs, err := s.convStore.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	summaries := make([]ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		count, err := s.convStore.CountMessages(ctx, conv.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, ConversationSummary{Conversation: conv, MessageCount: count})
	}
	return summaries, nil
}

// CreateConversation starts a named conversation with an agent.
func (s *Service) CreateConversation(ctx context.Context, userID uint64, agentID, heroName string, topic *string) (*model.Conversation, error) {
	if !s.catalog.IsKnownAgent(agentID) {
		return nil, errors.ErrAgentNotFound
	}
	if heroName == "" {
		heroName = s.catalog.Profile(agentID).PersonaName
	}
	conv := &model.Conversation{
		UserID:   userID,
		AgentID:  agentID,
		HeroName: heroName,
		Topic:    topic,
	}
	if err := s.convStore.Create(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// ConversationMessages returns one conversation with its full history.
func (s *Service) ConversationMessages(ctx context.Context, userID, conversationID uint64) (*model.Conversation, []*model.ConversationMessage, error) {
	conv, err := s.convStore.Find(ctx, conversationID, userID)
	if err != nil {
		if stderrors.Is(err, store.ErrConversationNotFound) {
			return nil, nil, errors.ErrConversationNotFound
		}
		return nil, nil, err
	}
	msgs, err := s.convStore.Messages(ctx, conversationID)
	if err != nil {
		return nil, nil, err
	}
	return conv, msgs, nil
}

// DeleteConversation removes a conversation and its messages.
func (s *Service) DeleteConversation(ctx context.Context, userID, conversationID uint64) error {
	if _, err := s.convStore.Find(ctx, conversationID, userID); err != nil {
		if stderrors.Is(err, store.ErrConversationNotFound) {
			return errors.ErrConversationNotFound
		}
		return err
	}
	return s.convStore.Delete(ctx, conversationID, userID)
}

// HealthStatus is the readiness report of the knowledge index.
type HealthStatus struct {
	Ready    bool  `json:"ready"`
	DocCount int64 `json:"doc_count"`
}

// Health reports whether the knowledge index can serve retrieval.
func (s *Service) Health(ctx context.Context) HealthStatus {
	status := HealthStatus{Ready: s.vector.Ready(ctx)}
	if count, err := s.vector.Count(ctx); err == nil {
		status.DocCount = count
	}
	return status
}
