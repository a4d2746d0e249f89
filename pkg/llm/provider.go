// Package llm provides a unified abstraction over LLM providers.
// Embedding and chat may be served by different providers.
package llm

import (
	"context"
	"fmt"
	"sync"
)

// Message represents one turn of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role defines the message role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatOptions tunes a single chat call. Zero-valued fields fall back to the
// provider's configured defaults.
type ChatOptions struct {
	// Model overrides the provider's chat model for this call.
	Model string

	// Temperature overrides the sampling temperature. Use a pointer so 0.0
	// is distinguishable from "not set".
	Temperature *float64
}

// StreamChunk is one fragment of a streaming chat completion. Exactly one
// chunk carries Done=true or a non-nil Err; neither is followed by further
// chunks.
type StreamChunk struct {
	Content string
	Done    bool
	Err     error
}

// EmbeddingProvider generates vector embeddings.
type EmbeddingProvider interface {
	// Embed generates embeddings for multiple texts.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle generates an embedding for a single text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Name returns the provider name.
	Name() string
}

// ChatProvider generates chat completions.
type ChatProvider interface {
	// Chat performs a one-shot completion over the message list.
	Chat(ctx context.Context, messages []Message, opts *ChatOptions) (string, error)

	// ChatStream performs a streaming completion. Fragments are delivered on
	// the returned channel in arrival order; the channel is closed after the
	// terminal chunk. Cancelling ctx stops the upstream call at the next
	// fragment boundary.
	ChatStream(ctx context.Context, messages []Message, opts *ChatOptions) (<-chan StreamChunk, error)

	// Name returns the provider name.
	Name() string
}

// Provider serves both embeddings and chat.
type Provider interface {
	EmbeddingProvider
	ChatProvider
}

// ProviderFactory constructs a full provider from a config map.
type ProviderFactory func(config map[string]any) (Provider, error)

var registry = &providerRegistry{
	providers: make(map[string]ProviderFactory),
}

type providerRegistry struct {
	mu        sync.RWMutex
	providers map[string]ProviderFactory
}

// RegisterProvider registers a provider factory under a name. Called from
// provider package init functions.
func RegisterProvider(name string, factory ProviderFactory) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.providers[name] = factory
}

// NewProvider creates a provider instance by name.
func NewProvider(name string, config map[string]any) (Provider, error) {
	registry.mu.RLock()
	factory, ok := registry.providers[name]
	registry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", name)
	}

	return factory(config)
}

// NewEmbeddingProvider creates an embedding provider by name.
func NewEmbeddingProvider(name string, config map[string]any) (EmbeddingProvider, error) {
	return NewProvider(name, config)
}

// NewChatProvider creates a chat provider by name.
func NewChatProvider(name string, config map[string]any) (ChatProvider, error) {
	return NewProvider(name, config)
}

// ListProviders lists registered provider names.
func ListProviders() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	names := make([]string, 0, len(registry.providers))
	for name := range registry.providers {
		names = append(names, name)
	}
	return names
}
