// Package llmopts provides options for LLM provider configuration.
package llmopts

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/vietsaga/vietsaga/pkg/options"
)

var _ options.IOptions = (*ProviderOptions)(nil)

// ProviderOptions configures one LLM provider slot (embedding or chat).
type ProviderOptions struct {
	// Provider is the registered provider name (openai|ollama).
	Provider string `json:"provider" mapstructure:"provider"`

	// BaseURL overrides the provider's API endpoint.
	BaseURL string `json:"base-url" mapstructure:"base-url"`

	// APIKey authenticates against the provider.
	APIKey string `json:"api-key" mapstructure:"api-key"`

	// Model is the chat/generation model identifier.
	Model string `json:"model" mapstructure:"model"`

	// EmbedModel is the embedding model identifier.
	EmbedModel string `json:"embed-model" mapstructure:"embed-model"`

	// Temperature controls sampling randomness.
	Temperature float64 `json:"temperature" mapstructure:"temperature"`

	// Timeout bounds each provider call. The streaming chat call uses this
	// as its fatal deadline.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// MaxRetries for one-shot calls. Streaming calls never retry.
	MaxRetries int `json:"max-retries" mapstructure:"max-retries"`

	prefix string
}

// NewProviderOptions creates ProviderOptions with defaults. The prefix names
// the flag group, e.g. "llm.chat" or "llm.embedding".
func NewProviderOptions(prefix string) *ProviderOptions {
	return &ProviderOptions{
		Provider:    "openai",
		Model:       "gpt-4o-mini",
		EmbedModel:  "text-embedding-3-small",
		Temperature: 0.7,
		Timeout:     120 * time.Second,
		MaxRetries:  3,
		prefix:      prefix,
	}
}

// AddFlags adds flags to the flagset.
func (o *ProviderOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + o.prefix + "."
	fs.StringVar(&o.Provider, p+"provider", o.Provider, "LLM provider name (openai|ollama).")
	fs.StringVar(&o.BaseURL, p+"base-url", o.BaseURL, "Provider API base URL.")
	fs.StringVar(&o.APIKey, p+"api-key", o.APIKey, "Provider API key.")
	fs.StringVar(&o.Model, p+"model", o.Model, "Chat model identifier.")
	fs.StringVar(&o.EmbedModel, p+"embed-model", o.EmbedModel, "Embedding model identifier.")
	fs.Float64Var(&o.Temperature, p+"temperature", o.Temperature, "Sampling temperature.")
	fs.DurationVar(&o.Timeout, p+"timeout", o.Timeout, "Provider call timeout.")
	fs.IntVar(&o.MaxRetries, p+"max-retries", o.MaxRetries, "Maximum retries for one-shot calls.")
}

// Validate validates the options.
func (o *ProviderOptions) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Provider == "" {
		errs = append(errs, fmt.Errorf("llm provider is required"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("llm timeout must be positive"))
	}
	return errs
}

// ToConfigMap converts the options to the provider factory config format.
func (o *ProviderOptions) ToConfigMap() map[string]any {
	return map[string]any{
		"base_url":    o.BaseURL,
		"api_key":     o.APIKey,
		"chat_model":  o.Model,
		"embed_model": o.EmbedModel,
		"temperature": o.Temperature,
		"timeout":     o.Timeout,
		"max_retries": o.MaxRetries,
	}
}
