// Package options contains flags and options for initializing the chat server.
package options

import (
	"errors"

	"github.com/spf13/pflag"

	"github.com/vietsaga/vietsaga/internal/vietsaga"
	cacheopts "github.com/vietsaga/vietsaga/pkg/options/cache"
	chatopts "github.com/vietsaga/vietsaga/pkg/options/chat"
	dbopts "github.com/vietsaga/vietsaga/pkg/options/db"
	graphopts "github.com/vietsaga/vietsaga/pkg/options/graph"
	httpopts "github.com/vietsaga/vietsaga/pkg/options/http"
	jwtopts "github.com/vietsaga/vietsaga/pkg/options/jwt"
	llmopts "github.com/vietsaga/vietsaga/pkg/options/llm"
	logopts "github.com/vietsaga/vietsaga/pkg/options/logger"
	milvusopts "github.com/vietsaga/vietsaga/pkg/options/milvus"
)

// ServerOptions contains the configuration options for the server.
type ServerOptions struct {
	// HTTPOptions contains HTTP server configuration.
	HTTPOptions *httpopts.Options `json:"http" mapstructure:"http"`

	// LogOptions contains logger configuration.
	LogOptions *logopts.Options `json:"log" mapstructure:"log"`

	// MilvusOptions contains knowledge index configuration.
	MilvusOptions *milvusopts.Options `json:"milvus" mapstructure:"milvus"`

	// GraphOptions contains Neo4j knowledge graph configuration.
	GraphOptions *graphopts.Options `json:"graph" mapstructure:"graph"`

	// DBOptions contains conversation database configuration.
	DBOptions *dbopts.Options `json:"db" mapstructure:"db"`

	// CacheOptions contains routing cache configuration.
	CacheOptions *cacheopts.Options `json:"cache" mapstructure:"cache"`

	// EmbeddingOptions contains embedding provider configuration.
	EmbeddingOptions *llmopts.ProviderOptions `json:"embedding" mapstructure:"embedding"`

	// ChatOptions contains chat provider configuration.
	ChatOptions *llmopts.ProviderOptions `json:"chat" mapstructure:"chat"`

	// PipelineOptions contains chat pipeline tuning.
	PipelineOptions *chatopts.Options `json:"pipeline" mapstructure:"pipeline"`

	// JWTOptions contains token verification configuration.
	JWTOptions *jwtopts.Options `json:"jwt" mapstructure:"jwt"`
}

// NewServerOptions creates a ServerOptions instance with default values.
func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		HTTPOptions:      httpopts.NewOptions(),
		LogOptions:       logopts.NewOptions(),
		MilvusOptions:    milvusopts.NewOptions(),
		GraphOptions:     graphopts.NewOptions(),
		DBOptions:        dbopts.NewOptions(),
		CacheOptions:     cacheopts.NewOptions(),
		EmbeddingOptions: llmopts.NewProviderOptions("embedding"),
		ChatOptions:      llmopts.NewProviderOptions("chat"),
		PipelineOptions:  chatopts.NewOptions(),
		JWTOptions:       jwtopts.NewOptions(),
	}
}

// AddFlags adds all server flags to the flagset.
func (o *ServerOptions) AddFlags(fs *pflag.FlagSet) {
	o.HTTPOptions.AddFlags(fs)
	o.LogOptions.AddFlags(fs)
	o.MilvusOptions.AddFlags(fs)
	o.GraphOptions.AddFlags(fs)
	o.DBOptions.AddFlags(fs)
	o.CacheOptions.AddFlags(fs)
	o.EmbeddingOptions.AddFlags(fs)
	o.ChatOptions.AddFlags(fs)
	o.PipelineOptions.AddFlags(fs)
	o.JWTOptions.AddFlags(fs)
}

// Complete completes all the required options.
func (o *ServerOptions) Complete() error {
	return nil
}

// Validate checks whether the options in ServerOptions are valid.
func (o *ServerOptions) Validate() error {
	var errs []error

	errs = append(errs, o.HTTPOptions.Validate()...)
	if err := o.LogOptions.Validate(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, o.MilvusOptions.Validate()...)
	errs = append(errs, o.GraphOptions.Validate()...)
	errs = append(errs, o.DBOptions.Validate()...)
	errs = append(errs, o.CacheOptions.Validate()...)
	errs = append(errs, o.EmbeddingOptions.Validate()...)
	errs = append(errs, o.ChatOptions.Validate()...)
	errs = append(errs, o.PipelineOptions.Validate()...)
	errs = append(errs, o.JWTOptions.Validate()...)

	return errors.Join(errs...)
}

// Config builds a vietsaga.Config based on ServerOptions.
func (o *ServerOptions) Config() (*vietsaga.Config, error) {
	return &vietsaga.Config{
		HTTPOptions:      o.HTTPOptions,
		LogOptions:       o.LogOptions,
		MilvusOptions:    o.MilvusOptions,
		GraphOptions:     o.GraphOptions,
		DBOptions:        o.DBOptions,
		CacheOptions:     o.CacheOptions,
		EmbeddingOptions: o.EmbeddingOptions,
		ChatOptions:      o.ChatOptions,
		PipelineOptions:  o.PipelineOptions,
		JWTOptions:       o.JWTOptions,
	}, nil
}
