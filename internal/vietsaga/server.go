// Package vietsaga provides the chat service server implementation.
package vietsaga

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/vietsaga/vietsaga/internal/pkg/middleware"
	"github.com/vietsaga/vietsaga/internal/pkg/pool"
	"github.com/vietsaga/vietsaga/internal/vietsaga/biz"
	"github.com/vietsaga/vietsaga/internal/vietsaga/handler"
	"github.com/vietsaga/vietsaga/internal/vietsaga/router"
	"github.com/vietsaga/vietsaga/internal/vietsaga/store"
	"github.com/vietsaga/vietsaga/pkg/app"
	"github.com/vietsaga/vietsaga/pkg/component/milvus"
	"github.com/vietsaga/vietsaga/pkg/component/neo4j"
	"github.com/vietsaga/vietsaga/pkg/llm"
	_ "github.com/vietsaga/vietsaga/pkg/llm/ollama"
	_ "github.com/vietsaga/vietsaga/pkg/llm/openai"
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

// Name is the name of the application.
const Name = "vietsaga-chat"

// Config contains application-related configurations.
type Config struct {
	HTTPOptions      *httpopts.Options
	LogOptions       *logopts.Options
	MilvusOptions    *milvusopts.Options
	GraphOptions     *graphopts.Options
	DBOptions        *dbopts.Options
	CacheOptions     *cacheopts.Options
	EmbeddingOptions *llmopts.ProviderOptions
	ChatOptions      *llmopts.ProviderOptions
	PipelineOptions  *chatopts.Options
	JWTOptions       *jwtopts.Options
}

// Server represents the chat server.
type Server struct {
	httpSrv         *http.Server
	shutdownTimeout time.Duration
	closers         []func()
}

// NewServer initializes and returns a new Server instance.
func (cfg *Config) NewServer(_ context.Context) (*Server, error) {
	printBanner(cfg)

	var closers []func()

	// 1. Logger
	cfg.LogOptions.AddInitialField("service.name", Name)
	cfg.LogOptions.AddInitialField("service.version", app.GetVersion())
	if err := cfg.LogOptions.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting chat service...")

	// 2. Milvus knowledge index
	milvusClient, err := milvus.New(cfg.MilvusOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize milvus: %w", err)
	}
	closers = append(closers, func() { _ = milvusClient.Close(context.Background()) })
	vectorStore := store.NewMilvusStore(milvusClient)
	logger.Infow("Vector store initialized", "collection", cfg.MilvusOptions.Collection)

	// 3. Conversation database
	db, err := store.NewDB(cfg.DBOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if sqlDB, dbErr := db.DB(); dbErr == nil {
		closers = append(closers, func() { _ = sqlDB.Close() })
	}
	convStore := store.NewConversationStore(db)
	logger.Infow("Conversation store initialized", "driver", cfg.DBOptions.Driver)

	// 4. Knowledge graph. Degrades to chunk-derived links when unreachable.
	graphClient := neo4j.New(cfg.GraphOptions)
	closers = append(closers, func() { _ = graphClient.Close(context.Background()) })
	graphStore := store.NewGraphStore(graphClient)
	if graphClient.Available() {
		logger.Infow("Graph store initialized", "uri", cfg.GraphOptions.URI)
	} else {
		logger.Warn("Graph store unavailable, graph links will be derived from chunks")
	}

	// 5. Redis routing cache
	var routeCache *biz.RouteCache
	if cfg.CacheOptions.Enabled {
		redisClient := goredis.NewClient(&goredis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.CacheOptions.Host, cfg.CacheOptions.Port),
			Password: cfg.CacheOptions.Password,
			DB:       cfg.CacheOptions.Database,
			PoolSize: cfg.CacheOptions.PoolSize,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warnw("failed to connect to redis, routing cache will be disabled", "error", err.Error())
			_ = redisClient.Close()
		} else {
			routeCache = biz.NewRouteCache(redisClient, &biz.RouteCacheConfig{
				Enabled:   true,
				TTL:       cfg.CacheOptions.TTL,
				KeyPrefix: cfg.CacheOptions.KeyPrefix,
			})
			closers = append(closers, func() { _ = redisClient.Close() })
			logger.Infow("Routing cache initialized",
				"host", cfg.CacheOptions.Host,
				"port", cfg.CacheOptions.Port,
				"ttl", cfg.CacheOptions.TTL,
			)
		}
	} else {
		logger.Info("Routing cache is disabled")
	}
	if routeCache == nil {
		routeCache = biz.NewRouteCache(nil, nil)
	}

	// 6. LLM providers
	embedProvider, err := llm.NewEmbeddingProvider(cfg.EmbeddingOptions.Provider, cfg.EmbeddingOptions.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	logger.Infow("Embedding provider initialized",
		"provider", cfg.EmbeddingOptions.Provider,
		"model", cfg.EmbeddingOptions.EmbedModel,
	)

	chatProvider, err := llm.NewChatProvider(cfg.ChatOptions.Provider, cfg.ChatOptions.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat provider: %w", err)
	}
	logger.Infow("Chat provider initialized",
		"provider", cfg.ChatOptions.Provider,
		"model", cfg.ChatOptions.Model,
	)

	// 7. Worker pool for post-stream synthesis
	workers, err := pool.New("synthesis", pool.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize worker pool: %w", err)
	}
	closers = append(closers, func() { _ = workers.Release(5 * time.Second) })

	// 8. Biz layer
	catalog, err := biz.NewCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to build persona catalog: %w", err)
	}
	voicePolicy := biz.NewVoicePolicy(cfg.PipelineOptions.VoicePolicy)

	service := biz.NewService(biz.ServiceConfig{
		Catalog:       catalog,
		Analyzer:      biz.NewAnalyzer(catalog),
		Retriever:     biz.NewRetriever(vectorStore, embedProvider, catalog, cfg.PipelineOptions.TopK),
		Enricher:      biz.NewEnricher(graphStore),
		VoicePolicy:   voicePolicy,
		Conversations: biz.NewConversationManager(convStore, catalog, cfg.PipelineOptions.HistoryWindow),
		Synthesizer:   biz.NewSynthesizer(chatProvider, catalog, cfg.PipelineOptions.SourceLabel),
		Suggestions:   biz.NewSuggestionService(chatProvider, catalog, voicePolicy),
		Chat:          chatProvider,
		RouteCache:    routeCache,
		Workers:       workers,
		ConvStore:     convStore,
		Vector:        vectorStore,
		Timeouts: biz.Timeouts{
			Retrieval: cfg.PipelineOptions.RetrievalTimeout,
			Graph:     cfg.PipelineOptions.GraphTimeout,
			Synthesis: cfg.PipelineOptions.SynthesisTimeout,
		},
	})
	logger.Infow("Chat service initialized",
		"voice_policy", voicePolicy.Name(),
		"top_k", cfg.PipelineOptions.TopK,
		"history_window", cfg.PipelineOptions.HistoryWindow,
		"cache.enabled", cfg.CacheOptions.Enabled,
	)

	// 9. Handler and routes
	chatHandler := handler.NewChatHandler(service)

	gin.SetMode(cfg.HTTPOptions.Mode)
	engine := gin.New()
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog("/healthz"),
	)
	router.Register(engine, chatHandler, cfg.JWTOptions)

	httpSrv := &http.Server{
		Addr:         cfg.HTTPOptions.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.HTTPOptions.ReadTimeout,
		WriteTimeout: cfg.HTTPOptions.WriteTimeout,
	}

	logger.Info("Chat service is ready")
	return &Server{
		httpSrv:         httpSrv,
		shutdownTimeout: cfg.HTTPOptions.ShutdownTimeout,
		closers:         closers,
	}, nil
}

// Run starts the server and shuts down gracefully when ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	defer func() {
		for i := len(s.closers) - 1; i >= 0; i-- {
			s.closers[i]()
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("HTTP server listening", "addr", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("HTTP server stopped")
	return nil
}

func printBanner(cfg *Config) {
	fmt.Printf("Starting %s...\n", Name)
	fmt.Printf("  Embedding: %s (%s)\n", cfg.EmbeddingOptions.Provider, cfg.EmbeddingOptions.EmbedModel)
	fmt.Printf("  Chat: %s (%s)\n", cfg.ChatOptions.Provider, cfg.ChatOptions.Model)
	fmt.Printf("  Voice policy: %s\n", cfg.PipelineOptions.VoicePolicy)
}
