// Package app provides the chat server application.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vietsaga/vietsaga/cmd/vietsaga/app/options"
	"github.com/vietsaga/vietsaga/internal/vietsaga"
	"github.com/vietsaga/vietsaga/pkg/app"
)

const commandDesc = `VietSaga Chat Service

The conversational orchestration service of the VietSaga history learning platform.

This server provides:
  - Question routing across historical-period persona agents
  - Streamed persona answers grounded in the knowledge index
  - Citation and knowledge-graph synthesis per answer
  - Conversation history management`

// NewApp creates and returns a new App object with default parameters.
func NewApp() *app.App {
	opts := options.NewServerOptions()
	return app.NewApp(
		app.WithName(vietsaga.Name),
		app.WithShortDescription("VietSaga chat orchestration service"),
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithRunFunc(run(opts)),
	)
}

// run contains the main logic for initializing and running the server.
func run(opts *options.ServerOptions) app.RunFunc {
	return func() error {
		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		ctx := setupSignalContext()

		server, err := cfg.NewServer(ctx)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		return server.Run(ctx)
	}
}

// setupSignalContext returns a context that is cancelled on SIGINT or SIGTERM.
func setupSignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
		<-c
		os.Exit(1)
	}()
	return ctx
}
