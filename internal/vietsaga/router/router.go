// Package router wires the chat service routes.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/vietsaga/vietsaga/internal/pkg/middleware"
	"github.com/vietsaga/vietsaga/internal/vietsaga/handler"
	jwtopts "github.com/vietsaga/vietsaga/pkg/options/jwt"
)

// Register registers the chat service routes on the gin engine.
func Register(engine *gin.Engine, chatHandler *handler.ChatHandler, jwtOpts *jwtopts.Options) {
	logger.Info("Registering chat routes...")

	engine.GET("/healthz", chatHandler.Health)

	v1 := engine.Group("/v1")
	v1.Use(middleware.Auth(jwtOpts))
	{
		chat := v1.Group("/chat")
		{
			chat.POST("/router", chatHandler.Route)
		}

		agents := v1.Group("/agents")
		{
			agents.POST("/chat", chatHandler.Chat)
			agents.POST("/suggestions", chatHandler.Suggestions)
			agents.POST("/feedback", chatHandler.Feedback)
		}

		conversations := v1.Group("/conversations")
		{
			conversations.GET("", chatHandler.ListConversations)
			conversations.POST("", chatHandler.CreateConversation)
			conversations.GET("/:id/messages", chatHandler.ConversationMessages)
			conversations.DELETE("/:id", chatHandler.DeleteConversation)
		}
	}

	logger.Info("HTTP routes registered")
}
