package handlers

import (
	"github.com/vineetkumarg8/crypto-chat-app/internal/parser"
	"github.com/vineetkumarg8/crypto-chat-app/internal/services"

	"github.com/gin-gonic/gin"
)

// Router handles HTTP routing setup
type Router struct {
	chatHandler      *ChatHandler
	wsHandler        *WebSocketHandler
	portfolioHandler *PortfolioHandler
	marketHandler    *MarketHandler
	healthHandler    *HealthHandler
}

// NewRouter creates a new Router instance with all handlers
func NewRouter(messageParser *parser.Parser, responder *services.Responder, portfolio services.PortfolioManager, market services.MarketDataClient, healthHandler *HealthHandler) *Router {
	return &Router{
		chatHandler:      NewChatHandler(messageParser, responder),
		wsHandler:        NewWebSocketHandler(messageParser, responder),
		portfolioHandler: NewPortfolioHandler(portfolio),
		marketHandler:    NewMarketHandler(market),
		healthHandler:    healthHandler,
	}
}

// SetupRoutes configures all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	api := engine.Group("/api")
	{
		api.POST("/chat", r.chatHandler.PostMessage)

		api.GET("/portfolio", r.portfolioHandler.GetSummary)
		api.PUT("/portfolio/:id", r.portfolioHandler.UpdateHolding)
		api.DELETE("/portfolio/:id", r.portfolioHandler.RemoveHolding)

		api.GET("/market/global", r.marketHandler.GetGlobal)
		api.GET("/market/rates", r.marketHandler.GetRates)
	}

	engine.GET("/ws/chat", r.wsHandler.Serve)
}

// SetupHealthRoutes configures health check routes
func (r *Router) SetupHealthRoutes(engine *gin.Engine) {
	health := engine.Group("/health")
	{
		health.GET("", r.healthHandler.GetHealth)
		health.GET("/live", r.healthHandler.GetLiveness)
		health.GET("/ready", r.healthHandler.GetReadiness)
	}
}
