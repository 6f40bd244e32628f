package handlers

import (
	"net/http"

	"github.com/vineetkumarg8/crypto-chat-app/internal/models"
	"github.com/vineetkumarg8/crypto-chat-app/internal/services"
	"github.com/vineetkumarg8/crypto-chat-app/pkg/logger"

	"github.com/gin-gonic/gin"
)

// MarketHandler exposes the aggregate market-data endpoints
type MarketHandler struct {
	market services.MarketDataClient
}

// NewMarketHandler creates a new MarketHandler instance
func NewMarketHandler(market services.MarketDataClient) *MarketHandler {
	return &MarketHandler{market: market}
}

// GetGlobal handles GET /api/market/global requests
func (h *MarketHandler) GetGlobal(c *gin.Context) {
	log := logger.GetLogger().WithContext(c.Request.Context())

	global, err := h.market.GetGlobalData(c.Request.Context())
	if err != nil {
		models.HandleError(c, err, log)
		return
	}

	c.JSON(http.StatusOK, global)
}

// GetRates handles GET /api/market/rates requests
func (h *MarketHandler) GetRates(c *gin.Context) {
	log := logger.GetLogger().WithContext(c.Request.Context())

	rates, err := h.market.GetExchangeRates(c.Request.Context())
	if err != nil {
		models.HandleError(c, err, log)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rates": rates})
}
