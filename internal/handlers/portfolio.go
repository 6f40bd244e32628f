package handlers

import (
	"net/http"

	"github.com/vineetkumarg8/crypto-chat-app/internal/models"
	"github.com/vineetkumarg8/crypto-chat-app/internal/services"
	"github.com/vineetkumarg8/crypto-chat-app/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PortfolioHandler exposes the holdings ledger over HTTP
type PortfolioHandler struct {
	portfolio services.PortfolioManager
}

// NewPortfolioHandler creates a new PortfolioHandler instance
func NewPortfolioHandler(portfolio services.PortfolioManager) *PortfolioHandler {
	return &PortfolioHandler{portfolio: portfolio}
}

// GetSummary handles GET /api/portfolio requests
func (h *PortfolioHandler) GetSummary(c *gin.Context) {
	log := logger.GetLogger().WithContext(c.Request.Context())

	summary, err := h.portfolio.Summary(c.Request.Context())
	if err != nil {
		models.HandleError(c, err, log)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// RemoveHolding handles DELETE /api/portfolio/:id requests
func (h *PortfolioHandler) RemoveHolding(c *gin.Context) {
	log := logger.GetLogger().WithContext(c.Request.Context())

	id := c.Param("id")
	if err := h.portfolio.RemoveHolding(id); err != nil {
		models.HandleError(c, err, log)
		return
	}

	log.Info("Holding removed", zap.String("holding_id", id))
	c.JSON(http.StatusOK, gin.H{"removed": id})
}

// UpdateHolding handles PUT /api/portfolio/:id requests. An amount of zero or
// less removes the holding.
func (h *PortfolioHandler) UpdateHolding(c *gin.Context) {
	log := logger.GetLogger().WithContext(c.Request.Context())

	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := models.NewAppErrorWithDetails(
			models.ErrorCodeMalformedJSON,
			"Invalid JSON format",
			err.Error(),
		)
		models.HandleError(c, appErr, log)
		return
	}

	id := c.Param("id")
	if err := h.portfolio.UpdateHolding(c.Request.Context(), id, req.Amount); err != nil {
		models.HandleError(c, err, log)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": id, "amount": req.Amount})
}
