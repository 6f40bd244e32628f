package handlers

import (
	"net/http"
	"strings"

	"github.com/vineetkumarg8/crypto-chat-app/internal/models"
	"github.com/vineetkumarg8/crypto-chat-app/internal/parser"
	"github.com/vineetkumarg8/crypto-chat-app/internal/services"
	"github.com/vineetkumarg8/crypto-chat-app/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatHandler handles conversational HTTP requests
type ChatHandler struct {
	parser    *parser.Parser
	responder *services.Responder
}

// NewChatHandler creates a new ChatHandler instance
func NewChatHandler(messageParser *parser.Parser, responder *services.Responder) *ChatHandler {
	return &ChatHandler{
		parser:    messageParser,
		responder: responder,
	}
}

// PostMessage handles POST /api/chat requests. The reply always carries HTTP
// 200; conversational failures are flagged inside the reply body instead,
// because the responder is the error boundary.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	log := logger.GetLogger().WithContext(c.Request.Context())

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid JSON in chat request", zap.Error(err))

		appErr := models.NewAppErrorWithDetails(
			models.ErrorCodeMalformedJSON,
			"Invalid JSON format",
			err.Error(),
		)
		models.HandleError(c, appErr, log)
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		appErr := models.NewAppErrorWithDetails(
			models.ErrorCodeEmptyMessage,
			"Message cannot be empty",
			"Provide a message field with text",
		)
		models.HandleError(c, appErr, log)
		return
	}

	intent := h.parser.Parse(req.Message)

	log.Info("Message classified",
		zap.String("intent", string(intent.Type)),
		zap.String("coin_id", intent.CoinID),
	)

	reply := h.responder.Generate(c.Request.Context(), intent)

	c.JSON(http.StatusOK, reply)
}
