package handlers

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/vineetkumarg8/crypto-chat-app/internal/models"
	"github.com/vineetkumarg8/crypto-chat-app/internal/parser"
	"github.com/vineetkumarg8/crypto-chat-app/internal/services"
	"github.com/vineetkumarg8/crypto-chat-app/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	defaultWriteTimeout = 10 * time.Second
	defaultPongTimeout  = 60 * time.Second
	defaultPingInterval = 30 * time.Second
)

// WebSocketHandler serves the chat loop over a websocket: one JSON reply per
// received text message, same parse/generate path as the HTTP endpoint.
type WebSocketHandler struct {
	parser    *parser.Parser
	responder *services.Responder
	upgrader  websocket.Upgrader

	writeTimeout time.Duration
	pongTimeout  time.Duration
	pingInterval time.Duration
}

// NewWebSocketHandler creates a new WebSocketHandler instance
func NewWebSocketHandler(messageParser *parser.Parser, responder *services.Responder) *WebSocketHandler {
	return &WebSocketHandler{
		parser:    messageParser,
		responder: responder,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The UI collaborator may be served from another origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		writeTimeout: defaultWriteTimeout,
		pongTimeout:  defaultPongTimeout,
		pingInterval: defaultPingInterval,
	}
}

// Serve handles GET /ws/chat upgrade requests. The connection allows only one
// concurrent writer, so the reply path and the keepalive ping loop share a
// write mutex.
func (h *WebSocketHandler) Serve(c *gin.Context) {
	log := logger.GetLogger().WithContext(c.Request.Context())

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	log.Info("WebSocket session started", zap.String("client_ip", c.ClientIP()))

	conn.SetReadDeadline(time.Now().Add(h.pongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.pongTimeout))
	})

	var writeMu sync.Mutex
	done := make(chan struct{})
	defer close(done)
	go h.pingLoop(conn, &writeMu, done)

	for {
		var req models.ChatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("WebSocket read failed", zap.Error(err))
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(h.pongTimeout))

		var reply *models.ChatResponse
		if strings.TrimSpace(req.Message) == "" {
			reply = &models.ChatResponse{
				Text:  "Say something like \"What's Bitcoin trading at?\"",
				Error: true,
			}
		} else {
			intent := h.parser.Parse(req.Message)
			reply = h.responder.Generate(c.Request.Context(), intent)
		}

		writeMu.Lock()
		conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		err := conn.WriteJSON(reply)
		writeMu.Unlock()
		if err != nil {
			log.Warn("WebSocket write failed", zap.Error(err))
			return
		}
	}
}

// pingLoop keeps the connection alive until the read loop ends
func (h *WebSocketHandler) pingLoop(conn *websocket.Conn, writeMu *sync.Mutex, done <-chan struct{}) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			writeMu.Unlock()
			if err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
