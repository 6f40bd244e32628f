package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vineetkumarg8/crypto-chat-app/internal/coins"
	"github.com/vineetkumarg8/crypto-chat-app/internal/models"
	"github.com/vineetkumarg8/crypto-chat-app/internal/parser"
	"github.com/vineetkumarg8/crypto-chat-app/internal/services"
	"github.com/vineetkumarg8/crypto-chat-app/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWSTestServer(t *testing.T, pingInterval time.Duration) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	market := &stubMarketClient{
		prices: map[string]models.CoinPrice{
			"bitcoin": {CoinID: "bitcoin", Price: 50000, Change24h: 2.5},
		},
	}
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	portfolio := services.NewPortfolioService(market, store, "portfolio")

	handler := NewWebSocketHandler(
		parser.New(coins.NewResolver()),
		services.NewResponder(market, portfolio),
	)
	handler.pingInterval = pingInterval

	router := gin.New()
	router.GET("/ws/chat", handler.Serve)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func dialWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/chat"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketChat(t *testing.T) {
	server := newWSTestServer(t, defaultPingInterval)
	conn := dialWS(t, server)

	require.NoError(t, conn.WriteJSON(models.ChatRequest{Message: "bitcoin price"}))

	var reply models.ChatResponse
	require.NoError(t, conn.ReadJSON(&reply))
	assert.False(t, reply.Error)
	assert.Contains(t, reply.Text, "BITCOIN")

	require.NoError(t, conn.WriteJSON(models.ChatRequest{Message: "   "}))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.True(t, reply.Error)
}

func TestWebSocketRepliesInterleaveWithPings(t *testing.T) {
	// An aggressive keepalive interval forces pings to fire between and during
	// replies; every reply frame must still arrive intact.
	server := newWSTestServer(t, 2*time.Millisecond)
	conn := dialWS(t, server)

	for i := 0; i < 25; i++ {
		require.NoError(t, conn.WriteJSON(models.ChatRequest{Message: "bitcoin price"}))

		var reply models.ChatResponse
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		require.NoError(t, conn.ReadJSON(&reply))
		assert.False(t, reply.Error)
		assert.Contains(t, reply.Text, "50,000")

		time.Sleep(time.Millisecond)
	}
}
