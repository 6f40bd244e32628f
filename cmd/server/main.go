package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vineetkumarg8/crypto-chat-app/internal/coins"
	"github.com/vineetkumarg8/crypto-chat-app/internal/config"
	"github.com/vineetkumarg8/crypto-chat-app/internal/handlers"
	"github.com/vineetkumarg8/crypto-chat-app/internal/middleware"
	"github.com/vineetkumarg8/crypto-chat-app/internal/parser"
	"github.com/vineetkumarg8/crypto-chat-app/internal/services"
	"github.com/vineetkumarg8/crypto-chat-app/pkg/cache"
	"github.com/vineetkumarg8/crypto-chat-app/pkg/logger"
	"github.com/vineetkumarg8/crypto-chat-app/pkg/metrics"
	"github.com/vineetkumarg8/crypto-chat-app/pkg/ratelimiter"
	"github.com/vineetkumarg8/crypto-chat-app/pkg/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var startTime = time.Now()

// Server represents the main application server
type Server struct {
	httpServer       *http.Server
	config           *config.Config
	geckoClient      *services.CoinGeckoClient
	marketService    *services.MarketService
	portfolioService *services.PortfolioService
	serverLimiter    *ratelimiter.KeyedLimiter
	collector        *metrics.Collector
	router           *handlers.Router
}

func main() {
	cfg := config.LoadConfig()

	loggerConfig := &logger.Config{
		Level:       cfg.Logging.Level,
		Environment: cfg.Logging.Environment,
		OutputPaths: cfg.Logging.OutputPaths,
		File:        cfg.Logging.File,
	}

	if err := logger.Initialize(loggerConfig); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log := logger.GetLogger()

	log.Info("Starting crypto chat server",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.String("market_data_url", cfg.MarketData.BaseURL),
		zap.Duration("cache_ttl", cfg.Cache.TTL),
		zap.Int("market_rate_limit", cfg.RateLimit.MarketRequestsPerMinute),
		zap.Int("client_rate_limit", cfg.RateLimit.ClientRequestsPerMinute),
	)

	server, err := NewServer(cfg)
	if err != nil {
		log.Fatal("Failed to create server", zap.Error(err))
	}

	if err := server.Start(); err != nil {
		log.Fatal("Server failed to start", zap.Error(err))
	}
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	log := logger.GetLogger()

	log.Debug("Initializing alias resolver")
	resolver := coins.NewResolver()
	if cfg.Coins.AliasFile != "" {
		extended, err := coins.NewResolverFromFile(cfg.Coins.AliasFile)
		if err != nil {
			log.Warn("Failed to load alias file, using built-in table", zap.Error(err))
		} else {
			resolver = extended
		}
	}

	log.Debug("Initializing market-data client")
	clientLimiter := ratelimiter.New(cfg.RateLimit.ClientRequestsPerMinute, cfg.RateLimit.Window)
	geckoClient := services.NewCoinGeckoClient(&cfg.MarketData, clientLimiter)

	healthCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := geckoClient.IsHealthy(healthCtx); err != nil {
		log.Warn("Market data source health check failed", zap.Error(err))
	} else {
		log.Info("Market data source healthy")
	}
	cancel()

	log.Debug("Initializing market service")
	responseCache := cache.New(cfg.Cache.TTL, cfg.Cache.CleanupInterval)
	marketLimiter := ratelimiter.New(cfg.RateLimit.MarketRequestsPerMinute, cfg.RateLimit.Window)
	collector := metrics.NewCollector()
	marketService := services.NewMarketService(geckoClient, responseCache, marketLimiter, collector)

	log.Debug("Initializing portfolio store")
	fileStore, err := storage.NewFileStore(cfg.Portfolio.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	portfolioService := services.NewPortfolioService(marketService, fileStore, cfg.Portfolio.StorageKey)

	log.Debug("Initializing chat pipeline")
	messageParser := parser.New(resolver)
	responder := services.NewResponder(marketService, portfolioService)

	healthHandler := handlers.NewHealthHandler(services.NewUpstreamHealthChecker(geckoClient))
	router := handlers.NewRouter(messageParser, responder, portfolioService, marketService, healthHandler)

	serverLimiter := ratelimiter.NewKeyed(cfg.RateLimit.ServerRequestsPerMinute, cfg.RateLimit.Window)

	log.Info("Server components initialized successfully")

	return &Server{
		config:           cfg,
		geckoClient:      geckoClient,
		marketService:    marketService,
		portfolioService: portfolioService,
		serverLimiter:    serverLimiter,
		collector:        collector,
		router:           router,
	}, nil
}

// Start starts the HTTP server with graceful shutdown handling
func (s *Server) Start() error {
	log := logger.GetLogger()

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	s.setupMiddleware(engine)
	s.setupRoutes(engine)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", s.config.Server.Host, s.config.Server.Port),
		Handler:           engine,
		ReadTimeout:       s.config.Server.ReadTimeout,
		WriteTimeout:      s.config.Server.WriteTimeout,
		IdleTimeout:       s.config.Server.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB max header size
	}

	log.Info("HTTP server configured",
		zap.String("address", s.httpServer.Addr),
		zap.Duration("read_timeout", s.config.Server.ReadTimeout),
		zap.Duration("write_timeout", s.config.Server.WriteTimeout),
	)

	s.startBackgroundRoutines()

	go func() {
		log.Info("Starting HTTP server", zap.String("address", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	return s.waitForShutdown()
}

// setupMiddleware configures the middleware stack
func (s *Server) setupMiddleware(engine *gin.Engine) {
	engine.Use(logger.RecoveryMiddleware())
	engine.Use(logger.LoggingMiddleware())
	engine.Use(middleware.MetricsMiddleware(s.collector))
	engine.Use(middleware.PerformanceMiddleware())
	engine.Use(middleware.ConcurrencyMiddleware(s.collector))
	engine.Use(s.corsMiddleware())
	engine.Use(s.serverLimiter.Middleware())
}

// setupRoutes configures all application routes
func (s *Server) setupRoutes(engine *gin.Engine) {
	s.router.SetupHealthRoutes(engine)
	s.router.SetupRoutes(engine)

	engine.GET("/metrics", s.metricsHandler)
	engine.GET("/status", s.statusHandler)
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// metricsHandler provides the metrics endpoint
func (s *Server) metricsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":         "crypto-chat-app",
		"metrics":         s.collector.GetMetrics(),
		"cache_hit_ratio": s.collector.GetCacheHitRatio(),
		"success_rate":    s.collector.GetSuccessRate(),
		"uptime":          s.collector.GetUptime().String(),
	})
}

// statusHandler provides detailed status information
func (s *Server) statusHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	upstreamHealthy := s.geckoClient.IsHealthy(ctx) == nil

	c.JSON(http.StatusOK, gin.H{
		"service":          "crypto-chat-app",
		"status":           "running",
		"upstream_healthy": upstreamHealthy,
		"cache":            s.marketService.CacheStats(),
		"uptime":           time.Since(startTime).String(),
	})
}

// startBackgroundRoutines starts periodic maintenance tasks
func (s *Server) startBackgroundRoutines() {
	log := logger.GetLogger()

	go s.portfolioService.StartRefreshLoop(s.config.Portfolio.RefreshInterval)

	// Drop idle per-IP limiter windows
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			s.serverLimiter.Cleanup()
		}
	}()

	log.Info("Background routines started",
		zap.Duration("portfolio_refresh_interval", s.config.Portfolio.RefreshInterval),
	)
}

// waitForShutdown waits for interrupt signal and performs graceful shutdown
func (s *Server) waitForShutdown() error {
	log := logger.GetLogger()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Info("Received shutdown signal", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	s.cleanup()

	log.Info("Server gracefully stopped")
	return nil
}

// cleanup stops background work owned by the services
func (s *Server) cleanup() {
	log := logger.GetLogger()

	log.Info("Cleaning up services...")

	s.marketService.Stop()
	s.portfolioService.Stop()

	if err := log.Sync(); err != nil {
		// Sync can fail on stdout; nothing actionable
		_ = err
	}
}
