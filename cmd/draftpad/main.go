package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openscribe/draftpad/internal/api"
	"github.com/openscribe/draftpad/internal/auth"
	"github.com/openscribe/draftpad/internal/config"
	"github.com/openscribe/draftpad/internal/ratelimit"
	"github.com/openscribe/draftpad/internal/repository"
	"github.com/openscribe/draftpad/internal/service"
	"github.com/openscribe/draftpad/internal/upstream"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := repository.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	docRepo := repository.NewDocumentRepository(db)

	// Initialize token service and upstream client
	tokens := auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	llmClient := upstream.NewClient(cfg.LLM.BaseURL, cfg.LLM.ConnectTimeout)

	// Initialize services
	authService := service.NewAuthService(cfg, userRepo, tokens)
	docService := service.NewDocumentService(docRepo)
	relayService := service.NewRelayService(cfg, llmClient, logger)

	// Rate limiter for the chat endpoint
	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		var store ratelimit.Store
		if cfg.RateLimit.Redis.Addr != "" {
			store, err = ratelimit.NewRedisStore(
				cfg.RateLimit.Redis.Addr,
				cfg.RateLimit.Redis.Password,
				cfg.RateLimit.Redis.DB,
			)
			if err != nil {
				logger.Warn("Failed to connect rate-limit redis, falling back to memory", zap.Error(err))
				store = ratelimit.NewMemoryStore()
			}
		} else {
			store = ratelimit.NewMemoryStore()
		}
		limiter = ratelimit.NewLimiter(store, cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
		defer limiter.Close()
	}

	// Setup router
	router := api.SetupRouter(authService, docService, relayService, tokens, logger, api.RouterConfig{
		AllowOrigins: cfg.CORS.AllowOrigins,
		RateLimiter:  limiter,
	})

	// Create HTTP server. WriteTimeout stays zero: the chat relay keeps
	// a response open for as long as the model generates.
	srv := &http.Server{
		Addr:        cfg.Address(),
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting draftpad server",
			zap.String("address", cfg.Address()),
			zap.String("llm_base_url", cfg.LLM.BaseURL),
			zap.String("llm_model", cfg.LLM.Model),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
