package api

import (
	"github.com/gin-gonic/gin"
	"github.com/openscribe/draftpad/internal/api/account"
	"github.com/openscribe/draftpad/internal/api/chat"
	"github.com/openscribe/draftpad/internal/api/docs"
	"github.com/openscribe/draftpad/internal/api/middleware"
	"github.com/openscribe/draftpad/internal/auth"
	"github.com/openscribe/draftpad/internal/ratelimit"
	"github.com/openscribe/draftpad/internal/service"
	"go.uber.org/zap"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	AllowOrigins []string
	RateLimiter  *ratelimit.Limiter // nil disables rate limiting
}

// SetupRouter sets up the Gin router
func SetupRouter(
	authService *service.AuthService,
	docService *service.DocumentService,
	relayService *service.RelayService,
	tokens *auth.Service,
	logger *zap.Logger,
	cfg RouterConfig,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS middleware
	r.Use(middleware.CORS(cfg.AllowOrigins))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	requireAuth := middleware.Auth(tokens)

	// Auth API
	accountHandler := account.NewHandler(authService)
	authGroup := r.Group("/api/auth")
	accountHandler.RegisterPublicRoutes(authGroup)
	authGroup.Use(requireAuth)
	accountHandler.RegisterProtectedRoutes(authGroup)

	// Document API (requires token)
	docsHandler := docs.NewHandler(docService)
	docsGroup := r.Group("/api/documents")
	docsGroup.Use(requireAuth)
	docsHandler.RegisterRoutes(docsGroup)

	// Chat relay API (requires token, rate limited)
	chatHandler := chat.NewHandler(relayService, logger)
	chatGroup := r.Group("/api/chat")
	chatGroup.Use(requireAuth)
	if cfg.RateLimiter != nil {
		chatGroup.Use(middleware.RateLimit(cfg.RateLimiter, logger))
	}
	chatHandler.RegisterRoutes(chatGroup)

	return r
}
