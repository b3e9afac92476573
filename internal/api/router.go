package api

import (
	"github.com/gin-gonic/gin"

	"github.com/botdock/botdock/internal/api/admin"
	"github.com/botdock/botdock/internal/api/chat"
	"github.com/botdock/botdock/internal/api/middleware"
	"github.com/botdock/botdock/internal/service"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	APIKey       string
	AllowOrigins []string
}

// SetupRouter sets up the Gin router
func SetupRouter(
	adminService *service.AdminService,
	ingestService *service.IngestService,
	chatService *service.ChatService,
	cfg RouterConfig,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.AllowOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public chat API (embedded widgets)
	chatHandler := chat.NewHandler(chatService)
	chatGroup := r.Group("/api")
	chatHandler.RegisterRoutes(chatGroup)

	// Admin API (requires API key)
	adminHandler := admin.NewHandler(adminService, ingestService)
	adminGroup := r.Group("/api/admin")
	adminGroup.Use(middleware.APIKeyAuth(cfg.APIKey))
	adminHandler.RegisterRoutes(adminGroup)

	return r
}
