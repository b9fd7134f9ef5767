package chat

import (
	"ShopAssist/controllers"
	"ShopAssist/middleware"
	svc "ShopAssist/pkg/services"

	"github.com/gin-gonic/gin"
)

// Register registers the chat turn endpoint with basic rate limiting.
func Register(g *gin.RouterGroup, chat *svc.ChatService, limiter *middleware.RateLimiter) {
	handlers := []gin.HandlerFunc{controllers.Chat(chat)}
	if limiter != nil {
		handlers = append([]gin.HandlerFunc{limiter.Handler()}, handlers...)
	}
	g.POST("/chat", handlers...)
}
