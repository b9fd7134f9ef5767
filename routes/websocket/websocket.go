package websocket

import (
	"ShopAssist/controllers"
	"ShopAssist/middleware"
	svc "ShopAssist/pkg/services"
	tokenstore "ShopAssist/pkg/token"

	"github.com/gin-gonic/gin"
)

// Register mounts /ws/chat. Browsers cannot send headers on the upgrade, so
// the token comes from ?token= when auth is on.
func Register(r *gin.Engine, chat *svc.ChatService, tm *tokenstore.Manager, limiter *middleware.RateLimiter) {
	r.GET("/ws/chat", middleware.QueryTokenAuth(tm), controllers.ChatWS(chat, limiter))
}
