package conversation

import (
	"ShopAssist/controllers"
	svc "ShopAssist/pkg/services"

	"github.com/gin-gonic/gin"
)

// Register registers conversation routes
func Register(g *gin.RouterGroup, chat *svc.ChatService) {
	g.GET("/conversations", controllers.ListConversations(chat))
	g.GET("/conversations/:conversation_id", controllers.GetConversation(chat))
	g.DELETE("/conversations/:conversation_id", controllers.DeleteConversation(chat))
}
