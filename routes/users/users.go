package users

import (
	"ShopAssist/controllers"
	svc "ShopAssist/pkg/services"

	"github.com/gin-gonic/gin"
)

// Register registers read-only customer routes.
func Register(g *gin.RouterGroup, chat *svc.ChatService) {
	g.GET("/users/:user_id", controllers.GetUser(chat))
}
