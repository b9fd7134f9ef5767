package auth

import (
	"ShopAssist/controllers"
	"ShopAssist/pkg/store"
	tokenstore "ShopAssist/pkg/token"

	"github.com/gin-gonic/gin"
)

// RegisterPublic registers public auth routes: /auth/login
func RegisterPublic(g *gin.RouterGroup, st *store.Store, tm *tokenstore.Manager) {
	g.POST("/auth/login", controllers.Login(st, tm))
}

// RegisterProtected registers protected auth routes (e.g. logout)
func RegisterProtected(g *gin.RouterGroup, tm *tokenstore.Manager) {
	g.POST("/auth/logout", controllers.Logout(tm))
}
