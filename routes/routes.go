package routes

import (
	"ShopAssist/controllers"
	"ShopAssist/middleware"
	svc "ShopAssist/pkg/services"
	"ShopAssist/pkg/store"
	tokenstore "ShopAssist/pkg/token"

	"github.com/gin-gonic/gin"

	authRoutes "ShopAssist/routes/auth"
	chatRoutes "ShopAssist/routes/chat"
	convRoutes "ShopAssist/routes/conversation"
	userRoutes "ShopAssist/routes/users"
	websocketRoutes "ShopAssist/routes/websocket"
)

// Deps are the collaborators handlers are built from. A nil Tokens turns
// authentication off.
type Deps struct {
	Chat    *svc.ChatService
	Store   *store.Store
	Tokens  *tokenstore.Manager
	Limiter *middleware.RateLimiter
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/", controllers.Index())
	r.GET("/healthz", controllers.Healthz(d.Store))

	websocketRoutes.Register(r, d.Chat, d.Tokens, d.Limiter)

	api := r.Group("/api")
	if d.Tokens != nil {
		authRoutes.RegisterPublic(api, d.Store, d.Tokens)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(d.Tokens))
	if d.Tokens != nil {
		authRoutes.RegisterProtected(protected, d.Tokens)
	}
	chatRoutes.Register(protected, d.Chat, d.Limiter)
	convRoutes.Register(protected, d.Chat)
	userRoutes.Register(protected, d.Chat)
}
