package main

import (
	"context"
	"log"
	"time"

	"ShopAssist/middleware"
	"ShopAssist/pkg/config"
	"ShopAssist/pkg/database"
	svc "ShopAssist/pkg/services"
	"ShopAssist/pkg/store"
	tokenstore "ShopAssist/pkg/token"
	"ShopAssist/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	logLevel := logger.Warn
	if cfg.IsStaging {
		logLevel = logger.Info
	}
	db, err := database.Open(ctx, database.Options{
		Driver:       cfg.DBDriver,
		DSN:          cfg.DatabaseURL,
		MaxOpenConns: cfg.DBMaxOpenConns,
		LogLevel:     logLevel,
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed migrate: %v", err)
	}

	gen, err := svc.NewGenerator(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init llm provider: %v", err)
	}
	st := store.New(db)
	chat := svc.NewChatService(st, gen, svc.WithLLMTimeout(cfg.LLMTimeout()))

	var tokens *tokenstore.Manager
	if cfg.AuthEnabled() {
		tokens = tokenstore.NewManager(cfg.JWTSecret, cfg.TokenTTL())
		defer tokens.Close()
	} else {
		log.Printf("[auth] JWT_SECRET_KEY not set, API is open")
	}

	r := gin.Default()
	r.Use(middleware.RequestID())

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	limiter := middleware.NewRateLimiter(cfg.RateLimitWindow(), cfg.RateLimitCapacity)
	defer limiter.Close()

	routes.RegisterRoutes(r, routes.Deps{
		Chat:    chat,
		Store:   st,
		Tokens:  tokens,
		Limiter: limiter,
	})
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
