package middleware

import (
	"errors"
	"net/http"
	"strings"

	tokenstore "ShopAssist/pkg/token"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserIDKey = "current_user_id"
	ContextJTIKey    = "current_jti"
	ContextExpKey    = "current_token_exp"
)

// AuthMiddleware requires a bearer token signed by tm. A nil tm disables
// authentication and lets every request through.
func AuthMiddleware(tm *tokenstore.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tm == nil {
			c.Next()
			return
		}
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "missing authorization header"})
			return
		}
		parts := strings.Fields(auth)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "invalid authorization header"})
			return
		}
		if !authenticate(c, tm, parts[1]) {
			return
		}
		c.Next()
	}
}

// QueryTokenAuth is AuthMiddleware for browser websocket handshakes, which
// cannot set headers; the token travels as ?token=.
func QueryTokenAuth(tm *tokenstore.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tm == nil {
			c.Next()
			return
		}
		tokenStr := strings.TrimSpace(c.Query("token"))
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "missing token"})
			return
		}
		if !authenticate(c, tm, tokenStr) {
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, tm *tokenstore.Manager, tokenStr string) bool {
	claims, err := tm.Parse(tokenStr)
	if err != nil {
		msg := "invalid token"
		if errors.Is(err, tokenstore.ErrRevoked) {
			msg = "Token has been revoked (logout)"
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": msg})
		return false
	}
	c.Set(ContextUserIDKey, claims.UserID)
	c.Set(ContextJTIKey, claims.JTI)
	c.Set(ContextExpKey, claims.ExpiresAt)
	return true
}

// CurrentUserID returns the authenticated user, if any.
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserIDKey)
	if !ok {
		return 0, false
	}
	uid, ok := v.(uint)
	return uid, ok && uid != 0
}
