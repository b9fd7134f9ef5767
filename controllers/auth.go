package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"ShopAssist/middleware"
	"ShopAssist/pkg/store"
	tokenstore "ShopAssist/pkg/token"

	"github.com/gin-gonic/gin"
)

// Login handler
func Login(st *store.Store, tm *tokenstore.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid request"})
			return
		}
		email := strings.TrimSpace(strings.ToLower(body.Email))
		password := body.Password

		if email == "" || password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Email and password are required"})
			return
		}

		user, err := st.GetUserByEmail(c.Request.Context(), email)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "Invalid credentials"})
			return
		}

		if !user.CheckPassword(password) {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "Invalid credentials"})
			return
		}

		tokenStr, _, err := tm.Issue(user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to create token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"access_token": tokenStr, "user_id": user.ID})
	}
}

// Logout handler
func Logout(tm *tokenstore.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		jti := c.GetString(middleware.ContextJTIKey)
		if jti != "" {
			exp, _ := c.Get(middleware.ContextExpKey)
			expAt, _ := exp.(time.Time)
			tm.Revoke(jti, expAt)
		}
		c.JSON(http.StatusOK, gin.H{"msg": "logged out"})
	}
}
