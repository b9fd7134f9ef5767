package controllers

import (
	"net/http"

	svc "ShopAssist/pkg/services"

	"github.com/gin-gonic/gin"
)

// GetUser handles GET /api/users/:user_id. Customers are read-only here;
// profile data is owned by the storefront and loaded by cmd/loaddata.
func GetUser(chat *svc.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, err := parseID(c.Param("user_id"), "user_id")
		if err != nil {
			respondError(c, err)
			return
		}
		if err := ensureSelf(c, uid); err != nil {
			respondError(c, err)
			return
		}

		user, err := chat.GetUser(c.Request.Context(), uid)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"id":         user.ID,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"email":      user.Email,
			"city":       user.City,
			"state":      user.State,
			"country":    user.Country,
			"created_at": user.CreatedAt,
		})
	}
}
