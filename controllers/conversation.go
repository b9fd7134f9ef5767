package controllers

import (
	"net/http"
	"time"

	svc "ShopAssist/pkg/services"

	"github.com/gin-gonic/gin"
)

type conversationSummary struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// ListConversations handles GET /api/conversations?user_id=N, newest first.
func ListConversations(chat *svc.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, err := parseID(c.Query("user_id"), "user_id")
		if err != nil {
			respondError(c, err)
			return
		}
		if err := ensureSelf(c, uid); err != nil {
			respondError(c, err)
			return
		}

		convs, err := chat.ListConversations(c.Request.Context(), uid)
		if err != nil {
			respondError(c, err)
			return
		}
		result := make([]conversationSummary, 0, len(convs))
		for _, conv := range convs {
			result = append(result, conversationSummary{ID: conv.ID, Title: conv.Title, CreatedAt: conv.CreatedAt})
		}
		c.JSON(http.StatusOK, result)
	}
}

// GetConversation handles GET /api/conversations/:conversation_id and
// returns its messages oldest first. An existing conversation without
// messages answers with an empty list.
func GetConversation(chat *svc.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cid, err := parseID(c.Param("conversation_id"), "conversation_id")
		if err != nil {
			respondError(c, err)
			return
		}
		conv, err := chat.GetConversation(c.Request.Context(), cid)
		if err != nil {
			respondError(c, err)
			return
		}
		// someone else's conversation looks exactly like a missing one
		if !ownsConversation(c, conv.UserID) {
			respondError(c, svc.ErrConversationNotFound)
			return
		}

		msgs, err := chat.ListMessages(c.Request.Context(), cid)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, msgs)
	}
}

func DeleteConversation(chat *svc.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cid, err := parseID(c.Param("conversation_id"), "conversation_id")
		if err != nil {
			respondError(c, err)
			return
		}
		conv, err := chat.GetConversation(c.Request.Context(), cid)
		if err != nil {
			respondError(c, err)
			return
		}
		if !ownsConversation(c, conv.UserID) {
			respondError(c, svc.ErrConversationNotFound)
			return
		}

		if err := chat.DeleteConversation(c.Request.Context(), cid); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"msg": "conversation deleted"})
	}
}
