package controllers

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"ShopAssist/middleware"
	svc "ShopAssist/pkg/services"

	"github.com/gin-gonic/gin"
)

type chatBody struct {
	UserID         *int64 `json:"user_id"`
	Message        string `json:"message"`
	ConversationID *int64 `json:"conversation_id"`
}

// toRequest validates the wire body. Ids must be positive integers.
func (b chatBody) toRequest() (svc.ChatRequest, error) {
	if b.UserID == nil || *b.UserID <= 0 {
		return svc.ChatRequest{}, fmt.Errorf("%w: user_id must be a positive integer", svc.ErrInvalidRequest)
	}
	if strings.TrimSpace(b.Message) == "" {
		return svc.ChatRequest{}, fmt.Errorf("%w: message is required", svc.ErrInvalidRequest)
	}
	req := svc.ChatRequest{UserID: uint(*b.UserID), Message: b.Message}
	if b.ConversationID != nil {
		if *b.ConversationID <= 0 {
			return svc.ChatRequest{}, fmt.Errorf("%w: conversation_id must be a positive integer", svc.ErrInvalidRequest)
		}
		cid := uint(*b.ConversationID)
		req.ConversationID = &cid
	}
	return req, nil
}

// Chat handles POST /api/chat: one customer message in, one support reply out.
func Chat(chat *svc.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body chatBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid request"})
			return
		}
		req, err := body.toRequest()
		if err != nil {
			respondError(c, err)
			return
		}
		if err := ensureSelf(c, req.UserID); err != nil {
			respondError(c, err)
			return
		}

		res, err := chat.Chat(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}
		log.Printf("[chat] request_id=%s conversation=%d answered", middleware.GetRequestID(c), res.ConversationID)
		c.JSON(http.StatusOK, res)
	}
}
