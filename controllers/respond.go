package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"ShopAssist/middleware"
	svc "ShopAssist/pkg/services"

	"github.com/gin-gonic/gin"
)

var errForbidden = errors.New("forbidden")

// statusFor maps service errors onto an HTTP status and a client-safe message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, svc.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, errForbidden):
		return http.StatusForbidden, "user_id does not match the authenticated user"
	case errors.Is(err, svc.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, svc.ErrConversationNotFound):
		return http.StatusNotFound, "conversation not found"
	case errors.Is(err, svc.ErrUpstreamUnavailable):
		return http.StatusInternalServerError, "LLM unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func respondError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[api] %s %s request_id=%s: %v", c.Request.Method, c.FullPath(), middleware.GetRequestID(c), err)
	}
	c.AbortWithStatusJSON(status, gin.H{"msg": msg})
}

// parseID reads a positive integer id.
func parseID(raw, name string) (uint, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", svc.ErrInvalidRequest, name)
	}
	return uint(v), nil
}

// ensureSelf rejects requests acting on behalf of another user. It passes
// when authentication is off.
func ensureSelf(c *gin.Context, userID uint) error {
	if uid, ok := middleware.CurrentUserID(c); ok && uid != userID {
		return errForbidden
	}
	return nil
}

// ownsConversation reports whether the authenticated caller, if any, owns conv.
func ownsConversation(c *gin.Context, ownerID uint) bool {
	uid, ok := middleware.CurrentUserID(c)
	return !ok || uid == ownerID
}
