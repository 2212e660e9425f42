package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/pageza/ideaforge/backend/internal/errors"
	"github.com/pageza/ideaforge/backend/internal/middleware"
)

// RateLimitHandler reports quota status for rate limited endpoints
type RateLimitHandler struct {
	generation *middleware.RateLimiter
}

// NewRateLimitHandler creates a new RateLimitHandler
func NewRateLimitHandler(generation *middleware.RateLimiter) *RateLimitHandler {
	return &RateLimitHandler{generation: generation}
}

// RegisterRoutes mounts the quota endpoints on an authenticated group
func (h *RateLimitHandler) RegisterRoutes(router *gin.RouterGroup) {
	rateLimits := router.Group("/rate-limits")
	{
		rateLimits.GET("/generation", h.Generation)
	}
}

func (h *RateLimitHandler) Generation(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	status, err := h.generation.Status(c.Request.Context(), userID.String())
	if err != nil {
		fail(c, apperrors.Wrap(err, "failed to check rate limit"))
		return
	}
	c.JSON(http.StatusOK, status)
}
