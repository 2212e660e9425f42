package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/pageza/ideaforge/backend/internal/errors"
	"github.com/pageza/ideaforge/backend/internal/middleware"
)

// fail hands err to middleware.ErrorHandler and stops the chain
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		fail(c, apperrors.Unauthorized("user not authenticated"))
	}
	return id, ok
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperrors.InvalidInput("invalid idea id"))
		return uuid.Nil, false
	}
	return id, true
}

// queryLimit reads ?limit=; zero lets the service pick its default
func queryLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		fail(c, apperrors.InvalidInput("limit must be a non-negative integer"))
		return 0, false
	}
	return n, true
}
