package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/pageza/ideaforge/backend/internal/errors"
	"github.com/pageza/ideaforge/backend/internal/logging"
	"github.com/pageza/ideaforge/backend/internal/models"
	"github.com/pageza/ideaforge/backend/internal/service"
	"github.com/pageza/ideaforge/backend/internal/types"
)

// IdeaHandler serves generation, stored ideas and plans
type IdeaHandler struct {
	generation service.IGenerationService
	ideas      service.IIdeaService
	plans      service.IPlanService
	logger     *zap.Logger
}

// NewIdeaHandler creates a new IdeaHandler
func NewIdeaHandler(generation service.IGenerationService, ideas service.IIdeaService, plans service.IPlanService, logger *zap.Logger) *IdeaHandler {
	return &IdeaHandler{
		generation: generation,
		ideas:      ideas,
		plans:      plans,
		logger:     logging.OrNop(logger),
	}
}

// RegisterRoutes mounts the idea endpoints on an authenticated group.
// generateLimit runs in front of generation only.
func (h *IdeaHandler) RegisterRoutes(router *gin.RouterGroup, generateLimit gin.HandlerFunc) {
	ideas := router.Group("/ideas")
	{
		ideas.POST("/generate", generateLimit, h.Generate)
		ideas.GET("/:id", h.GetIdea)
		ideas.PATCH("/:id", h.UpdateIdea)
		ideas.POST("/:id/like", h.LikeIdea)
		ideas.GET("/:id/plan", h.GetPlan)
	}

	history := router.Group("/history")
	{
		history.GET("", h.History)
		history.DELETE("/:id", h.DeleteIdea)
	}

	explore := router.Group("/explore")
	{
		explore.GET("", h.ByDifficulty)
		explore.GET("/trending", h.Trending)
		explore.GET("/search", h.Search)
	}
}

// Generate turns a prompt into persisted project ideas
func (h *IdeaHandler) Generate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req types.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.InvalidInput(err.Error()))
		return
	}

	resp, err := h.generation.Generate(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, err)
		return
	}

	status := http.StatusCreated
	if resp.Cached {
		status = http.StatusOK
	}
	c.JSON(status, resp)
}

func (h *IdeaHandler) GetIdea(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	idea, err := h.ideas.GetIdea(c.Request.Context(), id, userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, idea)
}

// UpdateIdea changes visibility or status of the caller's idea
func (h *IdeaHandler) UpdateIdea(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req types.UpdateIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.InvalidInput(err.Error()))
		return
	}

	idea, err := h.ideas.UpdateIdea(c.Request.Context(), id, userID, service.IdeaUpdate{
		IsPublic: req.IsPublic,
		Status:   req.Status,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, idea)
}

func (h *IdeaHandler) LikeIdea(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	idea, err := h.ideas.LikeIdea(c.Request.Context(), id, userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": idea.ID, "likes": idea.Likes})
}

// GetPlan returns the build and go-to-market plan of an idea
func (h *IdeaHandler) GetPlan(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	plan, err := h.plans.GetPlan(c.Request.Context(), id, userID, c.Query("format"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, types.PlanResponse{
		IdeaID:  plan.IdeaID,
		Format:  plan.Format,
		Content: plan.Content,
		PlanURL: plan.PlanURL,
	})
}

// History lists the caller's own ideas, newest first
func (h *IdeaHandler) History(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	list, err := h.ideas.ListByUser(c.Request.Context(), userID, limit)
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, list)
}

func (h *IdeaHandler) DeleteIdea(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.ideas.DeleteIdea(c.Request.Context(), id, userID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *IdeaHandler) Trending(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	list, err := h.ideas.Trending(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, list)
}

// Search matches public ideas against ?q=
func (h *IdeaHandler) Search(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	list, err := h.ideas.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, list)
}

// ByDifficulty lists public ideas of ?difficulty=
func (h *IdeaHandler) ByDifficulty(c *gin.Context) {
	difficulty := c.Query("difficulty")
	if difficulty == "" {
		fail(c, apperrors.InvalidInput("difficulty is required"))
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	list, err := h.ideas.ByDifficulty(c.Request.Context(), difficulty, limit)
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, list)
}

func respondList(c *gin.Context, list []models.ProjectIdea) {
	if list == nil {
		list = []models.ProjectIdea{}
	}
	c.JSON(http.StatusOK, gin.H{"ideas": list, "count": len(list)})
}
