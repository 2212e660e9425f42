package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/pageza/ideaforge/backend/internal/models"
)

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// GenerateRequest is the body of POST /ideas/generate
type GenerateRequest struct {
	Prompt   string   `json:"prompt" binding:"required"`
	Keywords []string `json:"keywords"`
	Count    int      `json:"count"`
}

// GenerateResponse carries the persisted ideas of one generation
type GenerateResponse struct {
	Keywords []string             `json:"keywords"`
	Ideas    []models.ProjectIdea `json:"ideas"`
	Degraded bool                 `json:"degraded"`
	Cached   bool                 `json:"cached"`
}

// UpdateIdeaRequest is the body of PATCH /ideas/:id. Nil fields are left unchanged.
type UpdateIdeaRequest struct {
	IsPublic *bool   `json:"is_public"`
	Status   *string `json:"status"`
}

// PlanResponse is returned by GET /ideas/:id/plan
type PlanResponse struct {
	IdeaID  uuid.UUID `json:"idea_id"`
	Format  string    `json:"format"`
	Content string    `json:"content"`
	PlanURL string    `json:"plan_url,omitempty"`
}

// RateLimitStatus reports a caller's generation quota
type RateLimitStatus struct {
	Enabled   bool      `json:"enabled"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}
