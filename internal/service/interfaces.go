package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/ideaforge/backend/internal/ideas"
	"github.com/pageza/ideaforge/backend/internal/keywords"
	"github.com/pageza/ideaforge/backend/internal/models"
	"github.com/pageza/ideaforge/backend/internal/types"
)

// KeywordExtractor derives search keywords from a prompt. It never fails.
type KeywordExtractor interface {
	Extract(ctx context.Context, prompt string) []string
}

// IdeaGenerator produces exactly targetCount ideas. It never fails.
type IdeaGenerator interface {
	Generate(ctx context.Context, prompt string, keywords []string, targetCount int) ideas.Result
}

// GenerationCache remembers the ideas persisted for a prompt. Get returns
// nil, nil on a miss.
type GenerationCache interface {
	Get(ctx context.Context, key string) (*CachedGeneration, error)
	Set(ctx context.Context, key string, entry *CachedGeneration) error
}

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IIdeaService defines the interface for stored idea operations
type IIdeaService interface {
	GetIdea(ctx context.Context, id, viewerID uuid.UUID) (*models.ProjectIdea, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.ProjectIdea, error)
	DeleteIdea(ctx context.Context, id, userID uuid.UUID) error
	LikeIdea(ctx context.Context, id, viewerID uuid.UUID) (*models.ProjectIdea, error)
	UpdateIdea(ctx context.Context, id, userID uuid.UUID, update IdeaUpdate) (*models.ProjectIdea, error)
	Trending(ctx context.Context, limit int) ([]models.ProjectIdea, error)
	ByDifficulty(ctx context.Context, difficulty string, limit int) ([]models.ProjectIdea, error)
	Search(ctx context.Context, term string, limit int) ([]models.ProjectIdea, error)
}

// IGenerationService defines the interface for idea generation
type IGenerationService interface {
	Generate(ctx context.Context, userID uuid.UUID, req types.GenerateRequest) (*types.GenerateResponse, error)
}

// IPlanService defines the interface for plan expansion
type IPlanService interface {
	GetPlan(ctx context.Context, ideaID, userID uuid.UUID, format string) (*Plan, error)
}

var (
	_ IAuthService       = (*AuthService)(nil)
	_ IIdeaService       = (*IdeaService)(nil)
	_ IGenerationService = (*GenerationService)(nil)
	_ IPlanService       = (*PlanService)(nil)
	_ GenerationCache    = (*RedisGenerationCache)(nil)
	_ KeywordExtractor   = (*keywords.Extractor)(nil)
	_ IdeaGenerator      = (*ideas.Generator)(nil)
)
