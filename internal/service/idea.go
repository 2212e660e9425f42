package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/pageza/ideaforge/backend/internal/errors"
	"github.com/pageza/ideaforge/backend/internal/ideas"
	"github.com/pageza/ideaforge/backend/internal/logging"
	"github.com/pageza/ideaforge/backend/internal/models"
)

// Listing limits
const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// maxSearchDistance bounds the L2 distance between normalized embeddings
// for a row to count as a semantic match.
const maxSearchDistance = 1.0

// IdeaUpdate holds owner-editable fields. Nil fields are left unchanged.
type IdeaUpdate struct {
	IsPublic *bool
	Status   *string
}

// IdeaService persists generated ideas
type IdeaService struct {
	db       *gorm.DB
	embedder EmbeddingServiceInterface
	logger   *zap.Logger
}

// NewIdeaService creates a new IdeaService instance. A nil embedder
// disables embeddings.
func NewIdeaService(db *gorm.DB, embedder EmbeddingServiceInterface, logger *zap.Logger) *IdeaService {
	return &IdeaService{db: db, embedder: embedder, logger: logging.OrNop(logger)}
}

// SaveGeneration stores every idea of a generation result in one transaction
func (s *IdeaService) SaveGeneration(ctx context.Context, userID uuid.UUID, prompt string, result ideas.Result) ([]models.ProjectIdea, error) {
	records := make([]models.ProjectIdea, 0, len(result.Ideas))
	for _, idea := range result.Ideas {
		record := models.ProjectIdea{
			UserID:        userID,
			Prompt:        prompt,
			Title:         idea.Title,
			Description:   idea.Description,
			MarketNeed:    idea.MarketNeed,
			TechStack:     models.JSONBStringArray(idea.TechStack),
			Difficulty:    string(idea.Difficulty),
			EstimatedTime: idea.EstimatedTime,
			Sources:       toSourceList(idea.Sources),
			Keywords:      models.JSONBStringArray(result.Keywords),
			Degraded:      result.Degraded,
			IsPublic:      true,
			Status:        models.StatusPublished,
		}
		if s.embedder != nil {
			vec, err := s.embedder.GenerateEmbedding(idea.Title + " " + idea.Description + " " + strings.Join(result.Keywords, " "))
			if err != nil {
				s.logger.Warn("failed to embed idea", zap.String("title", idea.Title), zap.Error(err))
			} else {
				record.Embedding = &vec
			}
		}
		records = append(records, record)
	}
	if len(records) == 0 {
		return records, nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&records).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save ideas: %w", err)
	}
	return records, nil
}

func toSourceList(in []ideas.Source) models.SourceList {
	out := make(models.SourceList, 0, len(in))
	for _, src := range in {
		out = append(out, models.Source{Title: src.Title, URL: src.URL, Snippet: src.Snippet})
	}
	return out
}

// FindVisible loads an idea the viewer may see: their own, or a public
// non-archived one. Anything else is reported as not found.
func (s *IdeaService) FindVisible(ctx context.Context, id, viewerID uuid.UUID) (*models.ProjectIdea, error) {
	var idea models.ProjectIdea
	if err := s.db.WithContext(ctx).First(&idea, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("idea")
		}
		return nil, fmt.Errorf("failed to load idea: %w", err)
	}
	if idea.UserID != viewerID && (!idea.IsPublic || idea.Status == models.StatusArchived) {
		return nil, apperrors.NotFound("idea")
	}
	return &idea, nil
}

// GetIdea returns an idea visible to viewerID and counts the view
func (s *IdeaService) GetIdea(ctx context.Context, id, viewerID uuid.UUID) (*models.ProjectIdea, error) {
	idea, err := s.FindVisible(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	if err := s.increment(ctx, id, "views"); err != nil {
		return nil, err
	}
	idea.Views++
	return idea, nil
}

// ListByUser returns the owner's non-archived ideas, newest first
func (s *IdeaService) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.ProjectIdea, error) {
	var out []models.ProjectIdea
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status <> ?", userID, models.StatusArchived).
		Order("created_at DESC").
		Limit(clampLimit(limit)).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}
	return out, nil
}

// DeleteIdea soft deletes an idea owned by userID
func (s *IdeaService) DeleteIdea(ctx context.Context, id, userID uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.ProjectIdea{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete idea: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("idea")
	}
	return nil
}

// LikeIdea increments the like counter of a visible idea
func (s *IdeaService) LikeIdea(ctx context.Context, id, viewerID uuid.UUID) (*models.ProjectIdea, error) {
	idea, err := s.FindVisible(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	if err := s.increment(ctx, id, "likes"); err != nil {
		return nil, err
	}
	idea.Likes++
	return idea, nil
}

func (s *IdeaService) increment(ctx context.Context, id uuid.UUID, column string) error {
	err := s.db.WithContext(ctx).Model(&models.ProjectIdea{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1)).Error
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", column, err)
	}
	return nil
}

// UpdateIdea changes visibility or status of an idea owned by userID
func (s *IdeaService) UpdateIdea(ctx context.Context, id, userID uuid.UUID, update IdeaUpdate) (*models.ProjectIdea, error) {
	changes := map[string]interface{}{}
	if update.IsPublic != nil {
		changes["is_public"] = *update.IsPublic
	}
	if update.Status != nil {
		if !models.ValidStatus(*update.Status) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid status %q", *update.Status))
		}
		changes["status"] = *update.Status
	}
	if len(changes) == 0 {
		return nil, apperrors.InvalidInput("nothing to update")
	}

	var idea models.ProjectIdea
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&idea, "id = ? AND user_id = ?", id, userID).Error; err != nil {
			return err
		}
		if err := tx.Model(&idea).Updates(changes).Error; err != nil {
			return err
		}
		return tx.First(&idea, "id = ?", id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("idea")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update idea: %w", err)
	}
	return &idea, nil
}

func (s *IdeaService) public(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Where("is_public = ? AND status = ?", true, models.StatusPublished)
}

// Trending ranks public ideas by likes*2 + views, then recency
func (s *IdeaService) Trending(ctx context.Context, limit int) ([]models.ProjectIdea, error) {
	var out []models.ProjectIdea
	err := s.public(ctx).
		Order("(likes * 2 + views) DESC").
		Order("created_at DESC").
		Limit(clampLimit(limit)).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load trending ideas: %w", err)
	}
	return out, nil
}

// ByDifficulty lists public ideas of one difficulty, newest first
func (s *IdeaService) ByDifficulty(ctx context.Context, difficulty string, limit int) ([]models.ProjectIdea, error) {
	d := ideas.ParseDifficulty(difficulty)
	if !strings.EqualFold(string(d), strings.TrimSpace(difficulty)) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid difficulty %q", difficulty))
	}

	var out []models.ProjectIdea
	err := s.public(ctx).
		Where("difficulty = ?", string(d)).
		Order("created_at DESC").
		Limit(clampLimit(limit)).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}
	return out, nil
}

// Search finds public ideas matching term. On postgres, rows close to the
// term's embedding also match and results are ordered by distance.
func (s *IdeaService) Search(ctx context.Context, term string, limit int) ([]models.ProjectIdea, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apperrors.InvalidInput("search term is required")
	}
	like := "%" + strings.ToLower(term) + "%"

	query := s.public(ctx)
	if s.db.Dialector.Name() == "postgres" && s.embedder != nil {
		vec, err := s.embedder.GenerateEmbedding(term)
		if err != nil {
			return nil, fmt.Errorf("failed to embed search term: %w", err)
		}
		query = query.
			Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(keywords::text) LIKE ? OR embedding <-> ? < ?",
				like, like, like, vec, maxSearchDistance).
			Order(distanceOrder(vec))
	} else {
		query = query.
			Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(keywords) LIKE ?", like, like, like).
			Order("(likes * 2 + views) DESC")
	}

	var out []models.ProjectIdea
	if err := query.Order("created_at DESC").Limit(clampLimit(limit)).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to search ideas: %w", err)
	}
	return out, nil
}

func distanceOrder(vec pgvector.Vector) clause.OrderBy {
	return clause.OrderBy{
		Expression: clause.Expr{SQL: "embedding <-> ? ASC NULLS LAST", Vars: []interface{}{vec}, WithoutParentheses: true},
	}
}

// ByIDs loads the owner's ideas in the order of ids; missing rows are skipped
func (s *IdeaService) ByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]models.ProjectIdea, error) {
	var rows []models.ProjectIdea
	if err := s.db.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load ideas: %w", err)
	}
	byID := make(map[uuid.UUID]models.ProjectIdea, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}
	out := make([]models.ProjectIdea, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// SavePlan stores the generated plan and its export URL
func (s *IdeaService) SavePlan(ctx context.Context, id uuid.UUID, plan, planURL string) error {
	res := s.db.WithContext(ctx).Model(&models.ProjectIdea{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"plan": plan, "plan_url": planURL})
	if res.Error != nil {
		return fmt.Errorf("failed to save plan: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("idea")
	}
	return nil
}

func clampLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultListLimit
	case n > MaxListLimit:
		return MaxListLimit
	default:
		return n
	}
}
