package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "github.com/pageza/ideaforge/backend/internal/errors"
	"github.com/pageza/ideaforge/backend/internal/ideas"
	"github.com/pageza/ideaforge/backend/internal/models"
	"github.com/pageza/ideaforge/backend/internal/testhelpers"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// seedIdea inserts a public published idea created age before base
func seedIdea(t *testing.T, db *gorm.DB, owner uuid.UUID, title string, age time.Duration, changes map[string]interface{}) *models.ProjectIdea {
	t.Helper()
	idea := &models.ProjectIdea{
		UserID:      owner,
		Prompt:      "prompt",
		Title:       title,
		Description: title + " description",
		Difficulty:  "Medium",
		Keywords:    models.JSONBStringArray{"seed"},
		IsPublic:    true,
		CreatedAt:   base.Add(-age),
	}
	require.NoError(t, db.Create(idea).Error)
	if len(changes) > 0 {
		require.NoError(t, db.Model(idea).Updates(changes).Error)
	}
	return idea
}

func titles(list []models.ProjectIdea) []string {
	out := make([]string, 0, len(list))
	for _, i := range list {
		out = append(out, i.Title)
	}
	return out
}

func TestIdeaService_SaveGeneration(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	user := testhelpers.CreateUser(t, db, "owner@example.com")
	svc := NewIdeaService(db, NewHashEmbedder(), nil)

	result := ideas.Result{
		Keywords: []string{"ai tools", "automation"},
		Ideas: []ideas.Idea{
			{
				Title: "Prompt Library", Description: "Shared prompts for teams.", MarketNeed: "Teams repeat work.",
				TechStack: []string{"Go", "React"}, Difficulty: ideas.Easy, EstimatedTime: "1-2 months",
				Sources: []ideas.Source{{Title: "Survey", URL: "https://example.com/survey"}},
			},
			{
				Title: "Agent Monitor", Description: "Observability for AI agents.", MarketNeed: "Agents fail silently.",
				TechStack: []string{"Python"}, Difficulty: ideas.Hard, EstimatedTime: "6+ months",
				Sources: []ideas.Source{},
			},
		},
		Degraded: true,
	}

	records, err := svc.SaveGeneration(context.Background(), user.ID, "ai tools for teams", result)
	require.NoError(t, err)
	require.Len(t, records, 2)

	var stored models.ProjectIdea
	require.NoError(t, db.First(&stored, "id = ?", records[0].ID).Error)
	assert.Equal(t, user.ID, stored.UserID)
	assert.Equal(t, "ai tools for teams", stored.Prompt)
	assert.Equal(t, models.JSONBStringArray{"Go", "React"}, stored.TechStack)
	assert.Equal(t, models.JSONBStringArray{"ai tools", "automation"}, stored.Keywords)
	assert.Equal(t, models.SourceList{{Title: "Survey", URL: "https://example.com/survey"}}, stored.Sources)
	assert.Equal(t, "Easy", stored.Difficulty)
	assert.True(t, stored.Degraded)
	assert.True(t, stored.IsPublic)
	assert.Equal(t, models.StatusPublished, stored.Status)
	require.NotNil(t, stored.Embedding)
	assert.Len(t, stored.Embedding.Slice(), models.EmbeddingDimensions)

	var count int64
	require.NoError(t, db.Model(&models.ProjectIdea{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestIdeaService_GetIdea(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	owner := testhelpers.CreateUser(t, db, "owner@example.com")
	other := testhelpers.CreateUser(t, db, "other@example.com")
	svc := NewIdeaService(db, nil, nil)
	ctx := context.Background()

	public := seedIdea(t, db, owner.ID, "Public", 0, nil)
	private := seedIdea(t, db, owner.ID, "Private", 0, map[string]interface{}{"is_public": false})
	archived := seedIdea(t, db, owner.ID, "Archived", 0, map[string]interface{}{"status": models.StatusArchived})

	got, err := svc.GetIdea(ctx, public.ID, other.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Views)
	got, err = svc.GetIdea(ctx, public.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Views)

	for _, id := range []uuid.UUID{private.ID, archived.ID, uuid.New()} {
		_, err = svc.GetIdea(ctx, id, other.ID)
		assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))
	}

	got, err = svc.GetIdea(ctx, private.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Private", got.Title)
}

func TestIdeaService_ListByUser(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	owner := testhelpers.CreateUser(t, db, "owner@example.com")
	other := testhelpers.CreateUser(t, db, "other@example.com")
	svc := NewIdeaService(db, nil, nil)

	seedIdea(t, db, owner.ID, "Oldest", 3*time.Hour, nil)
	seedIdea(t, db, owner.ID, "Newest", time.Hour, nil)
	seedIdea(t, db, owner.ID, "Middle", 2*time.Hour, map[string]interface{}{"is_public": false})
	seedIdea(t, db, owner.ID, "Gone", 0, map[string]interface{}{"status": models.StatusArchived})
	seedIdea(t, db, other.ID, "Someone else", 0, nil)

	list, err := svc.ListByUser(context.Background(), owner.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Newest", "Middle", "Oldest"}, titles(list))

	list, err = svc.ListByUser(context.Background(), owner.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Newest"}, titles(list))
}

func TestIdeaService_DeleteIdea(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	owner := testhelpers.CreateUser(t, db, "owner@example.com")
	other := testhelpers.CreateUser(t, db, "other@example.com")
	svc := NewIdeaService(db, nil, nil)
	ctx := context.Background()
	idea := seedIdea(t, db, owner.ID, "Mine", 0, nil)

	err := svc.DeleteIdea(ctx, idea.ID, other.ID)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))

	require.NoError(t, svc.DeleteIdea(ctx, idea.ID, owner.ID))
	err = svc.DeleteIdea(ctx, idea.ID, owner.ID)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))

	var count int64
	require.NoError(t, db.Unscoped().Model(&models.ProjectIdea{}).Where("id = ?", idea.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count, "delete is soft")
}

func TestIdeaService_LikeIdea(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	owner := testhelpers.CreateUser(t, db, "owner@example.com")
	svc := NewIdeaService(db, nil, nil)
	idea := seedIdea(t, db, owner.ID, "Likeable", 0, nil)

	for i := 0; i < 3; i++ {
		_, err := svc.LikeIdea(context.Background(), idea.ID, uuid.New())
		require.NoError(t, err)
	}
	var stored models.ProjectIdea
	require.NoError(t, db.First(&stored, "id = ?", idea.ID).Error)
	assert.Equal(t, 3, stored.Likes)
}

func TestIdeaService_UpdateIdea(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	owner := testhelpers.CreateUser(t, db, "owner@example.com")
	svc := NewIdeaService(db, nil, nil)
	ctx := context.Background()
	idea := seedIdea(t, db, owner.ID, "Editable", 0, nil)

	private := false
	draft := models.StatusDraft
	updated, err := svc.UpdateIdea(ctx, idea.ID, owner.ID, IdeaUpdate{IsPublic: &private, Status: &draft})
	require.NoError(t, err)
	assert.False(t, updated.IsPublic)
	assert.Equal(t, models.StatusDraft, updated.Status)

	bogus := "deleted"
	_, err = svc.UpdateIdea(ctx, idea.ID, owner.ID, IdeaUpdate{Status: &bogus})
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))

	_, err = svc.UpdateIdea(ctx, idea.ID, owner.ID, IdeaUpdate{})
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))

	_, err = svc.UpdateIdea(ctx, idea.ID, uuid.New(), IdeaUpdate{IsPublic: &private})
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))
}

func TestIdeaService_Trending(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	owner := testhelpers.CreateUser(t, db, "owner@example.com")
	svc := NewIdeaService(db, nil, nil)

	seedIdea(t, db, owner.ID, "Viewed", time.Hour, map[string]interface{}{"views": 10})
	seedIdea(t, db, owner.ID, "Liked", time.Hour, map[string]interface{}{"likes": 6})
	seedIdea(t, db, owner.ID, "Older tie", 2*time.Hour, map[string]interface{}{"likes": 5})
	seedIdea(t, db, owner.ID, "Newer tie", 0, map[string]interface{}{"likes": 5})
	seedIdea(t, db, owner.ID, "Hidden", 0, map[string]interface{}{"likes": 100, "is_public": false})
	seedIdea(t, db, owner.ID, "Draft", 0, map[string]interface{}{"likes": 100, "status": models.StatusDraft})

	list, err := svc.Trending(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Liked", "Newer tie", "Viewed", "Older tie"}, titles(list))
}

func TestIdeaService_ByDifficulty(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	owner := testhelpers.CreateUser(t, db, "owner@example.com")
	svc := NewIdeaService(db, nil, nil)

	seedIdea(t, db, owner.ID, "Hard one", 0, map[string]interface{}{"difficulty": "Hard"})
	seedIdea(t, db, owner.ID, "Medium one", 0, nil)

	list, err := svc.ByDifficulty(context.Background(), "hard", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hard one"}, titles(list))

	_, err = svc.ByDifficulty(context.Background(), "impossible", 0)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestIdeaService_Search(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	owner := testhelpers.CreateUser(t, db, "owner@example.com")
	svc := NewIdeaService(db, NewHashEmbedder(), nil)
	ctx := context.Background()

	seedIdea(t, db, owner.ID, "Invoice Automation", 0, nil)
	seedIdea(t, db, owner.ID, "Fitness Coach", 0, map[string]interface{}{"keywords": `["invoice"]`})
	seedIdea(t, db, owner.ID, "Private Invoices", 0, map[string]interface{}{"is_public": false})
	seedIdea(t, db, owner.ID, "Puzzle Game", 0, nil)

	list, err := svc.Search(ctx, "INVOICE", 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Invoice Automation", "Fitness Coach"}, titles(list))

	_, err = svc.Search(ctx, "  ", 10)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestIdeaService_SavePlan(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	owner := testhelpers.CreateUser(t, db, "owner@example.com")
	svc := NewIdeaService(db, nil, nil)
	idea := seedIdea(t, db, owner.ID, "Planned", 0, nil)

	require.NoError(t, svc.SavePlan(context.Background(), idea.ID, "# Plan", "https://plans.example.com/1"))
	var stored models.ProjectIdea
	require.NoError(t, db.First(&stored, "id = ?", idea.ID).Error)
	assert.Equal(t, "# Plan", stored.Plan)
	assert.Equal(t, "https://plans.example.com/1", stored.PlanURL)

	err := svc.SavePlan(context.Background(), uuid.New(), "# Plan", "")
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultListLimit, clampLimit(0))
	assert.Equal(t, DefaultListLimit, clampLimit(-1))
	assert.Equal(t, 7, clampLimit(7))
	assert.Equal(t, MaxListLimit, clampLimit(1000))
}
