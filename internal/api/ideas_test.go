package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/ideaforge/backend/internal/models"
	"github.com/pageza/ideaforge/backend/internal/types"
)

type ideaList struct {
	Ideas []models.ProjectIdea `json:"ideas"`
	Count int                  `json:"count"`
}

func (e *testEnv) generate(t *testing.T, token string) types.GenerateResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/ideas/generate", token, map[string]interface{}{
		"prompt":   "tools for freelancers who struggle with invoicing",
		"keywords": []string{"Invoicing", "freelancers"},
		"count":    2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[types.GenerateResponse](t, w)
}

func TestGenerateIdeas(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "maker@example.com")

	resp := env.generate(t, token)
	assert.False(t, resp.Degraded)
	assert.False(t, resp.Cached)
	assert.Equal(t, []string{"invoicing", "freelancers"}, resp.Keywords)
	require.Len(t, resp.Ideas, 2)
	assert.Equal(t, "Invoice Chaser", resp.Ideas[0].Title)
	assert.Equal(t, "Easy", resp.Ideas[0].Difficulty)
	assert.NotEqual(t, uuid.Nil, resp.Ideas[0].ID)
	assert.Equal(t, 1, env.ideaClient.Calls())
}

func TestGenerateValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "maker@example.com")

	w := env.do(t, http.MethodPost, "/api/v1/ideas/generate", token, map[string]string{"prompt": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/ideas/generate", token, map[string]string{"prompt": strings.Repeat("a", 2001)})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/ideas/generate", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/ideas/generate", "", map[string]string{"prompt": "anything"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, env.ideaClient.Calls())
}

func TestIdeaLifecycle(t *testing.T) {
	env := newTestEnv(t)
	owner := env.token(t, "owner@example.com")
	other := env.token(t, "other@example.com")
	idea := env.generate(t, owner).Ideas[0]
	path := "/api/v1/ideas/" + idea.ID.String()

	w := env.do(t, http.MethodGet, path, other, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[models.ProjectIdea](t, w).Views)

	w = env.do(t, http.MethodPost, path+"/like", other, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"`+idea.ID.String()+`","likes":1}`, w.Body.String())

	// Only the owner may change visibility
	w = env.do(t, http.MethodPatch, path, other, map[string]bool{"is_public": false})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPatch, path, owner, map[string]bool{"is_public": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[models.ProjectIdea](t, w).IsPublic)

	w = env.do(t, http.MethodGet, path, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodGet, path, owner, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPatch, path, owner, map[string]string{"status": "deleted"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/ideas/not-a-uuid", owner, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t)
	owner := env.token(t, "owner@example.com")
	other := env.token(t, "other@example.com")
	generated := env.generate(t, owner)

	w := env.do(t, http.MethodGet, "/api/v1/history", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[ideaList](t, w).Count)

	w = env.do(t, http.MethodGet, "/api/v1/history?limit=1", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[ideaList](t, w).Ideas, 1)

	w = env.do(t, http.MethodGet, "/api/v1/history?limit=abc", owner, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/history", other, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ideas":[],"count":0}`, w.Body.String())

	target := "/api/v1/history/" + generated.Ideas[0].ID.String()
	w = env.do(t, http.MethodDelete, target, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, target, owner, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/history", owner, nil)
	assert.Equal(t, 1, decode[ideaList](t, w).Count)
}

func TestExplore(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "owner@example.com")
	generated := env.generate(t, token)

	w := env.do(t, http.MethodPost, "/api/v1/ideas/"+generated.Ideas[1].ID.String()+"/like", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/explore/trending", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	trending := decode[ideaList](t, w)
	require.Len(t, trending.Ideas, 2)
	assert.Equal(t, "Receipt Vault", trending.Ideas[0].Title)

	w = env.do(t, http.MethodGet, "/api/v1/explore/search?q=receipts", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	found := decode[ideaList](t, w)
	require.Len(t, found.Ideas, 1)
	assert.Equal(t, "Receipt Vault", found.Ideas[0].Title)

	w = env.do(t, http.MethodGet, "/api/v1/explore/search", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/explore?difficulty=easy", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	easy := decode[ideaList](t, w)
	require.Len(t, easy.Ideas, 1)
	assert.Equal(t, "Invoice Chaser", easy.Ideas[0].Title)

	w = env.do(t, http.MethodGet, "/api/v1/explore?difficulty=extreme", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/explore", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPlan(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "owner@example.com")
	idea := env.generate(t, token).Ideas[0]
	path := "/api/v1/ideas/" + idea.ID.String() + "/plan"

	w := env.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	plan := decode[types.PlanResponse](t, w)
	assert.Equal(t, idea.ID, plan.IdeaID)
	assert.Equal(t, "markdown", plan.Format)
	assert.Equal(t, "# Plan\n\n- Ship the MVP", plan.Content)

	w = env.do(t, http.MethodGet, path+"?format=html", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	html := decode[types.PlanResponse](t, w)
	assert.Contains(t, html.Content, "<h1>Plan</h1>")
	assert.Contains(t, html.Content, "<li>Ship the MVP</li>")
	assert.Equal(t, 1, env.planClient.Calls())

	w = env.do(t, http.MethodGet, path+"?format=pdf", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimitStatusDisabled(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "owner@example.com")

	w := env.do(t, http.MethodGet, "/api/v1/rate-limits/generation", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[types.RateLimitStatus](t, w).Enabled)
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]interface{}](t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, map[string]interface{}{"database": "ok", "redis": "disabled"}, body["checks"])
}
