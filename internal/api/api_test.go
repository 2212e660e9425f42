package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/ideaforge/backend/internal/ideas"
	"github.com/pageza/ideaforge/backend/internal/keywords"
	"github.com/pageza/ideaforge/backend/internal/middleware"
	"github.com/pageza/ideaforge/backend/internal/retry"
	"github.com/pageza/ideaforge/backend/internal/service"
	"github.com/pageza/ideaforge/backend/internal/testhelpers"
	"github.com/pageza/ideaforge/backend/internal/testhelpers/mocks"
)

const testSecret = "test-secret"

const twoIdeas = `[
  {"title": "Invoice Chaser", "description": "Sends polite reminders for unpaid invoices", "market_need": "Freelancers wait months to get paid",
   "tech_stack": ["Go", "React"], "difficulty": "Easy", "estimated_time": "2 months", "sources": []},
  {"title": "Receipt Vault", "description": "Stores and categorizes receipts for tax season", "market_need": "Small businesses lose receipts",
   "tech_stack": ["Python"], "difficulty": "Medium", "estimated_time": "3 months", "sources": []}
]`

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router     *gin.Engine
	db         *gorm.DB
	auth       *service.AuthService
	ideas      *service.IdeaService
	ideaClient *mocks.StubCompletionClient
	planClient *mocks.StubCompletionClient
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testhelpers.NewSQLiteDB(t)
	fast := retry.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond}

	authService := service.NewAuthService(db, testSecret, zap.NewNop())
	ideaService := service.NewIdeaService(db, service.NewHashEmbedder(), zap.NewNop())

	ideaClient := mocks.NewStubCompletionClient(twoIdeas)
	planClient := mocks.NewStubCompletionClient("# Plan\n\n- Ship the MVP")
	extractor := keywords.NewExtractor(mocks.NewStubCompletionClient("invoices, payments, freelancers"), keywords.Config{Retry: fast}, nil)
	generator := ideas.NewGenerator(ideaClient, nil, ideas.Config{Retry: fast}, nil)

	generation := service.NewGenerationService(extractor, generator, ideaService, nil, service.GenerationConfig{}, nil)
	plans := service.NewPlanService(planClient, ideaService, nil, service.PlanConfig{Retry: fast}, nil)
	limiter := middleware.NewGenerationRateLimiter(nil, 10, time.Hour, nil)

	router := gin.New()
	router.Use(middleware.ErrorHandler(zap.NewNop()))
	router.GET("/health", NewHealthHandler(db, nil).HealthCheck)
	v1 := router.Group("/api/v1")
	NewAuthHandler(authService, nil).RegisterRoutes(v1)
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authService))
	NewIdeaHandler(generation, ideaService, plans, nil).RegisterRoutes(protected, limiter.RateLimitMiddleware())
	NewRateLimitHandler(limiter).RegisterRoutes(protected)

	return &testEnv{
		router:     router,
		db:         db,
		auth:       authService,
		ideas:      ideaService,
		ideaClient: ideaClient,
		planClient: planClient,
	}
}

// token registers a user and returns its bearer token
func (e *testEnv) token(t *testing.T, email string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Test User", "email": email, "password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
