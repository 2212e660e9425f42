package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func withUser(id uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextUserID, id)
		c.Next()
	}
}

func limitedRouter(rl *RateLimiter, auth gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.POST("/generate", auth, rl.RateLimitMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func TestRateLimiterDisabledWithoutRedis(t *testing.T) {
	rl := NewGenerationRateLimiter(nil, 1, time.Hour, zap.NewNop())
	assert.False(t, rl.Enabled())

	r := limitedRouter(rl, withUser(uuid.New()))
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/generate", nil))
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}

	status, err := rl.Status(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.False(t, status.Enabled)
}

func TestRateLimiterFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	rl := NewGenerationRateLimiter(client, 1, time.Hour, zap.NewNop())
	require.True(t, rl.Enabled())

	w := httptest.NewRecorder()
	limitedRouter(rl, withUser(uuid.New())).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/generate", nil))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "rate limit check failed", w.Header().Get("X-RateLimit-Error"))

	_, err := rl.Status(context.Background(), uuid.NewString())
	assert.Error(t, err)
}

func TestRateLimiterRequiresUser(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	rl := NewGenerationRateLimiter(client, 1, time.Hour, nil)
	w := httptest.NewRecorder()
	limitedRouter(rl, func(c *gin.Context) { c.Next() }).
		ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/generate", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimiterWindow(t *testing.T) {
	rl := NewGenerationRateLimiter(nil, 5, time.Hour, nil)
	rl.now = func() time.Time { return time.Date(2025, 3, 1, 10, 42, 7, 0, time.UTC) }

	window, reset := rl.window()
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, start.Add(time.Hour), reset)
	assert.Equal(t, "rate_limit:generation:u1:"+window, rl.key("u1", window))
	assert.Equal(t, strconv.FormatInt(start.Unix(), 10), window)
}
