package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorKinds(t *testing.T) {
	t.Run("sentinels match by kind", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", newError(KindRateLimited, 429, "slow down", nil))
		assert.True(t, errors.Is(err, ErrRateLimited))
		assert.False(t, errors.Is(err, ErrAuth))
		assert.True(t, IsRetryable(err))
	})

	t.Run("auth and protocol are not retryable", func(t *testing.T) {
		assert.False(t, newError(KindAuth, 401, "", nil).Retryable())
		assert.False(t, newError(KindProtocol, 500, "", nil).Retryable())
		assert.True(t, newError(KindNetwork, 0, "", nil).Retryable())
	})
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   Kind
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"bad key"}`, KindAuth},
		{"forbidden", http.StatusForbidden, "", KindAuth},
		{"too many requests", http.StatusTooManyRequests, "", KindRateLimited},
		{"quota in body", http.StatusBadRequest, `{"error":"You exceeded your current quota"}`, KindRateLimited},
		{"resource exhausted", http.StatusInternalServerError, "RESOURCE_EXHAUSTED", KindRateLimited},
		{"invalid key in body", http.StatusBadRequest, "API key not valid. Please pass a valid API key.", KindAuth},
		{"server error", http.StatusInternalServerError, "boom", KindProtocol},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ClassifyStatus(tt.status, tt.body)
			assert.Equal(t, tt.want, err.Kind)
			assert.Equal(t, tt.status, err.StatusCode)
		})
	}
}

func TestClassifyTransport(t *testing.T) {
	err := ClassifyTransport(context.DeadlineExceeded)
	assert.Equal(t, KindNetwork, err.Kind)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestPerplexityClient_Complete(t *testing.T) {
	t.Run("decodes content and search results", func(t *testing.T) {
		var got perplexityRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"choices": [{"message": {"content": "  hello  "}}],
				"search_results": [{"title": "Doc", "url": "https://example.com/a", "snippet": "s"}, {"title": "no url"}]
			}`))
		}))
		defer server.Close()

		c := NewPerplexityClient(PerplexityConfig{APIKey: "test-key", APIURL: server.URL}, nil)
		res, err := c.Complete(context.Background(), []Message{System("sys"), User("hi")}, "")
		require.NoError(t, err)
		assert.Equal(t, "hello", res.Text)
		require.Len(t, res.SearchResults, 1)
		assert.Equal(t, "https://example.com/a", res.SearchResults[0].URL)

		assert.Equal(t, "sonar", got.Model)
		assert.Equal(t, 2000, got.MaxTokens)
		assert.InDelta(t, 0.7, got.Temperature, 0.0001)
		assert.True(t, got.SearchRecall)
		assert.True(t, got.IncludeSearchResults)
	})

	t.Run("falls back to citations", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"x"}}],"citations":["https://a.example","https://b.example"]}`))
		}))
		defer server.Close()

		c := NewPerplexityClient(PerplexityConfig{APIKey: "k", APIURL: server.URL}, nil)
		res, err := c.Complete(context.Background(), []Message{User("hi")}, "sonar-pro")
		require.NoError(t, err)
		require.Len(t, res.SearchResults, 2)
		assert.Equal(t, "https://b.example", res.SearchResults[1].URL)
	})

	t.Run("classifies failures", func(t *testing.T) {
		tests := []struct {
			name   string
			status int
			body   string
			want   error
		}{
			{"auth", http.StatusUnauthorized, `{"error":"invalid"}`, ErrAuth},
			{"rate limit", http.StatusTooManyRequests, `{}`, ErrRateLimited},
			{"malformed", http.StatusOK, `not json`, ErrProtocol},
			{"no choices", http.StatusOK, `{"choices":[]}`, ErrProtocol},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
					_, _ = w.Write([]byte(tt.body))
				}))
				defer server.Close()

				c := NewPerplexityClient(PerplexityConfig{APIKey: "k", APIURL: server.URL}, nil)
				_, err := c.Complete(context.Background(), []Message{User("hi")}, "")
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.want)
			})
		}
	})

	t.Run("timeout is a network error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		c := NewPerplexityClient(PerplexityConfig{APIKey: "k", APIURL: server.URL, Timeout: 20 * time.Millisecond}, nil)
		_, err := c.Complete(context.Background(), []Message{User("hi")}, "")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNetwork)
	})

	t.Run("empty messages never reach the network", func(t *testing.T) {
		c := NewPerplexityClient(PerplexityConfig{APIKey: "k", APIURL: "http://127.0.0.1:1"}, nil)
		_, err := c.Complete(context.Background(), nil, "")
		assert.ErrorIs(t, err, ErrProtocol)
	})
}

func TestOpenAIClient_Complete(t *testing.T) {
	t.Run("returns first choice", func(t *testing.T) {
		var body map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"id": "chatcmpl-1",
				"object": "chat.completion",
				"created": 1700000000,
				"model": "gpt-4o-mini",
				"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "[\"saas\"]"}}]
			}`))
		}))
		defer server.Close()

		c := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL}, nil)
		res, err := c.Complete(context.Background(), []Message{System("sys"), User("hi")}, "")
		require.NoError(t, err)
		assert.Equal(t, `["saas"]`, res.Text)
		assert.Equal(t, "gpt-4o-mini", body["model"])
		msgs, ok := body["messages"].([]any)
		require.True(t, ok)
		assert.Len(t, msgs, 2)
	})

	t.Run("maps status codes", func(t *testing.T) {
		tests := []struct {
			status int
			want   error
		}{
			{http.StatusUnauthorized, ErrAuth},
			{http.StatusTooManyRequests, ErrRateLimited},
			{http.StatusBadRequest, ErrProtocol},
		}
		for _, tt := range tests {
			t.Run(http.StatusText(tt.status), func(t *testing.T) {
				calls := 0
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					calls++
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(tt.status)
					_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"error"}}`))
				}))
				defer server.Close()

				c := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL}, nil)
				_, err := c.Complete(context.Background(), []Message{User("hi")}, "")
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.want)
				assert.Equal(t, 1, calls, "sdk retries must be disabled")
			})
		}
	})
}

func TestClassifyGeminiError(t *testing.T) {
	wrap := func(code codes.Code) error {
		apiErr, ok := apierror.FromError(status.Error(code, "gemini says no"))
		require.True(t, ok)
		return apiErr
	}

	assert.Equal(t, KindAuth, classifyGeminiError(wrap(codes.Unauthenticated)).Kind)
	assert.Equal(t, KindAuth, classifyGeminiError(wrap(codes.PermissionDenied)).Kind)
	assert.Equal(t, KindRateLimited, classifyGeminiError(wrap(codes.ResourceExhausted)).Kind)
	assert.Equal(t, KindNetwork, classifyGeminiError(wrap(codes.Unavailable)).Kind)
	assert.Equal(t, KindRateLimited, classifyGeminiError(errors.New("googleapi: Error 429: Quota exceeded")).Kind)
	assert.Equal(t, KindAuth, classifyGeminiError(errors.New("API key not valid")).Kind)
	assert.Equal(t, KindProtocol, classifyGeminiError(errors.New("blocked: safety")).Kind)
}

func TestGeminiClient_MissingKey(t *testing.T) {
	c := NewGeminiClient(GeminiConfig{}, nil)
	_, err := c.Complete(context.Background(), []Message{User("hi")}, "")
	assert.ErrorIs(t, err, ErrAuth)
}

func TestNew(t *testing.T) {
	for _, name := range []string{"perplexity", "openai", "gemini", "DeepSeek"} {
		c, err := New(name, Settings{}, nil)
		require.NoError(t, err, name)
		assert.NotNil(t, c)
	}
	_, err := New("claude-ish", Settings{}, nil)
	assert.Error(t, err)

	s := Settings{Gemini: GeminiConfig{APIKey: "g"}}
	assert.True(t, s.HasCredentials("gemini"))
	assert.False(t, s.HasCredentials("perplexity"))
}
