package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPerplexityURL   = "https://api.perplexity.ai/chat/completions"
	DefaultPerplexityModel = "sonar"
)

// PerplexityConfig configures the Perplexity chat completions backend
type PerplexityConfig struct {
	APIKey      string
	APIURL      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// PerplexityClient calls the Perplexity chat completions endpoint
type PerplexityClient struct {
	apiKey      string
	apiURL      string
	model       string
	maxTokens   int
	temperature float64
	http        *http.Client
	logger      *zap.Logger
}

// NewPerplexityClient creates a new PerplexityClient instance
func NewPerplexityClient(cfg PerplexityConfig, logger *zap.Logger) *PerplexityClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultPerplexityURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultPerplexityModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &PerplexityClient{
		apiKey:      cfg.APIKey,
		apiURL:      cfg.APIURL,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		http:        httpClient,
		logger:      logger,
	}
}

// perplexityRequest represents a request to the Perplexity API
type perplexityRequest struct {
	Model                string    `json:"model"`
	Messages             []Message `json:"messages"`
	MaxTokens            int       `json:"max_tokens"`
	Temperature          float64   `json:"temperature"`
	SearchRecall         bool      `json:"search_recall"`
	IncludeSearchResults bool      `json:"include_search_results"`
}

type perplexityResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	SearchResults []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Snippet string `json:"snippet"`
	} `json:"search_results"`
	Citations []string `json:"citations"`
}

// Complete sends the conversation to Perplexity
func (c *PerplexityClient) Complete(ctx context.Context, messages []Message, modelHint string) (*Result, error) {
	if err := validateMessages(messages); err != nil {
		return nil, err
	}

	reqBody := perplexityRequest{
		Model:                pickModel(modelHint, c.model),
		Messages:             messages,
		MaxTokens:            c.maxTokens,
		Temperature:          c.temperature,
		SearchRecall:         true,
		IncludeSearchResults: true,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, newError(KindProtocol, 0, "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, newError(KindProtocol, 0, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, ClassifyTransport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ClassifyTransport(err)
	}

	c.logger.Debug("perplexity response",
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
		zap.Int("bytes", len(body)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, ClassifyStatus(resp.StatusCode, string(body))
	}

	var result perplexityResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, newError(KindProtocol, resp.StatusCode, "failed to decode response", err)
	}
	if len(result.Choices) == 0 {
		return nil, newError(KindProtocol, resp.StatusCode, "no choices in response", nil)
	}
	content := strings.TrimSpace(result.Choices[0].Message.Content)
	if content == "" {
		return nil, newError(KindProtocol, resp.StatusCode, "empty completion", nil)
	}

	out := &Result{Text: content}
	for _, sr := range result.SearchResults {
		if strings.TrimSpace(sr.URL) == "" {
			continue
		}
		out.SearchResults = append(out.SearchResults, SearchResult{
			Title:   strings.TrimSpace(sr.Title),
			URL:     strings.TrimSpace(sr.URL),
			Snippet: strings.TrimSpace(sr.Snippet),
		})
	}
	if len(out.SearchResults) == 0 {
		for _, u := range result.Citations {
			if u = strings.TrimSpace(u); u != "" {
				out.SearchResults = append(out.SearchResults, SearchResult{URL: u})
			}
		}
	}
	return out, nil
}
