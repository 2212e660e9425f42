package completion

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
)

const (
	DefaultGeminiModel     = "gemini-1.5-flash"
	DefaultGeminiPlanModel = "gemini-1.5-pro-latest"
)

// GeminiConfig configures the Gemini backend
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int32
	Timeout     time.Duration
}

// GeminiClient implements Client with the generative-ai-go SDK
type GeminiClient struct {
	apiKey      string
	model       string
	temperature float32
	maxTokens   int32
	timeout     time.Duration
	logger      *zap.Logger
}

// NewGeminiClient creates a new GeminiClient
func NewGeminiClient(cfg GeminiConfig, logger *zap.Logger) *GeminiClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &GeminiClient{
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
		logger:      logger,
	}
}

// Complete turns system messages into the system instruction and replays
// the rest as chat history before sending the final user turn.
func (c *GeminiClient) Complete(ctx context.Context, messages []Message, modelHint string) (*Result, error) {
	if err := validateMessages(messages); err != nil {
		return nil, err
	}
	if c.apiKey == "" {
		return nil, newError(KindAuth, 0, "gemini api key is empty", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cl, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return nil, classifyGeminiError(err)
	}
	defer cl.Close()

	model := pickModel(modelHint, c.model)
	m := cl.GenerativeModel(model)
	m.SetTemperature(c.temperature)
	m.SetMaxOutputTokens(c.maxTokens)

	var system []genai.Part
	var turns []Message
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			system = append(system, genai.Text(msg.Content))
			continue
		}
		turns = append(turns, msg)
	}
	if len(system) > 0 {
		m.SystemInstruction = &genai.Content{Parts: system}
	}
	if len(turns) == 0 {
		return nil, newError(KindProtocol, 0, "no user message to send", nil)
	}

	session := m.StartChat()
	for _, msg := range turns[:len(turns)-1] {
		session.History = append(session.History, &genai.Content{
			Role:  geminiRole(msg.Role),
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	start := time.Now()
	resp, err := session.SendMessage(ctx, genai.Text(turns[len(turns)-1].Content))
	if err != nil {
		return nil, classifyGeminiError(err)
	}
	c.logger.Debug("gemini response",
		zap.String("model", model),
		zap.Duration("latency", time.Since(start)))

	text := strings.TrimSpace(firstText(resp))
	if text == "" {
		return nil, newError(KindProtocol, 0, "empty completion", nil)
	}
	return &Result{Text: text}, nil
}

func geminiRole(role string) string {
	if role == RoleAssistant {
		return "model"
	}
	return "user"
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		if sb.Len() > 0 {
			return sb.String()
		}
	}
	return ""
}

// classifyGeminiError maps SDK failures onto error kinds
func classifyGeminiError(err error) *Error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ClassifyTransport(err)
	}

	if apiErr, ok := apierror.FromError(err); ok {
		if code := apiErr.HTTPCode(); code > 0 {
			ce := ClassifyStatus(code, err.Error())
			ce.Err = err
			return ce
		}
		if st := apiErr.GRPCStatus(); st != nil {
			switch st.Code() {
			case codes.Unauthenticated, codes.PermissionDenied:
				return newError(KindAuth, http.StatusUnauthorized, st.Message(), err)
			case codes.ResourceExhausted:
				return newError(KindRateLimited, http.StatusTooManyRequests, st.Message(), err)
			case codes.Unavailable, codes.DeadlineExceeded:
				return newError(KindNetwork, 0, st.Message(), err)
			}
		}
	}

	msg := err.Error()
	switch {
	case containsAny(msg, quotaMarkers):
		return newError(KindRateLimited, 0, "", err)
	case containsAny(msg, authMarkers):
		return newError(KindAuth, 0, "", err)
	case containsAny(msg, []string{"connection refused", "no such host", "i/o timeout", "connection reset"}):
		return newError(KindNetwork, 0, "", err)
	default:
		return newError(KindProtocol, 0, "", err)
	}
}
