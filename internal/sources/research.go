// Package sources gathers auxiliary context for idea generation: a market
// research completion, Reddit discussions and X posts. Each source implements
// ideas.ContextSource.
package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pageza/ideaforge/backend/internal/completion"
	"github.com/pageza/ideaforge/backend/internal/ideas"
	"github.com/pageza/ideaforge/backend/internal/retry"
	"go.uber.org/zap"
)

const (
	// MaxResearchChars caps the research text handed to the generator
	MaxResearchChars = 4000

	researchSystemPrompt = "You are a market research expert specializing in identifying business opportunities and market gaps. Provide comprehensive, well-researched insights with specific examples and sources."
)

// Research asks a completion backend about the market around a prompt
type Research struct {
	client completion.Client
	model  string
	policy retry.Policy
	logger *zap.Logger
}

// NewResearch creates a Research source
func NewResearch(client completion.Client, model string, policy retry.Policy, logger *zap.Logger) *Research {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy.MaxAttempts == 0 {
		policy = retry.Default()
	}
	return &Research{client: client, model: model, policy: policy, logger: logger}
}

func (r *Research) Name() string { return "research" }

// Gather runs the research call. Search results returned alongside the text
// become the block's sources.
func (r *Research) Gather(ctx context.Context, q ideas.Query) (*ideas.ContextBlock, error) {
	if r.client == nil {
		return nil, fmt.Errorf("research: no completion client configured")
	}
	messages := []completion.Message{
		completion.System(researchSystemPrompt),
		completion.User(researchPrompt(q)),
	}

	policy := r.policy
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		r.logger.Info("retrying market research", zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(err))
	}
	res, err := retry.Do(ctx, policy, func(ctx context.Context) (*completion.Result, error) {
		return r.client.Complete(ctx, messages, r.model)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to run market research: %w", err)
	}

	text := strings.TrimSpace(res.Text)
	if runes := []rune(text); len(runes) > MaxResearchChars {
		text = string(runes[:MaxResearchChars])
	}

	block := &ideas.ContextBlock{Label: "Market research", Text: text}
	for _, sr := range res.SearchResults {
		block.Sources = append(block.Sources, ideas.Source{Title: sr.Title, URL: sr.URL, Snippet: sr.Snippet})
	}
	block.Sources = ideas.NormalizeSources(block.Sources)

	r.logger.Debug("market research gathered", zap.Int("chars", len(text)), zap.Int("sources", len(block.Sources)))
	return block, nil
}

func researchPrompt(q ideas.Query) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Research the following topic: %q.\n", q.Prompt)
	if len(q.Keywords) > 0 {
		fmt.Fprintf(&b, "Related keywords: %s.\n", strings.Join(q.Keywords, ", "))
	}
	b.WriteString(`
Please provide:
1. Current market trends and opportunities
2. Existing solutions and their limitations
3. Potential gaps in the market
4. Recent developments in this field

Focus on finding real, actionable insights that could lead to viable business opportunities.`)
	return b.String()
}
