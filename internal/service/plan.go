package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/pageza/ideaforge/backend/internal/completion"
	apperrors "github.com/pageza/ideaforge/backend/internal/errors"
	"github.com/pageza/ideaforge/backend/internal/logging"
	"github.com/pageza/ideaforge/backend/internal/models"
	"github.com/pageza/ideaforge/backend/internal/retry"
)

// Plan output formats
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

const planSystemPrompt = "You are a seasoned product manager, tech lead and marketing strategist. " +
	"Write detailed, actionable plans in Markdown with clear headings and lists."

// PlanStore exports a rendered plan and returns a download URL
type PlanStore interface {
	ExportPlan(ctx context.Context, key string, markdown []byte) (string, error)
}

// DefaultPlanTimeout bounds one shared plan generation
const DefaultPlanTimeout = 5 * time.Minute

// PlanConfig tunes PlanService
type PlanConfig struct {
	Model string
	Retry retry.Policy
	// Timeout bounds a generation independently of any single request
	Timeout time.Duration
}

// Plan is a stored plan in the requested format
type Plan struct {
	IdeaID  uuid.UUID
	Format  string
	Content string
	PlanURL string
}

// PlanService expands an idea into a full build and go-to-market plan
type PlanService struct {
	client   completion.Client
	ideas    *IdeaService
	store    PlanStore
	cfg      PlanConfig
	markdown goldmark.Markdown
	group    singleflight.Group
	logger   *zap.Logger
}

// NewPlanService creates a PlanService. store may be nil to skip export.
func NewPlanService(client completion.Client, ideaService *IdeaService, store PlanStore, cfg PlanConfig, logger *zap.Logger) *PlanService {
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retry.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultPlanTimeout
	}
	return &PlanService{
		client:   client,
		ideas:    ideaService,
		store:    store,
		cfg:      cfg,
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
		logger:   logging.OrNop(logger),
	}
}

// GetPlan returns the plan of an idea visible to userID, generating and
// storing it on first request. Concurrent first requests share one
// generation.
func (s *PlanService) GetPlan(ctx context.Context, ideaID, userID uuid.UUID, format string) (*Plan, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatMarkdown
	}
	if format != FormatMarkdown && format != FormatHTML {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported format %q", format))
	}

	idea, err := s.ideas.FindVisible(ctx, ideaID, userID)
	if err != nil {
		return nil, err
	}

	text, planURL := idea.Plan, idea.PlanURL
	if strings.TrimSpace(text) == "" {
		// the shared generation outlives whichever request started it
		ch := s.group.DoChan(ideaID.String(), func() (interface{}, error) {
			genCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Timeout)
			defer cancel()
			return s.generate(genCtx, idea)
		})
		var res singleflight.Result
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res = <-ch:
		}
		if res.Err != nil {
			return nil, res.Err
		}
		generated := res.Val.(*models.ProjectIdea)
		text, planURL = generated.Plan, generated.PlanURL
	}

	plan := &Plan{IdeaID: ideaID, Format: format, Content: text, PlanURL: planURL}
	if format == FormatHTML {
		html, err := s.RenderHTML(text)
		if err != nil {
			return nil, err
		}
		plan.Content = html
	}
	return plan, nil
}

func (s *PlanService) generate(ctx context.Context, idea *models.ProjectIdea) (*models.ProjectIdea, error) {
	if s.client == nil {
		return nil, apperrors.Upstream("plan", fmt.Errorf("no completion client configured"))
	}

	messages := []completion.Message{
		completion.System(planSystemPrompt),
		completion.User(planPrompt(idea)),
	}
	policy := s.cfg.Retry
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		s.logger.Info("retrying plan generation",
			zap.String("idea_id", idea.ID.String()),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))
	}
	res, err := retry.Do(ctx, policy, func(ctx context.Context) (*completion.Result, error) {
		return s.client.Complete(ctx, messages, s.cfg.Model)
	})
	if err != nil {
		s.logger.Error("plan generation failed", zap.String("idea_id", idea.ID.String()), zap.Error(err))
		return nil, apperrors.Upstream("plan", err)
	}
	text := strings.TrimSpace(res.Text)
	if text == "" {
		return nil, apperrors.Upstream("plan", fmt.Errorf("empty plan"))
	}

	var planURL string
	if s.store != nil {
		key := fmt.Sprintf("plans/%s/%s.md", idea.UserID, idea.ID)
		planURL, err = s.store.ExportPlan(ctx, key, []byte(text))
		if err != nil {
			// The plan is still served from the database.
			s.logger.Warn("failed to export plan", zap.String("idea_id", idea.ID.String()), zap.Error(err))
			planURL = ""
		}
	}

	if err := s.ideas.SavePlan(ctx, idea.ID, text, planURL); err != nil {
		return nil, err
	}
	out := *idea
	out.Plan, out.PlanURL = text, planURL
	return &out, nil
}

// RenderHTML converts plan markdown to HTML
func (s *PlanService) RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render plan: %w", err)
	}
	return buf.String(), nil
}

func planPrompt(idea *models.ProjectIdea) string {
	stack := "Not specified"
	if len(idea.TechStack) > 0 {
		stack = strings.Join(idea.TechStack, ", ")
	}

	var b strings.Builder
	b.WriteString("Given the following project idea, provide an exhaustive plan on how to build, strategize and market it.\n\n")
	fmt.Fprintf(&b, "**Project Idea:** %s\n", idea.Title)
	fmt.Fprintf(&b, "**Description:** %s\n", idea.Description)
	if idea.MarketNeed != "" {
		fmt.Fprintf(&b, "**Market Need:** %s\n", idea.MarketNeed)
	}
	fmt.Fprintf(&b, "**Suggested Tech Stack:** %s\n", stack)
	fmt.Fprintf(&b, "**Difficulty:** %s\n", idea.Difficulty)
	if idea.EstimatedTime != "" {
		fmt.Fprintf(&b, "**Estimated Time:** %s\n", idea.EstimatedTime)
	}
	b.WriteString(`
Cover these sections in detail:

# 1. Technical Architecture
High-level overview, frontend, backend, database with a sample schema, third-party services, deployment and CI/CD.

# 2. Team Roles & Responsibilities
Core MVP team, post-MVP hires and a skills matrix.

# 3. Development Timeline & Milestones
Phase 1 MVP (0-3 months) with milestones, phase 2 core features (3-6 months), phase 3 scaling (6-12 months).

# 4. Go-to-Market Strategy
Target audience personas, tiered pricing, marketing channels with budget split, launch plan.

# 5. Growth & Scaling Strategy
User acquisition for the first 100, 1,000 and 10,000 users, retention, product roadmap, key metrics.
`)
	return b.String()
}
