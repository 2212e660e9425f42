package ideas

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/pageza/ideaforge/backend/internal/completion"
	"github.com/pageza/ideaforge/backend/internal/retry"
	"github.com/pageza/ideaforge/backend/internal/topics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultTargetCount = 3
	MaxTargetCount     = 10

	maxAttachedSources = 5
)

var errNoValidIdeas = errors.New("no valid ideas in completion response")

// Query is what a context source is asked about
type Query struct {
	Prompt   string
	Keywords []string
	Topics   []topics.Topic
}

// ContextBlock is auxiliary text added to the generation instruction
type ContextBlock struct {
	Label string
	Text  string
	// Sources are attached to generated ideas that cite nothing themselves
	Sources []Source
}

// ContextSource gathers auxiliary context for a generation
type ContextSource interface {
	Name() string
	Gather(ctx context.Context, q Query) (*ContextBlock, error)
}

// Config configures a Generator
type Config struct {
	TargetCount int
	Model       string
	Retry       retry.Policy
}

// Generator produces idea sets
type Generator struct {
	client  completion.Client
	dict    *topics.Dictionary
	sources []ContextSource
	cfg     Config
	logger  *zap.Logger
}

// NewGenerator creates a Generator. A nil client always yields template ideas
// and a nil dictionary uses the builtin topics.
func NewGenerator(client completion.Client, dict *topics.Dictionary, cfg Config, logger *zap.Logger, sources ...ContextSource) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dict == nil {
		dict = topics.Builtin()
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retry.Default()
	}
	cfg.TargetCount = ClampCount(cfg.TargetCount, DefaultTargetCount)
	return &Generator{client: client, dict: dict, sources: sources, cfg: cfg, logger: logger}
}

// ClampCount resolves a requested idea count: non-positive means def, and the
// result is kept within 1..MaxTargetCount.
func ClampCount(n, def int) int {
	if n <= 0 {
		n = def
	}
	if n <= 0 {
		n = DefaultTargetCount
	}
	return min(max(n, 1), MaxTargetCount)
}

// Generate returns exactly the requested number of ideas. It never fails:
// whatever the backend cannot supply is filled from the template bank.
func (g *Generator) Generate(ctx context.Context, prompt string, keywords []string, targetCount int) Result {
	n := ClampCount(targetCount, g.cfg.TargetCount)
	kws := append([]string{}, keywords...)
	ts := g.dict.Classify(kws, prompt)
	logger := g.logger.With(zap.Int("target", n), zap.Strings("keywords", kws))

	var generated []Idea
	if g.client == nil {
		logger.Warn("no completion client configured, using template ideas")
	} else {
		blocks := g.gather(ctx, Query{Prompt: prompt, Keywords: kws, Topics: ts})
		ideas, err := g.remote(ctx, prompt, kws, blocks, n)
		switch {
		case completion.IsAuth(err):
			logger.Error("idea generation rejected credentials, check the completion provider API key", zap.Error(err))
		case err != nil:
			logger.Warn("remote idea generation failed, using template ideas", zap.Error(err))
		default:
			generated = ideas
		}
	}

	if len(generated) > n {
		generated = generated[:n]
	}
	result := Result{Keywords: kws, Ideas: generated}
	if missing := n - len(generated); missing > 0 {
		skip := make(map[string]bool, len(generated))
		for _, idea := range generated {
			skip[idea.Title] = true
		}
		result.Ideas = append(result.Ideas, Fallback(g.dict, kws, ts, missing, skip)...)
		result.Degraded = true
		logger.Info("padded ideas from templates", zap.Int("remote", len(generated)), zap.Int("fallback", missing))
	}
	if result.Ideas == nil {
		result.Ideas = []Idea{}
	}
	return result
}

// gather runs every context source concurrently. A failing source only drops its block.
func (g *Generator) gather(ctx context.Context, q Query) []ContextBlock {
	if len(g.sources) == 0 {
		return nil
	}
	results := make([]*ContextBlock, len(g.sources))
	var eg errgroup.Group
	for i, src := range g.sources {
		eg.Go(func() error {
			start := time.Now()
			block, err := src.Gather(ctx, q)
			if err != nil {
				g.logger.Warn("context source failed", zap.String("source", src.Name()), zap.Error(err))
				return nil
			}
			g.logger.Debug("context source gathered", zap.String("source", src.Name()), zap.Duration("took", time.Since(start)))
			results[i] = block
			return nil
		})
	}
	_ = eg.Wait()

	blocks := make([]ContextBlock, 0, len(results))
	for _, b := range results {
		if b != nil && (strings.TrimSpace(b.Text) != "" || len(b.Sources) > 0) {
			blocks = append(blocks, *b)
		}
	}
	return blocks
}

func (g *Generator) remote(ctx context.Context, prompt string, keywords []string, blocks []ContextBlock, n int) ([]Idea, error) {
	messages := []completion.Message{
		completion.System(generationSystemPrompt),
		completion.User(buildPrompt(prompt, keywords, blocks, n)),
	}
	policy := g.cfg.Retry
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		g.logger.Info("retrying idea generation",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))
	}

	res, err := retry.Do(ctx, policy, func(ctx context.Context) (*completion.Result, error) {
		return g.client.Complete(ctx, messages, g.cfg.Model)
	})
	if err != nil {
		return nil, err
	}

	var out []Idea
	for _, p := range Parse(res.Text) {
		if idea, ok := Validate(p); ok {
			out = append(out, idea)
		}
	}
	if len(out) == 0 {
		return nil, errNoValidIdeas
	}

	cited := citations(res.SearchResults, blocks)
	for i := range out {
		if len(out[i].Sources) == 0 && len(cited) > 0 {
			out[i].Sources = append([]Source(nil), cited...)
		}
	}
	return out, nil
}

// citations collects the sources ideas inherit when they cite nothing themselves
func citations(results []completion.SearchResult, blocks []ContextBlock) []Source {
	var all []Source
	for _, r := range results {
		all = append(all, Source{Title: r.Title, URL: r.URL, Snippet: r.Snippet})
	}
	for _, b := range blocks {
		all = append(all, b.Sources...)
	}
	all = NormalizeSources(all)
	if len(all) > maxAttachedSources {
		all = all[:maxAttachedSources]
	}
	return all
}
