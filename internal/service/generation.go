package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/pageza/ideaforge/backend/internal/errors"
	"github.com/pageza/ideaforge/backend/internal/ideas"
	"github.com/pageza/ideaforge/backend/internal/keywords"
	"github.com/pageza/ideaforge/backend/internal/logging"
	"github.com/pageza/ideaforge/backend/internal/types"
)

// MaxPromptLen is the longest accepted prompt, in characters
const MaxPromptLen = 2000

// GenerationConfig tunes GenerationService
type GenerationConfig struct {
	DefaultCount int
	MaxKeywords  int
}

// GenerationService runs the idea pipeline for a user and persists the result
type GenerationService struct {
	extractor KeywordExtractor
	generator IdeaGenerator
	ideas     *IdeaService
	cache     GenerationCache
	cfg       GenerationConfig
	logger    *zap.Logger
}

// NewGenerationService wires the pipeline. cache may be nil.
func NewGenerationService(extractor KeywordExtractor, generator IdeaGenerator, ideaService *IdeaService, cache GenerationCache, cfg GenerationConfig, logger *zap.Logger) *GenerationService {
	if cfg.DefaultCount <= 0 {
		cfg.DefaultCount = ideas.DefaultTargetCount
	}
	return &GenerationService{
		extractor: extractor,
		generator: generator,
		ideas:     ideaService,
		cache:     cache,
		cfg:       cfg,
		logger:    logging.OrNop(logger),
	}
}

// Generate validates the request, extracts keywords when the caller gave
// none, generates ideas and stores them for userID. Non-degraded results are
// cached; a cache hit returns the stored ideas without a model call.
func (s *GenerationService) Generate(ctx context.Context, userID uuid.UUID, req types.GenerateRequest) (*types.GenerateResponse, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, apperrors.InvalidInput("prompt is required")
	}
	if utf8.RuneCountInString(prompt) > MaxPromptLen {
		return nil, apperrors.InvalidInput(fmt.Sprintf("prompt must be at most %d characters", MaxPromptLen))
	}
	count := ideas.ClampCount(req.Count, s.cfg.DefaultCount)

	var cacheKey string
	if s.cache != nil {
		cacheKey = GenerationCacheKey(userID, prompt, count)
		if resp := s.fromCache(ctx, userID, cacheKey, count); resp != nil {
			return resp, nil
		}
	}

	kws := keywords.Normalize(req.Keywords, s.cfg.MaxKeywords)
	if len(kws) == 0 {
		kws = s.extractor.Extract(ctx, prompt)
	}

	result := s.generator.Generate(ctx, prompt, kws, count)
	records, err := s.ideas.SaveGeneration(ctx, userID, prompt, result)
	if err != nil {
		return nil, err
	}
	s.logger.Info("ideas generated",
		zap.String("user_id", userID.String()),
		zap.Int("count", len(records)),
		zap.Bool("degraded", result.Degraded),
	)

	if s.cache != nil && !result.Degraded {
		entry := &CachedGeneration{Keywords: result.Keywords, IdeaIDs: make([]uuid.UUID, 0, len(records))}
		for _, r := range records {
			entry.IdeaIDs = append(entry.IdeaIDs, r.ID)
		}
		if err := s.cache.Set(ctx, cacheKey, entry); err != nil {
			s.logger.Warn("failed to cache generation", zap.Error(err))
		}
	}

	return &types.GenerateResponse{
		Keywords: result.Keywords,
		Ideas:    records,
		Degraded: result.Degraded,
	}, nil
}

// fromCache returns nil on a miss, on cache errors, or when any cached idea
// no longer exists.
func (s *GenerationService) fromCache(ctx context.Context, userID uuid.UUID, key string, count int) *types.GenerateResponse {
	entry, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("generation cache unavailable", zap.Error(err))
		return nil
	}
	if entry == nil || len(entry.IdeaIDs) != count {
		return nil
	}
	records, err := s.ideas.ByIDs(ctx, userID, entry.IdeaIDs)
	if err != nil {
		s.logger.Warn("failed to load cached ideas", zap.Error(err))
		return nil
	}
	if len(records) != len(entry.IdeaIDs) {
		return nil
	}
	s.logger.Debug("generation cache hit", zap.String("user_id", userID.String()))
	return &types.GenerateResponse{Keywords: entry.Keywords, Ideas: records, Cached: true}
}
