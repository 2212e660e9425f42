// Package keywords turns a free-text prompt into a short list of topical
// keyword phrases. Extraction asks a completion backend first and falls back
// to a local heuristic; it never fails.
package keywords

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/pageza/ideaforge/backend/internal/completion"
	"github.com/pageza/ideaforge/backend/internal/retry"
	"go.uber.org/zap"
)

const (
	DefaultMaxKeywords = 5
	minKeywords        = 3
	maxKeywords        = 8
	maxPhraseLen       = 60
)

// Default is returned when nothing usable can be derived from the prompt
var Default = []string{"business opportunities", "market solutions"}

const systemPrompt = `You are a keyword extraction expert. Extract the topical keywords from the user's request that would be useful for market research and project idea generation.
Ignore request and filler words such as "give me", "ideas", "how to", "a few", "build".
Focus on the domain, topic, industry, technology and target audience.
Return only a JSON array of short lowercase strings, for example ["healthcare", "mobile app", "remote patient monitoring"].`

// Config configures an Extractor
type Config struct {
	MaxKeywords int
	Model       string
	Retry       retry.Policy
}

// Extractor derives keywords from prompts
type Extractor struct {
	client completion.Client
	cfg    Config
	logger *zap.Logger
}

// NewExtractor creates a new Extractor. client may be nil, in which case only
// the local heuristic runs.
func NewExtractor(client completion.Client, cfg Config, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.MaxKeywords = clampMax(cfg.MaxKeywords)
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retry.Default()
	}
	return &Extractor{client: client, cfg: cfg, logger: logger}
}

func clampMax(n int) int {
	switch {
	case n <= 0:
		return DefaultMaxKeywords
	case n < minKeywords:
		return minKeywords
	case n > maxKeywords:
		return maxKeywords
	default:
		return n
	}
}

// Extract returns at least one lowercased, deduplicated keyword phrase
func (e *Extractor) Extract(ctx context.Context, prompt string) []string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return clone(Default)
	}

	if e.client != nil {
		kws, err := e.remote(ctx, prompt)
		switch {
		case err != nil:
			if completion.IsAuth(err) {
				e.logger.Error("keyword extraction rejected credentials, check the keyword provider API key", zap.Error(err))
			} else {
				e.logger.Warn("remote keyword extraction failed, using heuristic", zap.Error(err))
			}
		case len(kws) > 0:
			e.logger.Debug("remote keywords extracted", zap.Strings("keywords", kws))
			return kws
		default:
			e.logger.Warn("remote keyword extraction returned nothing usable")
		}
	}

	if kws := Heuristic(prompt); len(kws) > 0 {
		return kws
	}
	return clone(Default)
}

func (e *Extractor) remote(ctx context.Context, prompt string) ([]string, error) {
	messages := []completion.Message{
		completion.System(systemPrompt),
		completion.User(fmt.Sprintf("Extract keywords from: %q", prompt)),
	}
	policy := e.cfg.Retry
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		e.logger.Info("retrying keyword extraction",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))
	}
	res, err := retry.Do(ctx, policy, func(ctx context.Context) (*completion.Result, error) {
		return e.client.Complete(ctx, messages, e.cfg.Model)
	})
	if err != nil {
		return nil, err
	}
	return ParseList(res.Text, e.cfg.MaxKeywords), nil
}

var (
	fenceRe  = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")
	bulletRe = regexp.MustCompile(`^\s*(?:[-*•+]+|\d+[.)]|[a-zA-Z][.)])\s*`)
)

// ParseList reads a model answer as a JSON array of strings, or as newline or
// comma separated phrases, and normalizes the result.
func ParseList(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	var raw []string
	if start := strings.Index(text, "["); start >= 0 {
		if end := strings.LastIndex(text, "]"); end > start {
			var arr []any
			if err := json.Unmarshal([]byte(text[start:end+1]), &arr); err == nil {
				for _, v := range arr {
					if s, ok := v.(string); ok {
						raw = append(raw, s)
					}
				}
			}
		}
	}
	if raw == nil {
		raw = strings.FieldsFunc(text, func(r rune) bool {
			return r == '\n' || r == ','
		})
	}
	return Normalize(raw, limit)
}

// Normalize strips list decoration, lowercases, drops empty or overlong
// phrases, removes duplicates and caps the result at limit.
func Normalize(phrases []string, limit int) []string {
	limit = clampMax(limit)
	seen := make(map[string]struct{}, len(phrases))
	out := make([]string, 0, limit)
	for _, p := range phrases {
		p = bulletRe.ReplaceAllString(p, "")
		p = strings.Trim(p, " \t\r\"'`*.;:")
		p = strings.ToLower(strings.Join(strings.Fields(p), " "))
		if p == "" || len([]rune(p)) > maxPhraseLen {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out
}

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`a an the and or but if then so of in on at to for from with by about into over
		is are was were be been being am do does did have has had will would could should can may might must shall
		i me my we our you your it its this that these those there here what which who whom how why when where
		give show tell list suggest some few several many any more most all ideas idea help please want need
		build building create creating make making develop developing start starting launch get find think new
		like just also very really good best thing things way ways something`) {
		stopWords[w] = struct{}{}
	}
}

// Heuristic extracts up to three keyword phrases without a remote call
func Heuristic(prompt string) []string {
	tokens := tokenize(prompt)

	// contiguous runs of content words
	var runs [][]string
	var cur []string
	for _, t := range tokens {
		if _, stop := stopWords[t]; stop {
			if len(cur) > 0 {
				runs = append(runs, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 {
		runs = append(runs, cur)
	}

	var phrases []string
	for _, run := range runs {
		for i := range run {
			for n := 2; n <= 3 && i+n <= len(run); n++ {
				phrases = append(phrases, strings.Join(run[i:i+n], " "))
			}
		}
	}
	if out := Normalize(phrases, minKeywords); len(out) > 0 {
		return out
	}

	// single words by frequency, ties by first appearance
	counts := map[string]int{}
	var order []string
	for _, run := range runs {
		for _, t := range run {
			if len([]rune(t)) <= 3 {
				continue
			}
			if counts[t] == 0 {
				order = append(order, t)
			}
			counts[t]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	return Normalize(order, minKeywords)
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
