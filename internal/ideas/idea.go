// Package ideas turns a prompt and its keywords into a fixed number of
// structured project ideas. Generation asks a completion backend, parses the
// answer leniently and pads with deterministic template ideas when the
// backend fails; it never returns an error.
package ideas

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Difficulty of building an idea
type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// Field limits
const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 2000
	MaxMarketNeedLen  = 1000
	MaxTechStack      = 20
)

// DefaultTechStack is used when an idea names no technologies
var DefaultTechStack = []string{"React", "Node.js", "TypeScript"}

// Source is a citation backing an idea
type Source struct {
	Title   string `json:"title,omitempty"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// Idea is a validated project idea
type Idea struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	MarketNeed    string     `json:"market_need"`
	TechStack     []string   `json:"tech_stack"`
	Difficulty    Difficulty `json:"difficulty"`
	EstimatedTime string     `json:"estimated_time"`
	Sources       []Source   `json:"sources"`
}

// Result is the outcome of one generation
type Result struct {
	Keywords []string `json:"keywords"`
	Ideas    []Idea   `json:"ideas"`
	// Degraded is true when at least one idea came from the template fallback
	Degraded bool `json:"degraded"`
}

// Partial is an idea as decoded from model output, before validation
type Partial struct {
	Title         string
	Description   string
	MarketNeed    string
	TechStack     []string
	Difficulty    string
	EstimatedTime string
	Sources       []Source
}

func (p Partial) empty() bool {
	return strings.TrimSpace(p.Title) == "" && strings.TrimSpace(p.Description) == ""
}

// Validate coerces a partial idea into one satisfying every field constraint.
// It reports false when the record has nothing usable to describe.
func Validate(p Partial) (Idea, bool) {
	title := cleanText(p.Title)
	desc := cleanText(p.Description)
	need := cleanText(p.MarketNeed)

	if desc == "" {
		desc = need
	}
	if desc == "" {
		return Idea{}, false
	}
	if title == "" {
		title = titleFrom(desc)
	}

	title = truncateRunes(title, MaxTitleLen)
	desc = truncateRunes(desc, MaxDescriptionLen)
	if need == "" {
		need = GenericMarketNeed(title)
	}
	need = truncateRunes(need, MaxMarketNeedLen)

	difficulty := ParseDifficulty(p.Difficulty)
	estimate := cleanText(p.EstimatedTime)
	if estimate == "" {
		estimate = DefaultEstimate(difficulty)
	}

	return Idea{
		Title:         title,
		Description:   desc,
		MarketNeed:    need,
		TechStack:     NormalizeTechStack(p.TechStack),
		Difficulty:    difficulty,
		EstimatedTime: estimate,
		Sources:       NormalizeSources(p.Sources),
	}, true
}

// GenericMarketNeed fills ideas whose market need is unknown
func GenericMarketNeed(subject string) string {
	if subject == "" {
		subject = "this space"
	}
	return fmt.Sprintf("Teams working on %s lack a focused, affordable tool that solves the problem end to end; existing options are fragmented or built for larger enterprises.", subject)
}

// ParseDifficulty maps loose labels onto the three levels; unknown values become Medium
func ParseDifficulty(s string) Difficulty {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "":
		return Medium
	case strings.HasPrefix(v, "easy"), strings.HasPrefix(v, "beginner"), strings.HasPrefix(v, "low"), strings.HasPrefix(v, "simple"):
		return Easy
	case strings.HasPrefix(v, "hard"), strings.HasPrefix(v, "advanced"), strings.HasPrefix(v, "high"),
		strings.HasPrefix(v, "difficult"), strings.HasPrefix(v, "complex"), strings.HasPrefix(v, "expert"):
		return Hard
	default:
		return Medium
	}
}

// DefaultEstimate derives a time estimate from difficulty
func DefaultEstimate(d Difficulty) string {
	switch d {
	case Easy:
		return "1-2 months"
	case Hard:
		return "6+ months"
	default:
		return "3-6 months"
	}
}

// NormalizeTechStack trims, dedupes case-insensitively and caps the list,
// falling back to DefaultTechStack when nothing remains.
func NormalizeTechStack(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.Trim(cleanText(t), "\"'`*.")
		k := strings.ToLower(t)
		if t == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, truncateRunes(t, 60))
		if len(out) == MaxTechStack {
			break
		}
	}
	if len(out) == 0 {
		return append([]string(nil), DefaultTechStack...)
	}
	return out
}

// NormalizeSources drops sources without a URL and trims the rest
func NormalizeSources(in []Source) []Source {
	out := make([]Source, 0, len(in))
	seen := map[string]bool{}
	for _, s := range in {
		s.URL = strings.TrimSpace(s.URL)
		if s.URL == "" || seen[s.URL] {
			continue
		}
		seen[s.URL] = true
		s.Title = cleanText(s.Title)
		s.Snippet = truncateRunes(cleanText(s.Snippet), 500)
		out = append(out, s)
	}
	return out
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func titleFrom(desc string) string {
	first := desc
	if i := strings.IndexAny(first, ".!?\n"); i > 0 {
		first = first[:i]
	}
	words := strings.Fields(first)
	if len(words) > 8 {
		words = words[:8]
	}
	return strings.Join(words, " ")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n]))
}
