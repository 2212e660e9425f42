package ideas

import (
	"fmt"
	"strings"

	"github.com/pageza/ideaforge/backend/internal/topics"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	fallbackPrimary   = "business"
	fallbackSecondary = "automation"
	fallbackEstimate  = "2-3 months"
)

var acronyms = map[string]string{
	"ai": "AI", "ml": "ML", "llm": "LLM", "saas": "SaaS", "b2b": "B2B", "b2c": "B2C",
	"ui": "UI", "ux": "UX", "api": "API", "ios": "iOS", "crm": "CRM", "iot": "IoT",
}

var genericTemplate = topics.Template{
	Title:       "{Primary} Platform",
	Description: "A focused platform that helps small teams manage {primary} work and streamline {secondary} in one place.",
}

var titleCaser = cases.Title(language.English)

// TitleCase capitalizes each word of a keyword phrase, keeping common acronyms
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if a, ok := acronyms[strings.ToLower(w)]; ok {
			words[i] = a
			continue
		}
		words[i] = titleCaser.String(w)
	}
	return strings.Join(words, " ")
}

// Fallback renders n deterministic template ideas for the given topics.
// Titles already present in skip are not repeated.
func Fallback(dict *topics.Dictionary, keywords []string, ts []topics.Topic, n int, skip map[string]bool) []Idea {
	if n <= 0 {
		return nil
	}
	if dict == nil {
		dict = topics.Builtin()
	}
	if len(ts) == 0 {
		ts = []topics.Topic{topics.Startup, topics.Default}
	}

	var templates []topics.Template
	for _, tpl := range dict.Templates(ts) {
		if strings.TrimSpace(tpl.Title) != "" {
			templates = append(templates, tpl)
		}
	}
	if len(templates) == 0 {
		templates = []topics.Template{genericTemplate}
	}
	stack := NormalizeTechStack(append(append([]string(nil), DefaultTechStack...), dict.TechAdditions(ts)...))

	primaries := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			primaries = append(primaries, k)
		}
	}
	if len(primaries) == 0 {
		primaries = []string{fallbackPrimary}
	}
	secondary := fallbackSecondary
	if len(primaries) > 1 {
		secondary = primaries[1]
	}

	seen := map[string]bool{}
	for t := range skip {
		seen[strings.ToLower(t)] = true
	}

	out := make([]Idea, 0, n)
	// each round rotates the primary keyword; rounds past the keyword list get
	// their own numbered edition, so every round can add at least one new title
	for round := 0; len(out) < n; round++ {
		primary := primaries[round%len(primaries)]
		sec := secondary
		if round > 0 && round < len(primaries) {
			sec = primaries[0]
		}
		suffix := ""
		if round >= len(primaries) {
			suffix = fmt.Sprintf(" %d", round-len(primaries)+2)
		}
		for _, tpl := range templates {
			if len(out) == n {
				break
			}
			idea := render(tpl, primary, sec, suffix)
			key := strings.ToLower(idea.Title)
			if seen[key] {
				continue
			}
			seen[key] = true
			idea.TechStack = append([]string(nil), stack...)
			out = append(out, idea)
		}
	}
	return out
}

func render(tpl topics.Template, primary, secondary, suffix string) Idea {
	r := strings.NewReplacer(
		"{Primary}", TitleCase(primary),
		"{primary}", primary,
		"{secondary}", secondary,
	)
	title := truncateRunes(cleanText(r.Replace(tpl.Title)), MaxTitleLen-len(suffix)) + suffix
	return Idea{
		Title:         title,
		Description:   truncateRunes(cleanText(r.Replace(tpl.Description)), MaxDescriptionLen),
		MarketNeed:    fallbackMarketNeed(primary, secondary),
		Difficulty:    Medium,
		EstimatedTime: fallbackEstimate,
		Sources:       []Source{},
	}
}

func fallbackMarketNeed(primary, secondary string) string {
	return fmt.Sprintf("Businesses exploring %s need a simpler, more affordable way to handle %s than today's fragmented tools, which are built for large enterprises and slow to adopt.", primary, secondary)
}
