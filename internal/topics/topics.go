// Package topics maps keywords and prompt text onto a fixed set of topic tags.
// Each topic carries the static search hints and templates used by the
// fallback idea generator and the discussion sources.
package topics

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Topic is a tag from the dictionary
type Topic string

const (
	AI             Topic = "ai"
	WebDevelopment Topic = "web-development"
	MobileApp      Topic = "mobile-app"
	Startup        Topic = "startup"
	SaaS           Topic = "saas"
	Fintech        Topic = "fintech"
	Frontend       Topic = "frontend"
	Gaming         Topic = "gaming"
	Health         Topic = "health"
	Education      Topic = "education"
	Productivity   Topic = "productivity"
	Default        Topic = "default"
)

// MaxTopics caps the result of Classify
const MaxTopics = 3

// CoreSubreddits are always searched
var CoreSubreddits = []string{"startups", "entrepreneur", "SaaS"}

// Template is a fallback idea pattern. {Primary} is replaced with the title
// cased primary keyword, {primary} and {secondary} with the raw keywords.
type Template struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Account is a representative author used by the mock X source
type Account struct {
	Username string `json:"username"`
	Verified bool   `json:"verified"`
	Tier     string `json:"tier"`
}

// Profile is the static bundle owned by one topic
type Profile struct {
	Name          Topic      `json:"name"`
	Aliases       []string   `json:"aliases"`
	Triggers      []string   `json:"triggers"`
	Subreddits    []string   `json:"subreddits"`
	Hashtags      []string   `json:"hashtags"`
	SearchTerms   []string   `json:"search_terms"`
	TechAdditions []string   `json:"tech_additions"`
	Templates     []Template `json:"templates"`
	Discussions   []string   `json:"discussions"`
	Posts         []string   `json:"posts"`
	Accounts      []Account  `json:"accounts"`
}

// Dictionary is an immutable set of topic profiles
type Dictionary struct {
	order    []Topic
	profiles map[Topic]Profile
}

// NewDictionary builds a dictionary from profiles, in priority order. A
// profile for Default is added when missing.
func NewDictionary(profiles ...Profile) *Dictionary {
	d := &Dictionary{profiles: make(map[Topic]Profile, len(profiles)+1)}
	for _, p := range profiles {
		p.Aliases = lowerAll(p.Aliases)
		p.Triggers = lowerAll(p.Triggers)
		if _, dup := d.profiles[p.Name]; !dup {
			d.order = append(d.order, p.Name)
		}
		d.profiles[p.Name] = p
	}
	if _, ok := d.profiles[Default]; !ok {
		d.order = append(d.order, Default)
		d.profiles[Default] = Profile{Name: Default}
	}
	return d
}

// LoadJSON parses a JSON array of profiles. Profiles named like a built-in
// topic replace it; others are appended.
func LoadJSON(data []byte) (*Dictionary, error) {
	var extra []Profile
	if err := json.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("failed to parse topic dictionary: %w", err)
	}
	base := Builtin()
	merged := make([]Profile, 0, len(base.order)+len(extra))
	replaced := map[Topic]Profile{}
	for _, p := range extra {
		if p.Name == "" {
			return nil, fmt.Errorf("topic profile without a name")
		}
		replaced[p.Name] = p
	}
	for _, t := range base.order {
		if p, ok := replaced[t]; ok {
			merged = append(merged, p)
			delete(replaced, t)
			continue
		}
		merged = append(merged, base.profiles[t])
	}
	for _, p := range extra {
		if _, ok := replaced[p.Name]; ok {
			merged = append(merged, p)
		}
	}
	return NewDictionary(merged...), nil
}

// Topics lists every topic in priority order
func (d *Dictionary) Topics() []Topic {
	return append([]Topic(nil), d.order...)
}

// Profile returns the bundle for t
func (d *Dictionary) Profile(t Topic) (Profile, bool) {
	p, ok := d.profiles[t]
	return p, ok
}

// Classify returns one to three topics. Keyword matches come first, then
// prompt trigger matches, each in dictionary order. With no match the result
// is [startup, default].
func (d *Dictionary) Classify(keywords []string, prompt string) []Topic {
	var out []Topic
	seen := map[Topic]bool{}
	add := func(t Topic) {
		if !seen[t] && len(out) < MaxTopics {
			seen[t] = true
			out = append(out, t)
		}
	}

	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		for _, t := range d.order {
			if t == Default {
				continue
			}
			p := d.profiles[t]
			names := append([]string{strings.ReplaceAll(string(t), "-", " ")}, p.Aliases...)
			for _, alias := range names {
				if containsWord(kw, alias) || containsWord(alias, kw) {
					add(t)
					break
				}
			}
		}
	}

	lowerPrompt := strings.ToLower(prompt)
	for _, t := range d.order {
		for _, trig := range d.profiles[t].Triggers {
			if containsWord(lowerPrompt, trig) {
				add(t)
				break
			}
		}
	}

	if len(out) == 0 {
		return []Topic{Startup, Default}
	}
	return out
}

// Subreddits collects subreddits for topics followed by the core ones. The
// core subreddits always fit inside limit; limit <= 0 means no cap.
func (d *Dictionary) Subreddits(ts []Topic, limit int) []string {
	core := map[string]bool{}
	for _, c := range CoreSubreddits {
		core[strings.ToLower(c)] = true
	}
	var topical []string
	for _, t := range ts {
		for _, s := range d.profiles[t].Subreddits {
			if !core[strings.ToLower(s)] {
				topical = append(topical, s)
			}
		}
	}
	topical = dedupeFold(topical)
	if limit > 0 {
		room := max(limit-len(CoreSubreddits), 0)
		if len(topical) > room {
			topical = topical[:room]
		}
	}
	out := append(topical, CoreSubreddits...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Hashtags collects hashtags for topics
func (d *Dictionary) Hashtags(ts []Topic) []string {
	var all []string
	for _, t := range ts {
		all = append(all, d.profiles[t].Hashtags...)
	}
	if len(all) == 0 {
		all = d.profiles[Default].Hashtags
	}
	return dedupeFold(all)
}

// SearchTerms collects search terms for topics
func (d *Dictionary) SearchTerms(ts []Topic) []string {
	var all []string
	for _, t := range ts {
		all = append(all, d.profiles[t].SearchTerms...)
	}
	return dedupeFold(all)
}

// TechAdditions collects the extra technologies topics add to the default stack
func (d *Dictionary) TechAdditions(ts []Topic) []string {
	var all []string
	for _, t := range ts {
		all = append(all, d.profiles[t].TechAdditions...)
	}
	return dedupeFold(all)
}

// Templates returns the templates of ts in order, followed by the default bank
func (d *Dictionary) Templates(ts []Topic) []Template {
	var out []Template
	withDefault := false
	for _, t := range ts {
		out = append(out, d.profiles[t].Templates...)
		if t == Default {
			withDefault = true
		}
	}
	if !withDefault {
		out = append(out, d.profiles[Default].Templates...)
	}
	return out
}

// containsWord reports whether needle occurs in haystack delimited by
// non-alphanumeric runes or the string ends.
func containsWord(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	for from := 0; from <= len(haystack)-len(needle); {
		i := strings.Index(haystack[from:], needle)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(needle)
		if boundaryBefore(haystack, start) && boundaryAfter(haystack, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(haystack[start:])
		from = start + size
	}
	return false
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func dedupeFold(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		k := strings.ToLower(s)
		if s == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	return out
}
