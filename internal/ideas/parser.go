package ideas

import (
	"encoding/json"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
)

// Parse decodes model output into partial ideas. Strategies run in a fixed
// order and the first one yielding a record wins: a JSON array, then
// "Name: description" lines, then labeled blocks. Text that opens like JSON
// is only ever read as JSON, so a truncated array yields nothing.
func Parse(raw string) []Partial {
	text := stripFences(raw)
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if strings.HasPrefix(text, "[") || strings.HasPrefix(text, "{") {
		return parseJSON(text)
	}
	for _, strategy := range []func(string) []Partial{parseJSON, parseNameLines, parseLabeledBlocks} {
		if out := strategy(text); len(out) > 0 {
			return out
		}
	}
	return nil
}

var fenceRe = regexp.MustCompile("```[a-zA-Z]*")

func stripFences(s string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(s, ""))
}

// --- strategy 1: JSON ---

func parseJSON(text string) []Partial {
	// try each bracket in turn so citation markers like [1] in leading prose are skipped
	for i, tries := strings.IndexByte(text, '['), 0; i >= 0 && tries < 32; tries++ {
		if end := balancedEnd(text, i); end > i {
			if out := decodeIdeas(text[i : end+1]); len(out) > 0 {
				return out
			}
		}
		next := strings.IndexByte(text[i+1:], '[')
		if next < 0 {
			break
		}
		i += next + 1
	}

	start, end := strings.Index(text, "["), strings.LastIndex(text, "]")
	if start >= 0 && end > start {
		return decodeIdeas(text[start : end+1])
	}
	return nil
}

func decodeIdeas(candidate string) []Partial {
	var items []any
	if err := json.Unmarshal([]byte(candidate), &items); err != nil {
		return nil
	}
	var out []Partial
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if p := partialFromObject(obj); !p.empty() {
			out = append(out, p)
		}
	}
	return out
}

// balancedEnd returns the index of the bracket closing the one at start,
// ignoring brackets inside JSON strings, or -1.
func balancedEnd(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

type field int

const (
	fieldNone field = iota
	fieldTitle
	fieldDescription
	fieldMarketNeed
	fieldTechStack
	fieldDifficulty
	fieldEstimatedTime
	fieldSources
)

var jsonKeys = map[string]field{
	"idea": fieldTitle, "title": fieldTitle, "name": fieldTitle, "ideaname": fieldTitle,
	"projecttitle": fieldTitle, "projectname": fieldTitle,
	"description": fieldDescription, "summary": fieldDescription, "details": fieldDescription,
	"marketneed": fieldMarketNeed, "problem": fieldMarketNeed, "need": fieldMarketNeed,
	"techstack": fieldTechStack, "technologies": fieldTechStack, "technologystack": fieldTechStack, "stack": fieldTechStack,
	"difficulty": fieldDifficulty, "level": fieldDifficulty,
	"estimatedtime": fieldEstimatedTime, "timeline": fieldEstimatedTime, "timeestimate": fieldEstimatedTime,
	"estimateddevelopmenttime": fieldEstimatedTime, "duration": fieldEstimatedTime,
	"sources": fieldSources, "references": fieldSources, "citations": fieldSources,
}

func normalizeKey(k string) string {
	k = strings.ToLower(k)
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(k)
}

func partialFromObject(obj map[string]any) Partial {
	var p Partial
	for _, k := range slices.Sorted(maps.Keys(obj)) {
		v := obj[k]
		switch jsonKeys[normalizeKey(k)] {
		case fieldTitle:
			if p.Title == "" {
				p.Title = scalar(v)
			}
		case fieldDescription:
			if p.Description == "" {
				p.Description = scalar(v)
			}
		case fieldMarketNeed:
			if p.MarketNeed == "" {
				p.MarketNeed = scalar(v)
			}
		case fieldTechStack:
			p.TechStack = append(p.TechStack, stringList(v)...)
		case fieldDifficulty:
			p.Difficulty = scalar(v)
		case fieldEstimatedTime:
			p.EstimatedTime = scalar(v)
		case fieldSources:
			p.Sources = append(p.Sources, sourceList(v)...)
		}
	}
	return p
}

func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%f", t), "0"), ".")
	case bool:
		return fmt.Sprint(t)
	case []any:
		return strings.Join(stringList(t), ", ")
	default:
		return ""
	}
}

func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		return splitList(t)
	case []any:
		var out []string
		for _, item := range t {
			switch s := item.(type) {
			case string:
				out = append(out, strings.TrimSpace(s))
			case map[string]any:
				if name := scalar(s["name"]); name != "" {
					out = append(out, name)
				}
			}
		}
		return out
	default:
		return nil
	}
}

func splitList(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' || r == '\n' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(bulletRe.ReplaceAllString(p, ""))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func sourceList(v any) []Source {
	items, ok := v.([]any)
	if !ok {
		if s, isStr := v.(string); isStr {
			return sourcesFromText(s)
		}
		return nil
	}
	var out []Source
	for _, item := range items {
		switch t := item.(type) {
		case string:
			out = append(out, sourcesFromText(t)...)
		case map[string]any:
			src := Source{}
			for k, val := range t {
				switch normalizeKey(k) {
				case "url", "link", "href":
					src.URL = scalar(val)
				case "title", "name":
					src.Title = scalar(val)
				case "snippet", "description", "summary":
					src.Snippet = scalar(val)
				}
			}
			if src.URL != "" {
				out = append(out, src)
			}
		}
	}
	return out
}

var urlRe = regexp.MustCompile(`https?://[^\s)\]>"'<,]+`)

func sourcesFromText(s string) []Source {
	matches := urlRe.FindAllStringIndex(s, -1)
	out := make([]Source, 0, len(matches))
	prev := 0
	for _, m := range matches {
		title := strings.Trim(s[prev:m[0]], " \t-:–(*[")
		out = append(out, Source{Title: title, URL: strings.TrimRight(s[m[0]:m[1]], ".;")})
		prev = m[1]
	}
	return out
}

// --- strategy 2: "Name: description" lines ---

var (
	bulletRe   = regexp.MustCompile(`^\s*(?:#+\s*)?(?:\d+[.)]\s*|[-*•+]\s+)?`)
	nameLineRe = regexp.MustCompile(`^(?:\*\*|__)?([^:*_]{2,80}?)(?:\*\*|__)?\s*:\s*(?:\*\*|__)?\s*(.+)$`)
)

func parseNameLines(text string) []Partial {
	lines := strings.Split(text, "\n")
	for _, line := range lines {
		if label, _, ok := splitLabel(line); ok && labelField(label) == fieldTitle {
			// labeled blocks are handled by the next strategy
			return nil
		}
	}

	var out []Partial
	for _, line := range lines {
		line = strings.TrimSpace(bulletRe.ReplaceAllString(line, ""))
		m := nameLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		desc := strings.TrimSpace(strings.Trim(m[2], "* "))
		if desc == "" || labelField(name) != fieldNone || len(strings.Fields(name)) > 10 {
			continue
		}
		// quoted names are JSON members, not ideas
		if strings.ContainsAny(name, `"{}[]`) || strings.Contains(name, "http") {
			continue
		}
		if _, isKey := jsonKeys[normalizeKey(name)]; isKey {
			continue
		}
		out = append(out, Partial{Title: name, Description: desc})
	}
	return out
}

// --- strategy 3: labeled blocks ---

var labelFields = map[string]field{
	"idea": fieldTitle, "idea name": fieldTitle, "title": fieldTitle, "name": fieldTitle,
	"project": fieldTitle, "project name": fieldTitle, "project title": fieldTitle,
	"description": fieldDescription, "summary": fieldDescription, "overview": fieldDescription,
	"market need": fieldMarketNeed, "problem": fieldMarketNeed, "market": fieldMarketNeed, "need": fieldMarketNeed,
	"tech stack": fieldTechStack, "technology stack": fieldTechStack, "technologies": fieldTechStack, "stack": fieldTechStack,
	"difficulty": fieldDifficulty, "difficulty level": fieldDifficulty,
	"estimated time": fieldEstimatedTime, "timeline": fieldEstimatedTime, "time estimate": fieldEstimatedTime,
	"estimated development time": fieldEstimatedTime,
	"source": fieldSources, "sources": fieldSources, "references": fieldSources,
}

var labelRe = regexp.MustCompile(`^(?:\*\*|__)?([A-Za-z][A-Za-z ]{1,40}?)(?:\*\*|__)?\s*:\s*(?:\*\*|__)?\s*(.*)$`)

func splitLabel(line string) (label, value string, ok bool) {
	line = strings.TrimSpace(bulletRe.ReplaceAllString(line, ""))
	m := labelRe.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return strings.ToLower(strings.TrimSpace(m[1])), strings.TrimSpace(strings.Trim(m[2], "*_ ")), true
}

func labelField(label string) field {
	return labelFields[strings.ToLower(strings.TrimSpace(label))]
}

func parseLabeledBlocks(text string) []Partial {
	var out []Partial
	var cur *Partial
	flush := func() {
		if cur != nil && !cur.empty() {
			out = append(out, *cur)
		}
		cur = nil
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		label, value, ok := splitLabel(trimmed)
		f := fieldNone
		if ok {
			f = labelField(label)
		}
		if f == fieldNone {
			if cur != nil {
				extra := strings.TrimSpace(bulletRe.ReplaceAllString(trimmed, ""))
				cur.Description = strings.TrimSpace(cur.Description + " " + extra)
			}
			continue
		}

		if f == fieldTitle {
			flush()
			cur = &Partial{Title: value}
			continue
		}
		if cur == nil {
			cur = &Partial{}
		}
		switch f {
		case fieldDescription:
			cur.Description = strings.TrimSpace(cur.Description + " " + value)
		case fieldMarketNeed:
			cur.MarketNeed = value
		case fieldTechStack:
			cur.TechStack = append(cur.TechStack, splitList(value)...)
		case fieldDifficulty:
			cur.Difficulty = value
		case fieldEstimatedTime:
			cur.EstimatedTime = value
		case fieldSources:
			cur.Sources = append(cur.Sources, sourcesFromText(value)...)
		}
	}
	flush()
	return out
}
