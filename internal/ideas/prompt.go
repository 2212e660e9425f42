package ideas

import (
	"fmt"
	"strings"
)

const maxBlockChars = 4000

const generationSystemPrompt = `You are a product strategist and technical architect. Generate innovative, viable SaaS project ideas grounded in real market needs. Always respond with valid JSON and nothing else.`

func buildPrompt(prompt string, keywords []string, blocks []ContextBlock, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate exactly %d innovative project ideas for the following request: %q\n", count, prompt)
	if len(keywords) > 0 {
		fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(keywords, ", "))
	}

	for _, block := range blocks {
		text := strings.TrimSpace(block.Text)
		if text == "" {
			continue
		}
		if r := []rune(text); len(r) > maxBlockChars {
			text = string(r[:maxBlockChars])
		}
		fmt.Fprintf(&b, "\n%s:\n%s\n", block.Label, text)
	}

	fmt.Fprintf(&b, `
For each idea, provide:
- a clear, concise title
- a detailed description explaining the concept
- the specific market need or problem it solves
- a recommended technology stack (specific frameworks, languages, tools)
- a difficulty level (Easy: 1-2 months, Medium: 3-6 months, Hard: 6+ months)
- an estimated development time

Make sure each idea is feasible with current technology, addresses a real market need, has clear monetization potential and is specific enough to be actionable.

Respond with a JSON array of exactly %d objects using these exact keys:
[
  {
    "title": "Project title",
    "description": "Detailed description",
    "market_need": "Specific problem it solves",
    "tech_stack": ["Technology1", "Technology2"],
    "difficulty": "Easy|Medium|Hard",
    "estimated_time": "Time estimate",
    "sources": [{"title": "Source title", "url": "https://..."}]
  }
]`, count)
	return b.String()
}
