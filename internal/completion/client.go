// Package completion wraps the chat-completion backends used for keyword
// extraction, idea generation and plan writing. Clients never retry; callers
// wrap them with the retry package.
package completion

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultTimeout bounds every outbound completion call
const DefaultTimeout = 60 * time.Second

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SearchResult is a citation returned alongside a completion by search-backed models
type SearchResult struct {
	Title   string `json:"title,omitempty"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// Result is the outcome of a successful completion call
type Result struct {
	Text          string         `json:"text"`
	SearchResults []SearchResult `json:"search_results,omitempty"`
}

// Client issues a single chat-style completion request
type Client interface {
	Complete(ctx context.Context, messages []Message, modelHint string) (*Result, error)
}

// Provider names accepted by New
const (
	ProviderPerplexity = "perplexity"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
)

// System builds a system message
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User builds a user message
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func validateMessages(messages []Message) error {
	if len(messages) == 0 {
		return newError(KindProtocol, 0, "no messages to send", nil)
	}
	for i, m := range messages {
		if strings.TrimSpace(m.Content) == "" {
			return newError(KindProtocol, 0, fmt.Sprintf("message %d is empty", i), nil)
		}
	}
	return nil
}

func pickModel(hint, fallback string) string {
	if h := strings.TrimSpace(hint); h != "" {
		return h
	}
	return fallback
}
