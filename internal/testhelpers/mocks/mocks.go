package mocks

import (
	"context"
	"sync"

	"github.com/pageza/ideaforge/backend/internal/completion"
	"github.com/stretchr/testify/mock"
)

// MockCompletionClient is a testify mock of completion.Client
type MockCompletionClient struct {
	mock.Mock
}

func (m *MockCompletionClient) Complete(ctx context.Context, messages []completion.Message, modelHint string) (*completion.Result, error) {
	args := m.Called(ctx, messages, modelHint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*completion.Result), args.Error(1)
}

// StubCompletionClient answers every call with Respond and counts calls.
// It is safe for concurrent use.
type StubCompletionClient struct {
	Respond func(messages []completion.Message) (*completion.Result, error)

	mu       sync.Mutex
	calls    int
	messages [][]completion.Message
}

// NewStubCompletionClient returns a stub that always answers text
func NewStubCompletionClient(text string) *StubCompletionClient {
	return &StubCompletionClient{Respond: func([]completion.Message) (*completion.Result, error) {
		return &completion.Result{Text: text}, nil
	}}
}

// NewFailingCompletionClient returns a stub that always fails with err
func NewFailingCompletionClient(err error) *StubCompletionClient {
	return &StubCompletionClient{Respond: func([]completion.Message) (*completion.Result, error) {
		return nil, err
	}}
}

func (s *StubCompletionClient) Complete(ctx context.Context, messages []completion.Message, modelHint string) (*completion.Result, error) {
	s.mu.Lock()
	s.calls++
	s.messages = append(s.messages, messages)
	s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Respond(messages)
}

// Calls returns how many times Complete ran
func (s *StubCompletionClient) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// LastMessages returns the messages of the most recent call
func (s *StubCompletionClient) LastMessages() []completion.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return nil
	}
	return s.messages[len(s.messages)-1]
}
