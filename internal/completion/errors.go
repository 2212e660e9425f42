package completion

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Kind classifies a completion failure
type Kind int

const (
	// KindAuth means the remote credential was rejected
	KindAuth Kind = iota + 1
	// KindRateLimited means the remote signalled a quota or rate limit
	KindRateLimited
	// KindNetwork means no response was received
	KindNetwork
	// KindProtocol means a response arrived but could not be used
	KindProtocol
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindRateLimited:
		return "rate_limited"
	case KindNetwork:
		return "network"
	case KindProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is
var (
	ErrAuth        = &Error{Kind: KindAuth, Message: "authentication failed"}
	ErrRateLimited = &Error{Kind: KindRateLimited, Message: "rate limited"}
	ErrNetwork     = &Error{Kind: KindNetwork, Message: "network failure"}
	ErrProtocol    = &Error{Kind: KindProtocol, Message: "protocol error"}
)

// Error is returned by every Client implementation
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func newError(kind Kind, status int, message string, cause error) *Error {
	return &Error{Kind: kind, StatusCode: status, Message: message, Err: cause}
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("completion %s error", e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrRateLimited) works
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Retryable reports whether a later attempt could succeed
func (e *Error) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindNetwork
}

// KindOf returns the kind of a completion error, or 0 when err is not one
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}

// IsAuth reports whether err is an authentication failure
func IsAuth(err error) bool {
	return KindOf(err) == KindAuth
}

// IsRetryable reports whether err is a rate limit or network failure
func IsRetryable(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Retryable()
}

var quotaMarkers = []string{"quota", "rate limit", "rate_limit", "too many requests", "resource_exhausted", "resource exhausted"}

var authMarkers = []string{"api key not valid", "invalid api key", "invalid_api_key", "unauthenticated", "permission_denied"}

func containsAny(s string, markers []string) bool {
	lower := strings.ToLower(s)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// ClassifyStatus maps a non-2xx HTTP response to an error kind
func ClassifyStatus(status int, body string) *Error {
	snippet := truncate(strings.TrimSpace(body), 300)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return newError(KindAuth, status, snippet, nil)
	case status == http.StatusTooManyRequests:
		return newError(KindRateLimited, status, snippet, nil)
	case containsAny(body, quotaMarkers):
		return newError(KindRateLimited, status, snippet, nil)
	case containsAny(body, authMarkers):
		return newError(KindAuth, status, snippet, nil)
	default:
		return newError(KindProtocol, status, snippet, nil)
	}
}

// ClassifyTransport wraps an error raised before any response arrived
func ClassifyTransport(err error) *Error {
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	if errors.Is(err, context.Canceled) {
		return newError(KindNetwork, 0, "request canceled", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(KindNetwork, 0, "request timed out", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newError(KindNetwork, 0, "request timed out", err)
	}
	return newError(KindNetwork, 0, "no response received", err)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
