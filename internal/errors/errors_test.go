package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := NotFound("idea")
	wrapped := fmt.Errorf("lookup: %w", Wrap(base, "failed to load idea"))

	assert.Equal(t, CodeNotFound, GetCode(wrapped))
	assert.Equal(t, "failed to load idea", Message(wrapped))
	assert.True(t, stderrors.Is(wrapped, base))
	assert.Equal(t, "failed to load idea: idea not found", Wrap(base, "failed to load idea").Error())
}

func TestWrapPlainError(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(cause, "failed to save")

	assert.Equal(t, CodeInternalError, GetCode(err))
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, Wrap(nil, "ignored"))
	assert.Nil(t, WithCode(CodeNotFound, nil))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeForbidden, stderrors.New("not yours"))
	assert.Equal(t, CodeForbidden, GetCode(err))
	assert.Equal(t, "not yours", Message(err))

	err = WithCode(CodeConflict, InvalidInput("duplicate"))
	assert.Equal(t, CodeConflict, GetCode(err))
	assert.Equal(t, "duplicate", Message(err))
}

func TestGetCodeUnknown(t *testing.T) {
	assert.Equal(t, CodeInternalError, GetCode(stderrors.New("x")))
	assert.Equal(t, "internal server error", Message(stderrors.New("secret detail")))
}

func TestHTTPStatus(t *testing.T) {
	tests := map[string]int{
		CodeNotFound:      http.StatusNotFound,
		CodeForbidden:     http.StatusForbidden,
		CodeUnauthorized:  http.StatusUnauthorized,
		CodeInvalidInput:  http.StatusBadRequest,
		CodeConflict:      http.StatusConflict,
		CodeUpstreamError: http.StatusBadGateway,
		CodeInternalError: http.StatusInternalServerError,
		"SOMETHING_ELSE":  http.StatusInternalServerError,
	}
	for code, status := range tests {
		assert.Equal(t, status, HTTPStatus(code), code)
	}
}
