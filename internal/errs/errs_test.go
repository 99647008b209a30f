package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	custom := "WORKFLOW_INVALID"

	tests := []struct {
		name   string
		err    *HTTPError
		status int
		code   string
	}{
		{"unauthorized", NewUnauthorizedError("nope", false), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", NewForbiddenError("nope", false), http.StatusForbidden, "FORBIDDEN"},
		{"bad request", NewBadRequestError("bad", false, nil, nil, nil), http.StatusBadRequest, "BAD_REQUEST"},
		{"bad request custom code", NewBadRequestError("bad", true, &custom, nil, nil), http.StatusBadRequest, custom},
		{"not found", NewNotFoundError("missing", false, nil), http.StatusNotFound, "NOT_FOUND"},
		{"conflict", NewConflictError("busy", true), http.StatusConflict, "CONFLICT"},
		{"too many requests", NewTooManyRequestsError(3), http.StatusTooManyRequests, "TOO_MANY_REQUESTS"},
		{"service unavailable", NewServiceUnavailableError("down"), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"internal", NewInternalServerError(), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

func TestHTTPError_IsMatchesAnyHTTPError(t *testing.T) {
	wrapped := fmt.Errorf("loading workflows: %w", NewNotFoundError("missing", false, nil))

	assert.True(t, errors.Is(wrapped, &HTTPError{}))
	assert.False(t, errors.Is(errors.New("plain"), &HTTPError{}))

	var httpErr *HTTPError
	require.True(t, errors.As(wrapped, &httpErr))
	assert.Equal(t, "missing", httpErr.Error())
}

func TestHTTPError_WithMessageCopies(t *testing.T) {
	base := NewBadRequestError("base", false, nil, []FieldError{{Field: "month", Error: "is required"}}, nil)
	changed := base.WithMessage("changed")

	assert.Equal(t, "base", base.Message)
	assert.Equal(t, "changed", changed.Message)
	assert.Equal(t, base.Errors, changed.Errors)
	assert.Equal(t, base.Status, changed.Status)
}

func TestValidationError(t *testing.T) {
	err := ValidationError(errors.New("month must be between 1 and 12"))

	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, "Validation failed: month must be between 1 and 12", err.Message)
}

func TestTooManyRequestsRetryHint(t *testing.T) {
	err := NewTooManyRequestsError(7)

	require.NotNil(t, err.Action)
	assert.Equal(t, ActionTypeRetry, err.Action.Type)
	assert.Equal(t, "7", err.Action.Value)
}
