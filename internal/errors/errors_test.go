package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	err := RequestFailed(500, "boom")
	assert.Equal(t, "request failed with status 500", err.Error())

	wrapped := Wrap(errors.New("dial tcp: refused"), ErrCodeInternal, "send request")
	assert.Equal(t, "send request: dial tcp: refused", wrapped.Error())
}

func TestAPIError_Unwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := Wrap(cause, ErrCodeRefreshFailed, "refresh")

	assert.True(t, errors.Is(err, cause))
	assert.True(t, IsRefreshFailed(err))
}

func TestAPIError_UserMessage(t *testing.T) {
	assert.Equal(t, "Session expired", AuthExpired("Session expired").UserMessage())
	assert.Equal(t, "request failed with status 500", RequestFailed(500, "").UserMessage())
	assert.Equal(t, "request failed", (&APIError{}).UserMessage())
}

func TestConstructors_SetCodeAndStatus(t *testing.T) {
	tests := []struct {
		err    *APIError
		code   ErrorCode
		status int
	}{
		{AuthExpired(""), ErrCodeAuthExpired, 401},
		{RefreshFailed(nil), ErrCodeRefreshFailed, 401},
		{Forbidden(""), ErrCodeForbidden, 403},
		{RequestFailed(502, "bad gateway"), ErrCodeRequestFailed, 502},
		{NotFound("site not found"), ErrCodeNotFound, 404},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.code, tt.err.Code)
		assert.Equal(t, tt.status, tt.err.Status)
	}
}

func TestCodePredicates_MatchWrappedErrors(t *testing.T) {
	inner := Forbidden("nope")
	outer := fmt.Errorf("list sites: %w", inner)

	assert.True(t, IsForbidden(outer))
	assert.False(t, IsAuthExpired(outer))
	assert.Equal(t, ErrCodeForbidden, GetCode(outer))
	assert.Equal(t, 403, GetStatus(outer))
}

func TestWrap_NilCause(t *testing.T) {
	require.Nil(t, Wrap(nil, ErrCodeInternal, "nothing"))
	require.Nil(t, Wrapf(nil, ErrCodeInternal, "nothing %d", 1))
}

func TestGetCode_NonAPIError(t *testing.T) {
	assert.Equal(t, ErrorCode(""), GetCode(errors.New("plain")))
	assert.Equal(t, 0, GetStatus(errors.New("plain")))
}
