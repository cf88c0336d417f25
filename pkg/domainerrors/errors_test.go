package domainerrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "admin-gateway/pkg/domainerrors"
)

func TestCodeOfWalksWrapChain(t *testing.T) {
	inner := dErrors.New(dErrors.CodeSessionExpired, "session expired")
	outer := fmt.Errorf("fetching menus: %w", inner)

	assert.Equal(t, dErrors.CodeSessionExpired, dErrors.CodeOf(outer))
	assert.True(t, dErrors.HasCode(outer, dErrors.CodeSessionExpired))
}

func TestCodeOfUnclassified(t *testing.T) {
	assert.Equal(t, dErrors.CodeInternal, dErrors.CodeOf(errors.New("boom")))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := dErrors.Wrap(cause, dErrors.CodeUnavailable, "upstream unreachable")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, dErrors.CodeUnavailable, dErrors.CodeOf(err))
	assert.Equal(t, "upstream unreachable", dErrors.MessageOf(err))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[dErrors.Code]int{
		dErrors.CodeInvalidInput:   http.StatusBadRequest,
		dErrors.CodeUnauthorized:   http.StatusUnauthorized,
		dErrors.CodeSessionExpired: http.StatusUnauthorized,
		dErrors.CodeForbidden:      http.StatusForbidden,
		dErrors.CodeNotFound:       http.StatusNotFound,
		dErrors.CodeRateLimited:    http.StatusTooManyRequests,
		dErrors.CodeUpstream:       http.StatusBadGateway,
		dErrors.CodeSchema:         http.StatusBadGateway,
		dErrors.CodeUnavailable:    http.StatusServiceUnavailable,
		dErrors.CodeInternal:       http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, dErrors.ToHTTPStatus(code), "code %s", code)
	}
}
