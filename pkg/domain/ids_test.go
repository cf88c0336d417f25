package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "admin-gateway/pkg/domainerrors"
)

func TestParseSessionID(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseSessionID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseSessionID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseSessionID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("round-trips a valid UUID", func(t *testing.T) {
		want := uuid.New()
		id, err := ParseSessionID(want.String())
		require.NoError(t, err)
		assert.Equal(t, SessionID(want), id)
		assert.Equal(t, want.String(), id.String())
		assert.False(t, id.IsNil())
	})
}

func TestParseOpaqueIDs(t *testing.T) {
	t.Run("accepts upstream-style ids", func(t *testing.T) {
		for _, raw := range []string{"m1", "org_42", "dep-7f3a", "9001"} {
			id, err := ParseNodeID(raw)
			require.NoError(t, err, "id %q", raw)
			assert.Equal(t, raw, id.String())
		}
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := ParseRoleID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects whitespace and control characters", func(t *testing.T) {
		for _, raw := range []string{"a b", "a\tb", "a\nb", "a\x00b"} {
			_, err := ParseUserID(raw)
			require.Error(t, err, "id %q", raw)
		}
	})

	t.Run("rejects oversized ids", func(t *testing.T) {
		_, err := ParseNodeID(strings.Repeat("x", maxOpaqueIDLen+1))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}
