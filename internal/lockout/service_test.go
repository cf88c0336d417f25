package lockout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "admin-gateway/pkg/domainerrors"
)

func newTestService(t *testing.T) (*Service, *time.Time) {
	t.Helper()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemory()
	store.now = func() time.Time { return now }
	svc := NewService(store, DefaultConfig(), WithClock(func() time.Time { return now }))
	return svc, &now
}

func TestCheckAllowsUnknownIdentifier(t *testing.T) {
	svc, _ := newTestService(t)
	assert.NoError(t, svc.Check(context.Background(), "alice", "10.0.0.1"))
}

func TestLockAfterMaxAttempts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, svc.RecordFailure(ctx, "alice", "10.0.0.1"))
		assert.NoError(t, svc.Check(ctx, "alice", "10.0.0.1"), "attempt %d should still be allowed", i+1)
	}
	require.NoError(t, svc.RecordFailure(ctx, "alice", "10.0.0.1"))

	err := svc.Check(ctx, "alice", "10.0.0.1")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeRateLimited))
}

func TestLockExpires(t *testing.T) {
	svc, now := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.RecordFailure(ctx, "alice", "10.0.0.1"))
	}
	require.Error(t, svc.Check(ctx, "alice", "10.0.0.1"))

	*now = now.Add(16 * time.Minute)
	assert.NoError(t, svc.Check(ctx, "alice", "10.0.0.1"))
}

func TestWindowExpiryResetsCount(t *testing.T) {
	svc, now := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, svc.RecordFailure(ctx, "alice", "10.0.0.1"))
	}
	*now = now.Add(16 * time.Minute)

	// The window lapsed, so this failure starts a fresh count instead of
	// triggering the lock.
	require.NoError(t, svc.RecordFailure(ctx, "alice", "10.0.0.1"))
	assert.NoError(t, svc.Check(ctx, "alice", "10.0.0.1"))
}

func TestClearForgetsHistory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.RecordFailure(ctx, "alice", "10.0.0.1"))
	}
	require.Error(t, svc.Check(ctx, "alice", "10.0.0.1"))

	require.NoError(t, svc.Clear(ctx, "alice", "10.0.0.1"))
	assert.NoError(t, svc.Check(ctx, "alice", "10.0.0.1"))
}

func TestIdentifiersAreIndependent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.RecordFailure(ctx, "alice", "10.0.0.1"))
	}
	require.Error(t, svc.Check(ctx, "alice", "10.0.0.1"))

	// Same account from a different address, and a different account from
	// the same address, are both unaffected.
	assert.NoError(t, svc.Check(ctx, "alice", "10.0.0.2"))
	assert.NoError(t, svc.Check(ctx, "bob", "10.0.0.1"))
}

func TestKeyNeverExposesPlaintext(t *testing.T) {
	key := Key("alice@example.com", "10.0.0.1")
	assert.NotContains(t, key, "alice")
	assert.NotContains(t, key, "10.0.0.1")
	assert.Len(t, key, 32)
	assert.Equal(t, key, Key("alice@example.com", "10.0.0.1"))
	assert.NotEqual(t, key, Key("alice@example.com", "10.0.0.2"))
}
