package invitation

import (
	"context"
	"testing"
	"time"

	"mentor_sync/internal/config"
	"mentor_sync/internal/dao/local"
	"mentor_sync/internal/service/syncer"
	"mentor_sync/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueDeliverInbox(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)
	svc := NewService(local.NewMemoryStore(), nil, config.RequestConfig{InvitationTTLHours: 24},
		syncer.WithClock(func() time.Time { return now }))

	inv, err := svc.Issue(ctx, "mentor-1")
	require.NoError(t, err)
	assert.Len(t, inv.Code, 8)
	assert.Equal(t, now.Add(24*time.Hour), inv.ExpiresAt)

	require.NoError(t, svc.Deliver(ctx, "mentor-1", inv.Code, "mentor-1"))

	entries, err := svc.Inbox(ctx, "mentor-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, inv.Code, entries[0].Code)

	found, ok, err := svc.Lookup(ctx, inv.Code)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, inv.ID, found.ID)
}

func TestLookupIgnoresExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	svc := NewService(local.NewMemoryStore(), nil, config.RequestConfig{InvitationTTLHours: 1}, syncer.WithClock(clock))

	inv, err := svc.Issue(ctx, "mentor-1")
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, ok, err := svc.Lookup(ctx, inv.Code)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIssueValidatesInput(t *testing.T) {
	svc := NewService(local.NewMemoryStore(), nil, config.RequestConfig{})
	_, err := svc.Issue(context.Background(), "")
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
	assert.Error(t, svc.Deliver(context.Background(), "", "CODE", "x"))
}

func TestIssuePropagatesLocalFault(t *testing.T) {
	faulty := &local.FaultyStore{Store: local.NewMemoryStore(), FailSet: true}
	svc := NewService(faulty, nil, config.RequestConfig{})
	_, err := svc.Issue(context.Background(), "mentor-1")
	assert.True(t, errorx.IsLocalStorageFault(err))
}
