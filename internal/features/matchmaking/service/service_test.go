package service_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	groupmodels "kamba-santa-backend/internal/features/group/models"
	groupredis "kamba-santa-backend/internal/features/group/repository/redis"
	groupservice "kamba-santa-backend/internal/features/group/service"
	matchredis "kamba-santa-backend/internal/features/matchmaking/repository/redis"
	"kamba-santa-backend/internal/features/matchmaking/service"
	userredis "kamba-santa-backend/internal/features/user/repository/redis"
	userservice "kamba-santa-backend/internal/features/user/service"
	"kamba-santa-backend/internal/realtime"
)

type noopNotifier struct{}

func (noopNotifier) SendSystemMessage(context.Context, string, string) error { return nil }

func newTestService(t *testing.T) service.MatchmakingService {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	users := userservice.NewUserService(userredis.NewRedisUserRepository(client))
	groups := groupservice.NewGroupService(
		groupredis.NewRedisGroupRepository(client),
		users,
		noopNotifier{},
		realtime.NewHub(client),
	)
	return service.NewMatchmakingService(matchredis.NewRedisQueueRepository(client), groups)
}

func TestJoinQueueBatches(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for i, uid := range []string{"alice", "bruno", "carla"} {
		result, err := svc.JoinQueue(ctx, uid)
		require.NoError(t, err)
		assert.True(t, result.Queued)
		assert.Equal(t, i+1, result.Position)
		assert.Nil(t, result.Group)
	}

	result, err := svc.JoinQueue(ctx, "dario")
	require.NoError(t, err)

	assert.False(t, result.Queued)
	require.NotNil(t, result.Group)
	assert.Equal(t, "alice", result.Group.AdminID)
	assert.True(t, result.Group.IsPublic)
	assert.Equal(t, groupmodels.GroupStatusDrawn, result.Group.Status)
	assert.ElementsMatch(t, []string{"alice", "bruno", "carla", "dario"}, result.Group.Members)

	// The batch was consumed; the next joiner starts a fresh queue.
	next, err := svc.JoinQueue(ctx, "elsa")
	require.NoError(t, err)
	assert.True(t, next.Queued)
	assert.Equal(t, 1, next.Position)
}

func TestJoinQueueKeepsOriginalEntry(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.JoinQueue(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Position)

	_, err = svc.JoinQueue(ctx, "bruno")
	require.NoError(t, err)

	// Re-joining keeps alice at the head instead of appending a duplicate.
	again, err := svc.JoinQueue(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, again.Queued)
	assert.Equal(t, 1, again.Position)
}

func TestLeaveQueue(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.JoinQueue(ctx, "alice")
	require.NoError(t, err)
	_, err = svc.JoinQueue(ctx, "bruno")
	require.NoError(t, err)

	require.NoError(t, svc.LeaveQueue(ctx, "alice"))

	result, err := svc.JoinQueue(ctx, "bruno")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Position)

	// Leaving while not queued is a no-op.
	require.NoError(t, svc.LeaveQueue(ctx, "ghost"))
}

func TestMatchedUsersCanQueueAgain(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	users := []string{"alice", "bruno", "carla", "dario"}
	for _, uid := range users[:3] {
		_, err := svc.JoinQueue(ctx, uid)
		require.NoError(t, err)
	}
	result, err := svc.JoinQueue(ctx, users[3])
	require.NoError(t, err)
	require.NotNil(t, result.Group)

	// A fresh entry after being matched.
	again, err := svc.JoinQueue(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, again.Queued)
	assert.Equal(t, 1, again.Position)
}
