package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "kamba-santa-backend/internal/common/errors"
	"kamba-santa-backend/internal/features/group/models"
)

// assertGiftRing checks the structural invariants of a draw result: every
// member gives exactly once, receives exactly once, never draws themselves,
// and the whole group forms one closed ring rather than several smaller
// cycles.
func assertGiftRing(t *testing.T, members []string, result map[string]string) {
	t.Helper()

	require.Len(t, result, len(members))

	received := make(map[string]int)
	for _, giver := range members {
		recipient, ok := result[giver]
		require.True(t, ok, "member %s has no assignment", giver)
		assert.NotEqual(t, giver, recipient, "member %s drew themselves", giver)
		assert.Contains(t, members, recipient)
		received[recipient]++
	}
	for _, member := range members {
		assert.Equal(t, 1, received[member], "member %s should receive exactly once", member)
	}

	// Walking giver-to-recipient from any member must visit everyone before
	// coming back; a map like {a→b, b→a, c→d, d→c} is a valid derangement but
	// splits the group into separate rings.
	start := members[0]
	current := start
	for i := 0; i < len(members); i++ {
		current = result[current]
		if current == start {
			require.Equal(t, len(members)-1, i, "draw splits the group into multiple rings")
		}
	}
	assert.Equal(t, start, current, "draw chain does not close into a ring")
}

func TestRunDraw(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	group, err := env.groups.Create(ctx, "admin", &models.GroupCreate{Name: "Natal"})
	require.NoError(t, err)
	for _, uid := range []string{"alice", "bruno", "carla"} {
		_, err := env.groups.Join(ctx, group.ID, uid)
		require.NoError(t, err)
	}

	drawn, err := env.groups.RunDraw(ctx, "admin", group.ID)
	require.NoError(t, err)

	assert.Equal(t, models.GroupStatusDrawn, drawn.Status)
	assertGiftRing(t, []string{"admin", "alice", "bruno", "carla"}, drawn.DrawResult)

	stored, err := env.groups.GetByID(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GroupStatusDrawn, stored.Status)
	assert.Equal(t, drawn.DrawResult, stored.DrawResult)

	assert.Contains(t, env.notifier.all(), "O sorteio foi realizado! Vê quem te calhou 🤫")
}

func TestRunDrawRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	group, err := env.groups.Create(ctx, "admin", &models.GroupCreate{Name: "Natal"})
	require.NoError(t, err)
	for _, uid := range []string{"alice", "bruno"} {
		_, err := env.groups.Join(ctx, group.ID, uid)
		require.NoError(t, err)
	}

	_, err = env.groups.RunDraw(ctx, "alice", group.ID)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeNotAdmin, appErr.Code)
}

func TestRunDrawTooFewMembers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	group, err := env.groups.Create(ctx, "admin", &models.GroupCreate{Name: "Natal"})
	require.NoError(t, err)
	_, err = env.groups.Join(ctx, group.ID, "alice")
	require.NoError(t, err)

	_, err = env.groups.RunDraw(ctx, "admin", group.ID)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInsufficientParticipants, appErr.Code)

	// A failed draw leaves the group untouched.
	stored, err := env.groups.GetByID(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GroupStatusRecruiting, stored.Status)
	assert.Empty(t, stored.DrawResult)
}

func TestRedrawReplacesResult(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	group, err := env.groups.Create(ctx, "admin", &models.GroupCreate{Name: "Natal"})
	require.NoError(t, err)
	for _, uid := range []string{"alice", "bruno", "carla"} {
		_, err := env.groups.Join(ctx, group.ID, uid)
		require.NoError(t, err)
	}

	_, err = env.groups.RunDraw(ctx, "admin", group.ID)
	require.NoError(t, err)

	redrawn, err := env.groups.RunDraw(ctx, "admin", group.ID)
	require.NoError(t, err)

	assert.Equal(t, models.GroupStatusDrawn, redrawn.Status)
	assertGiftRing(t, []string{"admin", "alice", "bruno", "carla"}, redrawn.DrawResult)
}

func TestAssignment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	group, err := env.groups.Create(ctx, "admin", &models.GroupCreate{Name: "Natal"})
	require.NoError(t, err)
	for _, uid := range []string{"alice", "bruno"} {
		_, err := env.groups.Join(ctx, group.ID, uid)
		require.NoError(t, err)
	}

	// Before the draw there is nothing to reveal.
	_, err = env.groups.Assignment(ctx, group.ID, "alice")
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeConflict, appErr.Code)

	drawn, err := env.groups.RunDraw(ctx, "admin", group.ID)
	require.NoError(t, err)

	recipient, err := env.groups.Assignment(ctx, group.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, drawn.DrawResult["alice"], recipient)

	// Non-participants get nothing.
	_, err = env.groups.Assignment(ctx, group.ID, "stranger")
	appErr, ok = apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeForbidden, appErr.Code)
}

func TestFormMatchedGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	batch := []string{"alice", "bruno", "carla", "dario"}
	group, err := env.groups.FormMatchedGroup(ctx, batch)
	require.NoError(t, err)

	assert.Equal(t, "alice", group.AdminID)
	assert.True(t, group.IsPublic)
	assert.Equal(t, models.GroupStatusDrawn, group.Status)
	assert.ElementsMatch(t, batch, group.Members)
	assertGiftRing(t, batch, group.DrawResult)
}

func TestFormMatchedGroupTooSmall(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.groups.FormMatchedGroup(context.Background(), []string{"alice", "bruno"})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInsufficientParticipants, appErr.Code)
}
