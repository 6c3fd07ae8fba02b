package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "kamba-santa-backend/internal/common/errors"
	"kamba-santa-backend/internal/features/group/models"
	grouprepo "kamba-santa-backend/internal/features/group/repository"
	groupredis "kamba-santa-backend/internal/features/group/repository/redis"
	"kamba-santa-backend/internal/features/group/service"
	userredis "kamba-santa-backend/internal/features/user/repository/redis"
	userservice "kamba-santa-backend/internal/features/user/service"
	"kamba-santa-backend/internal/platform/firebase"
	"kamba-santa-backend/internal/realtime"
)

// recordingNotifier captures system messages instead of writing a chat feed.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) SendSystemMessage(_ context.Context, _ string, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
	return nil
}

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

type testEnv struct {
	groups   service.GroupService
	users    userservice.UserService
	repo     grouprepo.GroupRepository
	notifier *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	userRepo := userredis.NewRedisUserRepository(client)
	users := userservice.NewUserService(userRepo)

	repo := groupredis.NewRedisGroupRepository(client)
	notifier := &recordingNotifier{}
	groups := service.NewGroupService(repo, users, notifier, realtime.NewHub(client))

	return &testEnv{groups: groups, users: users, repo: repo, notifier: notifier}
}

func (e *testEnv) seedUser(t *testing.T, uid, name, email string) {
	t.Helper()
	_, err := e.users.EnsureUser(context.Background(), &firebase.Identity{
		UID:   uid,
		Name:  name,
		Email: email,
	})
	require.NoError(t, err)
}

func TestCreateGroupDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	group, err := env.groups.Create(ctx, "admin", &models.GroupCreate{})
	require.NoError(t, err)

	assert.NotEmpty(t, group.ID)
	assert.NotEmpty(t, group.Name)
	assert.Equal(t, "admin", group.AdminID)
	assert.Equal(t, models.GroupStatusRecruiting, group.Status)
	assert.Equal(t, models.DefaultMaxMembers, group.MaxMembers)
	assert.Equal(t, models.DefaultBudget, group.Budget)
	assert.Equal(t, []string{"admin"}, group.Members)
	assert.Empty(t, group.PendingMembers)

	stored, err := env.groups.GetByID(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, group.Name, stored.Name)
	assert.Equal(t, []string{"admin"}, stored.Members)
}

func TestGetByIDNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.groups.GetByID(context.Background(), "missing")
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeGroupNotFound, appErr.Code)
}

func TestJoinIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	group, err := env.groups.Create(ctx, "admin", &models.GroupCreate{Name: "Natal"})
	require.NoError(t, err)

	first, err := env.groups.Join(ctx, group.ID, "alice")
	require.NoError(t, err)
	assert.True(t, first.Accepted)
	assert.False(t, first.Pending)

	again, err := env.groups.Join(ctx, group.ID, "alice")
	require.NoError(t, err)
	assert.True(t, again.Accepted)
	assert.Equal(t, "Já és membro.", again.Message)

	stored, err := env.groups.GetByID(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "alice"}, stored.Members)
}

func TestJoinWithApprovalKeepsSetsDisjoint(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	group, err := env.groups.Create(ctx, "admin", &models.GroupCreate{Name: "Natal"})
	require.NoError(t, err)

	approval := true
	_, err = env.groups.UpdateSettings(ctx, "admin", group.ID, &models.GroupSettingsUpdate{RequiresApproval: &approval})
	require.NoError(t, err)

	result, err := env.groups.Join(ctx, group.ID, "alice")
	require.NoError(t, err)
	assert.True(t, result.Pending)

	// Joining again while pending does not duplicate the request.
	result, err = env.groups.Join(ctx, group.ID, "alice")
	require.NoError(t, err)
	assert.True(t, result.Pending)

	stored, err := env.groups.GetByID(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin"}, stored.Members)
	assert.Equal(t, []string{"alice"}, stored.PendingMembers)

	require.NoError(t, env.groups.Approve(ctx, "admin", group.ID, "alice"))

	stored, err = env.groups.GetByID(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "alice"}, stored.Members)
	assert.Empty(t, stored.PendingMembers)
}

func TestRejectRemovesPendingOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	group, err := env.groups.Create(ctx, "admin", &models.GroupCreate{Name: "Natal"})
	require.NoError(t, err)

	approval := true
	_, err = env.groups.UpdateSettings(ctx, "admin", group.ID, &models.GroupSettingsUpdate{RequiresApproval: &approval})
	require.NoError(t, err)

	_, err = env.groups.Join(ctx, group.ID, "alice")
	require.NoError(t, err)

	require.NoError(t, env.groups.Reject(ctx, "admin", group.ID, "alice"))

	stored, err := env.groups.GetByID(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin"}, stored.Members)
	assert.Empty(t, stored.PendingMembers)
}

func TestJoinFullGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	group, err := env.groups.Create(ctx, "admin", &models.GroupCreate{Name: "Natal"})
	require.NoError(t, err)

	max := 2
	_, err = env.groups.UpdateSettings(ctx, "admin", group.ID, &models.GroupSettingsUpdate{MaxMembers: &max})
	require.NoError(t, err)

	_, err = env.groups.Join(ctx, group.ID, "alice")
	require.NoError(t, err)

	_, err = env.groups.Join(ctx, group.ID, "bruno")
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeGroupFull, appErr.Code)

	// Existing members still get the idempotent success.
	result, err := env.groups.Join(ctx, group.ID, "alice")
	require.NoError(t, err)
	assert.True(t, result.Accepted)
}

func TestUpdateSettingsRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	group, err := env.groups.Create(ctx, "admin", &models.GroupCreate{Name: "Natal"})
	require.NoError(t, err)

	name := "Hacked"
	_, err = env.groups.UpdateSettings(ctx, "intruder", group.ID, &models.GroupSettingsUpdate{Name: &name})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeNotAdmin, appErr.Code)

	stored, err := env.groups.GetByID(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, "Natal", stored.Name)
}

func TestUpdateSettingsPatchesOnlyGivenFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	group, err := env.groups.Create(ctx, "admin", &models.GroupCreate{Name: "Natal", IsPublic: true})
	require.NoError(t, err)

	budget := "25.000 AOA"
	updated, err := env.groups.UpdateSettings(ctx, "admin", group.ID, &models.GroupSettingsUpdate{Budget: &budget})
	require.NoError(t, err)

	assert.Equal(t, "25.000 AOA", updated.Budget)
	assert.Equal(t, "Natal", updated.Name)
	assert.True(t, updated.IsPublic)
}

func TestPublicListingFollowsVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	group, err := env.groups.Create(ctx, "admin", &models.GroupCreate{Name: "Natal", IsPublic: true})
	require.NoError(t, err)

	listed, err := env.groups.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, group.ID, listed[0].ID)

	private := false
	_, err = env.groups.UpdateSettings(ctx, "admin", group.ID, &models.GroupSettingsUpdate{IsPublic: &private})
	require.NoError(t, err)

	listed, err = env.groups.ListPublic(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestListMine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.groups.Create(ctx, "admin", &models.GroupCreate{Name: "Natal"})
	require.NoError(t, err)
	second, err := env.groups.Create(ctx, "other", &models.GroupCreate{Name: "Amigos"})
	require.NoError(t, err)

	_, err = env.groups.Join(ctx, second.ID, "admin")
	require.NoError(t, err)

	mine, err := env.groups.ListMine(ctx, "admin")
	require.NoError(t, err)
	require.Len(t, mine, 2)

	ids := []string{mine[0].ID, mine[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
}

func TestAddMemberByEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "alice", "Alice", "Alice@Example.com")

	group, err := env.groups.Create(ctx, "admin", &models.GroupCreate{Name: "Natal"})
	require.NoError(t, err)

	result, err := env.groups.AddMemberByEmail(ctx, "admin", group.ID, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.AddByEmailAdded, result.Status)
	assert.Equal(t, "alice", result.UserID)
	assert.Equal(t, "Alice", result.UserName)

	stored, err := env.groups.GetByID(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "alice"}, stored.Members)

	unknown, err := env.groups.AddMemberByEmail(ctx, "admin", group.ID, "nobody@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.AddByEmailInvited, unknown.Status)
}

func TestAddMemberByEmailClearsPendingRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "alice", "Alice", "alice@example.com")

	group, err := env.groups.Create(ctx, "admin", &models.GroupCreate{Name: "Natal"})
	require.NoError(t, err)

	approval := true
	_, err = env.groups.UpdateSettings(ctx, "admin", group.ID, &models.GroupSettingsUpdate{RequiresApproval: &approval})
	require.NoError(t, err)

	joined, err := env.groups.Join(ctx, group.ID, "alice")
	require.NoError(t, err)
	require.True(t, joined.Pending)

	// The direct add supersedes the waiting request.
	result, err := env.groups.AddMemberByEmail(ctx, "admin", group.ID, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.AddByEmailAdded, result.Status)

	stored, err := env.groups.GetByID(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "alice"}, stored.Members)
	assert.Empty(t, stored.PendingMembers)
}

func TestAddBot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	group, err := env.groups.Create(ctx, "admin", &models.GroupCreate{Name: "Natal"})
	require.NoError(t, err)

	bot, err := env.groups.AddBot(ctx, "admin", group.ID)
	require.NoError(t, err)
	assert.True(t, bot.IsBot)
	assert.Contains(t, bot.Name, "Bot")

	stored, err := env.groups.GetByID(ctx, group.ID)
	require.NoError(t, err)
	assert.Contains(t, stored.Members, bot.ID)

	_, err = env.groups.AddBot(ctx, "alice", group.ID)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeNotAdmin, appErr.Code)
}

func TestSystemMessagesEmitted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	group, err := env.groups.Create(ctx, "admin", &models.GroupCreate{Name: "Natal"})
	require.NoError(t, err)

	_, err = env.groups.Join(ctx, group.ID, "alice")
	require.NoError(t, err)

	assert.Contains(t, env.notifier.all(), "Novo kamba entrou no grupo!")
}
