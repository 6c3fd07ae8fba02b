package service_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "kamba-santa-backend/internal/common/errors"
	"kamba-santa-backend/internal/features/user/models"
	userredis "kamba-santa-backend/internal/features/user/repository/redis"
	"kamba-santa-backend/internal/features/user/service"
	"kamba-santa-backend/internal/platform/firebase"
)

func newTestService(t *testing.T) service.UserService {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return service.NewUserService(userredis.NewRedisUserRepository(client))
}

func TestEnsureUserCreatesOnFirstLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.EnsureUser(ctx, &firebase.Identity{
		UID:   "u1",
		Name:  "Alice",
		Email: "Alice@Example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEmpty(t, user.Avatar)
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	identity := &firebase.Identity{UID: "u1", Name: "Alice", Email: "alice@example.com"}
	first, err := svc.EnsureUser(ctx, identity)
	require.NoError(t, err)

	// A later login with changed claims does not clobber the stored profile.
	identity.Name = "Alice Renamed"
	second, err := svc.EnsureUser(ctx, identity)
	require.NoError(t, err)

	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, first.CreatedAt.Unix(), second.CreatedAt.Unix())
}

func TestEnsureUserDefaults(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.EnsureUser(context.Background(), &firebase.Identity{UID: "u1"})
	require.NoError(t, err)

	assert.Equal(t, "Kamba Novo", user.Name)
	assert.Contains(t, user.Avatar, "dicebear.com")
}

func TestUpdateProfilePatchesOnlyGivenFields(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.EnsureUser(ctx, &firebase.Identity{UID: "u1", Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)

	phone := "+244 900 000 000"
	prefs := "livros, café"
	updated, err := svc.UpdateProfile(ctx, "u1", &models.ProfileUpdate{
		Phone:           &phone,
		GiftPreferences: &prefs,
		ClothingSize:    &models.ClothingSize{Shirt: "M", Shoes: "42"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Alice", updated.Name)
	assert.Equal(t, phone, updated.Phone)
	assert.Equal(t, prefs, updated.GiftPreferences)
	require.NotNil(t, updated.ClothingSize)
	assert.Equal(t, "M", updated.ClothingSize.Shirt)
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	svc := newTestService(t)

	name := "Ghost"
	_, err := svc.UpdateProfile(context.Background(), "missing", &models.ProfileUpdate{Name: &name})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeUserNotFound, appErr.Code)
}

func TestGetByEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.EnsureUser(ctx, &firebase.Identity{UID: "u1", Name: "Alice", Email: "Alice@Example.com"})
	require.NoError(t, err)

	user, err := svc.GetByEmail(ctx, "ALICE@example.COM")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	_, err = svc.GetByEmail(ctx, "nobody@example.com")
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeUserNotFound, appErr.Code)
}

func TestCreateBot(t *testing.T) {
	svc := newTestService(t)

	bot, err := svc.CreateBot(context.Background())
	require.NoError(t, err)

	assert.True(t, bot.IsBot)
	assert.Contains(t, bot.Name, " Bot")
	assert.Equal(t, "bot@kamba.ao", bot.Email)

	fetched, err := svc.GetByID(context.Background(), bot.ID)
	require.NoError(t, err)
	assert.Equal(t, bot.Name, fetched.Name)
}

func TestGetByIDsSkipsMissing(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.EnsureUser(ctx, &firebase.Identity{UID: "u1", Name: "Alice"})
	require.NoError(t, err)
	_, err = svc.EnsureUser(ctx, &firebase.Identity{UID: "u2", Name: "Bruno"})
	require.NoError(t, err)

	users, err := svc.GetByIDs(ctx, []string{"u1", "missing", "u2"})
	require.NoError(t, err)
	require.Len(t, users, 2)
}
