package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "kamba-santa-backend/internal/common/errors"
	"kamba-santa-backend/internal/common/logger"
	"kamba-santa-backend/internal/features/user/models"
	"kamba-santa-backend/internal/features/user/repository"
	"kamba-santa-backend/internal/platform/firebase"
	"kamba-santa-backend/internal/utils/random"
)

const (
	defaultName     = "Kamba Novo"
	botEmail        = "bot@kamba.ao"
	avatarURLFormat = "https://api.dicebear.com/7.x/avataaars/svg?seed=%s"
)

var botNames = []string{"Matondo", "Nzinga", "Kiluanji", "Jandira", "Tchizé", "Cleyton"}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) EnsureUser(ctx context.Context, identity *firebase.Identity) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, identity.UID)
	if err == nil {
		return user, nil
	}
	if err != repository.ErrUserNotFound {
		return nil, apperrors.NewStoreError("get user", err)
	}

	name := identity.Name
	if name == "" {
		name = defaultName
	}
	avatar := identity.Avatar
	if avatar == "" {
		avatar = fmt.Sprintf(avatarURLFormat, identity.UID)
	}

	now := time.Now()
	user = &models.User{
		ID:        identity.UID,
		Name:      name,
		Email:     strings.ToLower(identity.Email),
		Avatar:    avatar,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, apperrors.NewStoreError("save user", err)
	}

	logger.Debug().Str("user_id", user.ID).Msg("Created user profile")
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err == repository.ErrUserNotFound {
		return nil, apperrors.NewUserNotFoundError(userID)
	}
	if err != nil {
		return nil, apperrors.NewStoreError("get user", err)
	}
	return user, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err == repository.ErrUserNotFound {
		return nil, apperrors.New(apperrors.ErrCodeUserNotFound, "No registered user with that email").
			WithDetail("email", strings.ToLower(email))
	}
	if err != nil {
		return nil, apperrors.NewStoreError("get user by email", err)
	}
	return user, nil
}

func (s *userService) GetByIDs(ctx context.Context, userIDs []string) ([]*models.User, error) {
	users, err := s.repo.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, apperrors.NewStoreError("get users", err)
	}
	return users, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, update *models.ProfileUpdate) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err == repository.ErrUserNotFound {
		return nil, apperrors.NewUserNotFoundError(userID)
	}
	if err != nil {
		return nil, apperrors.NewStoreError("get user", err)
	}

	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Avatar != nil {
		user.Avatar = *update.Avatar
	}
	if update.Phone != nil {
		user.Phone = *update.Phone
	}
	if update.Address != nil {
		user.Address = *update.Address
	}
	if update.ClothingSize != nil {
		user.ClothingSize = update.ClothingSize
	}
	if update.GiftPreferences != nil {
		user.GiftPreferences = *update.GiftPreferences
	}
	if update.Dislikes != nil {
		user.Dislikes = *update.Dislikes
	}
	if update.CustomMessage != nil {
		user.CustomMessage = *update.CustomMessage
	}
	user.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, apperrors.NewStoreError("update user", err)
	}

	return user, nil
}

func (s *userService) CreateBot(ctx context.Context) (*models.User, error) {
	idx, err := random.Intn(len(botNames))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to pick bot name")
	}
	name := botNames[idx] + " Bot"

	now := time.Now()
	bot := &models.User{
		ID:        "bot_" + uuid.New().String(),
		Name:      name,
		Email:     botEmail,
		Avatar:    fmt.Sprintf(avatarURLFormat, name),
		IsBot:     true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Save(ctx, bot); err != nil {
		return nil, apperrors.NewStoreError("save bot user", err)
	}

	logger.Debug().Str("user_id", bot.ID).Msg("Created bot participant")
	return bot, nil
}
