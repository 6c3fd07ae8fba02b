package repository

import (
	"context"
	"errors"

	"kamba-santa-backend/internal/features/user/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository persists user documents in the store.
type UserRepository interface {
	Save(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail resolves a user through the normalized-email index.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
}
