package service

import (
	"context"

	"kamba-santa-backend/internal/features/user/models"
	"kamba-santa-backend/internal/platform/firebase"
)

// UserService manages user profiles.
type UserService interface {
	// EnsureUser upserts the user document for a freshly authenticated
	// identity and returns the stored profile.
	EnsureUser(ctx context.Context, identity *firebase.Identity) (*models.User, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, userIDs []string) ([]*models.User, error)
	UpdateProfile(ctx context.Context, userID string, update *models.ProfileUpdate) (*models.User, error)
	// CreateBot registers a synthetic participant used to fill small groups.
	CreateBot(ctx context.Context) (*models.User, error)
}
