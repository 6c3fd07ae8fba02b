package service

import (
	"context"

	"kamba-santa-backend/internal/features/group/models"
	usermodels "kamba-santa-backend/internal/features/user/models"
)

// Notifier appends a system message to a group's chat. Emission is
// best-effort: callers log failures and move on.
type Notifier interface {
	SendSystemMessage(ctx context.Context, groupID, text string) error
}

// GroupService owns the group lifecycle: creation, admission, settings and
// the gift draw.
type GroupService interface {
	Create(ctx context.Context, adminID string, input *models.GroupCreate) (*models.Group, error)
	GetByID(ctx context.Context, groupID string) (*models.Group, error)
	ListMine(ctx context.Context, userID string) ([]*models.Group, error)
	ListPublic(ctx context.Context) ([]*models.Group, error)
	UpdateSettings(ctx context.Context, callerID, groupID string, update *models.GroupSettingsUpdate) (*models.Group, error)

	Join(ctx context.Context, groupID, userID string) (*models.JoinResult, error)
	Approve(ctx context.Context, callerID, groupID, userID string) error
	Reject(ctx context.Context, callerID, groupID, userID string) error
	AddMemberByEmail(ctx context.Context, callerID, groupID, email string) (*models.AddByEmailResult, error)
	AddBot(ctx context.Context, callerID, groupID string) (*usermodels.User, error)

	RunDraw(ctx context.Context, callerID, groupID string) (*models.Group, error)
	// Assignment returns the recipient drawn for userID, once the group is
	// drawn.
	Assignment(ctx context.Context, groupID, userID string) (string, error)

	// FormMatchedGroup builds a public group from a matchmaking batch (first
	// entry becomes admin) and runs the draw immediately.
	FormMatchedGroup(ctx context.Context, memberIDs []string) (*models.Group, error)
}
