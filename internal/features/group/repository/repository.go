package repository

import (
	"context"
	"errors"

	"kamba-santa-backend/internal/features/group/models"
)

var ErrGroupNotFound = errors.New("group not found")

// GroupRepository persists group documents, their membership sets and draw
// results. Membership mutations are set-semantic (adding an existing element
// is a no-op) and the dual-field operations (approve, add-with-pending-
// cleanup, draw commit) are atomic in the store.
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	// GetByID returns the group with Members, PendingMembers and DrawResult
	// populated.
	GetByID(ctx context.Context, id string) (*models.Group, error)
	// UpdateDoc rewrites the group's core document (settings and status);
	// membership sets and draw result are untouched.
	UpdateDoc(ctx context.Context, group *models.Group) error

	AddMember(ctx context.Context, groupID, userID string) error
	AddPending(ctx context.Context, groupID, userID string) error
	RemovePending(ctx context.Context, groupID, userID string) error
	// ApproveMember atomically moves userID from pending to members.
	ApproveMember(ctx context.Context, groupID, userID string) error

	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	IsPending(ctx context.Context, groupID, userID string) (bool, error)
	MemberCount(ctx context.Context, groupID string) (int64, error)
	Members(ctx context.Context, groupID string) ([]string, error)

	// CommitDraw atomically replaces the draw result and sets the group's
	// status to drawn.
	CommitDraw(ctx context.Context, groupID string, result map[string]string) error

	ListByMember(ctx context.Context, userID string) ([]*models.Group, error)
	ListPublic(ctx context.Context, limit int) ([]*models.Group, error)
}
