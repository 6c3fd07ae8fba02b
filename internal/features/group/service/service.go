package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "kamba-santa-backend/internal/common/errors"
	"kamba-santa-backend/internal/common/logger"
	"kamba-santa-backend/internal/features/group/models"
	"kamba-santa-backend/internal/features/group/repository"
	usermodels "kamba-santa-backend/internal/features/user/models"
	userservice "kamba-santa-backend/internal/features/user/service"
	"kamba-santa-backend/internal/realtime"
	"kamba-santa-backend/internal/utils/random"
)

type groupService struct {
	repo     repository.GroupRepository
	users    userservice.UserService
	notifier Notifier
	hub      *realtime.Hub
}

func NewGroupService(
	repo repository.GroupRepository,
	users userservice.UserService,
	notifier Notifier,
	hub *realtime.Hub,
) GroupService {
	return &groupService{
		repo:     repo,
		users:    users,
		notifier: notifier,
		hub:      hub,
	}
}

// requireAdmin is the authorization guard for admin-only operations. The UI
// hides the buttons, but the check lives here.
func requireAdmin(group *models.Group, callerID string) error {
	if group.AdminID != callerID {
		return apperrors.NewNotAdminError(group.ID)
	}
	return nil
}

func (s *groupService) Create(ctx context.Context, adminID string, input *models.GroupCreate) (*models.Group, error) {
	name := input.Name
	if name == "" {
		var err error
		name, err = randomGroupName()
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to generate group name")
		}
	}

	now := time.Now()
	group := &models.Group{
		ID:               uuid.New().String(),
		Name:             name,
		CustomSlug:       input.CustomSlug,
		GroupImage:       fmt.Sprintf("https://picsum.photos/seed/%s/200", name),
		AdminID:          adminID,
		IsPublic:         input.IsPublic,
		RequiresApproval: false,
		MaxMembers:       models.DefaultMaxMembers,
		Budget:           models.DefaultBudget,
		Status:           models.GroupStatusRecruiting,
		CreatedAt:        now,
		UpdatedAt:        now,
		Members:          []string{adminID},
		PendingMembers:   []string{},
	}

	if err := s.repo.Create(ctx, group); err != nil {
		return nil, apperrors.NewStoreError("create group", err)
	}

	s.publishGroupChanged(ctx, group, adminID)
	logger.Debug().Str("group_id", group.ID).Str("admin_id", adminID).Msg("Group created")
	return group, nil
}

func randomGroupName() (string, error) {
	idx, err := random.Intn(len(models.GroupNames))
	if err != nil {
		return "", err
	}
	suffix, err := random.Intn(100)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s #%d", models.GroupNames[idx], suffix), nil
}

func (s *groupService) GetByID(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := s.repo.GetByID(ctx, groupID)
	if err == repository.ErrGroupNotFound {
		return nil, apperrors.NewGroupNotFoundError(groupID)
	}
	if err != nil {
		return nil, apperrors.NewStoreError("get group", err)
	}
	return group, nil
}

func (s *groupService) ListMine(ctx context.Context, userID string) ([]*models.Group, error) {
	groups, err := s.repo.ListByMember(ctx, userID)
	if err != nil {
		return nil, apperrors.NewStoreError("list member groups", err)
	}
	return groups, nil
}

const publicListingLimit = 20

func (s *groupService) ListPublic(ctx context.Context) ([]*models.Group, error) {
	groups, err := s.repo.ListPublic(ctx, publicListingLimit)
	if err != nil {
		return nil, apperrors.NewStoreError("list public groups", err)
	}
	return groups, nil
}

func (s *groupService) UpdateSettings(ctx context.Context, callerID, groupID string, update *models.GroupSettingsUpdate) (*models.Group, error) {
	group, err := s.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(group, callerID); err != nil {
		return nil, err
	}

	if update.Name != nil {
		group.Name = *update.Name
	}
	if update.CustomSlug != nil {
		group.CustomSlug = *update.CustomSlug
	}
	if update.Description != nil {
		group.Description = *update.Description
	}
	if update.GroupImage != nil {
		group.GroupImage = *update.GroupImage
	}
	if update.IsPublic != nil {
		group.IsPublic = *update.IsPublic
	}
	if update.RequiresApproval != nil {
		group.RequiresApproval = *update.RequiresApproval
	}
	if update.Budget != nil {
		group.Budget = *update.Budget
	}
	if update.MaxMembers != nil {
		group.MaxMembers = *update.MaxMembers
	}
	group.UpdatedAt = time.Now()

	if err := s.repo.UpdateDoc(ctx, group); err != nil {
		return nil, apperrors.NewStoreError("update group", err)
	}

	s.publishGroupChanged(ctx, group, "")
	return group, nil
}

func (s *groupService) Join(ctx context.Context, groupID, userID string) (*models.JoinResult, error) {
	group, err := s.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	isMember, err := s.repo.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, apperrors.NewStoreError("check membership", err)
	}
	if isMember {
		return &models.JoinResult{Accepted: true, Message: "Já és membro."}, nil
	}

	isPending, err := s.repo.IsPending(ctx, groupID, userID)
	if err != nil {
		return nil, apperrors.NewStoreError("check pending", err)
	}
	if isPending {
		return &models.JoinResult{Accepted: true, Pending: true, Message: "Aguardando aprovação."}, nil
	}

	count, err := s.repo.MemberCount(ctx, groupID)
	if err != nil {
		return nil, apperrors.NewStoreError("count members", err)
	}
	if group.MaxMembers > 0 && count >= int64(group.MaxMembers) {
		return nil, apperrors.New(apperrors.ErrCodeGroupFull, "O grupo está cheio.").
			WithDetail("group_id", groupID).
			WithDetail("max_members", group.MaxMembers)
	}

	if group.RequiresApproval {
		if err := s.repo.AddPending(ctx, groupID, userID); err != nil {
			return nil, apperrors.NewStoreError("add pending member", err)
		}
		s.publishGroupChanged(ctx, group, "")
		return &models.JoinResult{Accepted: true, Pending: true, Message: "Solicitação enviada! Aguarda o Admin aceitar."}, nil
	}

	// Membership commits before the notification; a failed notification must
	// not undo the join.
	if err := s.repo.AddMember(ctx, groupID, userID); err != nil {
		return nil, apperrors.NewStoreError("add member", err)
	}
	s.notifySystem(ctx, groupID, "Novo kamba entrou no grupo!")
	s.publishGroupChanged(ctx, group, userID)

	return &models.JoinResult{Accepted: true, Message: "Entraste no grupo!"}, nil
}

func (s *groupService) Approve(ctx context.Context, callerID, groupID, userID string) error {
	group, err := s.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if err := requireAdmin(group, callerID); err != nil {
		return err
	}

	// No-op-safe: approving a user who is not pending just ensures
	// membership.
	if err := s.repo.ApproveMember(ctx, groupID, userID); err != nil {
		return apperrors.NewStoreError("approve member", err)
	}
	s.notifySystem(ctx, groupID, "Novo kamba aprovado!")
	s.publishGroupChanged(ctx, group, userID)

	return nil
}

func (s *groupService) Reject(ctx context.Context, callerID, groupID, userID string) error {
	group, err := s.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if err := requireAdmin(group, callerID); err != nil {
		return err
	}

	if err := s.repo.RemovePending(ctx, groupID, userID); err != nil {
		return apperrors.NewStoreError("reject member", err)
	}
	s.publishGroupChanged(ctx, group, "")

	return nil
}

func (s *groupService) AddMemberByEmail(ctx context.Context, callerID, groupID, email string) (*models.AddByEmailResult, error) {
	group, err := s.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(group, callerID); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.ErrCodeUserNotFound {
			// Unknown email: the client falls back to sending an invite.
			return &models.AddByEmailResult{Status: models.AddByEmailInvited}, nil
		}
		return nil, err
	}

	// Direct add bypasses approval and clears any pending request the user
	// already had.
	if err := s.repo.ApproveMember(ctx, groupID, user.ID); err != nil {
		return nil, apperrors.NewStoreError("add member", err)
	}
	s.notifySystem(ctx, groupID, fmt.Sprintf("%s foi adicionado pelo Admin!", user.Name))
	s.publishGroupChanged(ctx, group, user.ID)

	return &models.AddByEmailResult{
		Status:   models.AddByEmailAdded,
		UserID:   user.ID,
		UserName: user.Name,
	}, nil
}

func (s *groupService) AddBot(ctx context.Context, callerID, groupID string) (*usermodels.User, error) {
	group, err := s.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(group, callerID); err != nil {
		return nil, err
	}

	bot, err := s.users.CreateBot(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.repo.AddMember(ctx, groupID, bot.ID); err != nil {
		return nil, apperrors.NewStoreError("add bot member", err)
	}
	s.notifySystem(ctx, groupID, fmt.Sprintf("🤖 %s entrou (Bot)", bot.Name))
	s.publishGroupChanged(ctx, group, bot.ID)

	return bot, nil
}

func (s *groupService) notifySystem(ctx context.Context, groupID, text string) {
	if err := s.notifier.SendSystemMessage(ctx, groupID, text); err != nil {
		logger.Warn().Err(err).Str("group_id", groupID).Msg("Failed to emit system message")
	}
}

// publishGroupChanged fans a change notification out to the group feed, the
// public listing feed when relevant, and the affected user's group-list feed.
func (s *groupService) publishGroupChanged(ctx context.Context, group *models.Group, affectedUserID string) {
	s.hub.Publish(ctx, realtime.GroupChannel(group.ID), group.ID)
	if group.IsPublic {
		s.hub.Publish(ctx, realtime.PublicGroupsChannel, group.ID)
	}
	if affectedUserID != "" {
		s.hub.Publish(ctx, realtime.MemberGroupsChannel(affectedUserID), group.ID)
	}
}
