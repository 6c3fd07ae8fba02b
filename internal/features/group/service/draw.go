package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "kamba-santa-backend/internal/common/errors"
	"kamba-santa-backend/internal/common/logger"
	"kamba-santa-backend/internal/features/group/models"
	"kamba-santa-backend/internal/realtime"
	"kamba-santa-backend/internal/utils/random"
)

func (s *groupService) RunDraw(ctx context.Context, callerID, groupID string) (*models.Group, error) {
	group, err := s.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(group, callerID); err != nil {
		return nil, err
	}
	return s.runDraw(ctx, group)
}

// runDraw computes and commits the assignment. The participant list is
// shuffled and closed into a single ring, so everyone gives exactly once,
// receives exactly once, and nobody draws themselves. Re-running on an
// already-drawn group replaces the previous result.
func (s *groupService) runDraw(ctx context.Context, group *models.Group) (*models.Group, error) {
	participants := make([]string, len(group.Members))
	copy(participants, group.Members)

	if len(participants) < models.MinDrawMembers {
		return nil, apperrors.New(apperrors.ErrCodeInsufficientParticipants,
			fmt.Sprintf("A draw needs at least %d members", models.MinDrawMembers)).
			WithDetail("group_id", group.ID).
			WithDetail("member_count", len(participants))
	}

	if err := random.Shuffle(participants); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to shuffle participants")
	}

	result := make(map[string]string, len(participants))
	for i, giver := range participants {
		result[giver] = participants[(i+1)%len(participants)]
	}

	if err := s.repo.CommitDraw(ctx, group.ID, result); err != nil {
		return nil, apperrors.NewStoreError("commit draw", err)
	}

	group.Status = models.GroupStatusDrawn
	group.DrawResult = result
	group.UpdatedAt = time.Now()

	s.notifySystem(ctx, group.ID, "O sorteio foi realizado! Vê quem te calhou 🤫")
	s.publishGroupChanged(ctx, group, "")
	logger.Info().Str("group_id", group.ID).Int("participants", len(participants)).Msg("Draw completed")

	return group, nil
}

func (s *groupService) Assignment(ctx context.Context, groupID, userID string) (string, error) {
	group, err := s.GetByID(ctx, groupID)
	if err != nil {
		return "", err
	}

	if group.Status != models.GroupStatusDrawn && group.Status != models.GroupStatusCompleted {
		return "", apperrors.New(apperrors.ErrCodeConflict, "O sorteio ainda não foi realizado.").
			WithDetail("group_id", groupID)
	}

	recipient, ok := group.DrawResult[userID]
	if !ok {
		return "", apperrors.New(apperrors.ErrCodeForbidden, "Não participaste neste sorteio.").
			WithDetail("group_id", groupID)
	}
	return recipient, nil
}

func (s *groupService) FormMatchedGroup(ctx context.Context, memberIDs []string) (*models.Group, error) {
	if len(memberIDs) < models.MinDrawMembers {
		return nil, apperrors.New(apperrors.ErrCodeInsufficientParticipants,
			fmt.Sprintf("A matched group needs at least %d members", models.MinDrawMembers))
	}

	suffix, err := random.Intn(10000)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to generate group name")
	}

	now := time.Now()
	group := &models.Group{
		ID:             uuid.New().String(),
		Name:           fmt.Sprintf("Kamba Auto #%04d", suffix),
		AdminID:        memberIDs[0],
		IsPublic:       true,
		MaxMembers:     models.DefaultMaxMembers,
		Budget:         models.DefaultBudget,
		Status:         models.GroupStatusRecruiting,
		CreatedAt:      now,
		UpdatedAt:      now,
		Members:        memberIDs,
		PendingMembers: []string{},
	}
	group.GroupImage = fmt.Sprintf("https://picsum.photos/seed/%s/200", group.ID)

	if err := s.repo.Create(ctx, group); err != nil {
		return nil, apperrors.NewStoreError("create matched group", err)
	}

	drawn, err := s.runDraw(ctx, group)
	if err != nil {
		return nil, err
	}

	for _, memberID := range memberIDs {
		s.hub.Publish(ctx, realtime.MemberGroupsChannel(memberID), group.ID)
	}
	logger.Info().Str("group_id", group.ID).Int("members", len(memberIDs)).Msg("Matched group formed")

	return drawn, nil
}
