package service

import (
	"context"

	apperrors "kamba-santa-backend/internal/common/errors"
	"kamba-santa-backend/internal/common/logger"
	groupmodels "kamba-santa-backend/internal/features/group/models"
	"kamba-santa-backend/internal/features/matchmaking/repository"
)

// BatchSize is how many waiting users it takes to auto-form a group.
const BatchSize = 4

// GroupFormer assembles a ready-to-play group from a matchmaking batch.
type GroupFormer interface {
	FormMatchedGroup(ctx context.Context, memberIDs []string) (*groupmodels.Group, error)
}

// QueueResult reports the outcome of a queue join: either the caller's place
// in line, or the freshly formed group.
type QueueResult struct {
	Queued   bool               `json:"queued"`
	Position int                `json:"position,omitempty"`
	Group    *groupmodels.Group `json:"group,omitempty"`
}

type MatchmakingService interface {
	JoinQueue(ctx context.Context, userID string) (*QueueResult, error)
	LeaveQueue(ctx context.Context, userID string) error
}

type matchmakingService struct {
	queue  repository.QueueRepository
	groups GroupFormer
}

func NewMatchmakingService(queue repository.QueueRepository, groups GroupFormer) MatchmakingService {
	return &matchmakingService{queue: queue, groups: groups}
}

func (s *matchmakingService) JoinQueue(ctx context.Context, userID string) (*QueueResult, error) {
	batch, position, err := s.queue.JoinAndClaim(ctx, userID, BatchSize)
	if err != nil {
		return nil, apperrors.NewStoreError("join queue", err)
	}

	if batch == nil {
		return &QueueResult{Queued: true, Position: position}, nil
	}

	group, err := s.groups.FormMatchedGroup(ctx, batch)
	if err != nil {
		// The batch was already claimed from the queue; surface the failure
		// rather than silently dropping four entrants.
		logger.Error().Err(err).Strs("batch", batch).Msg("Failed to form matched group")
		return nil, err
	}

	logger.Info().Str("group_id", group.ID).Str("user_id", userID).Msg("Matchmaking batch completed")
	return &QueueResult{Group: group}, nil
}

func (s *matchmakingService) LeaveQueue(ctx context.Context, userID string) error {
	if err := s.queue.Leave(ctx, userID); err != nil {
		return apperrors.NewStoreError("leave queue", err)
	}
	return nil
}
