package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "kamba-santa-backend/internal/common/errors"
	"kamba-santa-backend/internal/features/chat/models"
	"kamba-santa-backend/internal/features/chat/repository"
	grouprepo "kamba-santa-backend/internal/features/group/repository"
	userservice "kamba-santa-backend/internal/features/user/service"
	"kamba-santa-backend/internal/realtime"
)

const defaultHistoryLimit = 100

// ChatService manages per-group chat feeds. System messages are appended by
// other features through the same service.
type ChatService interface {
	SendMessage(ctx context.Context, groupID, senderID, text string) (*models.Message, error)
	SendSystemMessage(ctx context.Context, groupID, text string) error
	ListMessages(ctx context.Context, groupID, callerID string, limit int) ([]*models.Message, error)
}

type chatService struct {
	repo   repository.MessageRepository
	groups grouprepo.GroupRepository
	users  userservice.UserService
	hub    *realtime.Hub
}

func NewChatService(
	repo repository.MessageRepository,
	groups grouprepo.GroupRepository,
	users userservice.UserService,
	hub *realtime.Hub,
) ChatService {
	return &chatService{
		repo:   repo,
		groups: groups,
		users:  users,
		hub:    hub,
	}
}

func (s *chatService) requireMember(ctx context.Context, groupID, userID string) error {
	isMember, err := s.groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return apperrors.NewStoreError("check membership", err)
	}
	if !isMember {
		return apperrors.New(apperrors.ErrCodeForbidden, "Only group members can use the chat").
			WithDetail("group_id", groupID)
	}
	return nil
}

func (s *chatService) SendMessage(ctx context.Context, groupID, senderID, text string) (*models.Message, error) {
	if err := s.requireMember(ctx, groupID, senderID); err != nil {
		return nil, err
	}

	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		ID:         uuid.New().String(),
		GroupID:    groupID,
		SenderID:   sender.ID,
		SenderName: sender.Name,
		Text:       text,
		Type:       models.MessageTypeText,
		Timestamp:  time.Now(),
	}

	if err := s.repo.Append(ctx, message); err != nil {
		return nil, apperrors.NewStoreError("append message", err)
	}

	s.hub.Publish(ctx, realtime.ChatChannel(groupID), message.ID)
	return message, nil
}

func (s *chatService) SendSystemMessage(ctx context.Context, groupID, text string) error {
	message := &models.Message{
		ID:        uuid.New().String(),
		GroupID:   groupID,
		Text:      text,
		Type:      models.MessageTypeSystem,
		Timestamp: time.Now(),
	}

	if err := s.repo.Append(ctx, message); err != nil {
		return apperrors.NewStoreError("append system message", err)
	}

	s.hub.Publish(ctx, realtime.ChatChannel(groupID), message.ID)
	return nil
}

func (s *chatService) ListMessages(ctx context.Context, groupID, callerID string, limit int) ([]*models.Message, error) {
	if err := s.requireMember(ctx, groupID, callerID); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > defaultHistoryLimit {
		limit = defaultHistoryLimit
	}

	messages, err := s.repo.List(ctx, groupID, limit)
	if err != nil {
		return nil, apperrors.NewStoreError("list messages", err)
	}
	return messages, nil
}
