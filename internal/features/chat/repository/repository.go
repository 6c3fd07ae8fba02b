package repository

import (
	"context"

	"kamba-santa-backend/internal/features/chat/models"
)

// MessageRepository persists group chat feeds in append order.
type MessageRepository interface {
	Append(ctx context.Context, message *models.Message) error
	// List returns up to limit most recent messages in chronological order.
	List(ctx context.Context, groupID string, limit int) ([]*models.Message, error)
}
