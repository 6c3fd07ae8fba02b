package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"kamba-santa-backend/internal/features/chat/models"
	"kamba-santa-backend/internal/features/chat/repository"
)

// maxFeedLength bounds each group's stored history; older entries are
// trimmed away on append.
const maxFeedLength = 500

type redisRepository struct {
	client *redis.Client
}

func NewRedisMessageRepository(client *redis.Client) repository.MessageRepository {
	return &redisRepository{client: client}
}

func makeMessagesKey(groupID string) string {
	return "group:" + groupID + ":messages"
}

func (r *redisRepository) Append(ctx context.Context, message *models.Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, makeMessagesKey(message.GroupID), data)
	pipe.LTrim(ctx, makeMessagesKey(message.GroupID), -maxFeedLength, -1)

	_, err = pipe.Exec(ctx)
	return err
}

func (r *redisRepository) List(ctx context.Context, groupID string, limit int) ([]*models.Message, error) {
	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}

	entries, err := r.client.LRange(ctx, makeMessagesKey(groupID), start, -1).Result()
	if err != nil {
		return nil, err
	}

	messages := make([]*models.Message, 0, len(entries))
	for _, entry := range entries {
		var message models.Message
		if err := json.Unmarshal([]byte(entry), &message); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message: %w", err)
		}
		messages = append(messages, &message)
	}
	return messages, nil
}
