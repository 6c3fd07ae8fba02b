package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"kamba-santa-backend/internal/features/matchmaking/repository"
)

const (
	keyPublicQueue = "system:public_queue"
	// maxTxRetries bounds optimistic-lock retries under contention.
	maxTxRetries = 10
)

type redisRepository struct {
	client *redis.Client
}

func NewRedisQueueRepository(client *redis.Client) repository.QueueRepository {
	return &redisRepository{client: client}
}

func loadQueue(ctx context.Context, tx *redis.Tx) ([]string, error) {
	data, err := tx.Get(ctx, keyPublicQueue).Bytes()
	if err == redis.Nil {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	var queue []string
	if err := json.Unmarshal(data, &queue); err != nil {
		return nil, fmt.Errorf("failed to unmarshal queue: %w", err)
	}
	return queue, nil
}

func storeQueue(ctx context.Context, pipe redis.Pipeliner, queue []string) error {
	data, err := json.Marshal(queue)
	if err != nil {
		return fmt.Errorf("failed to marshal queue: %w", err)
	}
	pipe.Set(ctx, keyPublicQueue, data, 0)
	return nil
}

// JoinAndClaim mutates the queue inside WATCH/MULTI so two simultaneous
// joiners cannot both observe the same queue state; the loser of the race
// retries against the committed result.
func (r *redisRepository) JoinAndClaim(ctx context.Context, userID string, batchSize int) ([]string, int, error) {
	var batch []string
	var position int

	txf := func(tx *redis.Tx) error {
		queue, err := loadQueue(ctx, tx)
		if err != nil {
			return err
		}

		batch = nil
		position = 0
		for i, id := range queue {
			if id == userID {
				position = i + 1
				break
			}
		}
		if position == 0 {
			queue = append(queue, userID)
			position = len(queue)
		}

		if len(queue) >= batchSize {
			batch = queue[:batchSize]
			queue = queue[batchSize:]
			position = 0
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return storeQueue(ctx, pipe, queue)
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, txf, keyPublicQueue)
		if err == nil {
			return batch, position, nil
		}
		if err == redis.TxFailedErr {
			continue
		}
		return nil, 0, err
	}
	return nil, 0, fmt.Errorf("queue contention: gave up after %d retries", maxTxRetries)
}

func (r *redisRepository) Leave(ctx context.Context, userID string) error {
	txf := func(tx *redis.Tx) error {
		queue, err := loadQueue(ctx, tx)
		if err != nil {
			return err
		}

		filtered := queue[:0]
		for _, id := range queue {
			if id != userID {
				filtered = append(filtered, id)
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return storeQueue(ctx, pipe, filtered)
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, txf, keyPublicQueue)
		if err == nil {
			return nil
		}
		if err == redis.TxFailedErr {
			continue
		}
		return err
	}
	return fmt.Errorf("queue contention: gave up after %d retries", maxTxRetries)
}

func (r *redisRepository) Size(ctx context.Context) (int, error) {
	data, err := r.client.Get(ctx, keyPublicQueue).Bytes()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var queue []string
	if err := json.Unmarshal(data, &queue); err != nil {
		return 0, fmt.Errorf("failed to unmarshal queue: %w", err)
	}
	return len(queue), nil
}
