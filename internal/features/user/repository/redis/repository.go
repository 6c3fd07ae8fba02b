package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"kamba-santa-backend/internal/features/user/models"
	"kamba-santa-backend/internal/features/user/repository"
)

const (
	keyPrefixUser       = "user:"
	keyPrefixEmailIndex = "user:email:"
)

type redisRepository struct {
	client *redis.Client
}

func NewRedisUserRepository(client *redis.Client) repository.UserRepository {
	return &redisRepository{client: client}
}

func makeUserKey(id string) string {
	return keyPrefixUser + id
}

func makeEmailKey(email string) string {
	return keyPrefixEmailIndex + strings.ToLower(email)
}

func (r *redisRepository) Save(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(user.Email)

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, makeUserKey(user.ID), data, 0)
	if user.Email != "" {
		pipe.Set(ctx, makeEmailKey(user.Email), user.ID, 0)
	}

	_, err = pipe.Exec(ctx)
	return err
}

func (r *redisRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	data, err := r.client.Get(ctx, makeUserKey(id)).Bytes()
	if err == redis.Nil {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *redisRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	id, err := r.client.Get(ctx, makeEmailKey(email)).Result()
	if err == redis.Nil {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

func (r *redisRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = makeUserKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	// Missing documents are skipped rather than failing the whole lookup.
	users := make([]*models.User, 0, len(values))
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}
		var user models.User
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			continue
		}
		users = append(users, &user)
	}

	return users, nil
}

func (r *redisRepository) Update(ctx context.Context, user *models.User) error {
	return r.Save(ctx, user)
}
