package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"kamba-santa-backend/internal/features/group/models"
	"kamba-santa-backend/internal/features/group/repository"
)

const (
	keyPrefixGroup  = "group:"
	keyPublicGroups = "groups:public"
)

type redisRepository struct {
	client *redis.Client
}

func NewRedisGroupRepository(client *redis.Client) repository.GroupRepository {
	return &redisRepository{client: client}
}

func makeGroupKey(id string) string {
	return keyPrefixGroup + id
}

func makeMembersKey(id string) string {
	return keyPrefixGroup + id + ":members"
}

func makePendingKey(id string) string {
	return keyPrefixGroup + id + ":pending"
}

func makeDrawKey(id string) string {
	return keyPrefixGroup + id + ":draw"
}

func makeUserGroupsKey(userID string) string {
	return "user:" + userID + ":groups"
}

// groupDoc is the persisted core document. Membership, pending requests and
// the draw result live in their own keys so set mutations stay atomic.
type groupDoc struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	CustomSlug       string             `json:"custom_slug,omitempty"`
	Description      string             `json:"description,omitempty"`
	GroupImage       string             `json:"group_image,omitempty"`
	AdminID          string             `json:"admin_id"`
	IsPublic         bool               `json:"is_public"`
	RequiresApproval bool               `json:"requires_approval"`
	MaxMembers       int                `json:"max_members"`
	Budget           string             `json:"budget,omitempty"`
	Status           models.GroupStatus `json:"status"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

func toDoc(group *models.Group) *groupDoc {
	return &groupDoc{
		ID:               group.ID,
		Name:             group.Name,
		CustomSlug:       group.CustomSlug,
		Description:      group.Description,
		GroupImage:       group.GroupImage,
		AdminID:          group.AdminID,
		IsPublic:         group.IsPublic,
		RequiresApproval: group.RequiresApproval,
		MaxMembers:       group.MaxMembers,
		Budget:           group.Budget,
		Status:           group.Status,
		CreatedAt:        group.CreatedAt,
		UpdatedAt:        group.UpdatedAt,
	}
}

func (d *groupDoc) toModel() *models.Group {
	return &models.Group{
		ID:               d.ID,
		Name:             d.Name,
		CustomSlug:       d.CustomSlug,
		Description:      d.Description,
		GroupImage:       d.GroupImage,
		AdminID:          d.AdminID,
		IsPublic:         d.IsPublic,
		RequiresApproval: d.RequiresApproval,
		MaxMembers:       d.MaxMembers,
		Budget:           d.Budget,
		Status:           d.Status,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

func memberScore() float64 {
	return float64(time.Now().UnixNano())
}

func (r *redisRepository) Create(ctx context.Context, group *models.Group) error {
	data, err := json.Marshal(toDoc(group))
	if err != nil {
		return fmt.Errorf("failed to marshal group: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, makeGroupKey(group.ID), data, 0)
	score := memberScore()
	for i, member := range group.Members {
		pipe.ZAddNX(ctx, makeMembersKey(group.ID), redis.Z{Score: score + float64(i), Member: member})
		pipe.SAdd(ctx, makeUserGroupsKey(member), group.ID)
	}
	if group.IsPublic {
		pipe.SAdd(ctx, keyPublicGroups, group.ID)
	}

	_, err = pipe.Exec(ctx)
	return err
}

func (r *redisRepository) getDoc(ctx context.Context, id string) (*groupDoc, error) {
	data, err := r.client.Get(ctx, makeGroupKey(id)).Bytes()
	if err == redis.Nil {
		return nil, repository.ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}

	var doc groupDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *redisRepository) GetByID(ctx context.Context, id string) (*models.Group, error) {
	doc, err := r.getDoc(ctx, id)
	if err != nil {
		return nil, err
	}
	group := doc.toModel()

	members, err := r.client.ZRange(ctx, makeMembersKey(id), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	group.Members = members

	pending, err := r.client.ZRange(ctx, makePendingKey(id), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	group.PendingMembers = pending

	if group.Status == models.GroupStatusDrawn || group.Status == models.GroupStatusCompleted {
		result, err := r.client.HGetAll(ctx, makeDrawKey(id)).Result()
		if err != nil {
			return nil, err
		}
		if len(result) > 0 {
			group.DrawResult = result
		}
	}

	return group, nil
}

func (r *redisRepository) UpdateDoc(ctx context.Context, group *models.Group) error {
	data, err := json.Marshal(toDoc(group))
	if err != nil {
		return fmt.Errorf("failed to marshal group: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, makeGroupKey(group.ID), data, 0)
	if group.IsPublic {
		pipe.SAdd(ctx, keyPublicGroups, group.ID)
	} else {
		pipe.SRem(ctx, keyPublicGroups, group.ID)
	}

	_, err = pipe.Exec(ctx)
	return err
}

func (r *redisRepository) AddMember(ctx context.Context, groupID, userID string) error {
	pipe := r.client.TxPipeline()
	pipe.ZAddNX(ctx, makeMembersKey(groupID), redis.Z{Score: memberScore(), Member: userID})
	pipe.SAdd(ctx, makeUserGroupsKey(userID), groupID)

	_, err := pipe.Exec(ctx)
	return err
}

func (r *redisRepository) AddPending(ctx context.Context, groupID, userID string) error {
	return r.client.ZAddNX(ctx, makePendingKey(groupID), redis.Z{Score: memberScore(), Member: userID}).Err()
}

func (r *redisRepository) RemovePending(ctx context.Context, groupID, userID string) error {
	return r.client.ZRem(ctx, makePendingKey(groupID), userID).Err()
}

func (r *redisRepository) ApproveMember(ctx context.Context, groupID, userID string) error {
	// Pending removal and member addition commit together so the sets are
	// never observed overlapping.
	pipe := r.client.TxPipeline()
	pipe.ZRem(ctx, makePendingKey(groupID), userID)
	pipe.ZAddNX(ctx, makeMembersKey(groupID), redis.Z{Score: memberScore(), Member: userID})
	pipe.SAdd(ctx, makeUserGroupsKey(userID), groupID)

	_, err := pipe.Exec(ctx)
	return err
}

func (r *redisRepository) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	_, err := r.client.ZScore(ctx, makeMembersKey(groupID), userID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisRepository) IsPending(ctx context.Context, groupID, userID string) (bool, error) {
	_, err := r.client.ZScore(ctx, makePendingKey(groupID), userID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisRepository) MemberCount(ctx context.Context, groupID string) (int64, error) {
	return r.client.ZCard(ctx, makeMembersKey(groupID)).Result()
}

func (r *redisRepository) Members(ctx context.Context, groupID string) ([]string, error) {
	return r.client.ZRange(ctx, makeMembersKey(groupID), 0, -1).Result()
}

func (r *redisRepository) CommitDraw(ctx context.Context, groupID string, result map[string]string) error {
	doc, err := r.getDoc(ctx, groupID)
	if err != nil {
		return err
	}
	doc.Status = models.GroupStatusDrawn
	doc.UpdatedAt = time.Now()

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal group: %w", err)
	}

	pairs := make(map[string]interface{}, len(result))
	for giver, recipient := range result {
		pairs[giver] = recipient
	}

	// Result and status transition land in one transaction; a re-draw
	// replaces the previous assignment wholesale.
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, makeDrawKey(groupID))
	pipe.HSet(ctx, makeDrawKey(groupID), pairs)
	pipe.Set(ctx, makeGroupKey(groupID), data, 0)

	_, err = pipe.Exec(ctx)
	return err
}

func (r *redisRepository) ListByMember(ctx context.Context, userID string) ([]*models.Group, error) {
	ids, err := r.client.SMembers(ctx, makeUserGroupsKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	return r.getMany(ctx, ids, 0)
}

func (r *redisRepository) ListPublic(ctx context.Context, limit int) ([]*models.Group, error) {
	ids, err := r.client.SMembers(ctx, keyPublicGroups).Result()
	if err != nil {
		return nil, err
	}
	return r.getMany(ctx, ids, limit)
}

func (r *redisRepository) getMany(ctx context.Context, ids []string, limit int) ([]*models.Group, error) {
	groups := make([]*models.Group, 0, len(ids))
	for _, id := range ids {
		group, err := r.GetByID(ctx, id)
		if err == repository.ErrGroupNotFound {
			// Stale index entry; skip.
			continue
		}
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].CreatedAt.After(groups[j].CreatedAt)
	})

	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}
	return groups, nil
}
