package campaigns

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	campaignKeyPrefix = "campaign:"
	campaignIndexKey  = "campaigns"
)

// Connect initializes a Redis client from URL or host:port input.
func Connect(_ context.Context, redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

// RedisStore keeps one hash per campaign plus an index set of ids.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, id string) (Campaign, error) {
	data, err := s.client.HGetAll(ctx, campaignKeyPrefix+id).Result()
	if err != nil {
		return Campaign{}, fmt.Errorf("campaigns: get %s: %w", id, err)
	}
	if len(data) == 0 {
		return Campaign{}, ErrNotFound
	}
	return fromHash(data), nil
}

func (s *RedisStore) Put(ctx context.Context, c Campaign) error {
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, campaignKeyPrefix+c.ID, toHash(c))
		p.SAdd(ctx, campaignIndexKey, c.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("campaigns: put %s: %w", c.ID, err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]Campaign, error) {
	ids, err := s.client.SMembers(ctx, campaignIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("campaigns: list: %w", err)
	}
	sort.Strings(ids)

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = p.HGetAll(ctx, campaignKeyPrefix+id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("campaigns: list: %w", err)
	}

	out := make([]Campaign, 0, len(ids))
	for _, cmd := range cmds {
		data := cmd.Val()
		if len(data) == 0 {
			continue
		}
		out = append(out, fromHash(data))
	}
	return out, nil
}

func toHash(c Campaign) map[string]any {
	return map[string]any{
		"id":           c.ID,
		"platform":     c.Platform,
		"title":        c.Title,
		"display_name": c.DisplayName,
		"first_name":   c.FirstName,
		"goal":         c.Goal,
		"raised":       c.Raised.String(),
		"currency":     c.Currency,
		"url":          c.URL,
		"status":       c.Status,
		"created_at":   c.CreatedAt,
	}
}

func fromHash(h map[string]string) Campaign {
	raised, err := decimal.NewFromString(h["raised"])
	if err != nil {
		raised = decimal.Zero
	}
	return Campaign{
		ID:          h["id"],
		Platform:    h["platform"],
		Title:       h["title"],
		DisplayName: h["display_name"],
		FirstName:   h["first_name"],
		Goal:        h["goal"],
		Raised:      raised,
		Currency:    h["currency"],
		URL:         h["url"],
		Status:      h["status"],
		CreatedAt:   h["created_at"],
	}
}

var _ Store = (*RedisStore)(nil)
