package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"campaign-shop/internal/core/domain"
)

const (
	listingKeyPrefix  = "listing:"
	listingViewTTL    = 5 * time.Minute
	idempotencyKeyTTL = 24 * time.Hour
)

// RedisAdapter implements port.CacheRepository: listing views cached as
// JSON with a TTL, and SETNX idempotency keys so a retried trade request is
// detected across instances.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) GetListingView(ctx context.Context, listingID string) (*domain.ListingView, error) {
	raw, err := r.client.Get(ctx, listingKeyPrefix+listingID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var view domain.ListingView
	if err := json.Unmarshal(raw, &view); err != nil {
		return nil, fmt.Errorf("decode cached listing: %w", err)
	}
	return &view, nil
}

func (r *RedisAdapter) SetListingView(ctx context.Context, view *domain.ListingView) error {
	raw, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("encode listing: %w", err)
	}
	return r.client.Set(ctx, listingKeyPrefix+view.ListingID, raw, listingViewTTL).Err()
}

func (r *RedisAdapter) InvalidateListing(ctx context.Context, listingID string) error {
	return r.client.Del(ctx, listingKeyPrefix+listingID).Err()
}
