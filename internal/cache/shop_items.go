// Package cache is a redis read-through cache for the public shop listing.
// The listing is read on every storefront visit and changes only on admin
// writes, which invalidate the key.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"backend/internal/models"
)

var ErrCacheMiss = errors.New("cache miss")

const shopItemsKey = "shop:items:active"

type ShopItemCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewShopItemCache(client *redis.Client) *ShopItemCache {
	return &ShopItemCache{
		client:  client,
		baseTTL: 10 * time.Minute,
	}
}

func (c *ShopItemCache) Get(ctx context.Context) ([]models.ShopItem, error) {
	if c == nil {
		return nil, ErrCacheMiss
	}

	data, err := c.client.Get(ctx, shopItemsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var items []models.ShopItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("unmarshal shop items failed: %w", err)
	}
	return items, nil
}

func (c *ShopItemCache) Set(ctx context.Context, items []models.ShopItem) error {
	if c == nil {
		return nil
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal shop items failed: %w", err)
	}

	// Jitter spreads expiry so a burst of visitors does not refill at once.
	ttl := c.baseTTL + time.Duration(rand.Intn(120))*time.Second
	if err := c.client.Set(ctx, shopItemsKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Invalidate drops the cached listing; called after any admin shop write.
func (c *ShopItemCache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.client.Del(ctx, shopItemsKey).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}
