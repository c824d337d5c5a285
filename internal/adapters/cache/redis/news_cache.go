package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pagePrefix = "news:page:"

// NewsPageCache keeps rendered feed pages for a short TTL so the hot path
// of the site skips the database. Writers drop every page on mutation.
type NewsPageCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewNewsPageCache(client *redis.Client, ttl time.Duration) *NewsPageCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &NewsPageCache{client: client, ttl: ttl}
}

func (c *NewsPageCache) GetPage(ctx context.Context, page, limit int) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, pageKey(page, limit)).Bytes()
	switch {
	case err == redis.Nil:
		return nil, false, nil
	case err != nil:
		return nil, false, err
	default:
		return payload, true, nil
	}
}

func (c *NewsPageCache) SetPage(ctx context.Context, page, limit int, payload []byte) error {
	return c.client.Set(ctx, pageKey(page, limit), payload, c.ttl).Err()
}

func (c *NewsPageCache) InvalidatePages(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, pagePrefix+"*", 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func pageKey(page, limit int) string {
	return fmt.Sprintf("%s%d:%d", pagePrefix, page, limit)
}
