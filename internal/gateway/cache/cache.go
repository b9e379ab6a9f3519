package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const ownerTTL = 24 * time.Hour

// Cache maps telegram ids to the owner id of the budget the user works on.
type Cache struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCache(addr string, logger *zap.Logger) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Cache{
		client: client,
		logger: logger,
	}, nil
}

func ownerKey(telegramID int64) string {
	return fmt.Sprintf("budget_owner:%d", telegramID)
}

func (c *Cache) GetOwnerID(ctx context.Context, telegramID int64) (int64, bool, error) {
	val, err := c.client.Get(ctx, ownerKey(telegramID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	ownerID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		c.logger.Warn("dropping malformed cache entry", zap.Int64("telegram_id", telegramID), zap.String("value", val))
		return 0, false, c.client.Del(ctx, ownerKey(telegramID)).Err()
	}

	return ownerID, true, nil
}

func (c *Cache) SetOwnerID(ctx context.Context, telegramID, ownerID int64) error {
	return c.client.Set(ctx, ownerKey(telegramID), ownerID, ownerTTL).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
