// Package cache реализует двухуровневый кеш отчётов: durable-уровень на
// основе redis и локальный in-memory уровень как запасной вариант.
// Durable-уровень авторитетен, локальный обеспечивает доступность,
// когда redis недоступен или не сконфигурирован.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stockfortress/stockfortress/internal/config"
)

// Redis — durable-уровень кеша поверх redis.
type Redis struct {
	Db *redis.Client
}

// InitServer подключается к redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Redis, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Redis{Db: db}, nil
}

// Get читает значение по ключу. Возвращает (nil, false, nil), если ключа нет.
func (c *Redis) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	const op = "cache.Redis.Get"
	val, err := c.Db.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return json.RawMessage(val), true, nil
}

// Set сохраняет значение по ключу с временем жизни expiration.
func (c *Redis) Set(ctx context.Context, key string, value json.RawMessage, expiration time.Duration) error {
	const op = "cache.Redis.Set"
	if err := c.Db.Set(ctx, key, []byte(value), expiration).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Invalidate удаляет значение из кеша по ключу.
func (c *Redis) Invalidate(ctx context.Context, key string) error {
	return c.Db.Del(ctx, key).Err()
}
