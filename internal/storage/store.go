package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/IT-26211-Group-1/adultna-sub002/internal/config"
	"github.com/redis/go-redis/v9"
)

// Store представляет клиентское хранилище ключ-значение с временем жизни ключа.
// Отсутствующий или просроченный ключ возвращает ok=false без ошибки.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// ttl <= 0 означает бессрочное хранение
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Remove(ctx context.Context, key string) error
}

// Clock возвращает текущее время, подменяется в тестах
type Clock func() time.Time

// NewStore создает хранилище по типу из конфигурации
func NewStore(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(cfg.Path), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("ошибка подключения к Redis %s: %w", cfg.RedisAddr, err)
		}
		return NewRedisStore(client, WithPrefix(cfg.RedisPrefix)), nil
	default:
		return nil, fmt.Errorf("неизвестный тип хранилища %q", cfg.Type)
	}
}

func expiryFor(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}
