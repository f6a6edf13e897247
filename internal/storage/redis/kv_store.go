// Package redis хранит сериализованные корзины в Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/vladislavdragonenkov/ecocart/internal/domain"
)

// Options задаёт параметры KVStore.
type Options struct {
	// TTL ключа, 0 без истечения.
	TTL time.Duration
}

// Option настраивает KVStore.
type Option func(*Options)

// WithTTL задаёт время жизни сохранённой корзины.
func WithTTL(ttl time.Duration) Option {
	return func(opts *Options) {
		opts.TTL = ttl
	}
}

// KVStore реализует domain.KVStore поверх go-redis.
type KVStore struct {
	client goredis.UniversalClient
	ttl    time.Duration
}

// NewKVStore оборачивает готовый клиент.
func NewKVStore(client goredis.UniversalClient, options ...Option) *KVStore {
	var opts Options
	for _, option := range options {
		option(&opts)
	}
	return &KVStore{client: client, ttl: opts.TTL}
}

// Connect создаёт клиент и проверяет подключение.
func Connect(ctx context.Context, addr, password string, db int, options ...Option) (*KVStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	store := NewKVStore(client, options...)
	if err := store.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return store, nil
}

// Get возвращает значение или domain.ErrKeyNotFound.
func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", domain.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %q: %w", key, err)
	}
	return value, nil
}

// Set перезаписывает значение.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Remove удаляет ключ.
func (s *KVStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

// Ping проверяет доступность Redis.
func (s *KVStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close закрывает клиент.
func (s *KVStore) Close() error {
	return s.client.Close()
}

var (
	_ domain.KVStore = (*KVStore)(nil)
	_ domain.Pinger  = (*KVStore)(nil)
)
