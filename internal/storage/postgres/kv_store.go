package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/ecocart/internal/domain"
)

// KVStore хранит сериализованные корзины в таблице cart_entries.
type KVStore struct {
	store *Store
}

// NewKVStore создаёт PostgreSQL-реализацию domain.KVStore.
func NewKVStore(store *Store) *KVStore {
	return &KVStore{store: store}
}

// Get возвращает значение или domain.ErrKeyNotFound.
func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultOpTimeout)
	defer cancel()

	var value string
	err := s.store.db.QueryRowContext(ctx, `SELECT value FROM cart_entries WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("select cart entry %q: %w", key, err)
	}
	return value, nil
}

// Set перезаписывает значение (upsert).
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultOpTimeout)
	defer cancel()

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO cart_entries (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
		    updated_at = EXCLUDED.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("upsert cart entry %q: %w", key, err)
	}
	return nil
}

// Remove удаляет значение; отсутствие строки не ошибка.
func (s *KVStore) Remove(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultOpTimeout)
	defer cancel()

	if _, err := s.store.db.ExecContext(ctx, `DELETE FROM cart_entries WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete cart entry %q: %w", key, err)
	}
	return nil
}

// Ping проверяет подключение к базе.
func (s *KVStore) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

var (
	_ domain.KVStore = (*KVStore)(nil)
	_ domain.Pinger  = (*KVStore)(nil)
)
