// Package breaker защищает key-value хранилище circuit breaker'ом:
// после серии ошибок запросы к backend'у временно не выполняются.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"

	"github.com/vladislavdragonenkov/ecocart/internal/domain"
)

const (
	defaultMaxFailures = 5
	defaultOpenTimeout = 30 * time.Second
)

// Options задаёт параметры breaker'а.
type Options struct {
	Name        string
	MaxFailures uint32
	OpenTimeout time.Duration
	Logger      *log.Entry
}

// Option настраивает KVStore.
type Option func(*Options)

// WithName задаёт имя breaker'а для логов.
func WithName(name string) Option {
	return func(opts *Options) {
		opts.Name = name
	}
}

// WithMaxFailures задаёт число подряд идущих ошибок, после которого breaker размыкается.
func WithMaxFailures(n uint32) Option {
	return func(opts *Options) {
		opts.MaxFailures = n
	}
}

// WithOpenTimeout задаёт, сколько breaker остаётся разомкнутым до пробного запроса.
func WithOpenTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.OpenTimeout = timeout
	}
}

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// KVStore оборачивает domain.KVStore. Пока breaker разомкнут, все операции
// возвращают domain.ErrStorageUnavailable, не обращаясь к backend'у.
type KVStore struct {
	next domain.KVStore
	cb   *gobreaker.CircuitBreaker[string]
}

// New создаёт обёртку над next.
func New(next domain.KVStore, options ...Option) *KVStore {
	opts := Options{
		Name:        "kv-store",
		MaxFailures: defaultMaxFailures,
		OpenTimeout: defaultOpenTimeout,
	}
	for _, option := range options {
		option(&opts)
	}
	if opts.MaxFailures == 0 {
		opts.MaxFailures = defaultMaxFailures
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = defaultOpenTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "storage-breaker")
	}

	maxFailures := opts.MaxFailures
	settings := gobreaker.Settings{
		Name:        opts.Name,
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(log.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("storage circuit breaker state changed")
		},
		// Отсутствие ключа не считается отказом backend'а.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrKeyNotFound)
		},
	}

	return &KVStore{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[string](settings),
	}
}

// Get читает ключ через breaker.
func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.cb.Execute(func() (string, error) {
		return s.next.Get(ctx, key)
	})
	return value, mapError(err)
}

// Set пишет ключ через breaker.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	_, err := s.cb.Execute(func() (string, error) {
		return "", s.next.Set(ctx, key, value)
	})
	return mapError(err)
}

// Remove удаляет ключ через breaker.
func (s *KVStore) Remove(ctx context.Context, key string) error {
	_, err := s.cb.Execute(func() (string, error) {
		return "", s.next.Remove(ctx, key)
	})
	return mapError(err)
}

// Ping проверяет backend напрямую, минуя breaker, чтобы health-check видел реальное состояние.
func (s *KVStore) Ping(ctx context.Context) error {
	if pinger, ok := s.next.(domain.Pinger); ok {
		return pinger.Ping(ctx)
	}
	return nil
}

// State возвращает текущее состояние breaker'а.
func (s *KVStore) State() gobreaker.State {
	return s.cb.State()
}

func mapError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return err
}

var (
	_ domain.KVStore = (*KVStore)(nil)
	_ domain.Pinger  = (*KVStore)(nil)
)
