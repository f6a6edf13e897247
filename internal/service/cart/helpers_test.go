package cart_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ecocart/internal/domain"
)

func loggerForTests() *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(logrus.DebugLevel)
	return logger.WithField("component", "test")
}

func product(id string, price domain.Money) domain.Product {
	return domain.Product{
		ID:      id,
		Name:    "Product " + id,
		Type:    domain.ProductTypeCup,
		Price:   price,
		InStock: true,
	}
}

// sequentialIDs выдаёт предсказуемые идентификаторы строк.
func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("line-%d", n.Add(1))
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (s *recordingSink) Notify(event domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) Events() []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Event(nil), s.events...)
}

func (s *recordingSink) Kinds() []domain.EventKind {
	events := s.Events()
	kinds := make([]domain.EventKind, 0, len(events))
	for _, e := range events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

var errBackendDown = errors.New("backend down")

// failingKV читает нормально, но каждая запись завершается ошибкой.
type failingKV struct {
	mu     sync.Mutex
	values map[string]string
	writes int
}

func newFailingKV(values map[string]string) *failingKV {
	if values == nil {
		values = map[string]string{}
	}
	return &failingKV{values: values}
}

func (f *failingKV) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return v, nil
}

func (f *failingKV) Set(context.Context, string, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	return errBackendDown
}

func (f *failingKV) Remove(context.Context, string) error {
	return errBackendDown
}

func (f *failingKV) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

// brokenReadKV не может прочитать ни одного ключа.
type brokenReadKV struct{}

func (brokenReadKV) Get(context.Context, string) (string, error) { return "", errBackendDown }
func (brokenReadKV) Set(context.Context, string, string) error   { return nil }
func (brokenReadKV) Remove(context.Context, string) error        { return nil }

// flakyReadKV проваливает первые failures чтений, дальше работает как inner.
type flakyReadKV struct {
	inner domain.KVStore

	mu       sync.Mutex
	failures int
	reads    int
}

func (f *flakyReadKV) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	f.reads++
	fail := f.failures > 0
	if fail {
		f.failures--
	}
	f.mu.Unlock()

	if fail {
		return "", errBackendDown
	}
	return f.inner.Get(ctx, key)
}

func (f *flakyReadKV) Set(ctx context.Context, key, value string) error {
	return f.inner.Set(ctx, key, value)
}

func (f *flakyReadKV) Remove(ctx context.Context, key string) error {
	return f.inner.Remove(ctx, key)
}

func (f *flakyReadKV) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

// ctxCheckingKV отвечает ошибкой контекста, если чтение пришло с отменённым ctx.
type ctxCheckingKV struct {
	domain.KVStore
}

func (c ctxCheckingKV) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.KVStore.Get(ctx, key)
}

// manualClock — управляемые часы для проверок выгрузки сессий.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
