package cart

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/ecocart/internal/domain"
)

// DefaultSession — сессия, корзина которой лежит под ключом DefaultKey.
const DefaultSession = "default"

// KeyFor возвращает ключ хранилища для корзины сессии.
func KeyFor(session string) string {
	session = strings.TrimSpace(session)
	if session == "" || session == DefaultSession {
		return DefaultKey
	}
	return DefaultKey + ":" + session
}

type registryEntry struct {
	store    *Store
	lastUsed time.Time
}

// Registry лениво открывает по одному Store на сессию. Store кешируется, поэтому
// все вызывающие одной сессии работают с одним владельцем корзины. Store, который
// не смог прочитать хранилище, не кешируется: следующий Get повторит чтение.
// Простаивающие дольше SessionIdleTTL сессии без несохранённых изменений выгружаются.
type Registry struct {
	kv      domain.KVStore
	options []Option
	idleTTL time.Duration
	now     func() time.Time

	mu        sync.Mutex
	stores    map[string]*registryEntry
	lastSweep time.Time
}

// NewRegistry создаёт реестр корзин поверх общего key-value хранилища.
func NewRegistry(kv domain.KVStore, options ...Option) *Registry {
	opts := Options{SessionIdleTTL: DefaultSessionIdleTTL}
	for _, option := range options {
		option(&opts)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Registry{
		kv:      kv,
		options: options,
		idleTTL: opts.SessionIdleTTL,
		now:     now,
		stores:  make(map[string]*registryEntry),
	}
}

// Get возвращает Store сессии, восстанавливая его из хранилища при первом обращении.
func (r *Registry) Get(ctx context.Context, session string) *Store {
	session = NormalizeSession(session)
	now := r.now()

	r.mu.Lock()
	r.evictIdleLocked(now)
	if entry, ok := r.stores[session]; ok {
		entry.lastUsed = now
		r.mu.Unlock()
		return entry.store
	}
	r.mu.Unlock()

	// Чтение идёт без общей блокировки: медленный backend не задерживает другие сессии.
	opts := make([]Option, 0, len(r.options)+1)
	opts = append(opts, r.options...)
	opts = append(opts, WithSession(session))
	store := Open(ctx, r.kv, KeyFor(session), opts...)

	r.mu.Lock()
	defer r.mu.Unlock()

	// Параллельный Get той же сессии успел раньше; наш Store ещё не менялся.
	if entry, ok := r.stores[session]; ok {
		entry.lastUsed = now
		return entry.store
	}
	if !store.Restored() {
		return store
	}
	r.stores[session] = &registryEntry{store: store, lastUsed: now}
	return store
}

// evictIdleLocked выгружает простаивающие Store. Проход выполняется не чаще
// раза в половину idleTTL. Вызывается под r.mu.
func (r *Registry) evictIdleLocked(now time.Time) {
	if r.idleTTL <= 0 || now.Sub(r.lastSweep) < r.idleTTL/2 {
		return
	}
	r.lastSweep = now

	for session, entry := range r.stores {
		if now.Sub(entry.lastUsed) < r.idleTTL || entry.store.hasUnsavedChanges() {
			continue
		}
		delete(r.stores, session)
	}
}

// Sessions возвращает отсортированный список загруженных сессий.
func (r *Registry) Sessions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessions := make([]string, 0, len(r.stores))
	for session := range r.stores {
		sessions = append(sessions, session)
	}
	sort.Strings(sessions)
	return sessions
}

// NormalizeSession приводит пустую сессию к DefaultSession.
func NormalizeSession(session string) string {
	session = strings.TrimSpace(session)
	if session == "" {
		return DefaultSession
	}
	return session
}
