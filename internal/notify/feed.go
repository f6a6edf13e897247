package notify

import (
	"sync"

	"github.com/vladislavdragonenkov/ecocart/internal/domain"
)

const (
	// DefaultFeedSize — сколько последних уведомлений хранится на сессию.
	DefaultFeedSize = 20
	// DefaultFeedMaxSessions — сколько сессий лента держит одновременно.
	DefaultFeedMaxSessions = 10000
)

// Feed хранит последние уведомления каждой сессии в кольцевом буфере.
// При превышении maxSessions вытесняется сессия, которая дольше всех не получала уведомлений.
type Feed struct {
	size        int
	maxSessions int

	mu       sync.RWMutex
	sessions map[string]*ring
	seq      uint64
}

// FeedOption настраивает Feed.
type FeedOption func(*Feed)

// WithMaxSessions ограничивает число сессий в ленте; n<=0 оставляет значение по умолчанию.
func WithMaxSessions(n int) FeedOption {
	return func(f *Feed) {
		if n > 0 {
			f.maxSessions = n
		}
	}
}

type ring struct {
	items   []Message
	next    int
	full    bool
	touched uint64
}

func (r *ring) push(msg Message) {
	r.items[r.next] = msg
	r.next = (r.next + 1) % len(r.items)
	if r.next == 0 {
		r.full = true
	}
}

// snapshot возвращает сообщения от старых к новым.
func (r *ring) snapshot() []Message {
	if !r.full {
		return append([]Message(nil), r.items[:r.next]...)
	}
	out := make([]Message, 0, len(r.items))
	out = append(out, r.items[r.next:]...)
	return append(out, r.items[:r.next]...)
}

// NewFeed создаёт ленту; size<=0 заменяется DefaultFeedSize.
func NewFeed(size int, options ...FeedOption) *Feed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	f := &Feed{
		size:        size,
		maxSessions: DefaultFeedMaxSessions,
		sessions:    make(map[string]*ring),
	}
	for _, option := range options {
		option(f)
	}
	return f
}

// Notify добавляет событие в ленту его сессии.
func (f *Feed) Notify(event domain.Event) {
	msg := Format(event)

	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.sessions[event.Session]
	if !ok {
		if len(f.sessions) >= f.maxSessions {
			f.evictOldestLocked()
		}
		r = &ring{items: make([]Message, f.size)}
		f.sessions[event.Session] = r
	}
	f.seq++
	r.touched = f.seq
	r.push(msg)
}

// evictOldestLocked удаляет сессию с самым давним уведомлением. Вызывается под f.mu.
func (f *Feed) evictOldestLocked() {
	var (
		oldest  string
		touched uint64
		found   bool
	)
	for session, r := range f.sessions {
		if !found || r.touched < touched {
			oldest, touched, found = session, r.touched, true
		}
	}
	if found {
		delete(f.sessions, oldest)
	}
}

// Sessions возвращает число сессий, для которых хранятся уведомления.
func (f *Feed) Sessions() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.sessions)
}

// Recent возвращает уведомления сессии, самое новое идёт последним.
func (f *Feed) Recent(session string) []Message {
	f.mu.RLock()
	defer f.mu.RUnlock()

	r, ok := f.sessions[session]
	if !ok {
		return []Message{}
	}
	return r.snapshot()
}

var _ domain.NotificationSink = (*Feed)(nil)
