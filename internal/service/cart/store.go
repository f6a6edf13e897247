package cart

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ecocart/internal/domain"
	"github.com/vladislavdragonenkov/ecocart/internal/metrics"
)

const (
	// DefaultKey — ключ, под которым хранится корзина сессии по умолчанию.
	DefaultKey = "cart"

	defaultPersistTimeout = 2 * time.Second

	// DefaultSessionIdleTTL — через сколько бездействия Registry выгружает Store сессии.
	DefaultSessionIdleTTL = 30 * time.Minute
)

// Options задаёт параметры Store и Registry.
type Options struct {
	Logger             *log.Entry
	Sink               domain.NotificationSink
	Metrics            *metrics.CartMetrics
	Session            string
	NotifyOnNoopRemove bool
	PersistTimeout     time.Duration
	SessionIdleTTL     time.Duration
	NewID              func() string
	Now                func() time.Time
}

// Option настраивает Store.
type Option func(*Options)

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithSink задаёт получателя уведомлений.
func WithSink(sink domain.NotificationSink) Option {
	return func(opts *Options) {
		opts.Sink = sink
	}
}

// WithMetrics подключает Prometheus-метрики.
func WithMetrics(m *metrics.CartMetrics) Option {
	return func(opts *Options) {
		opts.Metrics = m
	}
}

// WithSession помечает уведомления идентификатором сессии.
func WithSession(session string) Option {
	return func(opts *Options) {
		opts.Session = session
	}
}

// WithNotifyOnNoopRemove управляет уведомлением Removed, когда удалять было нечего.
// По умолчанию уведомление отправляется всегда.
func WithNotifyOnNoopRemove(enabled bool) Option {
	return func(opts *Options) {
		opts.NotifyOnNoopRemove = enabled
	}
}

// WithSessionIdleTTL задаёт, сколько Store может простаивать в Registry до выгрузки.
// 0 отключает выгрузку.
func WithSessionIdleTTL(ttl time.Duration) Option {
	return func(opts *Options) {
		opts.SessionIdleTTL = ttl
	}
}

// WithPersistTimeout ограничивает время одного чтения или записи в хранилище.
func WithPersistTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.PersistTimeout = timeout
	}
}

// WithIDGenerator подменяет генератор идентификаторов строк.
func WithIDGenerator(newID func() string) Option {
	return func(opts *Options) {
		opts.NewID = newID
	}
}

// WithClock подменяет источник времени для уведомлений.
func WithClock(now func() time.Time) Option {
	return func(opts *Options) {
		opts.Now = now
	}
}

// Store владеет строками одной корзины. Каждая мутация выполняется под mutex:
// поиск строки, изменение и сериализация атомарны относительно других мутаций.
// Запись в хранилище идёт после снятия блокировки, но строго по порядку версий,
// поэтому чтения сразу видят результат, а устаревший снимок не перетрёт новый.
// Если сохранённую корзину не удалось прочитать, Store работает только в памяти
// и ничего не пишет: иначе первая мутация затёрла бы сохранённую корзину.
type Store struct {
	kv  domain.KVStore
	key string

	logger             *log.Entry
	sink               domain.NotificationSink
	metrics            *metrics.CartMetrics
	session            string
	notifyOnNoopRemove bool
	persistTimeout     time.Duration
	newID              func() string
	now                func() time.Time
	restored           bool

	mu      sync.RWMutex
	cart    domain.Cart
	version uint64

	persistMu        sync.Mutex
	persistedVersion atomic.Uint64
}

// Open создаёт Store и восстанавливает корзину из kv по ключу key.
// Отсутствующее или повреждённое значение даёт пустую корзину, ошибкой это не считается.
// Ошибка чтения тоже даёт пустую корзину, но такой Store не сохраняет изменения (см. Restored).
func Open(ctx context.Context, kv domain.KVStore, key string, options ...Option) *Store {
	opts := Options{
		NotifyOnNoopRemove: true,
		PersistTimeout:     defaultPersistTimeout,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "cart-store")
	}
	if key == "" {
		key = DefaultKey
	}
	if opts.PersistTimeout <= 0 {
		opts.PersistTimeout = defaultPersistTimeout
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}

	s := &Store{
		kv:                 kv,
		key:                key,
		logger:             logger.WithField("cart_key", key),
		sink:               opts.Sink,
		metrics:            opts.Metrics,
		session:            opts.Session,
		notifyOnNoopRemove: opts.NotifyOnNoopRemove,
		persistTimeout:     opts.PersistTimeout,
		newID:              opts.NewID,
		now:                opts.Now,
	}
	s.cart, s.restored = s.restore(ctx)
	s.metrics.RecordCartLoaded()
	return s
}

func (s *Store) restore(ctx context.Context) (domain.Cart, bool) {
	if s.kv == nil {
		s.metrics.RecordRestore(metrics.RestoreEmpty)
		return domain.Cart{}, true
	}

	// Отмена запроса клиента не должна оставлять сессию без корзины.
	readCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout)
	defer cancel()

	raw, err := s.kv.Get(readCtx, s.key)
	switch {
	case errors.Is(err, domain.ErrKeyNotFound):
		s.metrics.RecordRestore(metrics.RestoreEmpty)
		return domain.Cart{}, true
	case err != nil:
		s.logger.WithError(err).Warn("не удалось прочитать сохранённую корзину, изменения не будут сохраняться")
		s.metrics.RecordRestore(metrics.RestoreFailed)
		return domain.Cart{}, false
	}

	restored, err := Decode(raw)
	if err != nil {
		s.logger.WithError(err).Warn("сохранённая корзина повреждена, начинаем с пустой")
		s.metrics.RecordRestore(metrics.RestoreMalformed)
		return domain.Cart{}, true
	}

	s.logger.WithField("lines", len(restored.Items)).Debug("cart restored")
	s.metrics.RecordRestore(metrics.RestoreLoaded)
	return restored, true
}

// Key возвращает ключ хранилища корзины.
func (s *Store) Key() string {
	return s.key
}

// Restored сообщает, удалось ли прочитать хранилище при открытии.
// false означает, что Store работает только в памяти и не пишет в kv.
func (s *Store) Restored() bool {
	return s.restored
}

// AddToCart добавляет товар: повторное добавление увеличивает количество строки на 1,
// новый товар получает новую строку с количеством 1. Строка с MaxLineQuantity
// не растёт дальше, возвращается ErrItemQtyTooLarge.
func (s *Store) AddToCart(ctx context.Context, product domain.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	var (
		kind domain.EventKind
		name string
		qty  int
	)
	if idx := s.cart.IndexOf(product.ID); idx >= 0 {
		if s.cart.Items[idx].Quantity >= domain.MaxLineQuantity {
			s.mu.Unlock()
			return domain.ErrItemQtyTooLarge
		}
		s.cart.Items[idx].Quantity++
		qty = s.cart.Items[idx].Quantity
		// Имя берём из снимка в корзине: строка уже зафиксирована при первом добавлении.
		kind, name = domain.EventQuantityUpdated, s.cart.Items[idx].Product.Name
	} else {
		s.cart.Items = append(s.cart.Items, domain.LineItem{
			ID:       s.newID(),
			Product:  product,
			Quantity: 1,
		})
		qty = 1
		kind, name = domain.EventAdded, product.Name
	}
	payload, version := s.snapshotLocked()
	s.mu.Unlock()

	s.metrics.RecordOperation(metrics.OperationAdd)
	s.persist(ctx, payload, version)
	s.notify(domain.Event{
		Kind:        kind,
		ProductID:   product.ID,
		ProductName: name,
		Quantity:    qty,
	})
	return nil
}

// RemoveFromCart удаляет строку товара; отсутствие строки не ошибка.
func (s *Store) RemoveFromCart(ctx context.Context, productID string) {
	s.mu.Lock()
	idx := s.cart.IndexOf(productID)
	var name string
	if idx >= 0 {
		name = s.cart.Items[idx].Product.Name
		s.cart.Items = append(s.cart.Items[:idx], s.cart.Items[idx+1:]...)
	}
	payload, version := s.snapshotLocked()
	s.mu.Unlock()

	s.metrics.RecordOperation(metrics.OperationRemove)
	s.persist(ctx, payload, version)

	if idx < 0 && !s.notifyOnNoopRemove {
		return
	}
	s.notify(domain.Event{
		Kind:        domain.EventRemoved,
		ProductID:   productID,
		ProductName: name,
	})
}

// UpdateQuantity выставляет количество строки ровно в quantity.
// quantity <= 0 равносильно RemoveFromCart, включая уведомление.
// quantity больше MaxLineQuantity отклоняется без изменений.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		s.RemoveFromCart(ctx, productID)
		return nil
	}
	if quantity > domain.MaxLineQuantity {
		return domain.ErrItemQtyTooLarge
	}

	s.mu.Lock()
	if idx := s.cart.IndexOf(productID); idx >= 0 {
		s.cart.Items[idx].Quantity = quantity
	}
	payload, version := s.snapshotLocked()
	s.mu.Unlock()

	s.metrics.RecordOperation(metrics.OperationUpdateQuantity)
	s.persist(ctx, payload, version)
	return nil
}

// ClearCart очищает корзину и сохраняет пустое состояние.
func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	s.cart.Items = nil
	payload, version := s.snapshotLocked()
	s.mu.Unlock()

	s.metrics.RecordOperation(metrics.OperationClear)
	s.persist(ctx, payload, version)
	s.notify(domain.Event{Kind: domain.EventCleared})
}

// SettleOrder убирает из корзины оформленные строки ordered, снятые на версии version.
// Если с тех пор корзина не менялась, она очищается целиком с уведомлением Cleared.
// Иначе вычитаются только заказанные количества: товары, добавленные во время
// оформления, остаются в корзине.
func (s *Store) SettleOrder(ctx context.Context, ordered []domain.LineItem, version uint64) {
	s.mu.Lock()
	if s.version == version {
		s.cart.Items = nil
		payload, current := s.snapshotLocked()
		s.mu.Unlock()

		s.metrics.RecordOperation(metrics.OperationClear)
		s.persist(ctx, payload, current)
		s.notify(domain.Event{Kind: domain.EventCleared})
		return
	}

	for _, line := range ordered {
		idx := s.cart.IndexOf(line.Product.ID)
		if idx < 0 {
			continue
		}
		if remaining := s.cart.Items[idx].Quantity - line.Quantity; remaining > 0 {
			s.cart.Items[idx].Quantity = remaining
			continue
		}
		s.cart.Items = append(s.cart.Items[:idx], s.cart.Items[idx+1:]...)
	}
	payload, current := s.snapshotLocked()
	left := len(s.cart.Items)
	s.mu.Unlock()

	s.metrics.RecordOperation(metrics.OperationClear)
	s.persist(ctx, payload, current)
	s.logger.WithFields(log.Fields{
		"snapshot_version": version,
		"lines_left":       left,
	}).Info("корзина менялась во время оформления, позиции вне заказа оставлены")
}

// Items возвращает копию строк в порядке добавления.
func (s *Store) Items() []domain.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone().Items
}

// Snapshot возвращает копию корзины.
func (s *Store) Snapshot() domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

// SnapshotWithVersion возвращает копию корзины и версию, к которой она относится.
func (s *Store) SnapshotWithVersion() (domain.Cart, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone(), s.version
}

// hasUnsavedChanges сообщает, есть ли изменения, которые не дошли до хранилища.
func (s *Store) hasUnsavedChanges() bool {
	s.mu.RLock()
	version := s.version
	s.mu.RUnlock()
	return version > s.persistedVersion.Load()
}

// TotalItems возвращает сумму количеств.
func (s *Store) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.TotalItems()
}

// TotalPrice возвращает сумму price * quantity в центах.
func (s *Store) TotalPrice() domain.Money {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.TotalPrice()
}

// snapshotLocked сериализует текущее состояние и присваивает ему версию.
// Вызывается под s.mu.
func (s *Store) snapshotLocked() (string, uint64) {
	s.version++
	payload, err := Encode(s.cart)
	if err != nil {
		s.logger.WithError(err).Error("failed to encode cart")
		return "", s.version
	}
	return payload, s.version
}

// persist пишет снимок в хранилище. Ошибка записи не откатывает изменение в памяти.
func (s *Store) persist(ctx context.Context, payload string, version uint64) {
	if s.kv == nil || payload == "" {
		return
	}
	if !s.restored {
		s.logger.WithField("version", version).Debug("корзина не была прочитана из хранилища, запись пропущена")
		return
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if version <= s.persistedVersion.Load() {
		// Более новый снимок уже записан.
		return
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout)
	defer cancel()

	start := time.Now()
	err := s.kv.Set(writeCtx, s.key, payload)
	s.metrics.RecordPersist(time.Since(start), err)
	if err != nil {
		s.logger.WithError(err).WithField("version", version).Warn("не удалось сохранить корзину, состояние в памяти остаётся актуальным")
		return
	}
	s.persistedVersion.Store(version)
}

func (s *Store) notify(event domain.Event) {
	if s.sink == nil {
		return
	}
	event.Session = s.session
	event.At = s.now()
	s.sink.Notify(event)
}
