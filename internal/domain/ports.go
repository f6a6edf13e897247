package domain

import "context"

// KVStore — долговременное key-value хранилище для сериализованной корзины.
type KVStore interface {
	// Get возвращает значение или ErrKeyNotFound, если ключа нет.
	Get(ctx context.Context, key string) (string, error)
	// Set перезаписывает значение по ключу.
	Set(ctx context.Context, key, value string) error
	// Remove удаляет ключ; отсутствие ключа ошибкой не считается.
	Remove(ctx context.Context, key string) error
}

// Pinger реализуют хранилища, которые умеют проверять своё подключение.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NotificationSink принимает уведомления корзины и заказов для показа пользователю.
type NotificationSink interface {
	Notify(event Event)
}

// NotificationSinkFunc адаптирует функцию к NotificationSink.
type NotificationSinkFunc func(event Event)

// Notify вызывает f(event).
func (f NotificationSinkFunc) Notify(event Event) { f(event) }

// ProductCatalog — только чтение каталога товаров.
type ProductCatalog interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (Product, error)
}

// PharmacyDirectory — справочник аптек для самовывоза.
type PharmacyDirectory interface {
	List(ctx context.Context) ([]Pharmacy, error)
	Get(ctx context.Context, id string) (Pharmacy, error)
}

// OrderRepository хранит оформленные заказы.
type OrderRepository interface {
	Create(ctx context.Context, order Order) error
	Get(ctx context.Context, id string) (Order, error)
	ListBySession(ctx context.Context, session string, limit int) ([]Order, error)
}
