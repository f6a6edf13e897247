package kafka

import (
	"time"

	"github.com/vladislavdragonenkov/ecocart/internal/domain"
	"github.com/vladislavdragonenkov/ecocart/internal/notify"
)

// Topics для Kafka
const (
	TopicCartEvents  = "ecocart.cart.events"
	TopicOrderEvents = "ecocart.order.events"
)

// TopicFor выбирает topic по типу события: заказы отдельно от изменений корзины.
func TopicFor(kind domain.EventKind) string {
	if kind == domain.EventOrderPlaced {
		return TopicOrderEvents
	}
	return TopicCartEvents
}

// CartEvent — сообщение о событии корзины или заказа.
type CartEvent struct {
	EventType   domain.EventKind `json:"event_type"`
	Session     string           `json:"session"`
	ProductID   string           `json:"product_id,omitempty"`
	ProductName string           `json:"product_name,omitempty"`
	Quantity    int              `json:"quantity,omitempty"`
	OrderID     string           `json:"order_id,omitempty"`
	// Total содержит сумму заказа строкой "29.70".
	Total       string    `json:"total,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewCartEvent собирает сообщение из доменного события.
func NewCartEvent(event domain.Event) *CartEvent {
	msg := notify.Format(event)
	ts := event.At
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	out := &CartEvent{
		EventType:   event.Kind,
		Session:     event.Session,
		ProductID:   event.ProductID,
		ProductName: event.ProductName,
		Quantity:    event.Quantity,
		OrderID:     event.OrderID,
		Title:       msg.Title,
		Description: msg.Description,
		Timestamp:   ts,
	}
	if event.Kind == domain.EventOrderPlaced {
		out.Total = event.Total.String()
	}
	return out
}

// Key возвращает ключ партиционирования: события одной сессии идут в одну партицию по порядку.
func (e *CartEvent) Key() string {
	if e.Session != "" {
		return e.Session
	}
	return e.OrderID
}
