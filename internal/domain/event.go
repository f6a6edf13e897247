package domain

import "time"

// EventKind — тип уведомления, которое корзина отдаёт слою представления.
type EventKind string

const (
	EventAdded           EventKind = "cart.item_added"
	EventQuantityUpdated EventKind = "cart.quantity_updated"
	EventRemoved         EventKind = "cart.item_removed"
	EventCleared         EventKind = "cart.cleared"
	EventOrderPlaced     EventKind = "order.placed"
)

// Event — структурированное уведомление без готового текста: форматирование
// и локализация остаются на стороне NotificationSink.
type Event struct {
	Kind        EventKind `json:"kind"`
	Session     string    `json:"session,omitempty"`
	ProductID   string    `json:"product_id,omitempty"`
	ProductName string    `json:"product_name,omitempty"`
	// Quantity: новое количество в строке (для Added/QuantityUpdated).
	Quantity int       `json:"quantity,omitempty"`
	OrderID  string    `json:"order_id,omitempty"`
	Total    Money     `json:"total,omitempty"`
	At       time.Time `json:"at"`
}
