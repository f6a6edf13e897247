// Package notify превращает события корзины в пользовательские уведомления
// и доставляет их получателям: в лог, в ленту сессии, в Kafka.
package notify

import (
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/ecocart/internal/domain"
)

// Message — уведомление в том виде, в каком его показывает клиент.
type Message struct {
	Kind        domain.EventKind `json:"kind"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	ProductID   string           `json:"product_id,omitempty"`
	OrderID     string           `json:"order_id,omitempty"`
	At          time.Time        `json:"at"`
}

// Format строит заголовок и текст уведомления по событию.
func Format(event domain.Event) Message {
	msg := Message{
		Kind:      event.Kind,
		ProductID: event.ProductID,
		OrderID:   event.OrderID,
		At:        event.At,
	}

	switch event.Kind {
	case domain.EventAdded:
		msg.Title = "Added to cart"
		msg.Description = fmt.Sprintf("%s added to cart", displayName(event))
	case domain.EventQuantityUpdated:
		msg.Title = "Added to cart"
		msg.Description = fmt.Sprintf("%s quantity updated", displayName(event))
	case domain.EventRemoved:
		msg.Title = "Removed from cart"
		msg.Description = "Item removed successfully"
	case domain.EventCleared:
		msg.Title = "Cart cleared"
		msg.Description = "All items removed from cart"
	case domain.EventOrderPlaced:
		msg.Title = "Order placed successfully!"
		msg.Description = "You'll receive a confirmation email shortly"
	default:
		msg.Title = string(event.Kind)
	}
	return msg
}

func displayName(event domain.Event) string {
	if event.ProductName != "" {
		return event.ProductName
	}
	return event.ProductID
}
