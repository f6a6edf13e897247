package domain

import "time"

// OrderStatus описывает жизненный цикл заказа на самовывоз.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, аптека ещё не подтвердила.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed — заказ принят, аптека собирает его.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusReady — заказ готов к выдаче.
	OrderStatusReady OrderStatus = "ready"
	// OrderStatusCompleted — заказ выдан покупателю.
	OrderStatusCompleted OrderStatus = "completed"
	// OrderStatusCancelled — заказ отменён.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Location — координаты аптеки.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Pharmacy — пункт самовывоза.
type Pharmacy struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Address  string   `json:"address"`
	City     string   `json:"city"`
	Phone    string   `json:"phone"`
	Verified bool     `json:"verified"`
	Location Location `json:"location"`
}

// Order фиксирует состав корзины и итог на момент оформления.
type Order struct {
	ID        string       `json:"id"`
	Session   string       `json:"session"`
	Items     []LineItem   `json:"items"`
	Summary   OrderSummary `json:"summary"`
	Pharmacy  Pharmacy     `json:"pharmacy"`
	Status    OrderStatus  `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if len(o.Items) == 0 {
		errs = append(errs, ErrCartEmpty)
	}
	if o.Pharmacy.ID == "" {
		errs = append(errs, ErrPharmacyRequired)
	}

	// Сверяем subtotal с суммой позиций: qty * price.
	var calc Money
	for _, item := range o.Items {
		if item.Quantity <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		calc += item.Subtotal()
	}
	if calc != o.Summary.Subtotal {
		errs = append(errs, ErrSubtotalMismatch)
	}

	return errs
}
