package domain

// MaxLineQuantity — максимальное количество одного товара в корзине.
// Вместе с MaxProductPrice держит суммы корзины далеко от переполнения int64.
const MaxLineQuantity = 999

// LineItem — одна строка корзины: товар и запрошенное количество.
type LineItem struct {
	// ID строки генерируется при добавлении и не меняется, в отличие от ID товара.
	ID       string  `json:"id"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal возвращает price * quantity для строки.
func (li LineItem) Subtotal() Money {
	return li.Product.Price.Mul(li.Quantity)
}

// Cart — упорядоченный список строк; порядок вставки совпадает с порядком отображения.
type Cart struct {
	Items []LineItem
}

// IndexOf возвращает позицию строки с товаром productID или -1.
func (c *Cart) IndexOf(productID string) int {
	for i := range c.Items {
		if c.Items[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

// TotalItems возвращает сумму количеств по всем строкам.
func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// TotalPrice возвращает сумму price * quantity по всем строкам в центах.
func (c *Cart) TotalPrice() Money {
	var total Money
	for _, item := range c.Items {
		total += item.Subtotal()
	}
	return total
}

// IsEmpty сообщает, есть ли в корзине хотя бы одна строка.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clone возвращает копию, которую можно отдавать наружу без риска мутаций.
func (c *Cart) Clone() Cart {
	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)
	return Cart{Items: items}
}

// ValidateInvariants проверяет уникальность товаров и количества в пределах 1..MaxLineQuantity.
func (c *Cart) ValidateInvariants() []error {
	var errs []error

	seen := make(map[string]struct{}, len(c.Items))
	for _, item := range c.Items {
		if item.ID == "" {
			errs = append(errs, ErrLineIDRequired)
		}
		if err := item.Product.Validate(); err != nil {
			errs = append(errs, err)
		}
		switch {
		case item.Quantity <= 0:
			errs = append(errs, ErrItemQtyInvalid)
		case item.Quantity > MaxLineQuantity:
			errs = append(errs, ErrItemQtyTooLarge)
		}
		if _, dup := seen[item.Product.ID]; dup {
			errs = append(errs, ErrDuplicateProductLine)
		}
		seen[item.Product.ID] = struct{}{}
	}

	return errs
}
