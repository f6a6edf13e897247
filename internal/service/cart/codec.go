package cart

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/ecocart/internal/domain"
)

// ErrMalformedCart — сохранённое значение не удалось разобрать или оно нарушает инварианты.
var ErrMalformedCart = errors.New("malformed persisted cart")

// Encode сериализует корзину в JSON-массив строк {id, product, quantity}.
// Пустая корзина кодируется как "[]", а не как отсутствие значения.
func Encode(c domain.Cart) (string, error) {
	items := c.Items
	if items == nil {
		items = []domain.LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("marshal cart: %w", err)
	}
	return string(data), nil
}

// Decode восстанавливает корзину из сохранённого значения.
func Decode(raw string) (domain.Cart, error) {
	var items []domain.LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return domain.Cart{}, fmt.Errorf("%w: %v", ErrMalformedCart, err)
	}
	c := domain.Cart{Items: items}
	if errs := c.ValidateInvariants(); len(errs) > 0 {
		return domain.Cart{}, fmt.Errorf("%w: %v", ErrMalformedCart, errors.Join(errs...))
	}
	return c, nil
}
