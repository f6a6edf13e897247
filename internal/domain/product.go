package domain

import "strings"

// ProductType — категория товара в каталоге.
type ProductType string

const (
	ProductTypeCup       ProductType = "cup"
	ProductTypePad       ProductType = "pad"
	ProductTypeTampon    ProductType = "tampon"
	ProductTypeUnderwear ProductType = "underwear"
)

// MaxProductPrice ограничивает цену одной единицы товара (1 000 000.00).
const MaxProductPrice Money = 1_000_000_00

// Product — неизменяемая запись каталога. Корзина хранит её копию (snapshot),
// поэтому изменения каталога не влияют на уже добавленные позиции.
type Product struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Type        ProductType `json:"type,omitempty"`
	Brand       string      `json:"brand"`
	Price       Money       `json:"price"`
	Description string      `json:"description,omitempty"`
	Image       string      `json:"image,omitempty"`
	Capacity    string      `json:"capacity,omitempty"`
	Material    string      `json:"material,omitempty"`
	Lifespan    string      `json:"lifespan,omitempty"`
	InStock     bool        `json:"inStock"`
	Rating      float64     `json:"rating,omitempty"`
	ReviewCount int         `json:"reviewCount,omitempty"`
}

// Validate проверяет то, что нужно корзине: идентификатор и цену в допустимых пределах.
func (p Product) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrProductIDRequired
	}
	if p.Price < 0 {
		return ErrPriceNegative
	}
	if p.Price > MaxProductPrice {
		return ErrPriceTooLarge
	}
	return nil
}
