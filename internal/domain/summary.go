package domain

import "github.com/shopspring/decimal"

// DefaultTaxRateBP — ставка налога 8% в базисных пунктах.
const DefaultTaxRateBP = 800

// MaxTaxRateBP — верхняя граница ставки (100%).
const MaxTaxRateBP = 10000

var basisPointsPerUnit = decimal.NewFromInt(10000)

// OrderSummary — итог к оплате, который показывают корзина и оформление заказа.
type OrderSummary struct {
	Subtotal   Money `json:"subtotal"`
	Shipping   Money `json:"shipping"`
	Tax        Money `json:"tax"`
	GrandTotal Money `json:"grand_total"`
}

// CalculateSummary считает налог и итог по сумме корзины. Доставка всегда бесплатная
// (самовывоз из аптеки). Налог округляется до цента по правилу half-up,
// ставка приводится к диапазону 0..MaxTaxRateBP.
func CalculateSummary(subtotal Money, taxRateBP int64) OrderSummary {
	if subtotal < 0 {
		subtotal = 0
	}
	if taxRateBP < 0 {
		taxRateBP = 0
	}
	if taxRateBP > MaxTaxRateBP {
		taxRateBP = MaxTaxRateBP
	}
	// Произведение считается в decimal: subtotal*taxRateBP не помещается в int64 для больших сумм.
	// Round для неотрицательных значений совпадает с half-up.
	tax := Money(decimal.NewFromInt(int64(subtotal)).
		Mul(decimal.NewFromInt(taxRateBP)).
		Div(basisPointsPerUnit).
		Round(0).
		IntPart())
	var shipping Money
	return OrderSummary{
		Subtotal:   subtotal,
		Shipping:   shipping,
		Tax:        tax,
		GrandTotal: subtotal + shipping + tax,
	}
}
