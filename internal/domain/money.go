package domain

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// moneyExponent: количество знаков после запятой в минимальных денежных единицах (центы).
const moneyExponent = 2

var minorUnitsPerMajor = decimal.New(1, moneyExponent)

// Money хранит денежную сумму в минимальных единицах (центах), чтобы итоги
// считались точно и не накапливали ошибку округления float64.
type Money int64

// MoneyFromDecimal переводит десятичную сумму в минимальные единицы.
// Суммы с точностью выше цента и отрицательные суммы отклоняются.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	if d.IsNegative() {
		return 0, ErrPriceNegative
	}
	minor := d.Mul(minorUnitsPerMajor)
	if !minor.IsInteger() {
		return 0, ErrPriceInvalidPrecision
	}
	return Money(minor.IntPart()), nil
}

// ParseMoney разбирает строку вида "12.50".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse money %q: %w", s, err)
	}
	return MoneyFromDecimal(d)
}

// MustParseMoney: вариант ParseMoney для констант и тестов.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Decimal возвращает сумму в основных единицах.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -moneyExponent)
}

// Minor возвращает сумму в центах.
func (m Money) Minor() int64 {
	return int64(m)
}

// Mul умножает цену на количество.
func (m Money) Mul(qty int) Money {
	return m * Money(qty)
}

// String форматирует сумму с двумя знаками после запятой: "25.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(moneyExponent)
}

// MarshalJSON кодирует сумму десятичным числом (12.5), как в сохранённой корзине.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON принимает число или строку и переводит в центы без float64.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if bytes.Equal(raw, []byte("null")) {
		*m = 0
		return nil
	}
	raw = bytes.Trim(raw, `"`)
	parsed, err := ParseMoney(string(raw))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
