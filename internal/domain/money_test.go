package domain_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/ecocart/internal/domain"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in   string
		want domain.Money
	}{
		{in: "0", want: 0},
		{in: "5.5", want: 550},
		{in: "5.50", want: 550},
		{in: "12", want: 1200},
		{in: "0.01", want: 1},
		{in: "1234.99", want: 123499},
	}

	for _, tc := range cases {
		got, err := domain.ParseMoney(tc.in)
		if err != nil {
			t.Fatalf("ParseMoney(%q) failed: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseMoney(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseMoney_Rejects(t *testing.T) {
	if _, err := domain.ParseMoney("-1.00"); !errors.Is(err, domain.ErrPriceNegative) {
		t.Fatalf("expected ErrPriceNegative, got %v", err)
	}
	if _, err := domain.ParseMoney("1.005"); !errors.Is(err, domain.ErrPriceInvalidPrecision) {
		t.Fatalf("expected ErrPriceInvalidPrecision, got %v", err)
	}
	if _, err := domain.ParseMoney("abc"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestMoneyFromDecimal(t *testing.T) {
	m, err := domain.MoneyFromDecimal(decimal.RequireFromString("25.50"))
	if err != nil {
		t.Fatalf("MoneyFromDecimal failed: %v", err)
	}
	if m.Minor() != 2550 {
		t.Fatalf("expected 2550 minor units, got %d", m.Minor())
	}
	if !m.Decimal().Equal(decimal.RequireFromString("25.5")) {
		t.Fatalf("unexpected decimal: %s", m.Decimal())
	}
}

func TestMoneyString(t *testing.T) {
	if s := domain.Money(2550).String(); s != "25.50" {
		t.Fatalf("expected 25.50, got %s", s)
	}
	if s := domain.Money(0).String(); s != "0.00" {
		t.Fatalf("expected 0.00, got %s", s)
	}
}

func TestMoneyJSON(t *testing.T) {
	data, err := json.Marshal(domain.Money(1250))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != "12.5" {
		t.Fatalf("expected 12.5, got %s", data)
	}

	var fromNumber domain.Money
	if err := json.Unmarshal([]byte("3.5"), &fromNumber); err != nil {
		t.Fatalf("unmarshal number failed: %v", err)
	}
	if fromNumber != 350 {
		t.Fatalf("expected 350, got %d", fromNumber)
	}

	var fromString domain.Money
	if err := json.Unmarshal([]byte(`"0.10"`), &fromString); err != nil {
		t.Fatalf("unmarshal string failed: %v", err)
	}
	if fromString != 10 {
		t.Fatalf("expected 10, got %d", fromString)
	}
}
