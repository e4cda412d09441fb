package valueobject

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	USD Currency = "USD" // US Dollar (default, vendor listings are quoted in USD)
	CNY Currency = "CNY" // Chinese Yuan
	EUR Currency = "EUR" // Euro
	GBP Currency = "GBP" // British Pound
	JPY Currency = "JPY" // Japanese Yen
	HKD Currency = "HKD" // Hong Kong Dollar
)

// DefaultCurrency is the default currency for ladder prices
const DefaultCurrency = USD

var currencySymbols = map[Currency]string{
	USD: "$",
	CNY: "¥",
	EUR: "€",
	GBP: "£",
	JPY: "¥",
	HKD: "HK$",
}

// ParseCurrency normalizes and checks a currency code
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if _, ok := currencySymbols[c]; !ok {
		return "", fmt.Errorf("unsupported currency %q", code)
	}
	return c, nil
}

// Symbol returns the display symbol, falling back to the code itself
func (c Currency) Symbol() string {
	if s, ok := currencySymbols[c]; ok {
		return s
	}
	return string(c) + " "
}

// Money i// Money is an amount in one currency. Quotes carry unit price and total as Money.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney pairs amount with currency; an empty currency means DefaultCurrency.
func NewMoney(amount decimal.Decimal, currency Currency) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{amount: amount, currency: currency}
}

func (m Money) Amount() decimal.Decimal { return m.amount }

func (m Money) Currency() Currency { return m.currency }

// String renders "4.00 USD".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}

// Display renders the amount after the currency symbol, e.g. "$4.00".
func (m Money) Display() string {
	return m.DisplayWith(m.currency.Symbol())
}

// DisplayWith is Display with a caller chosen symbol.
func (m Money) DisplayWith(symbol string) string {
	return symbol + m.amount.StringFixed(2)
}

// MarshalJSON keeps the amount as a string so no precision is lost.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}{
		Amount:   m.amount.String(),
		Currency: m.currency,
	})
}
