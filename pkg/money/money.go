// Package money converts between decimal peso amounts and the integer
// centavo values stored in the database.
package money

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencySymbol is the Philippine peso sign used for display.
const CurrencySymbol = "₱"

// MaxCents is the largest amount accepted anywhere in billing: ₱1,000,000,000.00.
const MaxCents int64 = 100_000_000_000

// ErrOutOfRange is returned for amounts whose magnitude exceeds MaxCents.
var ErrOutOfRange = errors.New("amount exceeds ₱1,000,000,000.00")

var maxCentsDecimal = decimal.NewFromInt(MaxCents)

// FromDecimal converts a peso amount to centavos, rounding half away from zero.
func FromDecimal(d decimal.Decimal) (int64, error) {
	cents := d.Shift(2).Round(0)
	if cents.Abs().GreaterThan(maxCentsDecimal) {
		return 0, ErrOutOfRange
	}
	return cents.IntPart(), nil
}

// Parse converts a peso string such as "1234.50" to centavos.
func Parse(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return FromDecimal(d)
}

// Mul returns cents * quantity, or ErrOutOfRange when the product's magnitude exceeds MaxCents.
func Mul(cents int64, quantity int) (int64, error) {
	if quantity < 0 || !inRange(cents) {
		return 0, ErrOutOfRange
	}
	abs := cents
	if abs < 0 {
		abs = -abs
	}
	if quantity > 0 && abs > MaxCents/int64(quantity) {
		return 0, ErrOutOfRange
	}
	return cents * int64(quantity), nil
}

// Add returns a + b, or ErrOutOfRange when either operand or the sum exceeds MaxCents in magnitude.
func Add(a, b int64) (int64, error) {
	if !inRange(a) || !inRange(b) || !inRange(a+b) {
		return 0, ErrOutOfRange
	}
	return a + b, nil
}

func inRange(cents int64) bool {
	return cents >= -MaxCents && cents <= MaxCents
}

// ToDecimal converts centavos to a peso decimal.
func ToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Float converts centavos to a float peso amount for JSON responses.
func Float(cents int64) float64 {
	f, _ := ToDecimal(cents).Float64()
	return f
}

// FormatPeso renders centavos the way the clinic displays money: ₱1,234.50
func FormatPeso(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	fixed := ToDecimal(cents).StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	return sign + CurrencySymbol + b.String() + "." + frac
}

// Price is a leniently decoded amount from loosely typed service records.
// A JSON null or missing field leaves Valid false. Numbers and numeric strings
// are parsed; anything else, including amounts above MaxCents, decodes as a
// valid zero so a bill can still be produced.
type Price struct {
	Cents int64
	Valid bool
}

// NewPrice returns a valid price of the given centavos.
func NewPrice(cents int64) Price {
	return Price{Cents: cents, Valid: true}
}

// Coalesce returns the first valid price in order, or zero.
func Coalesce(prices ...Price) int64 {
	for _, p := range prices {
		if p.Valid {
			return p.Cents
		}
	}
	return 0
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = Price{}
		return nil
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		*p = NewPrice(0)
		return nil
	}

	var (
		cents int64
		err   error
	)
	switch v := raw.(type) {
	case float64:
		d, parseErr := decimal.NewFromString(string(data))
		if parseErr != nil {
			d = decimal.NewFromFloat(v)
		}
		cents, err = FromDecimal(d)
	case string:
		cents, err = Parse(v)
	}
	if err != nil {
		cents = 0
	}
	*p = NewPrice(cents)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(Float(p.Cents))
}
