package enum

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
)

// PaymentMethod represents how a patient paid
type PaymentMethod string

const (
	PaymentMethodCash  PaymentMethod = "cash"
	PaymentMethodCard  PaymentMethod = "card"
	PaymentMethodGCash PaymentMethod = "gcash"
)

// IsValid reports whether m is an accepted payment method
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodGCash:
		return true
	}
	return false
}

// Label returns the display name of the method
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentMethodCash:
		return "Cash"
	case PaymentMethodCard:
		return "Card"
	case PaymentMethodGCash:
		return "GCash"
	}
	return string(m)
}

func (m PaymentMethod) String() string {
	return string(m)
}

func (m PaymentMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(m))
}

// UnmarshalJSON normalizes case so "GCash" and "gcash" are the same method.
func (m *PaymentMethod) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*m = PaymentMethod(strings.ToLower(strings.TrimSpace(str)))
	return nil
}

func (m PaymentMethod) Value() (driver.Value, error) {
	return string(m), nil
}

func (m *PaymentMethod) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*m = PaymentMethod(v)
	case []byte:
		*m = PaymentMethod(string(v))
	}
	return nil
}
