package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// BillStatus represents the payment state of a bill
type BillStatus string

const (
	BillStatusPending BillStatus = "pending"
	BillStatusPartial BillStatus = "partial"
	BillStatusPaid    BillStatus = "paid"
)

// rank orders statuses along the only allowed direction: pending -> partial -> paid.
func (s BillStatus) rank() int {
	switch s {
	case BillStatusPartial:
		return 1
	case BillStatusPaid:
		return 2
	}
	return 0
}

// CanAdvanceTo reports whether moving from s to next never regresses.
func (s BillStatus) CanAdvanceTo(next BillStatus) bool {
	return next.rank() >= s.rank()
}

// IsValid reports whether s is a known status
func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusPending, BillStatusPartial, BillStatusPaid:
		return true
	}
	return false
}

func (s BillStatus) String() string {
	return string(s)
}

// ParseBillStatus parses a query-string status
func ParseBillStatus(str string) (BillStatus, error) {
	s := BillStatus(str)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid bill status: %q", str)
	}
	return s, nil
}

func (s BillStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (s *BillStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = BillStatus(str)
	return nil
}

func (s BillStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *BillStatus) Scan(value interface{}) error {
	if value == nil {
		*s = BillStatusPending
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = BillStatus(v)
	case []byte:
		*s = BillStatus(string(v))
	}
	return nil
}
