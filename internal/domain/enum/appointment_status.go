package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// AppointmentStatus represents where an appointment is in its lifecycle
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// IsValid reports whether s is a known status
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusConfirmed,
		AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

// IsBillable reports whether a bill may be generated for the appointment
func (s AppointmentStatus) IsBillable() bool {
	return s == AppointmentStatusCompleted
}

func (s AppointmentStatus) String() string {
	return string(s)
}

// ParseAppointmentStatus parses a query-string status
func ParseAppointmentStatus(str string) (AppointmentStatus, error) {
	s := AppointmentStatus(str)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid appointment status: %q", str)
	}
	return s, nil
}

func (s AppointmentStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (s *AppointmentStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = AppointmentStatus(str)
	return nil
}

func (s AppointmentStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *AppointmentStatus) Scan(value interface{}) error {
	if value == nil {
		*s = AppointmentStatusScheduled
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = AppointmentStatus(v)
	case []byte:
		*s = AppointmentStatus(string(v))
	}
	return nil
}
