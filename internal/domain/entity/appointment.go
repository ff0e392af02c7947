package entity

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/dentacare/clinic-api/internal/domain/enum"
	"github.com/dentacare/clinic-api/pkg/money"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Appointment represents a booked visit. Completed appointments are billed once.
type Appointment struct {
	ID              uuid.UUID              `gorm:"type:uuid;primary_key" json:"id"`
	PatientID       *uuid.UUID             `gorm:"type:uuid;index" json:"patientId,omitempty"`
	PatientName     string                 `gorm:"size:255;not null" json:"patientName"`
	PatientEmail    string                 `gorm:"size:255" json:"patientEmail,omitempty"`
	PatientPhone    string                 `gorm:"size:50" json:"patientPhone,omitempty"`
	AppointmentDate time.Time              `gorm:"not null;index" json:"appointmentDate"`
	Service         string                 `gorm:"size:255" json:"service,omitempty"`
	ServiceDetails  []ServiceDetail        `gorm:"serializer:json;type:jsonb" json:"serviceDetails,omitempty"`
	Status          enum.AppointmentStatus `gorm:"size:20;not null;default:'scheduled';index" json:"status"`
	HasBill         bool                   `gorm:"not null;default:false" json:"has_bill"`
	BillID          *uuid.UUID             `gorm:"type:uuid" json:"billId,omitempty"`
	Notes           string                 `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt         `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new appointment
func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Appointment model
func (Appointment) TableName() string {
	return "appointments"
}

// IsLinkedTo reports whether the appointment already points at a bill
func (a *Appointment) IsLinkedTo(billID uuid.UUID) bool {
	return a.HasBill && a.BillID != nil && *a.BillID == billID
}

// ServiceDetail is one service performed during an appointment. Records come
// from several client versions, so prices and teeth are decoded leniently.
type ServiceDetail struct {
	ServiceID     string            `json:"serviceId,omitempty"`
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	PricingModel  enum.PricingModel `json:"pricingModel,omitempty"`
	BasePrice     money.Price       `json:"basePrice"`
	FinalPrice    money.Price       `json:"finalPrice"`
	TotalAmount   money.Price       `json:"totalAmount"`
	SelectedTeeth TeethList         `json:"selectedTeeth,omitempty"`
	Completed     *bool             `json:"completed,omitempty"`
}

// IsCompleted treats services without a completion flag as completed.
func (d ServiceDetail) IsCompleted() bool {
	return d.Completed == nil || *d.Completed
}

// TeethList is an ordered list of FDI tooth numbers such as "11" or "48".
type TeethList []string

// UnmarshalJSON accepts strings or numbers and skips anything else.
func (t *TeethList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = nil
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*t = nil
		return nil
	}

	teeth := make(TeethList, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			if s != "" {
				teeth = append(teeth, s)
			}
			continue
		}
		var n json.Number
		if err := json.Unmarshal(r, &n); err == nil {
			if i, err := n.Int64(); err == nil {
				teeth = append(teeth, strconv.FormatInt(i, 10))
			}
		}
	}
	*t = teeth
	return nil
}
