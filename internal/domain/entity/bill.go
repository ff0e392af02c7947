package entity

import (
	"encoding/json"
	"time"

	"github.com/dentacare/clinic-api/internal/domain/enum"
	"github.com/dentacare/clinic-api/pkg/money"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bill is a point-in-time snapshot of charges for one completed appointment
// plus an append-only payment ledger. Amounts are stored in centavos.
type Bill struct {
	ID             uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	AppointmentID  uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex" json:"appointmentId"`
	PatientID      *uuid.UUID       `gorm:"type:uuid;index" json:"patientId,omitempty"`
	PatientName    string           `gorm:"size:255;not null;index" json:"patientName"`
	PatientEmail   string           `gorm:"size:255" json:"patientEmail,omitempty"`
	PatientPhone   string           `gorm:"size:50" json:"patientPhone,omitempty"`
	TotalAmount    int64            `gorm:"not null" json:"-"`
	PaidAmount     int64            `gorm:"not null;default:0" json:"-"`
	Status         enum.BillStatus  `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Notes          string           `gorm:"type:text" json:"notes"`
	CreatedBy      string           `gorm:"size:255" json:"createdBy"`
	UpdatedBy      string           `gorm:"size:255" json:"updatedBy,omitempty"`
	Version        int64            `gorm:"not null;default:1" json:"version"`
	CreatedAt      time.Time        `gorm:"index" json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
	Items          []BillItem       `gorm:"foreignKey:BillID" json:"items"`
	PaymentHistory []PaymentHistory `gorm:"foreignKey:BillID" json:"paymentHistory"`
}

// OutstandingBalance is always derived, never stored.
func (b *Bill) OutstandingBalance() int64 {
	return b.TotalAmount - b.PaidAmount
}

// MarshalJSON custom marshaler to convert centavos to pesos for API responses
func (b Bill) MarshalJSON() ([]byte, error) {
	type Alias Bill
	items := b.Items
	if items == nil {
		items = []BillItem{}
	}
	history := b.PaymentHistory
	if history == nil {
		history = []PaymentHistory{}
	}
	return json.Marshal(&struct {
		Alias
		Items              []BillItem       `json:"items"`
		PaymentHistory     []PaymentHistory `json:"paymentHistory"`
		TotalAmount        float64          `json:"totalAmount"`
		PaidAmount         float64          `json:"paidAmount"`
		OutstandingBalance float64          `json:"outstandingBalance"`
	}{
		Alias:              Alias(b),
		Items:              items,
		PaymentHistory:     history,
		TotalAmount:        money.Float(b.TotalAmount),
		PaidAmount:         money.Float(b.PaidAmount),
		OutstandingBalance: money.Float(b.OutstandingBalance()),
	})
}

// BeforeCreate generates a UUID before creating a new bill
func (b *Bill) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Bill model
func (Bill) TableName() string {
	return "bills"
}

// Clone returns a deep copy so callers can derive a new state without touching b.
func (b *Bill) Clone() *Bill {
	out := *b
	if b.Items != nil {
		out.Items = make([]BillItem, len(b.Items))
		copy(out.Items, b.Items)
		for i, item := range b.Items {
			if item.SelectedTeeth != nil {
				out.Items[i].SelectedTeeth = make([]string, len(item.SelectedTeeth))
				copy(out.Items[i].SelectedTeeth, item.SelectedTeeth)
			}
		}
	}
	if b.PaymentHistory != nil {
		out.PaymentHistory = make([]PaymentHistory, len(b.PaymentHistory), len(b.PaymentHistory)+1)
		copy(out.PaymentHistory, b.PaymentHistory)
	}
	return &out
}

// BillItem is one resolved line of a bill. Items are never modified after creation.
type BillItem struct {
	ID               uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	BillID           uuid.UUID         `gorm:"type:uuid;not null;index" json:"-"`
	Position         int               `gorm:"not null" json:"-"`
	ServiceName      string            `gorm:"size:255;not null" json:"serviceName"`
	Description      string            `gorm:"type:text" json:"description"`
	PricingModel     enum.PricingModel `gorm:"size:50" json:"pricingModel,omitempty"`
	Quantity         int               `gorm:"not null" json:"quantity"`
	UnitPrice        int64             `gorm:"not null" json:"-"`
	Subtotal         int64             `gorm:"not null" json:"-"`
	SelectedTeeth    []string          `gorm:"serializer:json;type:jsonb" json:"selectedTeeth"`
	HasTeethSelected bool              `gorm:"not null;default:false" json:"hasTeethSelected"`
	Legacy           bool              `gorm:"not null;default:false" json:"legacy,omitempty"`
	CreatedAt        time.Time         `json:"-"`
}

// MarshalJSON custom marshaler to convert centavos to pesos for API responses
func (i BillItem) MarshalJSON() ([]byte, error) {
	type Alias BillItem
	teeth := i.SelectedTeeth
	if teeth == nil {
		teeth = []string{}
	}
	return json.Marshal(&struct {
		Alias
		SelectedTeeth []string `json:"selectedTeeth"`
		UnitPrice     float64  `json:"unitPrice"`
		Subtotal      float64  `json:"subtotal"`
	}{
		Alias:         Alias(i),
		SelectedTeeth: teeth,
		UnitPrice:     money.Float(i.UnitPrice),
		Subtotal:      money.Float(i.Subtotal),
	})
}

// BeforeCreate generates a UUID before creating a new bill item
func (i *BillItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BillItem model
func (BillItem) TableName() string {
	return "bill_items"
}

// PaymentHistory is one append-only payment entry against a bill
type PaymentHistory struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	Seq           int64              `gorm:"autoIncrement;not null" json:"-"` // insertion order among equal paid_at
	BillID        uuid.UUID          `gorm:"type:uuid;not null;index" json:"-"`
	Amount        int64              `gorm:"not null" json:"-"`
	PaymentMethod enum.PaymentMethod `gorm:"size:20;not null;index" json:"paymentMethod"`
	PaidAt        time.Time          `gorm:"not null;index" json:"paidAt"`
	ProcessedBy   string             `gorm:"size:255" json:"processedBy"`
	Notes         string             `gorm:"type:text" json:"notes"`
}

// MarshalJSON custom marshaler to convert centavos to pesos for API responses
func (p PaymentHistory) MarshalJSON() ([]byte, error) {
	type Alias PaymentHistory
	return json.Marshal(&struct {
		Alias
		Amount float64 `json:"amount"`
	}{
		Alias:  Alias(p),
		Amount: money.Float(p.Amount),
	})
}

// BeforeCreate generates a UUID before creating a new payment entry
func (p *PaymentHistory) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PaymentHistory model
func (PaymentHistory) TableName() string {
	return "bill_payments"
}
