package request

import (
	"github.com/dentacare/clinic-api/internal/domain/billing"
	"github.com/dentacare/clinic-api/internal/domain/enum"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillItemRequest is one client-supplied bill line. Prices are pesos.
type BillItemRequest struct {
	ServiceName   string            `json:"serviceName" binding:"required,max=255"`
	Description   string            `json:"description"`
	PricingModel  enum.PricingModel `json:"pricingModel"`
	Quantity      int               `json:"quantity" binding:"max=1000"`
	UnitPrice     decimal.Decimal   `json:"unitPrice"`
	Subtotal      *decimal.Decimal  `json:"subtotal"` // ignored, recomputed from unitPrice x quantity
	SelectedTeeth []string          `json:"selectedTeeth"`
}

// CreateBillRequest represents a bill creation request. When items is omitted
// the server resolves them from the appointment's services.
type CreateBillRequest struct {
	AppointmentID uuid.UUID         `json:"appointmentId"`
	PatientID     *uuid.UUID        `json:"patientId"`
	PatientName   string            `json:"patientName" binding:"max=255"`
	PatientEmail  string            `json:"patientEmail" binding:"omitempty,email"`
	PatientPhone  string            `json:"patientPhone" binding:"max=50"`
	Items         []BillItemRequest `json:"items" binding:"omitempty,max=200,dive"`
	TotalAmount   *decimal.Decimal  `json:"totalAmount"` // ignored, recomputed from items
	PaidAmount    *decimal.Decimal  `json:"paidAmount"`
	Notes         string            `json:"notes"`
	CreatedBy     string            `json:"createdBy"`
}

// NewPaymentRequest is the payment being posted
type NewPaymentRequest struct {
	Amount        decimal.Decimal    `json:"amount"`
	PaymentMethod enum.PaymentMethod `json:"paymentMethod"`
	Notes         string             `json:"notes"`
}

// UpdateBillRequest posts a payment. newPayment.amount is authoritative; without
// it, paidAmount is read as the new cumulative total.
type UpdateBillRequest struct {
	PaidAmount    *decimal.Decimal   `json:"paidAmount"`
	PaymentMethod enum.PaymentMethod `json:"paymentMethod"`
	Notes         *string            `json:"notes"`
	UpdatedBy     string             `json:"updatedBy"`
	NewPayment    *NewPaymentRequest `json:"newPayment"`
	Version       *int64             `json:"version"`
	Intent        billing.Intent     `json:"intent"`
}

// MarkPaidRequest settles a bill's remaining balance
type MarkPaidRequest struct {
	PaymentMethod enum.PaymentMethod `json:"paymentMethod"`
	Notes         string             `json:"notes"`
	ProcessedBy   string             `json:"processedBy"`
}
