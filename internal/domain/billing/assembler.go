package billing

import (
	"strings"
	"time"

	"github.com/dentacare/clinic-api/internal/domain/entity"
	"github.com/dentacare/clinic-api/internal/domain/enum"
	"github.com/dentacare/clinic-api/pkg/money"
	"github.com/google/uuid"
)

// BillHeader carries the appointment and patient metadata copied onto a bill.
type BillHeader struct {
	AppointmentID uuid.UUID
	PatientID     *uuid.UUID
	PatientName   string
	PatientEmail  string
	PatientPhone  string
	Notes         string
	CreatedBy     string
}

// HeaderFromAppointment copies patient details off an appointment.
func HeaderFromAppointment(a *entity.Appointment) BillHeader {
	return BillHeader{
		AppointmentID: a.ID,
		PatientID:     a.PatientID,
		PatientName:   a.PatientName,
		PatientEmail:  a.PatientEmail,
		PatientPhone:  a.PatientPhone,
	}
}

// AssembleBill builds a new pending bill from resolved items.
// Subtotals are recomputed from unit price and quantity; client totals are never trusted.
func AssembleBill(h BillHeader, items []entity.BillItem, now time.Time) (*entity.Bill, error) {
	if len(items) == 0 {
		return nil, ErrEmptyBill
	}

	bill := &entity.Bill{
		ID:             uuid.New(),
		AppointmentID:  h.AppointmentID,
		PatientID:      h.PatientID,
		PatientName:    strings.TrimSpace(h.PatientName),
		PatientEmail:   strings.TrimSpace(h.PatientEmail),
		PatientPhone:   strings.TrimSpace(h.PatientPhone),
		Status:         enum.BillStatusPending,
		Notes:          strings.TrimSpace(h.Notes),
		CreatedBy:      h.CreatedBy,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
		Items:          make([]entity.BillItem, len(items)),
		PaymentHistory: []entity.PaymentHistory{},
	}

	var total int64
	for i, item := range items {
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		if item.SelectedTeeth == nil {
			item.SelectedTeeth = []string{}
		}
		item.ID = uuid.New()
		item.BillID = bill.ID
		item.Position = i
		subtotal, err := money.Mul(item.UnitPrice, item.Quantity)
		if err != nil {
			return nil, ErrAmountTooLarge
		}
		if total, err = money.Add(total, subtotal); err != nil {
			return nil, ErrAmountTooLarge
		}
		item.Subtotal = subtotal
		item.HasTeethSelected = len(item.SelectedTeeth) > 0
		item.CreatedAt = now
		bill.Items[i] = item
	}

	if total <= 0 {
		return nil, ErrNonPositiveTotal
	}
	bill.TotalAmount = total
	return bill, nil
}

// CheckInvariants verifies the stored totals of a bill agree with its items and ledger.
func CheckInvariants(b *entity.Bill) error {
	var total int64
	for _, item := range b.Items {
		if item.Subtotal != item.UnitPrice*int64(item.Quantity) {
			return ErrInconsistentBill
		}
		total += item.Subtotal
	}
	if total != b.TotalAmount {
		return ErrInconsistentBill
	}

	var paid int64
	for _, p := range b.PaymentHistory {
		paid += p.Amount
	}
	if paid != b.PaidAmount || b.PaidAmount > b.TotalAmount {
		return ErrInconsistentBill
	}
	if b.Status != statusFor(b.TotalAmount, b.PaidAmount) {
		return ErrInconsistentBill
	}
	return nil
}
