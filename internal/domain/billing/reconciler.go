package billing

import (
	"strings"
	"time"

	"github.com/dentacare/clinic-api/internal/domain/entity"
	"github.com/dentacare/clinic-api/internal/domain/enum"
	"github.com/google/uuid"
)

// Default ledger notes.
const (
	NoteInitialPayment    = "Initial payment"
	NoteAdditionalPayment = "Additional payment"
	NoteFinalPayment      = "Final payment"
)

// Intent is the action the cashier confirmed. Both intents run the same
// reconciliation; they only differ in which amounts they accept.
type Intent string

const (
	// IntentAny accepts any valid amount.
	IntentAny Intent = ""
	// IntentMarkPaid requires the payment to settle the bill.
	IntentMarkPaid Intent = "mark_paid"
	// IntentUpdate requires the payment to leave a balance.
	IntentUpdate Intent = "update"
)

// IsValid reports whether i is a known intent
func (i Intent) IsValid() bool {
	switch i {
	case IntentAny, IntentMarkPaid, IntentUpdate:
		return true
	}
	return false
}

// Payment is a payment event against a bill. Amount is in centavos.
type Payment struct {
	Amount      int64
	Method      enum.PaymentMethod
	ProcessedBy string
	Notes       string
	Intent      Intent
}

// ApplyPayment returns the bill after posting p, plus the new ledger entry.
// The input bill is never modified; on error it is still the current state.
func ApplyPayment(bill *entity.Bill, p Payment, now time.Time) (*entity.Bill, *entity.PaymentHistory, error) {
	if !p.Method.IsValid() {
		return nil, nil, ErrInvalidPaymentMethod
	}

	outstanding := bill.OutstandingBalance()
	if p.Amount <= 0 || p.Amount > outstanding {
		return nil, nil, ErrInvalidPaymentAmount
	}

	settles := p.Amount == outstanding
	switch p.Intent {
	case IntentMarkPaid:
		if !settles {
			return nil, nil, ErrIntentMismatch
		}
	case IntentUpdate:
		if settles {
			return nil, nil, ErrIntentMismatch
		}
	}

	next := bill.Clone()
	next.PaidAmount += p.Amount
	next.Status = statusFor(next.TotalAmount, next.PaidAmount)
	next.UpdatedAt = now
	if p.ProcessedBy != "" {
		next.UpdatedBy = p.ProcessedBy
	}

	entry := entity.PaymentHistory{
		ID:            uuid.New(),
		BillID:        bill.ID,
		Amount:        p.Amount,
		PaymentMethod: p.Method,
		PaidAt:        now,
		ProcessedBy:   p.ProcessedBy,
		Notes:         paymentNote(p.Notes, len(bill.PaymentHistory), next.OutstandingBalance()),
	}
	next.PaymentHistory = append(next.PaymentHistory, entry)

	return next, &entry, nil
}

// statusFor derives status from the totals. pending is only possible before any payment.
func statusFor(total, paid int64) enum.BillStatus {
	switch {
	case paid > 0 && paid == total:
		return enum.BillStatusPaid
	case paid > 0:
		return enum.BillStatusPartial
	default:
		return enum.BillStatusPending
	}
}

// paymentNote keeps explicit notes; a settling payment is "Final payment" even if it is the first.
func paymentNote(explicit string, prior int, outstanding int64) string {
	if note := strings.TrimSpace(explicit); note != "" {
		return note
	}
	switch {
	case outstanding == 0:
		return NoteFinalPayment
	case prior == 0:
		return NoteInitialPayment
	default:
		return NoteAdditionalPayment
	}
}
