package billing

import "errors"

var (
	// ErrEmptyBill is returned when a bill would have no line items.
	ErrEmptyBill = errors.New("a bill needs at least one line item")
	// ErrNonPositiveTotal is returned when line items add up to zero or less.
	ErrNonPositiveTotal = errors.New("bill total must be greater than zero")
	// ErrAmountTooLarge is returned when a line subtotal or bill total exceeds money.MaxCents.
	ErrAmountTooLarge = errors.New("bill amount exceeds ₱1,000,000,000.00")
	// ErrInvalidPaymentAmount is returned for payments that are not positive or exceed the outstanding balance.
	ErrInvalidPaymentAmount = errors.New("payment amount must be greater than zero and not exceed the outstanding balance")
	// ErrInvalidPaymentMethod is returned for methods other than cash, card and gcash.
	ErrInvalidPaymentMethod = errors.New("payment method must be one of cash, card or gcash")
	// ErrIntentMismatch is returned when the requested action does not match the payment amount.
	ErrIntentMismatch = errors.New("payment amount does not match the requested action")
	// ErrInconsistentBill is returned by CheckInvariants for a corrupted bill record.
	ErrInconsistentBill = errors.New("bill totals are inconsistent")
)
