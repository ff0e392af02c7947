package service

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dentacare/clinic-api/internal/domain/billing"
	"github.com/dentacare/clinic-api/internal/domain/repository"
	"github.com/dentacare/clinic-api/pkg/apperror"
)

// ErrStalePayment is returned when the client computed a payment from an outdated bill.
var ErrStalePayment = errors.New("bill has changed since it was loaded; reload and retry the payment")

// billingError maps domain and storage errors to API errors. Unknown errors are
// wrapped with op so they surface as internal errors with context in the logs.
func billingError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case apperror.IsAppError(err):
		return err
	case errors.Is(err, billing.ErrEmptyBill):
		return apperror.Wrap(err, http.StatusUnprocessableEntity, apperror.KindEmptyBill)
	case errors.Is(err, billing.ErrNonPositiveTotal):
		return apperror.Wrap(err, http.StatusUnprocessableEntity, apperror.KindNonPositiveTotal)
	case errors.Is(err, billing.ErrAmountTooLarge):
		return apperror.Wrap(err, http.StatusUnprocessableEntity, apperror.KindValidation)
	case errors.Is(err, billing.ErrInvalidPaymentAmount):
		return apperror.Wrap(err, http.StatusUnprocessableEntity, apperror.KindInvalidPayment)
	case errors.Is(err, billing.ErrInvalidPaymentMethod):
		return apperror.Wrap(err, http.StatusUnprocessableEntity, apperror.KindInvalidPaymentMethod)
	case errors.Is(err, billing.ErrIntentMismatch):
		return apperror.Wrap(err, http.StatusUnprocessableEntity, apperror.KindValidation)
	case errors.Is(err, repository.ErrBillExists):
		return apperror.Wrap(err, http.StatusConflict, apperror.KindBillAlreadyExists)
	case errors.Is(err, repository.ErrConcurrentUpdate):
		return apperror.Wrap(err, http.StatusConflict, apperror.KindConcurrentUpdate)
	case errors.Is(err, ErrStalePayment):
		return apperror.Wrap(err, http.StatusConflict, apperror.KindStalePayment)
	case errors.Is(err, repository.ErrAppointmentMissing):
		return apperror.NewNotFoundError("Appointment")
	}
	return fmt.Errorf("%s: %w", op, err)
}
