package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dentacare/clinic-api/internal/domain/billing"
	"github.com/dentacare/clinic-api/internal/domain/entity"
	"github.com/dentacare/clinic-api/internal/domain/enum"
	"github.com/dentacare/clinic-api/internal/domain/repository"
	"github.com/dentacare/clinic-api/pkg/apperror"
	"github.com/dentacare/clinic-api/pkg/logger"
	"github.com/dentacare/clinic-api/pkg/pagination"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultPaymentAttempts = 3

// PaymentNotifier is told about every posted payment.
type PaymentNotifier interface {
	PaymentPosted(ctx context.Context, bill *entity.Bill, entry *entity.PaymentHistory)
}

// BillingService creates bills and posts payments against them
type BillingService struct {
	billRepo        repository.BillRepository
	appointmentRepo repository.AppointmentRepository
	notifier        PaymentNotifier
	attempts        int
	now             func() time.Time
	log             zerolog.Logger
}

// NewBillingService creates a new billing service. attempts bounds how often a
// payment is retried after losing a concurrent update.
func NewBillingService(
	billRepo repository.BillRepository,
	appointmentRepo repository.AppointmentRepository,
	notifier PaymentNotifier,
	attempts int,
) *BillingService {
	if attempts < 1 {
		attempts = defaultPaymentAttempts
	}
	return &BillingService{
		billRepo:        billRepo,
		appointmentRepo: appointmentRepo,
		notifier:        notifier,
		attempts:        attempts,
		now:             time.Now,
		log:             logger.WithComponent("billing"),
	}
}

// BillItemInput is a client-supplied line item. Amounts are centavos.
type BillItemInput struct {
	ServiceName   string
	Description   string
	PricingModel  enum.PricingModel
	Quantity      int
	UnitPrice     int64
	SelectedTeeth []string
}

// CreateBillInput represents the create bill input. When Items is nil the
// items are resolved from the appointment's services.
type CreateBillInput struct {
	AppointmentID uuid.UUID
	PatientID     *uuid.UUID
	PatientName   string
	PatientEmail  string
	PatientPhone  string
	Items         []BillItemInput
	PaidAmount    int64
	Notes         string
	CreatedBy     string
}

// CreateBill snapshots a completed appointment into a new pending bill and
// links the appointment to it.
func (s *BillingService) CreateBill(ctx context.Context, input *CreateBillInput) (*entity.Bill, error) {
	if input.PaidAmount != 0 {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "paidAmount", Message: "a new bill starts unpaid; post payments with PUT /billing/{id}"},
		})
	}

	appt, err := s.billableAppointment(ctx, input.AppointmentID)
	if err != nil {
		return nil, err
	}

	var items []entity.BillItem
	if input.Items == nil {
		items = billing.ResolveAppointment(appt)
	} else {
		items = make([]entity.BillItem, 0, len(input.Items))
		for _, it := range input.Items {
			items = append(items, entity.BillItem{
				ServiceName:   strings.TrimSpace(it.ServiceName),
				Description:   strings.TrimSpace(it.Description),
				PricingModel:  it.PricingModel,
				Quantity:      it.Quantity,
				UnitPrice:     it.UnitPrice,
				SelectedTeeth: it.SelectedTeeth,
			})
		}
	}

	header := billing.HeaderFromAppointment(appt)
	if input.PatientID != nil {
		header.PatientID = input.PatientID
	}
	header.PatientName = firstNonEmpty(input.PatientName, header.PatientName)
	header.PatientEmail = firstNonEmpty(input.PatientEmail, header.PatientEmail)
	header.PatientPhone = firstNonEmpty(input.PatientPhone, header.PatientPhone)
	header.Notes = input.Notes
	header.CreatedBy = input.CreatedBy

	bill, err := billing.AssembleBill(header, items, s.now())
	if err != nil {
		return nil, billingError("assemble bill", err)
	}

	if err := s.billRepo.CreateForAppointment(ctx, bill); err != nil {
		return nil, billingError("create bill", err)
	}

	s.log.Info().
		Str("bill_id", bill.ID.String()).
		Str("appointment_id", bill.AppointmentID.String()).
		Int64("total_centavos", bill.TotalAmount).
		Int("items", len(bill.Items)).
		Msg("bill created")
	return bill, nil
}

// PreviewBill resolves an appointment's line items without storing anything.
func (s *BillingService) PreviewBill(ctx context.Context, appointmentID uuid.UUID) (*entity.Bill, error) {
	appt, err := s.billableAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	bill, err := billing.AssembleBill(billing.HeaderFromAppointment(appt), billing.ResolveAppointment(appt), s.now())
	if err != nil {
		return nil, billingError("preview bill", err)
	}
	return bill, nil
}

func (s *BillingService) billableAppointment(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	appt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, billingError("get appointment", err)
	}
	if appt == nil {
		return nil, apperror.NewNotFoundError("Appointment")
	}
	if !appt.Status.IsBillable() {
		return nil, apperror.NewAppError(http.StatusUnprocessableEntity, apperror.KindNotBillable,
			"only completed appointments can be billed (status is "+appt.Status.String()+")")
	}
	if appt.HasBill {
		return nil, apperror.NewConflictError(apperror.KindBillAlreadyExists, "appointment already has a bill")
	}
	return appt, nil
}

// PaymentInput represents a payment posted against a bill. Exactly one of
// Amount (the new payment) or PaidAmount (the new cumulative total) is required,
// unless SettleBalance is set. Amounts are centavos.
type PaymentInput struct {
	BillID          uuid.UUID
	Amount          *int64
	PaidAmount      *int64
	SettleBalance   bool
	ExpectedVersion *int64
	Method          enum.PaymentMethod
	PaymentNotes    string
	BillNotes       *string
	ProcessedBy     string
	Intent          billing.Intent
}

// amountFor derives the payment amount against the current bill state.
func (in *PaymentInput) amountFor(bill *entity.Bill) (int64, error) {
	if in.ExpectedVersion != nil && *in.ExpectedVersion != bill.Version {
		return 0, ErrStalePayment
	}

	switch {
	case in.SettleBalance:
		return bill.OutstandingBalance(), nil
	case in.Amount != nil:
		if in.PaidAmount != nil && *in.PaidAmount != bill.PaidAmount+*in.Amount {
			return 0, ErrStalePayment
		}
		return *in.Amount, nil
	case in.PaidAmount != nil:
		return *in.PaidAmount - bill.PaidAmount, nil
	}
	return 0, apperror.NewValidationError([]apperror.FieldError{
		{Field: "newPayment", Message: "newPayment.amount or paidAmount is required"},
	})
}

// ApplyPayment posts a payment. The read-compute-write cycle is retried when
// another request updated the bill in between, except for cumulative totals,
// which are only meaningful against the state the client saw.
func (s *BillingService) ApplyPayment(ctx context.Context, input *PaymentInput) (*entity.Bill, error) {
	if !input.Intent.IsValid() {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "intent", Message: "intent must be mark_paid or update"},
		})
	}
	retryable := input.Amount != nil || input.SettleBalance

	for attempt := 1; ; attempt++ {
		bill, err := s.billRepo.GetByID(ctx, input.BillID)
		if err != nil {
			return nil, billingError("get bill", err)
		}
		if bill == nil {
			return nil, apperror.NewNotFoundError("Bill")
		}

		amount, err := input.amountFor(bill)
		if err != nil {
			return nil, billingError("apply payment", err)
		}

		next, entry, err := billing.ApplyPayment(bill, billing.Payment{
			Amount:      amount,
			Method:      input.Method,
			ProcessedBy: input.ProcessedBy,
			Notes:       input.PaymentNotes,
			Intent:      input.Intent,
		}, s.now())
		if err != nil {
			return nil, billingError("apply payment", err)
		}
		if input.BillNotes != nil {
			next.Notes = strings.TrimSpace(*input.BillNotes)
		}

		err = s.billRepo.SavePayment(ctx, next, entry)
		if errors.Is(err, repository.ErrConcurrentUpdate) {
			if !retryable {
				return nil, billingError("save payment", ErrStalePayment)
			}
			if attempt < s.attempts {
				s.log.Debug().Str("bill_id", bill.ID.String()).Int("attempt", attempt).Msg("payment lost a concurrent update, retrying")
				continue
			}
		}
		if err != nil {
			return nil, billingError("save payment", err)
		}

		s.log.Info().
			Str("bill_id", next.ID.String()).
			Int64("amount_centavos", entry.Amount).
			Str("method", entry.PaymentMethod.String()).
			Str("status", next.Status.String()).
			Msg("payment posted")

		if s.notifier != nil {
			s.notifier.PaymentPosted(ctx, next, entry)
		}
		return next, nil
	}
}

// MarkAsPaid settles the remaining balance in one payment.
func (s *BillingService) MarkAsPaid(ctx context.Context, billID uuid.UUID, method enum.PaymentMethod, processedBy, notes string) (*entity.Bill, error) {
	return s.ApplyPayment(ctx, &PaymentInput{
		BillID:        billID,
		SettleBalance: true,
		Method:        method,
		PaymentNotes:  notes,
		ProcessedBy:   processedBy,
		Intent:        billing.IntentMarkPaid,
	})
}

// UpdateBill posts a partial payment that leaves a balance.
func (s *BillingService) UpdateBill(ctx context.Context, billID uuid.UUID, amount int64, method enum.PaymentMethod, processedBy, notes string) (*entity.Bill, error) {
	return s.ApplyPayment(ctx, &PaymentInput{
		BillID:       billID,
		Amount:       &amount,
		Method:       method,
		PaymentNotes: notes,
		ProcessedBy:  processedBy,
		Intent:       billing.IntentUpdate,
	})
}

// GetBill returns a bill by ID
func (s *BillingService) GetBill(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	bill, err := s.billRepo.GetByID(ctx, id)
	if err != nil {
		return nil, billingError("get bill", err)
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	if err := billing.CheckInvariants(bill); err != nil {
		s.log.Warn().Str("bill_id", bill.ID.String()).Err(err).Msg("stored bill failed consistency check")
	}
	return bill, nil
}

// GetBillByAppointment returns the bill of an appointment
func (s *BillingService) GetBillByAppointment(ctx context.Context, appointmentID uuid.UUID) (*entity.Bill, error) {
	bill, err := s.billRepo.GetByAppointmentID(ctx, appointmentID)
	if err != nil {
		return nil, billingError("get bill", err)
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	return bill, nil
}

// ListBillsInput holds list filters and either pagination style
type ListBillsInput struct {
	Pagination *pagination.UnifiedPaginationParams
	Search     string
	Status     *enum.BillStatus
	PatientID  *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	SortBy     string
	SortOrder  string
}

// BillPage is a page of bills with whichever pagination metadata applies
type BillPage struct {
	Bills  []entity.Bill
	Page   *pagination.Pagination
	Cursor *pagination.CursorPagination
}

// ListBills returns bills with page or cursor pagination
func (s *BillingService) ListBills(ctx context.Context, input *ListBillsInput) (*BillPage, error) {
	if input.Pagination == nil {
		input.Pagination = &pagination.UnifiedPaginationParams{}
	}

	if input.Pagination.IsCursorBased() {
		params := input.Pagination.ToCursorParams()
		bills, err := s.billRepo.ListWithCursor(ctx, &repository.BillCursorFilterParams{
			Cursor:    params,
			Search:    input.Search,
			Status:    input.Status,
			PatientID: input.PatientID,
			StartDate: input.StartDate,
			EndDate:   input.EndDate,
		})
		if err != nil {
			if errors.Is(err, pagination.ErrInvalidCursor) {
				return nil, apperror.NewBadRequestError(err.Error())
			}
			return nil, billingError("list bills", err)
		}
		meta, bills := pagination.NewCursorPagination(bills, params,
			func(b entity.Bill) string { return b.ID.String() },
			func(b entity.Bill) time.Time { return b.CreatedAt },
		)
		return &BillPage{Bills: bills, Cursor: meta}, nil
	}

	params := input.Pagination.ToPaginationParams()
	bills, total, err := s.billRepo.List(ctx, &repository.BillFilterParams{
		Pagination: params,
		Search:     input.Search,
		Status:     input.Status,
		PatientID:  input.PatientID,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		SortBy:     input.SortBy,
		SortOrder:  input.SortOrder,
	})
	if err != nil {
		return nil, billingError("list bills", err)
	}
	return &BillPage{Bills: bills, Page: pagination.NewPagination(params.Page, params.PerPage, total)}, nil
}

// ListOutstanding returns bills that still have a balance, oldest first
func (s *BillingService) ListOutstanding(ctx context.Context, params *pagination.PaginationParams) (*BillPage, error) {
	params.Validate()
	bills, total, err := s.billRepo.ListOutstanding(ctx, params)
	if err != nil {
		return nil, billingError("list outstanding bills", err)
	}
	return &BillPage{Bills: bills, Page: pagination.NewPagination(params.Page, params.PerPage, total)}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
