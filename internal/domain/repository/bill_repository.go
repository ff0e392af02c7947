package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dentacare/clinic-api/internal/domain/entity"
	"github.com/dentacare/clinic-api/internal/domain/enum"
	"github.com/dentacare/clinic-api/pkg/pagination"
	"github.com/google/uuid"
)

var (
	// ErrConcurrentUpdate is returned when a bill changed between read and write.
	ErrConcurrentUpdate = errors.New("bill was modified by another request")
	// ErrBillExists is returned when the appointment already has a bill.
	ErrBillExists = errors.New("appointment already has a bill")
	// ErrAppointmentMissing is returned when the appointment to link no longer exists.
	ErrAppointmentMissing = errors.New("appointment not found")
)

// BillRepository defines the interface for bill data operations
type BillRepository interface {
	// CreateForAppointment stores the bill and its items and marks the
	// appointment as billed in a single transaction.
	CreateForAppointment(ctx context.Context, bill *entity.Bill) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error)
	GetByAppointmentID(ctx context.Context, appointmentID uuid.UUID) (*entity.Bill, error)
	// SavePayment appends entry and stores the bill's new totals, provided the
	// stored version still equals bill.Version. On success bill.Version is incremented.
	SavePayment(ctx context.Context, bill *entity.Bill, entry *entity.PaymentHistory) error
	List(ctx context.Context, params *BillFilterParams) ([]entity.Bill, int64, error)
	ListWithCursor(ctx context.Context, params *BillCursorFilterParams) ([]entity.Bill, error)
	ListOutstanding(ctx context.Context, params *pagination.PaginationParams) ([]entity.Bill, int64, error)
	// FindUnlinked returns bills whose appointment does not point back at them.
	FindUnlinked(ctx context.Context, limit int) ([]entity.Bill, error)
	// ListPayments returns ledger entries posted in [from, to), oldest first.
	ListPayments(ctx context.Context, from, to time.Time) ([]entity.PaymentHistory, error)
}

// BillFilterParams contains filtering parameters for bill queries
type BillFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.BillStatus
	PatientID  *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	SortBy     string
	SortOrder  string
}

// BillCursorFilterParams contains cursor-based filtering for bill queries
type BillCursorFilterParams struct {
	Cursor    *pagination.CursorParams
	Search    string
	Status    *enum.BillStatus
	PatientID *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
}
