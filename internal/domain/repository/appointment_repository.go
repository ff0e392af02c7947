package repository

import (
	"context"
	"time"

	"github.com/dentacare/clinic-api/internal/domain/entity"
	"github.com/dentacare/clinic-api/internal/domain/enum"
	"github.com/dentacare/clinic-api/pkg/pagination"
	"github.com/google/uuid"
)

// AppointmentRepository defines the interface for appointment data operations
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *entity.Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error)
	Update(ctx context.Context, appointment *entity.Appointment) error
	List(ctx context.Context, params *AppointmentFilterParams) ([]entity.Appointment, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.AppointmentStatus) error
	// LinkBill sets has_bill and billId on the appointment.
	LinkBill(ctx context.Context, id uuid.UUID, billID uuid.UUID) error
}

// AppointmentFilterParams contains filtering parameters for appointment queries
type AppointmentFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.AppointmentStatus
	PatientID  *uuid.UUID
	HasBill    *bool
	StartDate  *time.Time
	EndDate    *time.Time
}
