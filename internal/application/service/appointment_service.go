package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dentacare/clinic-api/internal/domain/entity"
	"github.com/dentacare/clinic-api/internal/domain/enum"
	"github.com/dentacare/clinic-api/internal/domain/repository"
	"github.com/dentacare/clinic-api/pkg/apperror"
	"github.com/dentacare/clinic-api/pkg/pagination"
	"github.com/google/uuid"
)

// AppointmentService handles appointment-related operations
type AppointmentService struct {
	appointmentRepo repository.AppointmentRepository
	patientRepo     repository.PatientRepository
	billRepo        repository.BillRepository
}

// NewAppointmentService creates a new appointment service
func NewAppointmentService(
	appointmentRepo repository.AppointmentRepository,
	patientRepo repository.PatientRepository,
	billRepo repository.BillRepository,
) *AppointmentService {
	return &AppointmentService{
		appointmentRepo: appointmentRepo,
		patientRepo:     patientRepo,
		billRepo:        billRepo,
	}
}

// CreateAppointmentInput represents the create appointment input
type CreateAppointmentInput struct {
	PatientID       *uuid.UUID
	PatientName     string
	PatientEmail    string
	PatientPhone    string
	AppointmentDate time.Time
	Service         string
	ServiceDetails  []entity.ServiceDetail
	Status          enum.AppointmentStatus
	Notes           string
}

// CreateAppointment books an appointment. Patient contact details are copied
// from the patient record when one is referenced.
func (s *AppointmentService) CreateAppointment(ctx context.Context, input *CreateAppointmentInput) (*entity.Appointment, error) {
	appt := &entity.Appointment{
		PatientName:     strings.TrimSpace(input.PatientName),
		PatientEmail:    strings.TrimSpace(input.PatientEmail),
		PatientPhone:    strings.TrimSpace(input.PatientPhone),
		AppointmentDate: input.AppointmentDate,
		Service:         strings.TrimSpace(input.Service),
		ServiceDetails:  input.ServiceDetails,
		Status:          input.Status,
		Notes:           input.Notes,
	}
	if appt.Status == "" {
		appt.Status = enum.AppointmentStatusScheduled
	}
	if !appt.Status.IsValid() {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "status", Message: "unknown appointment status"}})
	}

	if input.PatientID != nil {
		patient, err := s.patientRepo.GetByID(ctx, *input.PatientID)
		if err != nil {
			return nil, err
		}
		if patient == nil {
			return nil, apperror.NewNotFoundError("Patient")
		}
		appt.PatientID = &patient.ID
		appt.PatientName = firstNonEmpty(appt.PatientName, patient.Name)
		appt.PatientEmail = firstNonEmpty(appt.PatientEmail, patient.EmailOrEmpty())
		appt.PatientPhone = firstNonEmpty(appt.PatientPhone, patient.PhoneOrEmpty())
	}

	if appt.PatientName == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "patientName", Message: "patient name is required"}})
	}
	if appt.AppointmentDate.IsZero() {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "appointmentDate", Message: "appointment date is required"}})
	}

	if err := s.appointmentRepo.Create(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// GetAppointment returns an appointment by ID
func (s *AppointmentService) GetAppointment(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	appt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, apperror.NewNotFoundError("Appointment")
	}
	return appt, nil
}

// ListAppointmentsInput holds appointment list filters
type ListAppointmentsInput struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.AppointmentStatus
	PatientID  *uuid.UUID
	HasBill    *bool
	StartDate  *time.Time
	EndDate    *time.Time
}

// ListAppointments returns a page of appointments
func (s *AppointmentService) ListAppointments(ctx context.Context, input *ListAppointmentsInput) ([]entity.Appointment, *pagination.Pagination, error) {
	if input.Pagination == nil {
		input.Pagination = pagination.DefaultPagination()
	}
	input.Pagination.Validate()

	appointments, total, err := s.appointmentRepo.List(ctx, &repository.AppointmentFilterParams{
		Pagination: input.Pagination,
		Search:     input.Search,
		Status:     input.Status,
		PatientID:  input.PatientID,
		HasBill:    input.HasBill,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
	})
	if err != nil {
		return nil, nil, err
	}
	return appointments, pagination.NewPagination(input.Pagination.Page, input.Pagination.PerPage, total), nil
}

// CompleteAppointment marks an appointment completed, making it billable
func (s *AppointmentService) CompleteAppointment(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	appt, err := s.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status == enum.AppointmentStatusCancelled {
		return nil, apperror.NewConflictError(apperror.KindConflict, "a cancelled appointment cannot be completed")
	}
	if appt.Status == enum.AppointmentStatusCompleted {
		return appt, nil
	}

	if err := s.appointmentRepo.UpdateStatus(ctx, id, enum.AppointmentStatusCompleted); err != nil {
		return nil, err
	}
	appt.Status = enum.AppointmentStatusCompleted
	return appt, nil
}

// UpdateAppointmentInput is a partial appointment update. Nil fields are left unchanged.
type UpdateAppointmentInput struct {
	ID             uuid.UUID
	HasBill        *bool
	BillID         *uuid.UUID
	Status         *enum.AppointmentStatus
	Notes          *string
	ServiceDetails []entity.ServiceDetail
}

// UpdateAppointment applies a partial update. Setting has_bill/billId links
// the appointment to its existing bill; the link is idempotent and can only
// point at the bill created for this appointment.
func (s *AppointmentService) UpdateAppointment(ctx context.Context, input *UpdateAppointmentInput) (*entity.Appointment, error) {
	appt, err := s.GetAppointment(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.HasBill != nil || input.BillID != nil {
		if err := s.linkBill(ctx, appt, input.HasBill, input.BillID); err != nil {
			return nil, err
		}
	}

	changed := false
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "status", Message: "unknown appointment status"}})
		}
		if appt.HasBill && *input.Status != enum.AppointmentStatusCompleted {
			return nil, apperror.NewConflictError(apperror.KindConflict, "a billed appointment must stay completed")
		}
		appt.Status = *input.Status
		changed = true
	}
	if input.Notes != nil {
		appt.Notes = *input.Notes
		changed = true
	}
	if input.ServiceDetails != nil {
		if appt.HasBill {
			return nil, apperror.NewConflictError(apperror.KindConflict, "services of a billed appointment cannot change")
		}
		appt.ServiceDetails = input.ServiceDetails
		changed = true
	}

	if changed {
		if err := s.appointmentRepo.Update(ctx, appt); err != nil {
			return nil, err
		}
	}
	return appt, nil
}

func (s *AppointmentService) linkBill(ctx context.Context, appt *entity.Appointment, hasBill *bool, billID *uuid.UUID) error {
	if hasBill != nil && !*hasBill {
		if appt.HasBill {
			return apperror.NewConflictError(apperror.KindConflict, "an appointment cannot be unlinked from its bill")
		}
		return nil
	}
	if billID == nil {
		return apperror.NewValidationError([]apperror.FieldError{{Field: "billId", Message: "billId is required when has_bill is true"}})
	}
	if appt.IsLinkedTo(*billID) {
		return nil
	}

	bill, err := s.billRepo.GetByID(ctx, *billID)
	if err != nil {
		return err
	}
	if bill == nil {
		return apperror.NewNotFoundError("Bill")
	}
	if bill.AppointmentID != appt.ID {
		return apperror.NewAppError(http.StatusConflict, apperror.KindConflict, "bill belongs to a different appointment")
	}

	if err := s.appointmentRepo.LinkBill(ctx, appt.ID, bill.ID); err != nil {
		return billingError("link bill", err)
	}
	appt.HasBill = true
	appt.BillID = &bill.ID
	return nil
}
