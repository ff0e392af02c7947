package service

import (
	"context"
	"strings"
	"time"

	"github.com/dentacare/clinic-api/internal/domain/entity"
	"github.com/dentacare/clinic-api/internal/domain/repository"
	"github.com/dentacare/clinic-api/pkg/apperror"
	"github.com/dentacare/clinic-api/pkg/pagination"
	"github.com/google/uuid"
)

// PatientService handles patient records
type PatientService struct {
	patientRepo repository.PatientRepository
}

// NewPatientService creates a new patient service
func NewPatientService(patientRepo repository.PatientRepository) *PatientService {
	return &PatientService{patientRepo: patientRepo}
}

// PatientInput represents the create or update patient input
type PatientInput struct {
	Name      string
	Email     *string
	Phone     *string
	Address   *string
	BirthDate *time.Time
}

// CreatePatient creates a new patient
func (s *PatientService) CreatePatient(ctx context.Context, input *PatientInput) (*entity.Patient, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "name", Message: "name is required"}})
	}

	patient := &entity.Patient{
		Name:      name,
		Email:     trimmed(input.Email),
		Phone:     trimmed(input.Phone),
		Address:   trimmed(input.Address),
		BirthDate: input.BirthDate,
	}
	if err := s.patientRepo.Create(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

// GetPatient returns a patient by ID
func (s *PatientService) GetPatient(ctx context.Context, id uuid.UUID) (*entity.Patient, error) {
	patient, err := s.patientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, apperror.NewNotFoundError("Patient")
	}
	return patient, nil
}

// UpdatePatient updates a patient. Bills keep the details they were created with.
func (s *PatientService) UpdatePatient(ctx context.Context, id uuid.UUID, input *PatientInput) (*entity.Patient, error) {
	patient, err := s.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		patient.Name = name
	}
	if input.Email != nil {
		patient.Email = trimmed(input.Email)
	}
	if input.Phone != nil {
		patient.Phone = trimmed(input.Phone)
	}
	if input.Address != nil {
		patient.Address = trimmed(input.Address)
	}
	if input.BirthDate != nil {
		patient.BirthDate = input.BirthDate
	}

	if err := s.patientRepo.Update(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

// ListPatients returns a page of patients
func (s *PatientService) ListPatients(ctx context.Context, search string, params *pagination.PaginationParams) ([]entity.Patient, *pagination.Pagination, error) {
	params.Validate()
	patients, total, err := s.patientRepo.List(ctx, &repository.PatientFilterParams{Pagination: params, Search: search})
	if err != nil {
		return nil, nil, err
	}
	return patients, pagination.NewPagination(params.Page, params.PerPage, total), nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
