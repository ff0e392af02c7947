package repository

import (
	"context"

	"github.com/dentacare/clinic-api/internal/domain/entity"
	"github.com/dentacare/clinic-api/pkg/pagination"
	"github.com/google/uuid"
)

// PatientRepository defines the interface for patient data operations
type PatientRepository interface {
	Create(ctx context.Context, patient *entity.Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Patient, error)
	Update(ctx context.Context, patient *entity.Patient) error
	List(ctx context.Context, params *PatientFilterParams) ([]entity.Patient, int64, error)
}

// PatientFilterParams contains filtering parameters for patient queries
type PatientFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
}
