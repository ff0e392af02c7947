package repository

import (
	"context"
	"errors"

	"github.com/dentacare/clinic-api/internal/domain/entity"
	"github.com/dentacare/clinic-api/internal/domain/enum"
	domainRepo "github.com/dentacare/clinic-api/internal/domain/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type appointmentRepository struct {
	db *gorm.DB
}

// NewAppointmentRepository creates a new appointment repository
func NewAppointmentRepository(db *gorm.DB) domainRepo.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *entity.Appointment) error {
	return r.db.WithContext(ctx).Create(appointment).Error
}

func (r *appointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := r.db.WithContext(ctx).First(&appointment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &appointment, err
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *entity.Appointment) error {
	return r.db.WithContext(ctx).Save(appointment).Error
}

func (r *appointmentRepository) List(ctx context.Context, params *domainRepo.AppointmentFilterParams) ([]entity.Appointment, int64, error) {
	var appointments []entity.Appointment
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Appointment{}).
		Scopes(
			SearchScope(params.Search, "patient_name", "service"),
			DateRangeScope("appointment_date", params.StartDate, params.EndDate),
		)
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.PatientID != nil {
		query = query.Where("patient_id = ?", *params.PatientID)
	}
	if params.HasBill != nil {
		query = query.Where("has_bill = ?", *params.HasBill)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(PageScope(params.Pagination)).
		Order("appointment_date DESC").
		Find(&appointments).Error

	return appointments, total, err
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.AppointmentStatus) error {
	return r.db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *appointmentRepository) LinkBill(ctx context.Context, id uuid.UUID, billID uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"has_bill": true, "bill_id": billID})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainRepo.ErrAppointmentMissing
	}
	return nil
}
