package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dentacare/clinic-api/internal/domain/entity"
	domainRepo "github.com/dentacare/clinic-api/internal/domain/repository"
	"github.com/dentacare/clinic-api/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var billSortColumns = map[string]string{
	"createdAt":   "created_at",
	"totalAmount": "total_amount",
	"patientName": "patient_name",
	"status":      "status",
}

type billRepository struct {
	db *gorm.DB
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *gorm.DB) domainRepo.BillRepository {
	return &billRepository{db: db}
}

func withLines(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("PaymentHistory", inLedgerOrder)
}

// inLedgerOrder sorts payments oldest first; seq breaks ties between equal timestamps.
func inLedgerOrder(db *gorm.DB) *gorm.DB {
	return db.Order("paid_at ASC").Order("seq ASC")
}

func (r *billRepository) CreateForAppointment(ctx context.Context, bill *entity.Bill) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var appt entity.Appointment
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "has_bill", "bill_id").
			First(&appt, "id = ?", bill.AppointmentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainRepo.ErrAppointmentMissing
		}
		if err != nil {
			return err
		}
		if appt.HasBill {
			return domainRepo.ErrBillExists
		}

		if err := tx.Omit(clause.Associations).Create(bill).Error; err != nil {
			if isUniqueViolation(err) {
				return domainRepo.ErrBillExists
			}
			return err
		}
		if len(bill.Items) > 0 {
			if err := tx.Create(&bill.Items).Error; err != nil {
				return err
			}
		}

		return tx.Model(&entity.Appointment{}).
			Where("id = ?", bill.AppointmentID).
			Updates(map[string]interface{}{"has_bill": true, "bill_id": bill.ID}).Error
	})
}

func (r *billRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	var bill entity.Bill
	err := r.db.WithContext(ctx).Scopes(withLines).First(&bill, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &bill, err
}

func (r *billRepository) GetByAppointmentID(ctx context.Context, appointmentID uuid.UUID) (*entity.Bill, error) {
	var bill entity.Bill
	err := r.db.WithContext(ctx).Scopes(withLines).First(&bill, "appointment_id = ?", appointmentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &bill, err
}

func (r *billRepository) SavePayment(ctx context.Context, bill *entity.Bill, entry *entity.PaymentHistory) error {
	expected := bill.Version
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current entity.Bill
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "version").
			First(&current, "id = ?", bill.ID).Error
		if err != nil {
			return err
		}
		if current.Version != expected {
			return domainRepo.ErrConcurrentUpdate
		}

		res := tx.Model(&entity.Bill{}).
			Where("id = ? AND version = ?", bill.ID, expected).
			Updates(map[string]interface{}{
				"paid_amount": bill.PaidAmount,
				"status":      bill.Status,
				"notes":       bill.Notes,
				"updated_by":  bill.UpdatedBy,
				"updated_at":  bill.UpdatedAt,
				"version":     gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domainRepo.ErrConcurrentUpdate
		}

		entry.BillID = bill.ID
		return tx.Create(entry).Error
	})
	if err != nil {
		return err
	}

	bill.Version = expected + 1
	return nil
}

func (r *billRepository) List(ctx context.Context, params *domainRepo.BillFilterParams) ([]entity.Bill, int64, error) {
	var bills []entity.Bill
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Bill{}).
		Scopes(
			SearchScope(params.Search, "patient_name", "patient_email", "patient_phone"),
			DateRangeScope("created_at", params.StartDate, params.EndDate),
		)
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.PatientID != nil {
		query = query.Where("patient_id = ?", *params.PatientID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := "created_at"
	if col, ok := billSortColumns[params.SortBy]; ok {
		sortBy = col
	}
	sortOrder := "DESC"
	if params.SortOrder == "ASC" || params.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	err := query.Scopes(PageScope(params.Pagination), withLines).
		Order(sortBy + " " + sortOrder).
		Find(&bills).Error

	return bills, total, err
}

// ListWithCursor returns bills using cursor-based pagination
func (r *billRepository) ListWithCursor(ctx context.Context, params *domainRepo.BillCursorFilterParams) ([]entity.Bill, error) {
	var bills []entity.Bill

	params.Cursor.Validate()
	cursor, err := params.Cursor.DecodeCursor()
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&entity.Bill{}).
		Scopes(
			SearchScope(params.Search, "patient_name", "patient_email", "patient_phone"),
			DateRangeScope("created_at", params.StartDate, params.EndDate),
		)
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.PatientID != nil {
		query = query.Where("patient_id = ?", *params.PatientID)
	}

	err = query.Scopes(KeysetScope("bills", params.Cursor, cursor), withLines).Find(&bills).Error
	if err != nil {
		return nil, err
	}

	if params.Cursor.Direction == pagination.CursorDirectionPrev {
		for i, j := 0, len(bills)-1; i < j; i, j = i+1, j-1 {
			bills[i], bills[j] = bills[j], bills[i]
		}
	}
	return bills, nil
}

func (r *billRepository) ListOutstanding(ctx context.Context, params *pagination.PaginationParams) ([]entity.Bill, int64, error) {
	var bills []entity.Bill
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Bill{}).Where("total_amount > paid_amount")
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(PageScope(params), withLines).
		Order("created_at ASC").
		Find(&bills).Error

	return bills, total, err
}

func (r *billRepository) FindUnlinked(ctx context.Context, limit int) ([]entity.Bill, error) {
	var bills []entity.Bill
	err := r.db.WithContext(ctx).
		Joins("JOIN appointments a ON a.id = bills.appointment_id").
		Where("a.has_bill = ? OR a.bill_id IS NULL OR a.bill_id <> bills.id", false).
		Order("bills.created_at ASC").
		Limit(limit).
		Find(&bills).Error
	return bills, err
}

func (r *billRepository) ListPayments(ctx context.Context, from, to time.Time) ([]entity.PaymentHistory, error) {
	var payments []entity.PaymentHistory
	err := r.db.WithContext(ctx).
		Where("paid_at >= ? AND paid_at < ?", from, to).
		Scopes(inLedgerOrder).
		Find(&payments).Error
	return payments, err
}
