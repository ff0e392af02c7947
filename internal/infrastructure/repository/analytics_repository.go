package repository

import (
	"context"
	"time"

	domainRepo "github.com/dentacare/clinic-api/internal/domain/repository"
	"gorm.io/gorm"
)

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB) domainRepo.AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) GetBillStats(ctx context.Context, from, to time.Time) (*domainRepo.BillStatsResult, error) {
	var result domainRepo.BillStatsResult

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) as bill_count,
			COUNT(*) FILTER (WHERE status = 'pending') as pending_count,
			COUNT(*) FILTER (WHERE status = 'partial') as partial_count,
			COUNT(*) FILTER (WHERE status = 'paid') as paid_count,
			COALESCE(SUM(total_amount), 0) as total_billed,
			COALESCE(SUM(paid_amount), 0) as total_collected
		FROM bills
		WHERE created_at >= ? AND created_at < ?
	`, from, to).Scan(&result).Error

	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *analyticsRepository) GetOutstandingTotal(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(total_amount - paid_amount), 0)
		FROM bills
		WHERE total_amount > paid_amount
	`).Scan(&total).Error
	return total, err
}

func (r *analyticsRepository) GetDailyCollections(ctx context.Context, days int) ([]domainRepo.DailyCollectionResult, error) {
	var results []domainRepo.DailyCollectionResult

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			DATE(paid_at) as date,
			COALESCE(SUM(amount), 0) as amount,
			COUNT(*) as payment_count
		FROM bill_payments
		WHERE paid_at >= CURRENT_DATE - make_interval(days => ?)
		GROUP BY DATE(paid_at)
		ORDER BY date ASC
	`, days).Scan(&results).Error

	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *analyticsRepository) GetCollectionsByMethod(ctx context.Context, from, to time.Time) ([]domainRepo.PaymentMethodResult, error) {
	var results []domainRepo.PaymentMethodResult

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			payment_method as method,
			COALESCE(SUM(amount), 0) as amount,
			COUNT(*) as payment_count
		FROM bill_payments
		WHERE paid_at >= ? AND paid_at < ?
		GROUP BY payment_method
		ORDER BY amount DESC
	`, from, to).Scan(&results).Error

	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *analyticsRepository) GetTopServices(ctx context.Context, limit int) ([]domainRepo.TopServiceResult, error) {
	var results []domainRepo.TopServiceResult

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			service_name,
			COALESCE(SUM(quantity), 0) as quantity,
			COALESCE(SUM(subtotal), 0) as revenue
		FROM bill_items
		GROUP BY service_name
		ORDER BY revenue DESC
		LIMIT ?
	`, limit).Scan(&results).Error

	if err != nil {
		return nil, err
	}
	return results, nil
}
