package service

import (
	"context"
	"errors"

	"github.com/dentacare/clinic-api/internal/domain/repository"
	"github.com/dentacare/clinic-api/pkg/logger"
	"github.com/rs/zerolog"
)

// ReconciliationService repairs appointment links and expires stored
// idempotency keys.
type ReconciliationService struct {
	billRepo        repository.BillRepository
	appointmentRepo repository.AppointmentRepository
	idempotencyRepo repository.IdempotencyRepository
	batchSize       int
	log             zerolog.Logger
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(
	billRepo repository.BillRepository,
	appointmentRepo repository.AppointmentRepository,
	idempotencyRepo repository.IdempotencyRepository,
	batchSize int,
) *ReconciliationService {
	if batchSize < 1 {
		batchSize = 100
	}
	return &ReconciliationService{
		billRepo:        billRepo,
		appointmentRepo: appointmentRepo,
		idempotencyRepo: idempotencyRepo,
		batchSize:       batchSize,
		log:             logger.WithComponent("reconciliation"),
	}
}

// SweepResult reports what a sweep found and fixed
type SweepResult struct {
	Unlinked int `json:"unlinked"`
	Linked   int `json:"linked"`
	Orphaned int `json:"orphaned"`
	Failed   int `json:"failed"`
}

// Sweep points appointments back at bills whose link was lost.
func (s *ReconciliationService) Sweep(ctx context.Context) (*SweepResult, error) {
	bills, err := s.billRepo.FindUnlinked(ctx, s.batchSize)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{Unlinked: len(bills)}
	for _, bill := range bills {
		log := s.log.With().
			Str("bill_id", bill.ID.String()).
			Str("appointment_id", bill.AppointmentID.String()).
			Logger()

		err := s.appointmentRepo.LinkBill(ctx, bill.AppointmentID, bill.ID)
		switch {
		case errors.Is(err, repository.ErrAppointmentMissing):
			result.Orphaned++
			log.Warn().Msg("bill references a missing appointment")
		case err != nil:
			result.Failed++
			log.Error().Err(err).Msg("failed to relink appointment")
		default:
			result.Linked++
			log.Info().Msg("appointment relinked to bill")
		}
	}

	if result.Unlinked > 0 {
		s.log.Info().
			Int("unlinked", result.Unlinked).
			Int("linked", result.Linked).
			Int("orphaned", result.Orphaned).
			Int("failed", result.Failed).
			Msg("link sweep finished")
	}
	return result, nil
}

// CleanupIdempotency deletes expired idempotency keys.
func (s *ReconciliationService) CleanupIdempotency(ctx context.Context) (int64, error) {
	n, err := s.idempotencyRepo.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info().Int64("deleted", n).Msg("expired idempotency keys removed")
	}
	return n, nil
}
