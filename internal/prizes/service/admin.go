package service

import (
	"context"
	"sync"

	"giveaway/pkg/config"
	apperrors "giveaway/pkg/errors"
	"giveaway/pkg/model"
	"giveaway/pkg/sanitizer"
)

func (s *allocationService) ListPrizes(ctx context.Context) ([]*model.Prize, error) {
	prizes, err := s.ledger.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list prizes", "error", err)
		return nil, apperrors.Internal("Failed to list prizes", err)
	}
	return prizes, nil
}

// ResetPrize overwrites one prize's count and metadata. Administrative,
// last-writer-wins; it does not participate in the claim protocol.
func (s *allocationService) ResetPrize(ctx context.Context, id string, prize *model.Prize) error {
	if id == "" {
		return apperrors.InvalidInput("Prize ID cannot be empty")
	}
	prize.ID = id
	prize.Name = sanitizer.NormalizeLabel(prize.Name)
	prize.Description = sanitizer.NormalizeLabel(prize.Description)

	if err := s.validator.ValidatePrize(prize); err != nil {
		s.cfg.Log.Warn("Prize validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid prize", map[string]any{"error": err.Error()})
	}

	if err := s.ledger.Reset(ctx, prize); err != nil {
		s.cfg.Log.Error("Failed to reset prize", "id", id, "error", err)
		return apperrors.Internal("Failed to reset prize", err)
	}

	s.cfg.Log.Info("Prize reset", "id", id, "remaining", prize.Remaining, "total", prize.Total)
	return nil
}

func (s *allocationService) ResetAllPrizes(ctx context.Context) error {
	if err := s.ledger.ResetAll(ctx, config.DefaultPrizes()); err != nil {
		s.cfg.Log.Error("Failed to reset prizes", "error", err)
		return apperrors.Internal("Failed to reset prizes", err)
	}

	s.cfg.Log.Info("All prizes reset to defaults")
	return nil
}

func (s *allocationService) ListReservations(ctx context.Context, identity string, status string, limit int, offset int64) ([]*model.Reservation, int64, error) {
	identity = sanitizer.NormalizeIdentity(identity)

	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.store.CountBySearch(ctx, identity, status)
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.store.Search(ctx, identity, status, limit, offset)
	}()

	wg.Wait()

	if errCount != nil {
		s.cfg.Log.Error("Failed to count reservations", "error", errCount)
		return nil, 0, apperrors.Internal("Failed to count reservations", errCount)
	}
	if errFind != nil {
		s.cfg.Log.Error("Failed to search reservations", "error", errFind)
		return nil, 0, apperrors.Internal("Failed to search reservations", errFind)
	}

	return reservations, count, nil
}
