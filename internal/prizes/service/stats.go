package service

import (
	"context"
	"sync"

	apperrors "giveaway/pkg/errors"
	"giveaway/pkg/model"
)

// Stats derives the aggregate view directly from the reservation records.
// Nothing here maintains a counter of its own, so the numbers cannot drift
// from the underlying state.
func (s *allocationService) Stats(ctx context.Context) (*model.Stats, error) {
	var confirmed, pending int64
	var distribution map[string]int64
	var errConfirmed, errPending, errDistribution error
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		confirmed, errConfirmed = s.store.CountByStatus(ctx, model.StatusConfirmed)
	}()

	go func() {
		defer wg.Done()
		pending, errPending = s.store.CountByStatus(ctx, model.StatusReserved)
	}()

	go func() {
		defer wg.Done()
		distribution, errDistribution = s.store.DistributionByPrize(ctx)
	}()

	wg.Wait()

	for _, err := range []error{errConfirmed, errPending, errDistribution} {
		if err != nil {
			s.cfg.Log.Error("Failed to compute statistics", "error", err)
			return nil, apperrors.Internal("Failed to compute statistics", err)
		}
	}

	return &model.Stats{
		TotalAllocated: confirmed,
		Pending:        pending,
		Distribution:   distribution,
	}, nil
}
