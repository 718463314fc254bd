package service

import (
	"context"
	"time"

	"giveaway/internal/prizes/repository"
	"giveaway/pkg/config"
	apperrors "giveaway/pkg/errors"
	"giveaway/pkg/logger"
)

const maxSweepBatch = 100

// Sweeper reclaims reservations that sat in reserved state past the TTL.
// It funnels every reclamation through the same release transition an
// explicit caller uses, so running sweeps redundantly (or concurrently with
// an explicit release) can never credit a unit back twice.
type Sweeper struct {
	svc      AllocationService
	store    repository.ReservationStore
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	log      *logger.Logger
	stopCh   chan struct{}
}

func NewSweeper(svc AllocationService, store repository.ReservationStore, cfg *config.Config) *Sweeper {
	return &Sweeper{
		svc:      svc,
		store:    store,
		ttl:      cfg.ReservationTTL,
		interval: cfg.SweepInterval,
		now:      time.Now,
		log:      cfg.Log,
		stopCh:   make(chan struct{}),
	}
}

// Sweep runs one reclamation pass and returns how many reservations it
// released.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.ttl)

	expired, err := s.store.FindExpiredReserved(ctx, cutoff, maxSweepBatch)
	if err != nil {
		return 0, err
	}

	reclaimed := 0
	for _, reservation := range expired {
		err := s.svc.Release(ctx, reservation.ID, ReleaseReasonExpired)
		if err != nil {
			if apperrors.IsCode(err, apperrors.CodeConflict) {
				// Confirmed between the read and the transition; not ours.
				continue
			}
			s.log.Warn("Failed to reclaim expired reservation",
				"reservation_id", reservation.ID,
				"error", err,
			)
			continue
		}
		reclaimed++
	}

	if reclaimed > 0 {
		s.log.Info("Reclaimed expired reservations", "count", reclaimed, "cutoff", cutoff)
	}

	return reclaimed, nil
}

// Run sweeps on a fixed interval until Stop is called or the context ends.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.log.Error("Sweep failed", "error", err)
			}
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Sweeper) Stop() {
	close(s.stopCh)
}
