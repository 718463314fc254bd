package service

import (
	"context"
	"errors"
	"math/rand"

	prizeserrors "giveaway/internal/prizes/errors"
	"giveaway/internal/prizes/events"
	"giveaway/internal/prizes/repository"
	"giveaway/internal/prizes/validator"
	"giveaway/pkg/config"
	apperrors "giveaway/pkg/errors"
	"giveaway/pkg/model"
	"giveaway/pkg/sanitizer"
)

// ReleaseReasonExpired marks reclamations performed by the sweeper, as
// opposed to explicit releases by a caller.
const (
	ReleaseReasonCaller  = "caller"
	ReleaseReasonExpired = "expired"
)

type AllocationService interface {
	Allocate(ctx context.Context, identityToken string) (*model.Allocation, error)
	Confirm(ctx context.Context, reservationID string) error
	Release(ctx context.Context, reservationID string, reason string) error
	Stats(ctx context.Context) (*model.Stats, error)
	ListPrizes(ctx context.Context) ([]*model.Prize, error)
	ResetPrize(ctx context.Context, id string, prize *model.Prize) error
	ResetAllPrizes(ctx context.Context) error
	ListReservations(ctx context.Context, identity string, status string, limit int, offset int64) ([]*model.Reservation, int64, error)
}

type allocationService struct {
	ledger    repository.PrizeLedger
	store     repository.ReservationStore
	validator *validator.IdentityValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewAllocationService(
	ledger repository.PrizeLedger,
	store repository.ReservationStore,
	validator *validator.IdentityValidator,
	publisher events.Publisher,
	cfg *config.Config,
) AllocationService {
	return &allocationService{
		ledger:    ledger,
		store:     store,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Allocate claims one unit of some eligible prize for the identity and
// records the claim as a reserved reservation. The identity check and the
// claim are deliberately not one transaction: the narrow race between them is
// tolerated, while the claim itself is a single conditional decrement that
// can never oversell a prize.
func (s *allocationService) Allocate(ctx context.Context, identityToken string) (*model.Allocation, error) {
	token := sanitizer.NormalizeIdentity(identityToken)
	if err := s.validator.ValidateIdentity(token); err != nil {
		s.cfg.Log.Warn("Identity validation failed", "error", err)
		return nil, apperrors.Validation("Invalid identity token", map[string]any{"error": err.Error()})
	}

	live, err := s.store.FindLiveByIdentity(ctx, token)
	if err != nil && !errors.Is(err, prizeserrors.ErrReservationNotFound) {
		return nil, apperrors.Internal("Failed to check existing reservations", err)
	}
	if live != nil {
		return nil, apperrors.AlreadyAllocated("This identity already holds a reservation").WithDetails(map[string]any{
			"reservation_id": live.ID,
			"status":         live.Status,
		})
	}

	for attempt := 1; attempt <= s.cfg.AllocateRetries; attempt++ {
		eligible, err := s.ledger.ListEligible(ctx)
		if err != nil {
			return nil, apperrors.Internal("Failed to list eligible prizes", err)
		}
		if len(eligible) == 0 {
			return nil, apperrors.Exhausted("All prizes have been claimed")
		}

		selected := eligible[rand.Intn(len(eligible))]

		claimed, err := s.ledger.TryClaim(ctx, selected.ID)
		if err != nil {
			if errors.Is(err, prizeserrors.ErrNotAvailable) {
				// Raced to zero by a concurrent caller; refresh and retry.
				s.cfg.Log.Debug("Prize claim lost race",
					"prize_id", selected.ID,
					"attempt", attempt,
				)
				continue
			}
			return nil, apperrors.Internal("Failed to claim prize", err)
		}

		reservation := &model.Reservation{
			IdentityToken: token,
			PrizeID:       claimed.ID,
		}
		if err := s.store.Create(ctx, reservation); err != nil {
			// The unit is claimed but the record could not be written; put
			// the unit back so it is not stranded.
			if relErr := s.ledger.Release(ctx, claimed.ID); relErr != nil {
				s.cfg.Log.Error("Failed to return unit after reservation write failure",
					"prize_id", claimed.ID,
					"error", relErr,
				)
			}
			return nil, apperrors.Internal("Failed to create reservation", err)
		}

		s.publish(ctx, events.TypeReserved, reservation, "")
		s.cfg.Log.Info("Prize allocated",
			"reservation_id", reservation.ID,
			"prize_id", claimed.ID,
			"remaining", claimed.Remaining,
		)

		return &model.Allocation{
			ReservationID: reservation.ID,
			Prize:         claimed,
		}, nil
	}

	return nil, apperrors.Conflict("Lost the race for the remaining prizes, please try again")
}

// Confirm makes a reservation permanent. Confirming an already-confirmed
// record is idempotent success; a retried call cannot tell "already done"
// from "just did it". Confirming a released record is a conflict: that
// window has closed.
func (s *allocationService) Confirm(ctx context.Context, reservationID string) error {
	if reservationID == "" {
		return apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.store.Transition(ctx, reservationID, model.StatusConfirmed)
	switch {
	case err == nil:
		s.publish(ctx, events.TypeConfirmed, reservation, "")
		s.cfg.Log.Info("Reservation confirmed",
			"reservation_id", reservationID,
			"prize_id", reservation.PrizeID,
		)
		return nil
	case errors.Is(err, prizeserrors.ErrAlreadyConfirmed):
		return nil
	case errors.Is(err, prizeserrors.ErrAlreadyReleased):
		return apperrors.Conflict("Reservation was already released")
	case errors.Is(err, prizeserrors.ErrReservationNotFound):
		return apperrors.NotFoundWithID("Reservation", reservationID)
	default:
		return apperrors.Internal("Failed to confirm reservation", err)
	}
}

// Release returns the reserved unit to the pool. Only the caller that wins
// the reserved->released transition credits the ledger, so concurrent
// releases (explicit call racing the sweeper) cannot double-credit.
func (s *allocationService) Release(ctx context.Context, reservationID string, reason string) error {
	if reservationID == "" {
		return apperrors.InvalidInput("Reservation ID cannot be empty")
	}
	if reason == "" {
		reason = ReleaseReasonCaller
	}

	reservation, err := s.store.Transition(ctx, reservationID, model.StatusReleased)
	switch {
	case err == nil:
		if relErr := s.ledger.Release(ctx, reservation.PrizeID); relErr != nil {
			// The record is terminal but the unit was not credited back;
			// surface loudly, this needs operator attention.
			s.cfg.Log.Error("Failed to credit unit back after release",
				"reservation_id", reservationID,
				"prize_id", reservation.PrizeID,
				"error", relErr,
			)
			return apperrors.Internal("Failed to return unit to the pool", relErr)
		}
		s.publish(ctx, events.TypeReleased, reservation, reason)
		s.cfg.Log.Info("Reservation released",
			"reservation_id", reservationID,
			"prize_id", reservation.PrizeID,
			"reason", reason,
		)
		return nil
	case errors.Is(err, prizeserrors.ErrAlreadyReleased):
		return nil
	case errors.Is(err, prizeserrors.ErrAlreadyConfirmed):
		return apperrors.Conflict("Reservation was already confirmed")
	case errors.Is(err, prizeserrors.ErrReservationNotFound):
		return apperrors.NotFoundWithID("Reservation", reservationID)
	default:
		return apperrors.Internal("Failed to release reservation", err)
	}
}

func (s *allocationService) publish(ctx context.Context, eventType string, reservation *model.Reservation, reason string) {
	if err := s.publisher.Publish(ctx, events.FromReservation(eventType, reservation, reason)); err != nil {
		// Events are best-effort; the allocation outcome stands either way.
		s.cfg.Log.Warn("Reservation event not published",
			"type", eventType,
			"reservation_id", reservation.ID,
			"error", err,
		)
	}
}
