package service

import (
	"context"
	"fmt"
	"testing"

	apperrors "giveaway/pkg/errors"
	"giveaway/pkg/model"
)

func TestResetPrize(t *testing.T) {
	ledger := newMemLedger(&model.Prize{ID: "grand", Name: "Grand Prize", Remaining: 0, Total: 1})
	svc, _ := newTestService(ledger, newMemStore())

	err := svc.ResetPrize(context.Background(), "grand", &model.Prize{
		Name:      "  Grand Prize  ",
		Remaining: 3,
		Total:     3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prize, err := ledger.FindByID(context.Background(), "grand")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prize.Remaining != 3 || prize.Total != 3 {
		t.Errorf("expected 3/3, got %d/%d", prize.Remaining, prize.Total)
	}
	if prize.Name != "Grand Prize" {
		t.Errorf("expected trimmed name, got %q", prize.Name)
	}
}

func TestResetPrize_Invalid(t *testing.T) {
	ledger := newMemLedger(&model.Prize{ID: "grand", Name: "Grand Prize", Remaining: 1, Total: 1})
	svc, _ := newTestService(ledger, newMemStore())

	tests := []struct {
		name  string
		id    string
		prize *model.Prize
		code  string
	}{
		{"empty id", "", &model.Prize{Name: "x", Remaining: 1, Total: 1}, apperrors.CodeInvalidInput},
		{"missing name", "grand", &model.Prize{Remaining: 1, Total: 1}, apperrors.CodeValidation},
		{"zero total", "grand", &model.Prize{Name: "Grand Prize", Remaining: 0, Total: 0}, apperrors.CodeValidation},
		{"remaining exceeds total", "grand", &model.Prize{Name: "Grand Prize", Remaining: 5, Total: 2}, apperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ResetPrize(context.Background(), tt.id, tt.prize)
			if !apperrors.IsCode(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestResetAllPrizes(t *testing.T) {
	ledger := newMemLedger(&model.Prize{ID: "grand", Name: "Grand Prize", Remaining: 0, Total: 1})
	svc, _ := newTestService(ledger, newMemStore())

	if err := svc.ResetAllPrizes(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prizes, err := svc.ListPrizes(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prizes) == 0 {
		t.Fatal("expected default prizes after reset")
	}
	for _, p := range prizes {
		if p.Remaining != p.Total {
			t.Errorf("prize %s: expected full pool, got %d/%d", p.ID, p.Remaining, p.Total)
		}
	}
}

func TestListReservations(t *testing.T) {
	grand, second := twoPrizes()
	store := newMemStore()
	svc, _ := newTestService(newMemLedger(grand, second), store)

	for i := 0; i < 3; i++ {
		if _, err := svc.Allocate(context.Background(), fmt.Sprintf("user%d@example.com", i)); err != nil {
			t.Fatalf("allocation %d: unexpected error: %v", i, err)
		}
	}

	reservations, total, err := svc.ListReservations(context.Background(), "", "", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 || len(reservations) != 3 {
		t.Errorf("expected 3 reservations, got total=%d len=%d", total, len(reservations))
	}

	// Identity filter is normalized before matching.
	reservations, total, err = svc.ListReservations(context.Background(), "  USER1@  ", "", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(reservations) != 1 {
		t.Fatalf("expected 1 match, got total=%d len=%d", total, len(reservations))
	}
	if reservations[0].IdentityToken != "user1@example.com" {
		t.Errorf("expected user1, got %q", reservations[0].IdentityToken)
	}

	// Paging caps the slice but not the count.
	reservations, total, err = svc.ListReservations(context.Background(), "", model.StatusReserved, 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 {
		t.Errorf("expected total 3, got %d", total)
	}
	if len(reservations) != 2 {
		t.Errorf("expected page of 2, got %d", len(reservations))
	}
}
