package service

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	prizeserrors "giveaway/internal/prizes/errors"
	"giveaway/internal/prizes/events"
	"giveaway/internal/prizes/validator"
	"giveaway/pkg/config"
	"giveaway/pkg/logger"
	"giveaway/pkg/model"
)

func testConfig() *config.Config {
	return &config.Config{
		ReservationTTL:  5 * time.Minute,
		SweepInterval:   time.Minute,
		AllocateRetries: 3,
		Log: logger.New(logger.Config{
			Level:  logger.ERROR,
			Format: logger.TEXT,
			Output: io.Discard,
		}),
	}
}

// memLedger mirrors the conditional-update semantics of the Mongo ledger:
// every mutation of remaining happens under one lock acquisition, so
// concurrent claims see the same claim-or-fail behavior as the real thing.
// The fn fields, when set, intercept the corresponding call.
type memLedger struct {
	mu            sync.Mutex
	prizes        map[string]*model.Prize
	tryClaimFn    func(ctx context.Context, prizeID string) (*model.Prize, error)
	releaseFn     func(ctx context.Context, prizeID string) error
	listFn        func(ctx context.Context) ([]*model.Prize, error)
	tryClaimCalls int
}

func newMemLedger(prizes ...*model.Prize) *memLedger {
	l := &memLedger{prizes: make(map[string]*model.Prize)}
	for _, p := range prizes {
		cp := *p
		l.prizes[p.ID] = &cp
	}
	return l
}

func (l *memLedger) sorted(filter func(*model.Prize) bool) []*model.Prize {
	var out []*model.Prize
	for _, p := range l.prizes {
		if filter(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (l *memLedger) ListEligible(ctx context.Context) ([]*model.Prize, error) {
	if l.listFn != nil {
		return l.listFn(ctx)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sorted(func(p *model.Prize) bool { return p.Remaining > 0 }), nil
}

func (l *memLedger) FindAll(ctx context.Context) ([]*model.Prize, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sorted(func(*model.Prize) bool { return true }), nil
}

func (l *memLedger) FindByID(ctx context.Context, id string) (*model.Prize, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.prizes[id]
	if !ok {
		return nil, prizeserrors.ErrPrizeNotFound
	}
	cp := *p
	return &cp, nil
}

func (l *memLedger) TryClaim(ctx context.Context, prizeID string) (*model.Prize, error) {
	l.mu.Lock()
	l.tryClaimCalls++
	l.mu.Unlock()
	if l.tryClaimFn != nil {
		return l.tryClaimFn(ctx, prizeID)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.prizes[prizeID]
	if !ok || p.Remaining <= 0 {
		return nil, prizeserrors.ErrNotAvailable
	}
	p.Remaining--
	cp := *p
	return &cp, nil
}

func (l *memLedger) Release(ctx context.Context, prizeID string) error {
	if l.releaseFn != nil {
		return l.releaseFn(ctx, prizeID)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.prizes[prizeID]
	if !ok {
		return prizeserrors.ErrPrizeNotFound
	}
	if p.Remaining >= p.Total {
		return prizeserrors.ErrNotAvailable
	}
	p.Remaining++
	return nil
}

func (l *memLedger) Reset(ctx context.Context, prize *model.Prize) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := *prize
	l.prizes[prize.ID] = &cp
	return nil
}

func (l *memLedger) ResetAll(ctx context.Context, prizes []*model.Prize) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prizes = make(map[string]*model.Prize, len(prizes))
	for _, p := range prizes {
		cp := *p
		l.prizes[p.ID] = &cp
	}
	return nil
}

func (l *memLedger) Seed(ctx context.Context, prizes []*model.Prize) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.prizes) > 0 {
		return nil
	}
	for _, p := range prizes {
		cp := *p
		l.prizes[p.ID] = &cp
	}
	return nil
}

func (l *memLedger) remaining(id string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.prizes[id].Remaining
}

func (l *memLedger) totalRemaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	sum := 0
	for _, p := range l.prizes {
		sum += p.Remaining
	}
	return sum
}

// memStore mirrors the Mongo store's status-pinned transition: only one
// caller can move a record out of reserved, everyone else gets the terminal
// state back as a typed error.
type memStore struct {
	mu           sync.Mutex
	reservations map[string]*model.Reservation
	now          func() time.Time
	createFn     func(ctx context.Context, reservation *model.Reservation) error
	findExpFn    func(ctx context.Context, cutoff time.Time, limit int) ([]*model.Reservation, error)
}

func newMemStore() *memStore {
	return &memStore{
		reservations: make(map[string]*model.Reservation),
		now:          time.Now,
	}
}

func (s *memStore) Create(ctx context.Context, reservation *model.Reservation) error {
	if s.createFn != nil {
		return s.createFn(ctx, reservation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if reservation.ID == "" {
		reservation.ID = uuid.NewString()
	}
	reservation.Status = model.StatusReserved
	now := s.now().UTC().Truncate(time.Millisecond)
	reservation.CreatedAt = now
	reservation.UpdatedAt = now
	cp := *reservation
	s.reservations[reservation.ID] = &cp
	return nil
}

func (s *memStore) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return nil, prizeserrors.ErrReservationNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *memStore) FindLiveByIdentity(ctx context.Context, identityToken string) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reservations {
		if r.IdentityToken == identityToken && r.IsLive() {
			cp := *r
			return &cp, nil
		}
	}
	return nil, prizeserrors.ErrReservationNotFound
}

func (s *memStore) Transition(ctx context.Context, id string, to string) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reservations[id]
	if !ok {
		return nil, prizeserrors.ErrReservationNotFound
	}
	if r.Status == model.StatusReserved {
		r.Status = to
		r.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)
		cp := *r
		return &cp, nil
	}

	cp := *r
	switch r.Status {
	case model.StatusConfirmed:
		return &cp, prizeserrors.ErrAlreadyConfirmed
	default:
		return &cp, prizeserrors.ErrAlreadyReleased
	}
}

func (s *memStore) FindExpiredReserved(ctx context.Context, cutoff time.Time, limit int) ([]*model.Reservation, error) {
	if s.findExpFn != nil {
		return s.findExpFn(ctx, cutoff, limit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Reservation
	for _, r := range s.reservations {
		if r.Status == model.StatusReserved && r.CreatedAt.Before(cutoff) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) matches(r *model.Reservation, identity string, status string) bool {
	if identity != "" && !strings.Contains(strings.ToLower(r.IdentityToken), strings.ToLower(identity)) {
		return false
	}
	if status != "" && r.Status != status {
		return false
	}
	return true
}

func (s *memStore) Search(ctx context.Context, identity string, status string, limit int, offset int64) ([]*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Reservation
	for _, r := range s.reservations {
		if s.matches(r, identity, status) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if int(offset) >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) CountBySearch(ctx context.Context, identity string, status string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, r := range s.reservations {
		if s.matches(r, identity, status) {
			count++
		}
	}
	return count, nil
}

func (s *memStore) CountByStatus(ctx context.Context, status string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, r := range s.reservations {
		if r.Status == status {
			count++
		}
	}
	return count, nil
}

func (s *memStore) DistributionByPrize(ctx context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	distribution := make(map[string]int64)
	for _, r := range s.reservations {
		if r.Status == model.StatusConfirmed {
			distribution[r.PrizeID]++
		}
	}
	return distribution, nil
}

func (s *memStore) get(id string) *model.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.reservations[id]
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}

func (s *memStore) backdate(id string, createdAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.reservations[id]; ok {
		r.CreatedAt = createdAt
	}
}

func newTestService(ledger *memLedger, store *memStore) (AllocationService, *config.Config) {
	cfg := testConfig()
	svc := NewAllocationService(
		ledger,
		store,
		validator.NewIdentityValidator(cfg.Log),
		events.NoopPublisher{},
		cfg,
	)
	return svc, cfg
}
