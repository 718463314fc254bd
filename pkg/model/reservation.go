package model

import "time"

const (
	StatusReserved  = "reserved"
	StatusConfirmed = "confirmed"
	StatusReleased  = "released"
)

// LiveStatuses are the statuses under which an identity is considered to be
// holding an allocation.
var LiveStatuses = []string{StatusReserved, StatusConfirmed}

// Reservation records one successful claim against a prize. Records are never
// deleted; confirmed and released are terminal.
type Reservation struct {
	ID            string    `json:"id" bson:"_id" validate:"omitempty,uuid4"`
	IdentityToken string    `json:"identity_token" bson:"identity_token" validate:"required,email"`
	PrizeID       string    `json:"prize_id" bson:"prize_id" validate:"required,min=1,max=64"`
	Status        string    `json:"status" bson:"status" validate:"required,oneof=reserved confirmed released"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

func (r *Reservation) IsLive() bool {
	return r.Status == StatusReserved || r.Status == StatusConfirmed
}

func (r *Reservation) IsTerminal() bool {
	return r.Status == StatusConfirmed || r.Status == StatusReleased
}

// Allocation is the result handed back to a caller that won a unit.
type Allocation struct {
	ReservationID string `json:"reservation_id"`
	Prize         *Prize `json:"prize"`
}

// Stats is recomputed on demand from the reservation store; there are no
// independently-mutable counters to drift.
type Stats struct {
	TotalAllocated int64            `json:"total_allocated"`
	Pending        int64            `json:"pending"`
	Distribution   map[string]int64 `json:"distribution"`
}
