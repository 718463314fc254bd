package model

import "time"

// Prize is one allocable category with a finite pool of units. Remaining is
// mutated only through the ledger's conditional updates; metadata fields are
// free-form and owned by the admin surface.
type Prize struct {
	ID          string    `json:"id" bson:"_id" validate:"required,min=1,max=64"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=500"`
	Icon        string    `json:"icon,omitempty" bson:"icon,omitempty" validate:"omitempty,max=200"`
	Remaining   int       `json:"remaining" bson:"remaining" validate:"min=0"`
	Total       int       `json:"total" bson:"total" validate:"required,min=1"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}
