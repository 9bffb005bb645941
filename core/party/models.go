package party

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/tutorparty/core"
)

// Member is a seat in a party.
type Member struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	PartyCode string    `json:"party_code" db:"party_code"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// JoinRequest is the payload of a join attempt.
type JoinRequest struct {
	Name string `json:"name" validate:"required,notblank,max=60"`
	Code string `json:"code" validate:"required,notblank"`
}

func (jr *JoinRequest) Validate(validate *validator.Validate) error {
	jr.Name = core.CleanString(jr.Name)
	jr.Code = core.CleanString(jr.Code)
	return validate.Struct(jr)
}
