package models

type Jury struct {
	JuryID       string  `db:"jury_id" json:"jury_id"`
	Name         string  `db:"name" json:"name"`
	Email        *string `db:"email" json:"email,omitempty"`
	Department   string  `db:"department" json:"department"`
	PasswordHash *string `db:"password_hash" json:"-"`
}

// JuryUpsertRequest is the admin roster form. Password is optional: empty
// keeps whatever hash the jury already has.
type JuryUpsertRequest struct {
	JuryID     string `json:"jury_id" validate:"required"`
	Name       string `json:"name" validate:"required,min=2"`
	Email      string `json:"email" validate:"omitempty,email"`
	Department string `json:"department" validate:"required,min=2"`
	Password   string `json:"password" validate:"omitempty,min=4"`
}

func (r *JuryUpsertRequest) Validate() error {
	return validate.Struct(r)
}

type Assignment struct {
	TeamID string `db:"team_id" json:"team_id"`
	JuryID string `db:"jury_id" json:"jury_id"`
}
