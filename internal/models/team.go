package models

type Team struct {
	TeamID     string `db:"team_id" json:"team_id"`
	TeamName   string `db:"team_name" json:"team_name"`
	LeaderName string `db:"leader_name" json:"leader_name"`
	LeaderID   string `db:"leader_id" json:"leader_id"`
	Phone      string `db:"phone" json:"phone"`
}

type Submission struct {
	ID          int64  `db:"id" json:"id"`
	TeamID      string `db:"team_id" json:"team_id"`
	ProblemID   int    `db:"problem_id" json:"problem_id"`
	ProblemCode string `db:"problem_code" json:"problem_code"`
	SlidesLink  string `db:"slides_link" json:"slides_link"`
	CreatedAt   int64  `db:"created_at" json:"created_at"`
	Presented   bool   `db:"presented" json:"presented"`
}

// SubmissionRequest is what a participant posts from the upload form.
type SubmissionRequest struct {
	TeamID      string `json:"team_id" validate:"required,team_id"`
	TeamName    string `json:"team_name" validate:"required,min=2"`
	LeaderName  string `json:"leader_name" validate:"required,min=2"`
	LeaderID    string `json:"leader_id" validate:"required,min=2"`
	Phone       string `json:"phone" validate:"required,phone10"`
	ProblemCode string `json:"problem_code" validate:"required"`
	SlidesLink  string `json:"slides_link" validate:"required,url"`
}

func (r *SubmissionRequest) Validate() error {
	return validate.Struct(r)
}

func (r *SubmissionRequest) Team() *Team {
	return &Team{
		TeamID:     r.TeamID,
		TeamName:   r.TeamName,
		LeaderName: r.LeaderName,
		LeaderID:   r.LeaderID,
		Phone:      r.Phone,
	}
}
