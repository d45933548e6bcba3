package models

type Evaluation struct {
	TeamID        string  `db:"team_id" json:"team_id"`
	JuryID        string  `db:"jury_id" json:"jury_id"`
	PPTDesign     int     `db:"ppt_design" json:"ppt_design"`
	Idea          int     `db:"idea" json:"idea"`
	Pitching      int     `db:"pitching" json:"pitching"`
	ProjectImpact int     `db:"project_impact" json:"project_impact"`
	Remarks       *string `db:"remarks" json:"remarks,omitempty"`
	TotalScore    float64 `db:"total_score" json:"total_score"`
	CreatedAt     int64   `db:"created_at" json:"created_at"`
}

// EvaluationRequest carries a jury's rubric scores for one team. Each
// sub-score is an integer on the 1..10 scale.
type EvaluationRequest struct {
	TeamID        string `json:"team_id" validate:"required"`
	JuryID        string `json:"jury_id" validate:"required"`
	PPTDesign     int    `json:"ppt_design" validate:"min=1,max=10"`
	Idea          int    `json:"idea" validate:"min=1,max=10"`
	Pitching      int    `json:"pitching" validate:"min=1,max=10"`
	ProjectImpact int    `json:"project_impact" validate:"min=1,max=10"`
	Remarks       string `json:"remarks"`
}

func (r *EvaluationRequest) Validate() error {
	return validate.Struct(r)
}

// Mean of the four sub-scores, unrounded. total_score is always derived
// from the sub-scores on write, never stored independently of them.
func (r *EvaluationRequest) TotalScore() float64 {
	return float64(r.PPTDesign+r.Idea+r.Pitching+r.ProjectImpact) / 4
}
