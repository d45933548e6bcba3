package portal

import (
	"strings"
	"time"

	"github.com/sih-tools/evalportal/internal/models"
)

// RecordEvaluation stores one jury's rubric scores for a team. Ranges are
// checked first, then the jury's standing: the jury must exist and hold an
// assignment for the team before anything is written. Re-evaluation by the
// same jury overwrites the previous scores (last write wins). Returns
// whether the save completed the team, flipping its submissions to
// presented.
func (p *Portal) RecordEvaluation(req *models.EvaluationRequest) (bool, error) {
	if err := req.Validate(); err != nil {
		return false, &ValidationError{Fields: models.FieldErrors(err)}
	}

	teamID := strings.ToUpper(req.TeamID)

	jury, err := p.store.GetJury(req.JuryID)
	if err != nil {
		return false, &StorageFault{Err: err}
	}
	if jury == nil {
		return false, &AuthorizationError{}
	}

	assigned, err := p.store.HasAssignment(teamID, req.JuryID)
	if err != nil {
		return false, &StorageFault{Err: err}
	}
	if !assigned {
		return false, &AuthorizationError{}
	}

	eval := &models.Evaluation{
		TeamID:        teamID,
		JuryID:        req.JuryID,
		PPTDesign:     req.PPTDesign,
		Idea:          req.Idea,
		Pitching:      req.Pitching,
		ProjectImpact: req.ProjectImpact,
		TotalScore:    req.TotalScore(),
		CreatedAt:     time.Now().Unix(),
	}
	if req.Remarks != "" {
		eval.Remarks = &req.Remarks
	}

	presented, err := p.store.SaveEvaluation(eval)
	if err != nil {
		return false, &StorageFault{Err: err}
	}
	return presented, nil
}
