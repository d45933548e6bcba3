package portal

import (
	"fmt"
	"strings"
	"time"

	"github.com/sih-tools/evalportal/internal/models"
	"github.com/sih-tools/evalportal/internal/problems"
	"github.com/sih-tools/evalportal/internal/store"
)

// Portal holds the submission and evaluation rules on top of the store.
type Portal struct {
	store          store.PortalStore
	catalog        *problems.Catalog
	maxSubmissions int
	maxAutoJuries  int
	teamLocks      *keyedMutex
}

func New(st store.PortalStore, catalog *problems.Catalog, maxSubmissions, maxAutoJuries int) *Portal {
	if maxSubmissions <= 0 {
		maxSubmissions = 2
	}
	if maxAutoJuries <= 0 {
		maxAutoJuries = 3
	}
	return &Portal{
		store:          st,
		catalog:        catalog,
		maxSubmissions: maxSubmissions,
		maxAutoJuries:  maxAutoJuries,
		teamLocks:      newKeyedMutex(),
	}
}

type SubmitResult struct {
	Message string `json:"message"`
}

// Submit validates and records one problem pitch for a team. The team row
// is upserted first (idempotent), then the per-team cap is enforced, then
// the submission is inserted. The first submission for a team also draws
// its jury assignments. All of it runs under the team's lock so two
// concurrent submissions for one team cannot both pass the cap check.
func (p *Portal) Submit(req *models.SubmissionRequest) (*SubmitResult, error) {
	var fields []string
	if err := req.Validate(); err != nil {
		fields = models.FieldErrors(err)
	}
	if !p.catalog.IsAllowedCode(req.ProblemCode) {
		fields = append(fields, "problem_code is not an allowed problem statement")
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	teamID := strings.ToUpper(req.TeamID)

	unlock := p.teamLocks.Lock(teamID)
	defer unlock()

	team := req.Team()
	team.TeamID = teamID
	if err := p.store.UpsertTeam(team); err != nil {
		return nil, &StorageFault{Err: err}
	}

	count, err := p.store.CountSubmissions(teamID)
	if err != nil {
		return nil, &StorageFault{Err: err}
	}
	if count >= p.maxSubmissions {
		return nil, &CapacityError{Limit: p.maxSubmissions}
	}

	problemID, _ := p.catalog.NumericID(req.ProblemCode)
	sub := &models.Submission{
		TeamID:      teamID,
		ProblemID:   problemID,
		ProblemCode: req.ProblemCode,
		SlidesLink:  req.SlidesLink,
		CreatedAt:   time.Now().Unix(),
		Presented:   false,
	}
	if err := p.store.CreateSubmission(sub); err != nil {
		return nil, &StorageFault{Err: err}
	}

	if err := p.autoAssign(teamID); err != nil {
		return nil, err
	}

	return &SubmitResult{
		Message: fmt.Sprintf("Submitted PPT for Problem Statement %s.", req.ProblemCode),
	}, nil
}

// autoAssign draws random juries for a team that has none yet. The insert
// ignores duplicate pairs, so a replay is harmless.
func (p *Portal) autoAssign(teamID string) error {
	assigned, err := p.store.HasAssignments(teamID)
	if err != nil {
		return &StorageFault{Err: err}
	}
	if assigned {
		return nil
	}

	juryIDs, err := p.store.PickRandomJuryIDs(p.maxAutoJuries)
	if err != nil {
		return &StorageFault{Err: err}
	}
	for _, juryID := range juryIDs {
		if err := p.store.CreateAssignment(teamID, juryID); err != nil {
			return &StorageFault{Err: err}
		}
	}
	return nil
}

func (p *Portal) TeamSubmissions(teamID string) ([]models.Submission, error) {
	subs, err := p.store.ListTeamSubmissions(strings.ToUpper(teamID))
	if err != nil {
		return nil, &StorageFault{Err: err}
	}
	return subs, nil
}
