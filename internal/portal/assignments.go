package portal

import (
	"fmt"
	"strings"
)

type AssignmentResult struct {
	AssignedCount int      `json:"count"`
	SkippedIDs    []string `json:"skipped"`
}

// SetAssignments replaces a jury's whole team list. Unknown team ids are
// dropped and reported back as skipped; they never abort the replace. An
// admin who wants to add one team must re-supply the full list.
func (p *Portal) SetAssignments(juryID string, teamIDs []string) (*AssignmentResult, error) {
	jury, err := p.store.GetJury(juryID)
	if err != nil {
		return nil, &StorageFault{Err: err}
	}
	if jury == nil {
		return nil, &ValidationError{Fields: []string{fmt.Sprintf("jury_id %q does not exist", juryID)}}
	}

	normalized := make([]string, 0, len(teamIDs))
	seen := make(map[string]bool, len(teamIDs))
	for _, id := range teamIDs {
		id = strings.ToUpper(strings.TrimSpace(id))
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		normalized = append(normalized, id)
	}

	existing, err := p.store.FilterExistingTeams(normalized)
	if err != nil {
		return nil, &StorageFault{Err: err}
	}

	count, err := p.store.ReplaceJuryAssignments(juryID, existing)
	if err != nil {
		return nil, &StorageFault{Err: err}
	}

	kept := make(map[string]bool, len(existing))
	for _, id := range existing {
		kept[id] = true
	}
	skipped := []string{}
	for _, id := range normalized {
		if !kept[id] {
			skipped = append(skipped, id)
		}
	}

	return &AssignmentResult{AssignedCount: count, SkippedIDs: skipped}, nil
}

type ImportPair struct {
	TeamID string `json:"team_id"`
	JuryID string `json:"jury_id"`
}

type ImportResult struct {
	SuccessCount int      `json:"imported"`
	LineErrors   []string `json:"errors"`
}

// ImportAssignmentPairs loads (team, jury) pairs in bulk. Each pair is
// checked for existence on both sides; an already-present pair counts as
// satisfied. Bad lines are collected, never fatal for the batch.
func (p *Portal) ImportAssignmentPairs(pairs []ImportPair) (*ImportResult, error) {
	result := &ImportResult{LineErrors: []string{}}

	for i, pair := range pairs {
		line := i + 1
		teamID := strings.ToUpper(strings.TrimSpace(pair.TeamID))
		juryID := strings.TrimSpace(pair.JuryID)
		if teamID == "" || juryID == "" {
			result.LineErrors = append(result.LineErrors, fmt.Sprintf("line %d: team_id and jury_id are both required", line))
			continue
		}

		existing, err := p.store.FilterExistingTeams([]string{teamID})
		if err != nil {
			return nil, &StorageFault{Err: err}
		}
		if len(existing) == 0 {
			result.LineErrors = append(result.LineErrors, fmt.Sprintf("line %d: unknown team %s", line, teamID))
			continue
		}

		jury, err := p.store.GetJury(juryID)
		if err != nil {
			return nil, &StorageFault{Err: err}
		}
		if jury == nil {
			result.LineErrors = append(result.LineErrors, fmt.Sprintf("line %d: unknown jury %s", line, juryID))
			continue
		}

		if err := p.store.CreateAssignment(teamID, juryID); err != nil {
			return nil, &StorageFault{Err: err}
		}
		result.SuccessCount++
	}

	return result, nil
}

func (p *Portal) JuryAssignments(juryID string) ([]string, error) {
	ids, err := p.store.ListJuryTeamIDs(juryID)
	if err != nil {
		return nil, &StorageFault{Err: err}
	}
	return ids, nil
}
