package store

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/sih-tools/evalportal/internal/models"
)

// PortalStore is everything the portal core and the admin surface need from
// the datastore. Both DB implementations satisfy it through BaseStore.
type PortalStore interface {
	Close() error
	ApplyMigrations(dir string) error

	UpsertTeam(team *models.Team) error
	FilterExistingTeams(teamIDs []string) ([]string, error)

	CountSubmissions(teamID string) (int, error)
	CreateSubmission(sub *models.Submission) error
	ListTeamSubmissions(teamID string) ([]models.Submission, error)
	SearchSubmissions(search, sortBy, order string) ([]SubmissionRow, error)
	SetSubmissionPresented(id int64) error
	DeleteSubmission(id int64) error

	GetJury(juryID string) (*models.Jury, error)
	GetJuryByEmail(email string) (*models.Jury, error)
	ListJuries() ([]models.Jury, error)
	PickRandomJuryIDs(limit int) ([]string, error)
	UpsertJury(jury *models.Jury) error
	DeleteJury(juryID string) error

	HasAssignments(teamID string) (bool, error)
	HasAssignment(teamID, juryID string) (bool, error)
	CreateAssignment(teamID, juryID string) error
	ListJuryTeamIDs(juryID string) ([]string, error)
	ReplaceJuryAssignments(juryID string, teamIDs []string) (int, error)

	SaveEvaluation(eval *models.Evaluation) (bool, error)
	ListAssignedTeams(juryID string) ([]AssignedTeamRow, error)
	FetchScoreSummary() ([]ScoreSummaryRow, error)
	ListJuryScores() ([]JuryScoreRow, error)
}

// BaseStore provides common functionality for different DB implementations.
// Queries are written with ? placeholders and passed through Converter, so
// the Postgres store can rebind them to $N form.
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(fmt.Sprintf("%s/%s", dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

func (s *BaseStore) UpsertTeam(team *models.Team) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO teams (team_id, team_name, leader_name, leader_id, phone)
		VALUES (:team_id, :team_name, :leader_name, :leader_id, :phone)
		ON CONFLICT(team_id) DO UPDATE SET
		team_name = excluded.team_name,
		leader_name = excluded.leader_name,
		leader_id = excluded.leader_id,
		phone = excluded.phone
	`, team)
	if err != nil {
		return fmt.Errorf("failed to upsert team: %w", err)
	}
	return nil
}

// FilterExistingTeams keeps only ids that actually have a team row,
// preserving input order.
func (s *BaseStore) FilterExistingTeams(teamIDs []string) ([]string, error) {
	if len(teamIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT team_id FROM teams WHERE team_id IN (?)`, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build team filter query: %w", err)
	}

	var found []string
	if err := s.DB.Select(&found, s.Converter(query), args...); err != nil {
		return nil, fmt.Errorf("failed to filter teams: %w", err)
	}

	known := make(map[string]bool, len(found))
	for _, id := range found {
		known[id] = true
	}

	var existing []string
	for _, id := range teamIDs {
		if known[id] {
			existing = append(existing, id)
		}
	}
	return existing, nil
}

func (s *BaseStore) CountSubmissions(teamID string) (int, error) {
	var count int
	query := s.Converter(`SELECT COUNT(*) FROM submissions WHERE team_id = ?`)
	if err := s.DB.Get(&count, query, teamID); err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return count, nil
}

func (s *BaseStore) CreateSubmission(sub *models.Submission) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO submissions (team_id, problem_id, problem_code, slides_link, created_at, presented)
		VALUES (:team_id, :problem_id, :problem_code, :slides_link, :created_at, :presented)
	`, sub)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

func (s *BaseStore) ListTeamSubmissions(teamID string) ([]models.Submission, error) {
	var subs []models.Submission
	query := s.Converter(`
		SELECT id, team_id, problem_id, problem_code, slides_link, created_at, presented
		FROM submissions
		WHERE team_id = ?
		ORDER BY created_at DESC
	`)
	if err := s.DB.Select(&subs, query, teamID); err != nil {
		return nil, fmt.Errorf("failed to list team submissions: %w", err)
	}
	return subs, nil
}

// SearchSubmissions joins teams in, filtered by team id substring. Sort
// column and direction go through an allow-list, never into raw SQL.
func (s *BaseStore) SearchSubmissions(search, sortBy, order string) ([]SubmissionRow, error) {
	switch sortBy {
	case "problem_id", "created_at":
	default:
		sortBy = "problem_id"
	}
	direction := "ASC"
	if strings.EqualFold(order, "desc") {
		direction = "DESC"
	}

	query := s.Converter(fmt.Sprintf(`
		SELECT s.id, s.team_id, t.team_name, t.leader_name, t.leader_id, t.phone,
		       s.problem_id, s.problem_code, s.slides_link, s.presented, s.created_at
		FROM submissions s
		JOIN teams t ON t.team_id = s.team_id
		WHERE s.team_id LIKE ?
		ORDER BY %s %s, s.created_at DESC
	`, sortBy, direction))

	var rows []SubmissionRow
	if err := s.DB.Select(&rows, query, "%"+search+"%"); err != nil {
		return nil, fmt.Errorf("failed to search submissions: %w", err)
	}
	return rows, nil
}

func (s *BaseStore) SetSubmissionPresented(id int64) error {
	query := s.Converter(`UPDATE submissions SET presented = TRUE WHERE id = ?`)
	if _, err := s.DB.Exec(query, id); err != nil {
		return fmt.Errorf("failed to mark submission presented: %w", err)
	}
	return nil
}

func (s *BaseStore) DeleteSubmission(id int64) error {
	query := s.Converter(`DELETE FROM submissions WHERE id = ?`)
	if _, err := s.DB.Exec(query, id); err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}
	return nil
}

func (s *BaseStore) GetJury(juryID string) (*models.Jury, error) {
	var jury models.Jury
	query := s.Converter(`
		SELECT jury_id, name, email, department, password_hash
		FROM juries
		WHERE jury_id = ?
	`)
	err := s.DB.Get(&jury, query, juryID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get jury: %w", err)
	}
	return &jury, nil
}

func (s *BaseStore) GetJuryByEmail(email string) (*models.Jury, error) {
	var jury models.Jury
	query := s.Converter(`
		SELECT jury_id, name, email, department, password_hash
		FROM juries
		WHERE email = ?
	`)
	err := s.DB.Get(&jury, query, email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get jury by email: %w", err)
	}
	return &jury, nil
}

func (s *BaseStore) ListJuries() ([]models.Jury, error) {
	var juries []models.Jury
	err := s.DB.Select(&juries, `
		SELECT jury_id, name, email, department, password_hash
		FROM juries
		ORDER BY department, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list juries: %w", err)
	}
	return juries, nil
}

func (s *BaseStore) PickRandomJuryIDs(limit int) ([]string, error) {
	var ids []string
	query := s.Converter(`SELECT jury_id FROM juries ORDER BY random() LIMIT ?`)
	if err := s.DB.Select(&ids, query, limit); err != nil {
		return nil, fmt.Errorf("failed to pick random juries: %w", err)
	}
	return ids, nil
}

func (s *BaseStore) UpsertJury(jury *models.Jury) error {
	var err error
	if jury.PasswordHash != nil {
		_, err = s.DB.NamedExec(`
			INSERT INTO juries (jury_id, name, email, department, password_hash)
			VALUES (:jury_id, :name, :email, :department, :password_hash)
			ON CONFLICT(jury_id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			department = excluded.department,
			password_hash = excluded.password_hash
		`, jury)
	} else {
		// nil hash keeps whatever credential the jury already has
		_, err = s.DB.NamedExec(`
			INSERT INTO juries (jury_id, name, email, department)
			VALUES (:jury_id, :name, :email, :department)
			ON CONFLICT(jury_id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			department = excluded.department
		`, jury)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert jury: %w", err)
	}
	return nil
}

// DeleteJury hard-deletes; assignments and evaluations go with it via FK
// cascade.
func (s *BaseStore) DeleteJury(juryID string) error {
	query := s.Converter(`DELETE FROM juries WHERE jury_id = ?`)
	if _, err := s.DB.Exec(query, juryID); err != nil {
		return fmt.Errorf("failed to delete jury: %w", err)
	}
	return nil
}

func (s *BaseStore) HasAssignments(teamID string) (bool, error) {
	var count int
	query := s.Converter(`SELECT COUNT(*) FROM jury_assignments WHERE team_id = ?`)
	if err := s.DB.Get(&count, query, teamID); err != nil {
		return false, fmt.Errorf("failed to check assignments: %w", err)
	}
	return count > 0, nil
}

func (s *BaseStore) HasAssignment(teamID, juryID string) (bool, error) {
	var count int
	query := s.Converter(`SELECT COUNT(*) FROM jury_assignments WHERE team_id = ? AND jury_id = ?`)
	if err := s.DB.Get(&count, query, teamID, juryID); err != nil {
		return false, fmt.Errorf("failed to check assignment: %w", err)
	}
	return count > 0, nil
}

// CreateAssignment inserts the pair, treating an existing pair as satisfied.
func (s *BaseStore) CreateAssignment(teamID, juryID string) error {
	query := s.Converter(`
		INSERT INTO jury_assignments (team_id, jury_id)
		VALUES (?, ?)
		ON CONFLICT(team_id, jury_id) DO NOTHING
	`)
	if _, err := s.DB.Exec(query, teamID, juryID); err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	return nil
}

func (s *BaseStore) ListJuryTeamIDs(juryID string) ([]string, error) {
	var ids []string
	query := s.Converter(`
		SELECT team_id FROM jury_assignments WHERE jury_id = ? ORDER BY team_id
	`)
	if err := s.DB.Select(&ids, query, juryID); err != nil {
		return nil, fmt.Errorf("failed to list jury assignments: %w", err)
	}
	return ids, nil
}

// ReplaceJuryAssignments is a destructive replace: everything the jury had
// is dropped, then the given set is inserted, all in one transaction.
func (s *BaseStore) ReplaceJuryAssignments(juryID string, teamIDs []string) (int, error) {
	tx, err := s.DB.Beginx()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(s.Converter(`DELETE FROM jury_assignments WHERE jury_id = ?`), juryID); err != nil {
		return 0, fmt.Errorf("failed to clear jury assignments: %w", err)
	}

	insert := s.Converter(`INSERT INTO jury_assignments (team_id, jury_id) VALUES (?, ?)`)
	for _, teamID := range teamIDs {
		if _, err := tx.Exec(insert, teamID, juryID); err != nil {
			return 0, fmt.Errorf("failed to assign team %s: %w", teamID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit assignments: %w", err)
	}
	return len(teamIDs), nil
}

// SaveEvaluation upserts the jury's scores and, in the same transaction,
// recounts the team's progress. When every assigned jury has an evaluation
// on record, all of the team's submissions flip to presented. The recount
// shares the transaction so a concurrent evaluator on the same team cannot
// make it read a stale count. Returns whether the flip happened.
func (s *BaseStore) SaveEvaluation(eval *models.Evaluation) (bool, error) {
	tx, err := s.DB.Beginx()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExec(`
		INSERT INTO evaluations (team_id, jury_id, ppt_design, idea, pitching, project_impact, remarks, total_score, created_at)
		VALUES (:team_id, :jury_id, :ppt_design, :idea, :pitching, :project_impact, :remarks, :total_score, :created_at)
		ON CONFLICT(team_id, jury_id) DO UPDATE SET
		ppt_design = excluded.ppt_design,
		idea = excluded.idea,
		pitching = excluded.pitching,
		project_impact = excluded.project_impact,
		remarks = excluded.remarks,
		total_score = excluded.total_score,
		created_at = excluded.created_at
	`, eval); err != nil {
		return false, fmt.Errorf("failed to save evaluation: %w", err)
	}

	var expected int
	if err := tx.Get(&expected, s.Converter(`
		SELECT COUNT(*) FROM jury_assignments WHERE team_id = ?
	`), eval.TeamID); err != nil {
		return false, fmt.Errorf("failed to count assignments: %w", err)
	}

	var done int
	if err := tx.Get(&done, s.Converter(`
		SELECT COUNT(*) FROM evaluations
		WHERE team_id = ?
		AND jury_id IN (SELECT jury_id FROM jury_assignments WHERE team_id = ?)
	`), eval.TeamID, eval.TeamID); err != nil {
		return false, fmt.Errorf("failed to count evaluations: %w", err)
	}

	presented := false
	if expected > 0 && done >= expected {
		if _, err := tx.Exec(s.Converter(`
			UPDATE submissions SET presented = TRUE WHERE team_id = ?
		`), eval.TeamID); err != nil {
			return false, fmt.Errorf("failed to mark team presented: %w", err)
		}
		presented = true
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit evaluation: %w", err)
	}
	return presented, nil
}

func (s *BaseStore) ListAssignedTeams(juryID string) ([]AssignedTeamRow, error) {
	var rows []AssignedTeamRow
	query := s.Converter(`
		SELECT DISTINCT s.team_id, t.team_name, t.leader_name, t.leader_id, s.slides_link, s.problem_id,
			CASE WHEN EXISTS (
				SELECT 1 FROM evaluations e WHERE e.team_id = s.team_id AND e.jury_id = ?
			) THEN TRUE ELSE FALSE END AS evaluated,
			(SELECT AVG(e2.total_score) FROM evaluations e2 WHERE e2.team_id = s.team_id) AS avg_score
		FROM submissions s
		JOIN teams t ON t.team_id = s.team_id
		JOIN jury_assignments ja ON ja.team_id = s.team_id
		WHERE ja.jury_id = ?
		ORDER BY s.team_id
	`)
	if err := s.DB.Select(&rows, query, juryID, juryID); err != nil {
		return nil, fmt.Errorf("failed to list assigned teams: %w", err)
	}
	return rows, nil
}

func (s *BaseStore) FetchScoreSummary() ([]ScoreSummaryRow, error) {
	var rows []ScoreSummaryRow
	err := s.DB.Select(&rows, `
		SELECT s.team_id, t.team_name, s.problem_id,
		       AVG(e.total_score) AS avg_score,
		       COUNT(e.jury_id) AS evaluations_count
		FROM submissions s
		JOIN teams t ON t.team_id = s.team_id
		LEFT JOIN evaluations e ON e.team_id = s.team_id
		GROUP BY s.team_id, t.team_name, s.problem_id
		ORDER BY COALESCE(AVG(e.total_score), -1) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch score summary: %w", err)
	}
	return rows, nil
}

func (s *BaseStore) ListJuryScores() ([]JuryScoreRow, error) {
	var rows []JuryScoreRow
	err := s.DB.Select(&rows, `
		SELECT team_id, jury_id, total_score
		FROM evaluations
		ORDER BY team_id, jury_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list jury scores: %w", err)
	}
	return rows, nil
}
