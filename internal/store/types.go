package store

type DatabaseType string

const (
	DBTypePostgres DatabaseType = "postgres"
	DBTypeSQLite   DatabaseType = "sqlite"
)

// SubmissionRow is the admin listing: submission joined with its team.
type SubmissionRow struct {
	ID          int64  `db:"id" json:"id"`
	TeamID      string `db:"team_id" json:"team_id"`
	TeamName    string `db:"team_name" json:"team_name"`
	LeaderName  string `db:"leader_name" json:"leader_name"`
	LeaderID    string `db:"leader_id" json:"leader_id"`
	Phone       string `db:"phone" json:"phone"`
	ProblemID   int    `db:"problem_id" json:"problem_id"`
	ProblemCode string `db:"problem_code" json:"problem_code"`
	SlidesLink  string `db:"slides_link" json:"slides_link"`
	Presented   bool   `db:"presented" json:"presented"`
	CreatedAt   int64  `db:"created_at" json:"created_at"`
}

// AssignedTeamRow is what a jury sees on its evaluation dashboard.
type AssignedTeamRow struct {
	TeamID     string   `db:"team_id" json:"team_id"`
	TeamName   string   `db:"team_name" json:"team_name"`
	LeaderName string   `db:"leader_name" json:"leader_name"`
	LeaderID   string   `db:"leader_id" json:"leader_id"`
	SlidesLink string   `db:"slides_link" json:"slides_link"`
	ProblemID  int      `db:"problem_id" json:"problem_id"`
	Evaluated  bool     `db:"evaluated" json:"evaluated"`
	AvgScore   *float64 `db:"avg_score" json:"avg_score"`
}

// ScoreSummaryRow aggregates evaluations per team submission.
type ScoreSummaryRow struct {
	TeamID           string   `db:"team_id" json:"team_id"`
	TeamName         string   `db:"team_name" json:"team_name"`
	ProblemID        int      `db:"problem_id" json:"problem_id"`
	AvgScore         *float64 `db:"avg_score" json:"avg_score"`
	EvaluationsCount int      `db:"evaluations_count" json:"evaluations_count"`
}

// JuryScoreRow is one jury's total for one team.
type JuryScoreRow struct {
	TeamID     string  `db:"team_id" json:"team_id"`
	JuryID     string  `db:"jury_id" json:"jury_id"`
	TotalScore float64 `db:"total_score" json:"total_score"`
}
