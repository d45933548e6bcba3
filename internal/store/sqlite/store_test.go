// internal/store/sqlite/store_test.go
package sqlite

import (
	"fmt"
	"log"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sih-tools/evalportal/internal/models"
	"github.com/sih-tools/evalportal/internal/portal"
	"github.com/sih-tools/evalportal/internal/problems"
)

// setupTestDB creates an in-memory SQLite database and initializes schema
func setupTestDB(t *testing.T) (*SQLiteStore, func()) {
	// Create tables directly instead of using migrations for tests
	schema := `
	CREATE TABLE IF NOT EXISTS teams (
		team_id TEXT PRIMARY KEY,
		team_name TEXT NOT NULL,
		leader_name TEXT NOT NULL,
		leader_id TEXT NOT NULL,
		phone TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS juries (
		jury_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		department TEXT NOT NULL,
		password_hash TEXT
	);

	CREATE TABLE IF NOT EXISTS jury_assignments (
		team_id TEXT NOT NULL REFERENCES teams(team_id) ON DELETE CASCADE,
		jury_id TEXT NOT NULL REFERENCES juries(jury_id) ON DELETE CASCADE,
		PRIMARY KEY (team_id, jury_id)
	);

	CREATE TABLE IF NOT EXISTS submissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		team_id TEXT NOT NULL REFERENCES teams(team_id),
		problem_id INTEGER NOT NULL,
		problem_code TEXT NOT NULL DEFAULT '',
		slides_link TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		presented BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE TABLE IF NOT EXISTS evaluations (
		team_id TEXT NOT NULL REFERENCES teams(team_id) ON DELETE CASCADE,
		jury_id TEXT NOT NULL REFERENCES juries(jury_id) ON DELETE CASCADE,
		ppt_design INTEGER NOT NULL,
		idea INTEGER NOT NULL,
		pitching INTEGER NOT NULL,
		project_impact INTEGER NOT NULL,
		remarks TEXT,
		total_score REAL NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (team_id, jury_id)
	);`

	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err, "Failed to create store")

	_, err = s.DB.Exec(schema)
	require.NoError(t, err, "Failed to create schema")

	cleanup := func() {
		err := s.Close()
		require.NoError(t, err, "Failed to close database")
	}

	return s, cleanup
}

func seedJuries(t *testing.T, s *SQLiteStore, ids ...string) {
	for _, id := range ids {
		err := s.UpsertJury(&models.Jury{
			JuryID:     id,
			Name:       "Dr. " + id,
			Department: "CSE",
		})
		require.NoError(t, err, "Failed to seed jury %s", id)
	}
}

func newPortal(s *SQLiteStore) *portal.Portal {
	return portal.New(s, problems.DefaultCatalog(), 2, 3)
}

func submission(problemCode string) *models.SubmissionRequest {
	return &models.SubmissionRequest{
		TeamID:      "007_SIH",
		TeamName:    "Team Vortex",
		LeaderName:  "Asha Rao",
		LeaderID:    "21CS007",
		Phone:       "9876543210",
		ProblemCode: problemCode,
		SlidesLink:  "https://slides.example.com/deck",
	}
}

func TestMain(m *testing.M) {
	log.Println("Starting SQLite store tests...")
	code := m.Run()
	log.Println("Finished SQLite store tests")
	os.Exit(code)
}

func TestTranslateToSQLite(t *testing.T) {
	ddl := "id BIGSERIAL PRIMARY KEY, created_at BIGINT NOT NULL, total_score DOUBLE PRECISION, stamp TIMESTAMP DEFAULT now()"
	want := "id INTEGER PRIMARY KEY, created_at INTEGER NOT NULL, total_score REAL, stamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP"

	// repeated runs must agree: BIGSERIAL contains SERIAL and BIGINT is a
	// prefix of it, so replacement order decides the output
	for i := 0; i < 100; i++ {
		assert.Equal(t, want, translateToSQLite(ddl))
	}
}

func TestApplyMigrationsRoundTrip(t *testing.T) {
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.ApplyMigrations("../../../migrations"))

	require.NoError(t, s.UpsertTeam(&models.Team{
		TeamID: "007_SIH", TeamName: "Team Vortex",
		LeaderName: "Asha Rao", LeaderID: "21CS007", Phone: "9876543210",
	}))
	require.NoError(t, s.CreateSubmission(&models.Submission{
		TeamID: "007_SIH", ProblemID: 25050, ProblemCode: "SIH25050",
		SlidesLink: "https://slides.example.com/deck", CreatedAt: 1700000000,
	}))

	// the id column only autofills when it translated to the exact
	// INTEGER PRIMARY KEY rowid alias
	subs, err := s.ListTeamSubmissions("007_SIH")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Positive(t, subs[0].ID)
}

func TestUpsertTeam(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	team := &models.Team{
		TeamID:     "007_SIH",
		TeamName:   "Team Vortex",
		LeaderName: "Asha Rao",
		LeaderID:   "21CS007",
		Phone:      "9876543210",
	}
	require.NoError(t, s.UpsertTeam(team))

	team.TeamName = "Team Vortex Reloaded"
	require.NoError(t, s.UpsertTeam(team))

	var count int
	require.NoError(t, s.DB.Get(&count, `SELECT COUNT(*) FROM teams`))
	assert.Equal(t, 1, count, "upsert must not duplicate the team row")

	var name string
	require.NoError(t, s.DB.Get(&name, `SELECT team_name FROM teams WHERE team_id = '007_SIH'`))
	assert.Equal(t, "Team Vortex Reloaded", name)
}

func TestSubmissionLifecycleScenario(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	seedJuries(t, s, "CSE01", "CSE02", "ECE01", "ME01")
	p := newPortal(s)

	t.Run("first submission in range succeeds", func(t *testing.T) {
		result, err := p.Submit(submission("SIH25050"))
		require.NoError(t, err)
		assert.Contains(t, result.Message, "SIH25050")
	})

	t.Run("out-of-range code is rejected", func(t *testing.T) {
		_, err := p.Submit(submission("SIH99999"))
		var verr *portal.ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("legacy code succeeds", func(t *testing.T) {
		_, err := p.Submit(submission("SIH12507"))
		require.NoError(t, err)
	})

	t.Run("fourth attempt hits the cap", func(t *testing.T) {
		_, err := p.Submit(submission("SIH25060"))
		var cerr *portal.CapacityError
		require.ErrorAs(t, err, &cerr)

		count, err2 := s.CountSubmissions("007_SIH")
		require.NoError(t, err2)
		assert.Equal(t, 2, count, "failed attempt must not change the submission count")
	})

	t.Run("team row stayed unique through it all", func(t *testing.T) {
		var count int
		require.NoError(t, s.DB.Get(&count, `SELECT COUNT(*) FROM teams`))
		assert.Equal(t, 1, count)
	})
}

func TestConcurrentSubmissionsRespectCap(t *testing.T) {
	// shared cache so every pooled connection sees the same in-memory DB
	s, err := NewSQLiteStore("file:capgate?mode=memory&cache=shared")
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.ApplyMigrations("../../../migrations"))

	seedJuries(t, s, "CSE01", "CSE02", "ECE01")
	p := newPortal(s)

	const attempts = 6
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		code := fmt.Sprintf("SIH%05d", 25001+i)
		wg.Add(1)
		go func(code string) {
			defer wg.Done()
			_, err := p.Submit(submission(code))
			errs <- err
		}(code)
	}
	wg.Wait()
	close(errs)

	accepted, capped := 0, 0
	for err := range errs {
		if err == nil {
			accepted++
			continue
		}
		var cerr *portal.CapacityError
		require.ErrorAs(t, err, &cerr)
		capped++
	}
	assert.Equal(t, 2, accepted, "exactly the cap's worth of submissions may land")
	assert.Equal(t, attempts-2, capped)

	var count int
	require.NoError(t, s.DB.Get(&count, `SELECT COUNT(*) FROM submissions WHERE team_id = '007_SIH'`))
	assert.Equal(t, 2, count)
}

func TestAutoAssignment(t *testing.T) {
	t.Run("first submission draws two or three juries", func(t *testing.T) {
		s, cleanup := setupTestDB(t)
		defer cleanup()
		seedJuries(t, s, "CSE01", "CSE02", "ECE01", "ME01")
		p := newPortal(s)

		_, err := p.Submit(submission("SIH25050"))
		require.NoError(t, err)

		var count int
		require.NoError(t, s.DB.Get(&count, `SELECT COUNT(*) FROM jury_assignments WHERE team_id = '007_SIH'`))
		assert.GreaterOrEqual(t, count, 2)
		assert.LessOrEqual(t, count, 3)

		_, err = p.Submit(submission("SIH25051"))
		require.NoError(t, err)

		var after int
		require.NoError(t, s.DB.Get(&after, `SELECT COUNT(*) FROM jury_assignments WHERE team_id = '007_SIH'`))
		assert.Equal(t, count, after, "second submission must not add assignments")
	})

	t.Run("pool smaller than the draw still assigns everyone", func(t *testing.T) {
		s, cleanup := setupTestDB(t)
		defer cleanup()
		seedJuries(t, s, "CSE01")
		p := newPortal(s)

		_, err := p.Submit(submission("SIH25050"))
		require.NoError(t, err)

		var count int
		require.NoError(t, s.DB.Get(&count, `SELECT COUNT(*) FROM jury_assignments WHERE team_id = '007_SIH'`))
		assert.Equal(t, 1, count)
	})
}

func TestEvaluationAuthorizationScenario(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	seedJuries(t, s, "CSE01")
	p := newPortal(s)

	require.NoError(t, s.UpsertTeam(&models.Team{
		TeamID: "007_SIH", TeamName: "Team Vortex",
		LeaderName: "Asha Rao", LeaderID: "21CS007", Phone: "9876543210",
	}))

	eval := &models.EvaluationRequest{
		TeamID:        "007_SIH",
		JuryID:        "CSE01",
		PPTDesign:     8,
		Idea:          6,
		Pitching:      7,
		ProjectImpact: 9,
	}

	t.Run("unassigned jury is refused and writes nothing", func(t *testing.T) {
		_, err := p.RecordEvaluation(eval)
		var aerr *portal.AuthorizationError
		require.ErrorAs(t, err, &aerr)

		var count int
		require.NoError(t, s.DB.Get(&count, `SELECT COUNT(*) FROM evaluations`))
		assert.Equal(t, 0, count)
	})

	t.Run("same call succeeds once assigned", func(t *testing.T) {
		require.NoError(t, s.CreateAssignment("007_SIH", "CSE01"))

		_, err := p.RecordEvaluation(eval)
		require.NoError(t, err)

		var total float64
		require.NoError(t, s.DB.Get(&total, `SELECT total_score FROM evaluations WHERE team_id = '007_SIH' AND jury_id = 'CSE01'`))
		assert.Equal(t, 7.5, total)
	})
}

func TestReEvaluationLastWriteWins(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	seedJuries(t, s, "CSE01", "CSE02")
	p := newPortal(s)

	require.NoError(t, s.UpsertTeam(&models.Team{
		TeamID: "007_SIH", TeamName: "Team Vortex",
		LeaderName: "Asha Rao", LeaderID: "21CS007", Phone: "9876543210",
	}))
	require.NoError(t, s.CreateAssignment("007_SIH", "CSE01"))
	require.NoError(t, s.CreateAssignment("007_SIH", "CSE02"))

	first := &models.EvaluationRequest{
		TeamID: "007_SIH", JuryID: "CSE01",
		PPTDesign: 8, Idea: 6, Pitching: 7, ProjectImpact: 9,
	}
	_, err := p.RecordEvaluation(first)
	require.NoError(t, err)

	second := &models.EvaluationRequest{
		TeamID: "007_SIH", JuryID: "CSE01",
		PPTDesign: 10, Idea: 10, Pitching: 10, ProjectImpact: 10,
		Remarks: "much better on the second run",
	}
	_, err = p.RecordEvaluation(second)
	require.NoError(t, err)

	var count int
	require.NoError(t, s.DB.Get(&count, `SELECT COUNT(*) FROM evaluations WHERE team_id = '007_SIH' AND jury_id = 'CSE01'`))
	assert.Equal(t, 1, count, "re-evaluation must overwrite, not duplicate")

	var total float64
	require.NoError(t, s.DB.Get(&total, `SELECT total_score FROM evaluations WHERE team_id = '007_SIH' AND jury_id = 'CSE01'`))
	assert.Equal(t, 10.0, total)
}

func TestCompletionFlipsPresented(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	seedJuries(t, s, "CSE01", "CSE02")
	p := newPortal(s)

	require.NoError(t, s.UpsertTeam(&models.Team{
		TeamID: "007_SIH", TeamName: "Team Vortex",
		LeaderName: "Asha Rao", LeaderID: "21CS007", Phone: "9876543210",
	}))
	require.NoError(t, s.CreateSubmission(&models.Submission{
		TeamID: "007_SIH", ProblemID: 25050, ProblemCode: "SIH25050",
		SlidesLink: "https://slides.example.com/deck", CreatedAt: 1700000000,
	}))
	require.NoError(t, s.CreateAssignment("007_SIH", "CSE01"))
	require.NoError(t, s.CreateAssignment("007_SIH", "CSE02"))

	presentedCount := func() int {
		var count int
		require.NoError(t, s.DB.Get(&count, `SELECT COUNT(*) FROM submissions WHERE team_id = '007_SIH' AND presented`))
		return count
	}

	presented, err := p.RecordEvaluation(&models.EvaluationRequest{
		TeamID: "007_SIH", JuryID: "CSE01",
		PPTDesign: 8, Idea: 6, Pitching: 7, ProjectImpact: 9,
	})
	require.NoError(t, err)
	assert.False(t, presented, "one of two juries is not completion")
	assert.Equal(t, 0, presentedCount())

	presented, err = p.RecordEvaluation(&models.EvaluationRequest{
		TeamID: "007_SIH", JuryID: "CSE02",
		PPTDesign: 7, Idea: 7, Pitching: 7, ProjectImpact: 7,
	})
	require.NoError(t, err)
	assert.True(t, presented, "second of two juries completes the team")
	assert.Equal(t, 1, presentedCount())
}

func TestReplaceJuryAssignments(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	seedJuries(t, s, "CSE01")
	p := newPortal(s)

	for _, id := range []string{"001_SIH", "002_SIH", "003_SIH"} {
		require.NoError(t, s.UpsertTeam(&models.Team{
			TeamID: id, TeamName: "Team " + id,
			LeaderName: "Lead " + id, LeaderID: "L" + id, Phone: "9876543210",
		}))
	}
	require.NoError(t, s.CreateAssignment("001_SIH", "CSE01"))

	result, err := p.SetAssignments("CSE01", []string{"002_SIH", "003_SIH", "404_SIH"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.AssignedCount)
	assert.Equal(t, []string{"404_SIH"}, result.SkippedIDs)

	ids, err := s.ListJuryTeamIDs("CSE01")
	require.NoError(t, err)
	assert.Equal(t, []string{"002_SIH", "003_SIH"}, ids, "replace drops the old set wholesale")
}

func TestImportAssignmentPairs(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	seedJuries(t, s, "CSE01")
	p := newPortal(s)

	require.NoError(t, s.UpsertTeam(&models.Team{
		TeamID: "001_SIH", TeamName: "Team One",
		LeaderName: "Lead One", LeaderID: "L1", Phone: "9876543210",
	}))

	result, err := p.ImportAssignmentPairs([]portal.ImportPair{
		{TeamID: "001_SIH", JuryID: "CSE01"},
		{TeamID: "001_SIH", JuryID: "CSE01"}, // duplicate is already-satisfied
		{TeamID: "404_SIH", JuryID: "CSE01"},
		{TeamID: "001_SIH", JuryID: "GHOST"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Len(t, result.LineErrors, 2)

	var count int
	require.NoError(t, s.DB.Get(&count, `SELECT COUNT(*) FROM jury_assignments`))
	assert.Equal(t, 1, count)
}

func TestDeleteJuryCascades(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	seedJuries(t, s, "CSE01", "CSE02")
	p := newPortal(s)

	require.NoError(t, s.UpsertTeam(&models.Team{
		TeamID: "007_SIH", TeamName: "Team Vortex",
		LeaderName: "Asha Rao", LeaderID: "21CS007", Phone: "9876543210",
	}))
	require.NoError(t, s.CreateAssignment("007_SIH", "CSE01"))
	require.NoError(t, s.CreateAssignment("007_SIH", "CSE02"))
	_, err := p.RecordEvaluation(&models.EvaluationRequest{
		TeamID: "007_SIH", JuryID: "CSE01",
		PPTDesign: 8, Idea: 6, Pitching: 7, ProjectImpact: 9,
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteJury("CSE01"))

	var assignments, evaluations int
	require.NoError(t, s.DB.Get(&assignments, `SELECT COUNT(*) FROM jury_assignments WHERE jury_id = 'CSE01'`))
	require.NoError(t, s.DB.Get(&evaluations, `SELECT COUNT(*) FROM evaluations WHERE jury_id = 'CSE01'`))
	assert.Equal(t, 0, assignments)
	assert.Equal(t, 0, evaluations)
}

func TestScoreSummary(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	seedJuries(t, s, "CSE01", "CSE02")
	p := newPortal(s)

	require.NoError(t, s.UpsertTeam(&models.Team{
		TeamID: "007_SIH", TeamName: "Team Vortex",
		LeaderName: "Asha Rao", LeaderID: "21CS007", Phone: "9876543210",
	}))
	require.NoError(t, s.CreateSubmission(&models.Submission{
		TeamID: "007_SIH", ProblemID: 25050, ProblemCode: "SIH25050",
		SlidesLink: "https://slides.example.com/deck", CreatedAt: 1700000000,
	}))
	require.NoError(t, s.CreateAssignment("007_SIH", "CSE01"))
	require.NoError(t, s.CreateAssignment("007_SIH", "CSE02"))

	// a second team with a submission but no evaluations yet
	require.NoError(t, s.UpsertTeam(&models.Team{
		TeamID: "008_SIH", TeamName: "Team Nimbus",
		LeaderName: "Ravi Kumar", LeaderID: "21EC008", Phone: "9876543211",
	}))
	require.NoError(t, s.CreateSubmission(&models.Submission{
		TeamID: "008_SIH", ProblemID: 25060, ProblemCode: "SIH25060",
		SlidesLink: "https://slides.example.com/nimbus", CreatedAt: 1700000100,
	}))

	for _, req := range []*models.EvaluationRequest{
		{TeamID: "007_SIH", JuryID: "CSE01", PPTDesign: 8, Idea: 6, Pitching: 7, ProjectImpact: 9},
		{TeamID: "007_SIH", JuryID: "CSE02", PPTDesign: 6, Idea: 6, Pitching: 6, ProjectImpact: 6},
	} {
		_, err := p.RecordEvaluation(req)
		require.NoError(t, err)
	}

	summary, err := s.FetchScoreSummary()
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, "007_SIH", summary[0].TeamID, "unevaluated teams sort after scored ones")
	assert.Equal(t, 2, summary[0].EvaluationsCount)
	require.NotNil(t, summary[0].AvgScore)
	assert.InDelta(t, 6.75, *summary[0].AvgScore, 0.0001)

	assert.Equal(t, "008_SIH", summary[1].TeamID)
	assert.Nil(t, summary[1].AvgScore)
	assert.Equal(t, 0, summary[1].EvaluationsCount)

	perJury, err := s.ListJuryScores()
	require.NoError(t, err)
	assert.Len(t, perJury, 2)
}
