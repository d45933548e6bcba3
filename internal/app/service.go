package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sih-tools/evalportal/internal/creds"
	"github.com/sih-tools/evalportal/internal/models"
	"github.com/sih-tools/evalportal/internal/portal"
	"github.com/sih-tools/evalportal/internal/store"
)

type Service struct {
	Config   *Config
	Store    store.PortalStore
	Portal   *portal.Portal
	Sessions *Sessions
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	st, err := NewStore(config.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	sessions, err := NewSessions(config)
	if err != nil {
		return nil, fmt.Errorf("failed to init sessions: %w", err)
	}

	return &Service{
		Config:   config,
		Store:    st,
		Portal:   portal.New(st, &config.Problems, config.Submissions.MaxPerTeam, config.Submissions.MaxAutoJuries),
		Sessions: sessions,
	}, nil
}

var errInvalidCredentials = fmt.Errorf("invalid credentials")
var errAccountLocked = fmt.Errorf("account locked, try again later")

func IsInvalidCredentials(err error) bool { return err == errInvalidCredentials }
func IsAccountLocked(err error) bool      { return err == errAccountLocked }

type JuryLoginResult struct {
	JuryID     string `json:"jury_id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Token      string `json:"token,omitempty"`
}

// JuryLogin verifies a jury's email+password and opens a session. Failed
// attempts count toward a redis-held lockout for that email.
func (s *Service) JuryLogin(ctx context.Context, email, password string) (*JuryLoginResult, error) {
	locked, err := s.Sessions.IsLockedOut(ctx, "jury:"+email)
	if err != nil {
		return nil, fmt.Errorf("failed to check lockout: %w", err)
	}
	if locked {
		return nil, errAccountLocked
	}

	jury, err := s.Store.GetJuryByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up jury: %w", err)
	}
	if jury == nil || jury.PasswordHash == nil || !creds.VerifyPassword(password, *jury.PasswordHash) {
		if err := s.Sessions.RegisterFailure(ctx, "jury:"+email); err != nil {
			return nil, err
		}
		return nil, errInvalidCredentials
	}

	if err := s.Sessions.ClearFailures(ctx, "jury:"+email); err != nil {
		return nil, err
	}

	session, err := s.Sessions.Create(ctx, KindJury, jury.JuryID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &JuryLoginResult{
		JuryID:     jury.JuryID,
		Name:       jury.Name,
		Department: jury.Department,
		Token:      session.Token,
	}, nil
}

// VerifyAdmin checks the configured admin credential, with the same
// lockout counting as jury logins.
func (s *Service) VerifyAdmin(ctx context.Context, username, password string) error {
	locked, err := s.Sessions.IsLockedOut(ctx, "admin:"+username)
	if err != nil {
		return fmt.Errorf("failed to check lockout: %w", err)
	}
	if locked {
		return errAccountLocked
	}

	if username != s.Config.Admin.Username || !creds.VerifyPassword(password, s.Config.Admin.PasswordHash) {
		if err := s.Sessions.RegisterFailure(ctx, "admin:"+username); err != nil {
			return err
		}
		return errInvalidCredentials
	}

	return s.Sessions.ClearFailures(ctx, "admin:"+username)
}

// ValidateJuryToken resolves the request's bearer token to a jury id.
// Returns empty string with nil error when auth is disabled in config.
func (s *Service) ValidateJuryToken(r *http.Request) (string, error) {
	if !s.Config.Server.EnableAuth {
		return "", nil
	}

	authHeader := r.Header.Get(s.Sessions.TokenHeader)
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", fmt.Errorf("invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")

	return s.Sessions.Validate(r.Context(), KindJury, token)
}

// UpsertJury hashes the password, when one was supplied, and writes the
// roster row.
func (s *Service) UpsertJury(req *models.JuryUpsertRequest) error {
	jury := &models.Jury{
		JuryID:     req.JuryID,
		Name:       req.Name,
		Department: req.Department,
	}
	if req.Email != "" {
		jury.Email = &req.Email
	}
	if req.Password != "" {
		hash, err := creds.HashPassword(req.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		jury.PasswordHash = &hash
	}
	return s.Store.UpsertJury(jury)
}

type ScoreReport struct {
	Summary []store.ScoreSummaryRow `json:"summary"`
	PerJury []store.JuryScoreRow    `json:"perJury"`
}

func (s *Service) FetchScoreReport() (*ScoreReport, error) {
	summary, err := s.Store.FetchScoreSummary()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch score summary: %w", err)
	}
	perJury, err := s.Store.ListJuryScores()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch per-jury scores: %w", err)
	}
	return &ScoreReport{Summary: summary, PerJury: perJury}, nil
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := s.Sessions.Close(); err != nil {
		errs = append(errs, fmt.Errorf("sessions: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
