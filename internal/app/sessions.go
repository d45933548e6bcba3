// internal/app/sessions.go
package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/sih-tools/evalportal/internal/models"
)

const (
	timeFormat    = "2006-01-02 15:04:05"
	sessionKeyTpl = "session:%s" // session:${token}
	lockoutKeyTpl = "lockout:%s" // lockout:${subject}
	tokenPrefix   = "sk-evl-"

	// subject kinds stored on the session hash
	KindJury  = "jury"
	KindAdmin = "admin"
)

// Sessions keeps login sessions and lockout counters in redis, keyed by
// subject, with expiry checked by redis itself. Nothing session-related
// lives in process memory, so restarts and extra replicas are safe.
type Sessions struct {
	enabled     bool
	redis       *redis.Client
	TokenHeader string
	ttl         time.Duration
	maxFailures int
	lockout     time.Duration
}

func NewSessions(config *Config) (*Sessions, error) {
	if !config.Server.EnableAuth {
		return &Sessions{enabled: false}, nil
	}

	opt, err := redis.ParseURL(config.Auth.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	ttl := time.Duration(config.Auth.SessionTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	lockout := time.Duration(config.Auth.LockoutMinutes) * time.Minute
	if lockout <= 0 {
		lockout = 15 * time.Minute
	}
	maxFailures := config.Auth.MaxLoginFailures
	if maxFailures <= 0 {
		maxFailures = 5
	}

	return &Sessions{
		enabled:     true,
		redis:       client,
		TokenHeader: config.Auth.TokenHeader,
		ttl:         ttl,
		maxFailures: maxFailures,
		lockout:     lockout,
	}, nil
}

func (s *Sessions) Close() error {
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}

func generateToken() (string, error) {
	randomBytes := make([]byte, 12)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return tokenPrefix + hex.EncodeToString(randomBytes), nil
}

// Create opens a fresh session for the subject and returns its token.
func (s *Sessions) Create(ctx context.Context, kind, subject string) (*models.SessionInfo, error) {
	now := time.Now().UTC()

	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	info := &models.SessionInfo{
		Token:           token,
		Subject:         subject,
		RequestCount:    0,
		LastRequestTime: now,
		CreatedTime:     now,
	}

	if !s.enabled {
		return info, nil
	}

	key := fmt.Sprintf(sessionKeyTpl, token)
	pipe := s.redis.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"kind":                  kind,
		"subject":               subject,
		"request_count":         0,
		"last_request_dttm_utc": now.Format(timeFormat),
		"created_dttm_utc":      now.Format(timeFormat),
	})
	pipe.Expire(ctx, key, s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return info, nil
}

// Validate resolves a token to its subject, bumping usage counters and
// refreshing the TTL. A token of the wrong kind does not validate.
func (s *Sessions) Validate(ctx context.Context, kind, token string) (string, error) {
	if !s.enabled {
		return "", nil
	}

	key := fmt.Sprintf(sessionKeyTpl, token)
	fields, err := s.redis.HGetAll(ctx, key).Result()
	if err != nil {
		return "", fmt.Errorf("redis error: %w", err)
	}
	if len(fields) == 0 {
		logger.Debug.Printf("Session not found for key: %s", key)
		return "", fmt.Errorf("session not found")
	}
	if fields["kind"] != kind {
		logger.Debug.Printf("Session kind mismatch: want %s, have %s", kind, fields["kind"])
		return "", fmt.Errorf("invalid session")
	}

	pipe := s.redis.Pipeline()
	pipe.HIncrBy(ctx, key, "request_count", 1)
	pipe.HSet(ctx, key, "last_request_dttm_utc", time.Now().UTC().Format(timeFormat))
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to update session stats: %w", err)
	}

	return fields["subject"], nil
}

// RegisterFailure bumps the subject's failed-login counter. The counter
// expires on its own after the lockout window.
func (s *Sessions) RegisterFailure(ctx context.Context, subject string) error {
	if !s.enabled {
		return nil
	}

	key := fmt.Sprintf(lockoutKeyTpl, subject)
	pipe := s.redis.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.lockout)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to register login failure: %w", err)
	}
	return nil
}

func (s *Sessions) IsLockedOut(ctx context.Context, subject string) (bool, error) {
	if !s.enabled {
		return false, nil
	}

	count, err := s.redis.Get(ctx, fmt.Sprintf(lockoutKeyTpl, subject)).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check lockout: %w", err)
	}
	return count >= s.maxFailures, nil
}

func (s *Sessions) ClearFailures(ctx context.Context, subject string) error {
	if !s.enabled {
		return nil
	}
	return s.redis.Del(ctx, fmt.Sprintf(lockoutKeyTpl, subject)).Err()
}
