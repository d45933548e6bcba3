package models

import (
	"time"
)

// SessionInfo mirrors the redis hash kept per logged-in subject. Sessions
// live in redis, not process memory, so a restart or a second replica sees
// the same state.
type SessionInfo struct {
	Token           string    `json:"token"`
	Subject         string    `json:"subject"`
	RequestCount    int       `json:"request_count"`
	LastRequestTime time.Time `json:"last_request_dttm_utc"`
	CreatedTime     time.Time `json:"created_dttm_utc"`
}
