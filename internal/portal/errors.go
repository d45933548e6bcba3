package portal

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed input. Fields lists every failing
// field, not just the first one.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Fields, ", "))
}

// CapacityError means a business limit was hit and nothing was written
// beyond the idempotent team upsert. Kept distinct from ValidationError so
// clients can show a different message.
type CapacityError struct {
	Limit int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("submission limit reached, only %d ideas allowed per team", e.Limit)
}

// AuthorizationError carries one generic message whether the jury is
// unknown or simply not assigned, so callers cannot probe which it was.
type AuthorizationError struct{}

func (e *AuthorizationError) Error() string {
	return "jury is not allowed to evaluate this team"
}

// StorageFault wraps a datastore failure. The wrapped detail is for logs;
// callers show a generic message.
type StorageFault struct {
	Err error
}

func (e *StorageFault) Error() string {
	return fmt.Sprintf("storage failure: %v", e.Err)
}

func (e *StorageFault) Unwrap() error {
	return e.Err
}
