package domain

import (
	"time"

	"github.com/google/uuid"
)

// NewID returns a fresh record identity.
func NewID() string {
	return uuid.NewString()
}

// Now is the timestamp source for created_at/updated_at. Postgres keeps
// microseconds, so every realization truncates to that.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
