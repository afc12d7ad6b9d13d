// Package views holds one view model per screen. Each reads through the
// store, applies the visibility policy before returning anything, and
// reloads its data after every successful mutation.
package views

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/biamino/biamino-backend/internal/domain"
)

// logFailure records a failed store call. Caller mistakes are logged at
// debug level, everything else as an error.
func logFailure(ctx context.Context, err error, op string, fields map[string]string) {
	log := zerolog.Ctx(ctx)
	var verr *domain.ValidationError
	ev := log.Error()
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) || errors.As(err, &verr) {
		ev = log.Debug()
	}
	for k, v := range fields {
		ev = ev.Str(k, v)
	}
	ev.Err(err).Str("op", op).Msg("store call failed")
}
