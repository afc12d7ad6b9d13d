// Package users seeds and serves user accounts.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/biamino/biamino-backend/internal/domain"
	"github.com/biamino/biamino-backend/internal/session"
	"github.com/biamino/biamino-backend/internal/store"
)

// EnsureUsers creates a user record for every credential whose email has
// none yet. Existing records are left as they are; users are immutable.
// It returns the number of records created.
func EnsureUsers(ctx context.Context, s store.UserStore, creds []session.Credential) (int, error) {
	created := 0
	for _, cr := range creds {
		existing, err := s.ListUsers(ctx, store.UserFilter{Email: cr.Email})
		if err != nil {
			return created, fmt.Errorf("look up %s: %w", cr.Email, err)
		}
		if len(existing) > 0 {
			if existing[0].Role != cr.Role {
				zerolog.Ctx(ctx).Warn().
					Str("email", cr.Email).
					Str("stored_role", string(existing[0].Role)).
					Str("credential_role", string(cr.Role)).
					Msg("user role differs from credential table; keeping stored role")
			}
			continue
		}

		_, err = s.CreateUser(ctx, domain.CreateUserRequest{Email: cr.Email, Role: cr.Role})
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("create %s: %w", cr.Email, err)
		}
		created++
	}
	return created, nil
}
