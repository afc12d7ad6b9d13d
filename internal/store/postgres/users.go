package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/biamino/biamino-backend/internal/domain"
	"github.com/biamino/biamino-backend/internal/store"
)

func (s *Store) ListUsers(ctx context.Context, f store.UserFilter) ([]domain.User, error) {
	q := `SELECT id, email, role, created_at FROM users`
	var args []any
	if f.Email != "" {
		q += ` WHERE email = $1`
		args = append(args, f.Email)
	}
	q += ` ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, mapError("list users", err)
	}
	defer rows.Close()

	out := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.CreatedAt = u.CreatedAt.UTC()
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

// CreateUser maps the unique index on email to ErrConflict.
func (s *Store) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	if err := domain.Validate(req); err != nil {
		return nil, err
	}
	u := domain.User{
		ID:        domain.NewID(),
		Email:     req.Email,
		Role:      req.Role,
		CreatedAt: s.now(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, role, created_at) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Email, u.Role, u.CreatedAt)
	if err != nil {
		return nil, mapError("create user "+req.Email, err)
	}
	return &u, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := cascade(ctx, tx, "users", id); err != nil {
			return err
		}
		return deleteRow(ctx, tx, "users", id)
	})
}
