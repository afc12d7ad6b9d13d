package kv

import (
	"context"
	"fmt"

	"github.com/biamino/biamino-backend/internal/domain"
	"github.com/biamino/biamino-backend/internal/store"
)

func (s *Store) ListUsers(ctx context.Context, f store.UserFilter) ([]domain.User, error) {
	us, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(us))
	for _, u := range us {
		if f.Email != "" && u.Email != f.Email {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

// CreateUser rejects a second account with the same email.
func (s *Store) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	if err := domain.Validate(req); err != nil {
		return nil, err
	}
	us, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range us {
		if u.Email == req.Email {
			return nil, fmt.Errorf("user %s: %w", req.Email, domain.ErrConflict)
		}
	}
	u := domain.User{
		ID:        domain.NewID(),
		Email:     req.Email,
		Role:      req.Role,
		CreatedAt: s.now(),
	}
	us = append(us, u)
	if err := s.put(ctx, s.client, s.usersKey(), us); err != nil {
		return nil, fmt.Errorf("save users: %w", err)
	}
	return &u, nil
}

// DeleteUser removes the account and every comment it authored.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	us, err := s.loadUsers(ctx)
	if err != nil {
		return err
	}
	i := indexOfUser(us, id)
	if i < 0 {
		return domain.ErrNotFound
	}
	us = append(us[:i:i], us[i+1:]...)

	cs, err := s.loadComments(ctx)
	if err != nil {
		return err
	}
	cs = cascadeComments("users", id, cs)

	return s.writeTogether(ctx, map[string]any{
		s.usersKey():    us,
		s.commentsKey(): stripAuthors(cs),
	})
}

func indexOfUser(us []domain.User, id string) int {
	for i := range us {
		if us[i].ID == id {
			return i
		}
	}
	return -1
}
