package kv

import (
	"context"
	"sort"

	"github.com/biamino/biamino-backend/internal/domain"
	"github.com/biamino/biamino-backend/internal/store"
)

// ListComments returns the comments on one project, oldest first, each
// with its author resolved.
func (s *Store) ListComments(ctx context.Context, f store.CommentFilter) ([]domain.Comment, error) {
	cs, err := s.loadComments(ctx)
	if err != nil {
		return nil, err
	}
	us, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.User, len(us))
	for _, u := range us {
		byID[u.ID] = u
	}

	out := make([]domain.Comment, 0, len(cs))
	for _, c := range cs {
		if f.ProjectID != "" && c.ProjectID != f.ProjectID {
			continue
		}
		if u, ok := byID[c.UserID]; ok {
			c.User = &u
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// CreateComment requires both the project and the author to exist.
func (s *Store) CreateComment(ctx context.Context, req domain.CreateCommentRequest) (*domain.Comment, error) {
	if err := domain.Validate(req); err != nil {
		return nil, err
	}
	ps, err := s.loadProjects(ctx)
	if err != nil {
		return nil, err
	}
	if indexOfProject(ps, req.ProjectID) < 0 {
		return nil, domain.ErrNotFound
	}
	us, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	if indexOfUser(us, req.UserID) < 0 {
		return nil, domain.ErrNotFound
	}

	cs, err := s.loadComments(ctx)
	if err != nil {
		return nil, err
	}
	c := domain.Comment{
		ID:        domain.NewID(),
		ProjectID: req.ProjectID,
		UserID:    req.UserID,
		Content:   req.Content,
		CreatedAt: s.now(),
	}
	cs = append(cs, c)
	if err := s.saveComments(ctx, cs); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) UpdateComment(ctx context.Context, id string, req domain.UpdateCommentRequest) error {
	if err := domain.Validate(req); err != nil {
		return err
	}
	cs, err := s.loadComments(ctx)
	if err != nil {
		return err
	}
	i := indexOfComment(cs, id)
	if i < 0 {
		return domain.ErrNotFound
	}
	req.ApplyTo(&cs[i])
	return s.saveComments(ctx, cs)
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	cs, err := s.loadComments(ctx)
	if err != nil {
		return err
	}
	i := indexOfComment(cs, id)
	if i < 0 {
		return domain.ErrNotFound
	}
	cs = append(cs[:i:i], cs[i+1:]...)
	return s.saveComments(ctx, cs)
}

func indexOfComment(cs []domain.Comment, id string) int {
	for i := range cs {
		if cs[i].ID == id {
			return i
		}
	}
	return -1
}
