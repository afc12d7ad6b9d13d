package kv

import (
	"context"

	"github.com/biamino/biamino-backend/internal/domain"
	"github.com/biamino/biamino-backend/internal/store"
)

// ListProjects returns projects in insertion order.
func (s *Store) ListProjects(ctx context.Context, f store.ProjectFilter) ([]domain.Project, error) {
	ps, err := s.loadProjects(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Project, 0, len(ps))
	for _, p := range ps {
		if f.Department != "" && p.Department != f.Department {
			continue
		}
		out = append(out, normalizeProject(p))
	}
	return out, nil
}

func (s *Store) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	ps, err := s.loadProjects(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOfProject(ps, id)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	p := normalizeProject(ps[i])
	return &p, nil
}

func (s *Store) CreateProject(ctx context.Context, req domain.CreateProjectRequest) (*domain.Project, error) {
	if err := domain.Validate(req); err != nil {
		return nil, err
	}
	ps, err := s.loadProjects(ctx)
	if err != nil {
		return nil, err
	}
	p := req.NewProject(s.now())
	ps = append(ps, p)
	if err := s.saveProjects(ctx, ps); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) UpdateProject(ctx context.Context, id string, req domain.UpdateProjectRequest) error {
	if err := domain.Validate(req); err != nil {
		return err
	}
	ps, err := s.loadProjects(ctx)
	if err != nil {
		return err
	}
	i := indexOfProject(ps, id)
	if i < 0 {
		return domain.ErrNotFound
	}
	req.ApplyTo(&ps[i], s.now())
	return s.saveProjects(ctx, ps)
}

// DeleteProject removes the project with its embedded fields and links and
// the comments left on it.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	ps, err := s.loadProjects(ctx)
	if err != nil {
		return err
	}
	i := indexOfProject(ps, id)
	if i < 0 {
		return domain.ErrNotFound
	}
	ps = append(ps[:i:i], ps[i+1:]...)

	cs, err := s.loadComments(ctx)
	if err != nil {
		return err
	}
	cs = cascadeComments("projects", id, cs)

	return s.writeTogether(ctx, map[string]any{
		s.projectsKey(): ps,
		s.commentsKey(): stripAuthors(cs),
	})
}

func indexOfProject(ps []domain.Project, id string) int {
	for i := range ps {
		if ps[i].ID == id {
			return i
		}
	}
	return -1
}

// normalizeProject guarantees non-nil dependent slices so both
// realizations encode an empty collection the same way.
func normalizeProject(p domain.Project) domain.Project {
	if p.CustomFields == nil {
		p.CustomFields = []domain.CustomField{}
	}
	if p.Links == nil {
		p.Links = []domain.ProjectLink{}
	}
	return p
}
