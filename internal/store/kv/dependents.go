package kv

import (
	"context"

	"github.com/biamino/biamino-backend/internal/domain"
)

// Custom fields and links are embedded in their project document, so every
// operation here rewrites the projects collection and bumps the owning
// project's updated_at.

func (s *Store) ListCustomFields(ctx context.Context, projectID string) ([]domain.CustomField, error) {
	ps, err := s.loadProjects(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.CustomField{}
	if i := indexOfProject(ps, projectID); i >= 0 {
		out = append(out, ps[i].CustomFields...)
	}
	return out, nil
}

func (s *Store) CreateCustomField(ctx context.Context, projectID string, in domain.CustomFieldInput) (*domain.CustomField, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	ps, err := s.loadProjects(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOfProject(ps, projectID)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	f := in.NewCustomField(projectID)
	ps[i].CustomFields = append(ps[i].CustomFields, f)
	ps[i].UpdatedAt = s.now()
	if err := s.saveProjects(ctx, ps); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Store) UpdateCustomField(ctx context.Context, id string, req domain.UpdateCustomFieldRequest) error {
	if err := domain.Validate(req); err != nil {
		return err
	}
	ps, err := s.loadProjects(ctx)
	if err != nil {
		return err
	}
	pi, fi := findCustomField(ps, id)
	if pi < 0 {
		return domain.ErrNotFound
	}
	req.ApplyTo(&ps[pi].CustomFields[fi])
	ps[pi].UpdatedAt = s.now()
	return s.saveProjects(ctx, ps)
}

func (s *Store) DeleteCustomField(ctx context.Context, id string) error {
	ps, err := s.loadProjects(ctx)
	if err != nil {
		return err
	}
	pi, fi := findCustomField(ps, id)
	if pi < 0 {
		return domain.ErrNotFound
	}
	fields := ps[pi].CustomFields
	ps[pi].CustomFields = append(fields[:fi:fi], fields[fi+1:]...)
	ps[pi].UpdatedAt = s.now()
	return s.saveProjects(ctx, ps)
}

func (s *Store) ListProjectLinks(ctx context.Context, projectID string) ([]domain.ProjectLink, error) {
	ps, err := s.loadProjects(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.ProjectLink{}
	if i := indexOfProject(ps, projectID); i >= 0 {
		out = append(out, ps[i].Links...)
	}
	return out, nil
}

func (s *Store) CreateProjectLink(ctx context.Context, projectID string, in domain.ProjectLinkInput) (*domain.ProjectLink, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	ps, err := s.loadProjects(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOfProject(ps, projectID)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	l := in.NewProjectLink(projectID)
	ps[i].Links = append(ps[i].Links, l)
	ps[i].UpdatedAt = s.now()
	if err := s.saveProjects(ctx, ps); err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *Store) UpdateProjectLink(ctx context.Context, id string, req domain.UpdateProjectLinkRequest) error {
	if err := domain.Validate(req); err != nil {
		return err
	}
	ps, err := s.loadProjects(ctx)
	if err != nil {
		return err
	}
	pi, li := findProjectLink(ps, id)
	if pi < 0 {
		return domain.ErrNotFound
	}
	req.ApplyTo(&ps[pi].Links[li])
	ps[pi].UpdatedAt = s.now()
	return s.saveProjects(ctx, ps)
}

func (s *Store) DeleteProjectLink(ctx context.Context, id string) error {
	ps, err := s.loadProjects(ctx)
	if err != nil {
		return err
	}
	pi, li := findProjectLink(ps, id)
	if pi < 0 {
		return domain.ErrNotFound
	}
	links := ps[pi].Links
	ps[pi].Links = append(links[:li:li], links[li+1:]...)
	ps[pi].UpdatedAt = s.now()
	return s.saveProjects(ctx, ps)
}

func findCustomField(ps []domain.Project, id string) (int, int) {
	for pi := range ps {
		for fi := range ps[pi].CustomFields {
			if ps[pi].CustomFields[fi].ID == id {
				return pi, fi
			}
		}
	}
	return -1, -1
}

func findProjectLink(ps []domain.Project, id string) (int, int) {
	for pi := range ps {
		for li := range ps[pi].Links {
			if ps[pi].Links[li].ID == id {
				return pi, li
			}
		}
	}
	return -1, -1
}
