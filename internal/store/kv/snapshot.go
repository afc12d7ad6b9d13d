package kv

import (
	"context"

	"github.com/biamino/biamino-backend/internal/domain"
)

// ReplaceCollections overwrites the projects and/or comments documents.
// Comments whose project or author does not exist afterwards are dropped.
func (s *Store) ReplaceCollections(ctx context.Context, projects *[]domain.Project, comments *[]domain.Comment) error {
	if projects == nil && comments == nil {
		return nil
	}

	var ps []domain.Project
	if projects != nil {
		ps = make([]domain.Project, 0, len(*projects))
		for _, p := range *projects {
			ps = append(ps, withOwnedDependents(p))
		}
	} else {
		var err error
		if ps, err = s.loadProjects(ctx); err != nil {
			return err
		}
	}

	var cs []domain.Comment
	if comments != nil {
		cs = append([]domain.Comment{}, *comments...)
	} else {
		var err error
		if cs, err = s.loadComments(ctx); err != nil {
			return err
		}
	}

	us, err := s.loadUsers(ctx)
	if err != nil {
		return err
	}
	projectIDs := make(map[string]bool, len(ps))
	for _, p := range ps {
		projectIDs[p.ID] = true
	}
	userIDs := make(map[string]bool, len(us))
	for _, u := range us {
		userIDs[u.ID] = true
	}
	cs = dropComments(cs, func(c domain.Comment) bool {
		return !projectIDs[c.ProjectID] || !userIDs[c.UserID]
	})

	return s.writeTogether(ctx, map[string]any{
		s.projectsKey(): ps,
		s.commentsKey(): stripAuthors(cs),
	})
}

// withOwnedDependents points every embedded dependent at its project.
func withOwnedDependents(p domain.Project) domain.Project {
	p = normalizeProject(p)
	fields := make([]domain.CustomField, len(p.CustomFields))
	for i, f := range p.CustomFields {
		f.ProjectID = p.ID
		fields[i] = f
	}
	links := make([]domain.ProjectLink, len(p.Links))
	for i, l := range p.Links {
		l.ProjectID = p.ID
		links[i] = l
	}
	p.CustomFields, p.Links = fields, links
	return p
}
