package views

import (
	"context"

	"github.com/biamino/biamino-backend/internal/domain"
	"github.com/biamino/biamino-backend/internal/policy"
	"github.com/biamino/biamino-backend/internal/store"
)

// Detail is what the project screen shows.
type Detail struct {
	Project  domain.Project   `json:"project"`
	Comments []domain.Comment `json:"comments"`
}

// ProjectDetail is the screen for one project. It redacts NDA values but
// does not apply the list visibility rule: a private project is reachable
// by id for every role.
type ProjectDetail struct {
	ID string

	store  store.Store
	viewer domain.User
}

func NewProjectDetail(s store.Store, viewer domain.User, id string) *ProjectDetail {
	return &ProjectDetail{ID: id, store: s, viewer: viewer}
}

func (d *ProjectDetail) Load(ctx context.Context) (Detail, error) {
	p, err := d.store.GetProject(ctx, d.ID)
	if err != nil {
		logFailure(ctx, err, "get project", d.fields())
		return Detail{}, err
	}
	comments, err := d.Comments().Load(ctx)
	if err != nil {
		return Detail{}, err
	}
	return Detail{Project: policy.RedactProject(*p, d.viewer.Role), Comments: comments}, nil
}

// Comments returns the comment panel embedded in this screen.
func (d *ProjectDetail) Comments() *CommentPanel {
	return NewCommentPanel(d.store, d.viewer, d.ID)
}

func (d *ProjectDetail) Update(ctx context.Context, req domain.UpdateProjectRequest) (Detail, error) {
	return d.mutate(ctx, "update project", func() error {
		return d.store.UpdateProject(ctx, d.ID, req)
	})
}

func (d *ProjectDetail) AddCustomField(ctx context.Context, in domain.CustomFieldInput) (Detail, error) {
	return d.mutate(ctx, "create custom field", func() error {
		_, err := d.store.CreateCustomField(ctx, d.ID, in)
		return err
	})
}

func (d *ProjectDetail) UpdateCustomField(ctx context.Context, fieldID string, req domain.UpdateCustomFieldRequest) (Detail, error) {
	return d.mutate(ctx, "update custom field", func() error {
		if err := d.owns(ctx, fieldID, customFieldIDs); err != nil {
			return err
		}
		return d.store.UpdateCustomField(ctx, fieldID, req)
	})
}

func (d *ProjectDetail) DeleteCustomField(ctx context.Context, fieldID string) (Detail, error) {
	return d.mutate(ctx, "delete custom field", func() error {
		if err := d.owns(ctx, fieldID, customFieldIDs); err != nil {
			return err
		}
		return d.store.DeleteCustomField(ctx, fieldID)
	})
}

func (d *ProjectDetail) AddLink(ctx context.Context, in domain.ProjectLinkInput) (Detail, error) {
	return d.mutate(ctx, "create project link", func() error {
		_, err := d.store.CreateProjectLink(ctx, d.ID, in)
		return err
	})
}

func (d *ProjectDetail) UpdateLink(ctx context.Context, linkID string, req domain.UpdateProjectLinkRequest) (Detail, error) {
	return d.mutate(ctx, "update project link", func() error {
		if err := d.owns(ctx, linkID, linkIDs); err != nil {
			return err
		}
		return d.store.UpdateProjectLink(ctx, linkID, req)
	})
}

func (d *ProjectDetail) DeleteLink(ctx context.Context, linkID string) (Detail, error) {
	return d.mutate(ctx, "delete project link", func() error {
		if err := d.owns(ctx, linkID, linkIDs); err != nil {
			return err
		}
		return d.store.DeleteProjectLink(ctx, linkID)
	})
}

func (d *ProjectDetail) mutate(ctx context.Context, op string, fn func() error) (Detail, error) {
	if err := fn(); err != nil {
		logFailure(ctx, err, op, d.fields())
		return Detail{}, err
	}
	return d.Load(ctx)
}

// owns reports ErrNotFound unless id names a dependent of this project.
func (d *ProjectDetail) owns(ctx context.Context, id string, ids func(context.Context, store.Store, string) ([]string, error)) error {
	have, err := ids(ctx, d.store, d.ID)
	if err != nil {
		return err
	}
	for _, h := range have {
		if h == id {
			return nil
		}
	}
	return domain.ErrNotFound
}

func customFieldIDs(ctx context.Context, s store.Store, projectID string) ([]string, error) {
	fs, err := s.ListCustomFields(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.ID
	}
	return out, nil
}

func linkIDs(ctx context.Context, s store.Store, projectID string) ([]string, error) {
	ls, err := s.ListProjectLinks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.ID
	}
	return out, nil
}

func (d *ProjectDetail) fields() map[string]string {
	return map[string]string{"project_id": d.ID}
}
