package views

import (
	"context"

	"github.com/biamino/biamino-backend/internal/domain"
	"github.com/biamino/biamino-backend/internal/policy"
	"github.com/biamino/biamino-backend/internal/store"
)

// ProjectList is the department screen: the projects of one department
// that the viewer may list, redacted for the viewer's role.
type ProjectList struct {
	Department domain.Department

	store  store.ProjectStore
	viewer domain.User
}

func NewProjectList(s store.ProjectStore, viewer domain.User, dept domain.Department) *ProjectList {
	return &ProjectList{Department: dept, store: s, viewer: viewer}
}

func (l *ProjectList) Load(ctx context.Context) ([]domain.Project, error) {
	ps, err := l.store.ListProjects(ctx, store.ProjectFilter{Department: l.Department})
	if err != nil {
		logFailure(ctx, err, "list projects", map[string]string{"department": string(l.Department)})
		return nil, err
	}
	return policy.VisibleProjects(ps, l.viewer.Role), nil
}

// Create files a new project under this department and returns it with
// the reloaded list.
func (l *ProjectList) Create(ctx context.Context, req domain.CreateProjectRequest) (*domain.Project, []domain.Project, error) {
	req.Department = l.Department
	p, err := l.store.CreateProject(ctx, req)
	if err != nil {
		logFailure(ctx, err, "create project", map[string]string{"department": string(l.Department)})
		return nil, nil, err
	}
	list, err := l.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	redacted := policy.RedactProject(*p, l.viewer.Role)
	return &redacted, list, nil
}

func (l *ProjectList) Update(ctx context.Context, id string, req domain.UpdateProjectRequest) ([]domain.Project, error) {
	if err := l.store.UpdateProject(ctx, id, req); err != nil {
		logFailure(ctx, err, "update project", map[string]string{"project_id": id})
		return nil, err
	}
	return l.Load(ctx)
}

func (l *ProjectList) Delete(ctx context.Context, id string) ([]domain.Project, error) {
	if err := l.store.DeleteProject(ctx, id); err != nil {
		logFailure(ctx, err, "delete project", map[string]string{"project_id": id})
		return nil, err
	}
	return l.Load(ctx)
}
