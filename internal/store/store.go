// Package store defines the persistence capability set shared by every
// storage realization. Callers depend on Store and never learn which
// realization is behind it.
package store

import (
	"context"

	"github.com/biamino/biamino-backend/internal/domain"
)

type ProjectFilter struct {
	// Department restricts results when non-empty.
	Department domain.Department
}

type CommentFilter struct {
	ProjectID string
}

type UserFilter struct {
	// Email restricts results to the account with this login key when non-empty.
	Email string
}

type ProjectStore interface {
	ListProjects(ctx context.Context, f ProjectFilter) ([]domain.Project, error)
	GetProject(ctx context.Context, id string) (*domain.Project, error)
	CreateProject(ctx context.Context, req domain.CreateProjectRequest) (*domain.Project, error)
	UpdateProject(ctx context.Context, id string, req domain.UpdateProjectRequest) error
	DeleteProject(ctx context.Context, id string) error
}

type CustomFieldStore interface {
	ListCustomFields(ctx context.Context, projectID string) ([]domain.CustomField, error)
	CreateCustomField(ctx context.Context, projectID string, in domain.CustomFieldInput) (*domain.CustomField, error)
	UpdateCustomField(ctx context.Context, id string, req domain.UpdateCustomFieldRequest) error
	DeleteCustomField(ctx context.Context, id string) error
}

type ProjectLinkStore interface {
	ListProjectLinks(ctx context.Context, projectID string) ([]domain.ProjectLink, error)
	CreateProjectLink(ctx context.Context, projectID string, in domain.ProjectLinkInput) (*domain.ProjectLink, error)
	UpdateProjectLink(ctx context.Context, id string, req domain.UpdateProjectLinkRequest) error
	DeleteProjectLink(ctx context.Context, id string) error
}

// CommentStore lists comments in creation order with the author resolved.
type CommentStore interface {
	ListComments(ctx context.Context, f CommentFilter) ([]domain.Comment, error)
	CreateComment(ctx context.Context, req domain.CreateCommentRequest) (*domain.Comment, error)
	UpdateComment(ctx context.Context, id string, req domain.UpdateCommentRequest) error
	DeleteComment(ctx context.Context, id string) error
}

// UserStore has no update: accounts are immutable once created.
type UserStore interface {
	ListUsers(ctx context.Context, f UserFilter) ([]domain.User, error)
	CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// Snapshotter overwrites whole collections, as an import does. A nil
// argument means the collection is left as it is.
type Snapshotter interface {
	ReplaceCollections(ctx context.Context, projects *[]domain.Project, comments *[]domain.Comment) error
}

type Store interface {
	ProjectStore
	CustomFieldStore
	ProjectLinkStore
	CommentStore
	UserStore
	Snapshotter

	Ping(ctx context.Context) error
	Close() error
}
