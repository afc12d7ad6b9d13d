package views

import (
	"context"

	"github.com/biamino/biamino-backend/internal/domain"
	"github.com/biamino/biamino-backend/internal/store"
)

// CommentPanel lists and edits the comments of one project. New comments
// are authored by the viewer.
type CommentPanel struct {
	ProjectID string

	store  store.CommentStore
	viewer domain.User
}

func NewCommentPanel(s store.CommentStore, viewer domain.User, projectID string) *CommentPanel {
	return &CommentPanel{ProjectID: projectID, store: s, viewer: viewer}
}

func (p *CommentPanel) Load(ctx context.Context) ([]domain.Comment, error) {
	cs, err := p.store.ListComments(ctx, store.CommentFilter{ProjectID: p.ProjectID})
	if err != nil {
		logFailure(ctx, err, "list comments", p.fields())
		return nil, err
	}
	return cs, nil
}

func (p *CommentPanel) Add(ctx context.Context, content string) ([]domain.Comment, error) {
	_, err := p.store.CreateComment(ctx, domain.CreateCommentRequest{
		ProjectID: p.ProjectID,
		UserID:    p.viewer.ID,
		Content:   content,
	})
	if err != nil {
		logFailure(ctx, err, "create comment", p.fields())
		return nil, err
	}
	return p.Load(ctx)
}

// Delete removes a comment of this project; ids of other projects' comments
// report ErrNotFound.
func (p *CommentPanel) Delete(ctx context.Context, commentID string) ([]domain.Comment, error) {
	current, err := p.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !containsComment(current, commentID) {
		return nil, domain.ErrNotFound
	}
	if err := p.store.DeleteComment(ctx, commentID); err != nil {
		logFailure(ctx, err, "delete comment", map[string]string{"project_id": p.ProjectID, "comment_id": commentID})
		return nil, err
	}
	return p.Load(ctx)
}

func (p *CommentPanel) fields() map[string]string {
	return map[string]string{"project_id": p.ProjectID}
}

func containsComment(cs []domain.Comment, id string) bool {
	for _, c := range cs {
		if c.ID == id {
			return true
		}
	}
	return false
}
