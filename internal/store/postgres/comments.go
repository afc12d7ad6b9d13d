package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/biamino/biamino-backend/internal/domain"
	"github.com/biamino/biamino-backend/internal/store"
)

// ListComments joins each comment with its author; a comment whose author
// row is gone comes back with a nil User.
func (s *Store) ListComments(ctx context.Context, f store.CommentFilter) ([]domain.Comment, error) {
	q := `
		SELECT c.id, c.project_id, c.user_id, c.content, c.created_at,
			u.id, u.email, u.role, u.created_at
		FROM comments c
		LEFT JOIN users u ON u.id = c.user_id`
	var args []any
	if f.ProjectID != "" {
		q += ` WHERE c.project_id = $1`
		args = append(args, f.ProjectID)
	}
	q += ` ORDER BY c.created_at, c.seq`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, mapError("list comments", err)
	}
	defer rows.Close()

	out := []domain.Comment{}
	for rows.Next() {
		var (
			c         domain.Comment
			uid       sql.NullString
			email     sql.NullString
			role      sql.NullString
			userSince sql.NullTime
		)
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.UserID, &c.Content, &c.CreatedAt,
			&uid, &email, &role, &userSince); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.CreatedAt = c.CreatedAt.UTC()
		if uid.Valid {
			c.User = &domain.User{
				ID:        uid.String,
				Email:     email.String,
				Role:      domain.Role(role.String),
				CreatedAt: userSince.Time.UTC(),
			}
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return out, nil
}

// CreateComment relies on the foreign keys: an unknown project or author
// surfaces as ErrNotFound.
func (s *Store) CreateComment(ctx context.Context, req domain.CreateCommentRequest) (*domain.Comment, error) {
	if err := domain.Validate(req); err != nil {
		return nil, err
	}
	c := domain.Comment{
		ID:        domain.NewID(),
		ProjectID: req.ProjectID,
		UserID:    req.UserID,
		Content:   req.Content,
		CreatedAt: s.now(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (id, project_id, user_id, content, created_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.ProjectID, c.UserID, c.Content, c.CreatedAt)
	if err != nil {
		return nil, mapError("create comment", err)
	}
	return &c, nil
}

func (s *Store) UpdateComment(ctx context.Context, id string, req domain.UpdateCommentRequest) error {
	if err := domain.Validate(req); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE comments SET content = COALESCE($2, content) WHERE id = $1`, id, req.Content)
	if err != nil {
		return mapError("update comment", err)
	}
	return expectOne(res)
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	return deleteRow(ctx, s.db, "comments", id)
}
