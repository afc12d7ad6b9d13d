package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/biamino/biamino-backend/internal/domain"
)

func queryCustomFields(ctx context.Context, ex execer, where string, args ...any) ([]domain.CustomField, error) {
	rows, err := ex.QueryContext(ctx, `SELECT id, project_id, key, value, is_nda FROM custom_fields `+where+` ORDER BY seq`, args...)
	if err != nil {
		return nil, mapError("list custom fields", err)
	}
	defer rows.Close()

	out := []domain.CustomField{}
	for rows.Next() {
		var f domain.CustomField
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.Key, &f.Value, &f.IsNDA); err != nil {
			return nil, fmt.Errorf("scan custom field: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func queryProjectLinks(ctx context.Context, ex execer, where string, args ...any) ([]domain.ProjectLink, error) {
	rows, err := ex.QueryContext(ctx, `SELECT id, project_id, title, url, description FROM project_links `+where+` ORDER BY seq`, args...)
	if err != nil {
		return nil, mapError("list project links", err)
	}
	defer rows.Close()

	out := []domain.ProjectLink{}
	for rows.Next() {
		var l domain.ProjectLink
		if err := rows.Scan(&l.ID, &l.ProjectID, &l.Title, &l.URL, &l.Description); err != nil {
			return nil, fmt.Errorf("scan project link: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// insertCustomFields writes fs in one statement, keeping their order.
func insertCustomFields(ctx context.Context, ex execer, projectID string, fs []domain.CustomField) error {
	if len(fs) == 0 {
		return nil
	}
	ids := make([]string, len(fs))
	keys := make([]string, len(fs))
	values := make([]string, len(fs))
	nda := make([]bool, len(fs))
	for i, f := range fs {
		ids[i], keys[i], values[i], nda[i] = f.ID, f.Key, f.Value, f.IsNDA
	}
	_, err := ex.ExecContext(ctx, `
		INSERT INTO custom_fields (id, project_id, key, value, is_nda)
		SELECT u.id, $1, u.key, u.value, u.is_nda
		FROM unnest($2::text[], $3::text[], $4::text[], $5::boolean[])
			WITH ORDINALITY AS u(id, key, value, is_nda, ord)
		ORDER BY u.ord`,
		projectID, pq.Array(ids), pq.Array(keys), pq.Array(values), pq.BoolArray(nda))
	if err != nil {
		return mapError("insert custom fields", err)
	}
	return nil
}

// insertProjectLinks writes ls in one statement, keeping their order.
func insertProjectLinks(ctx context.Context, ex execer, projectID string, ls []domain.ProjectLink) error {
	if len(ls) == 0 {
		return nil
	}
	ids := make([]string, len(ls))
	titles := make([]string, len(ls))
	urls := make([]string, len(ls))
	descriptions := make([]sql.NullString, len(ls))
	for i, l := range ls {
		ids[i], titles[i], urls[i] = l.ID, l.Title, l.URL
		if l.Description != nil {
			descriptions[i] = sql.NullString{String: *l.Description, Valid: true}
		}
	}
	_, err := ex.ExecContext(ctx, `
		INSERT INTO project_links (id, project_id, title, url, description)
		SELECT u.id, $1, u.title, u.url, u.description
		FROM unnest($2::text[], $3::text[], $4::text[], $5::text[])
			WITH ORDINALITY AS u(id, title, url, description, ord)
		ORDER BY u.ord`,
		projectID, pq.Array(ids), pq.Array(titles), pq.Array(urls), pq.Array(descriptions))
	if err != nil {
		return mapError("insert project links", err)
	}
	return nil
}

func (s *Store) ListCustomFields(ctx context.Context, projectID string) ([]domain.CustomField, error) {
	return queryCustomFields(ctx, s.db, `WHERE project_id = $1`, projectID)
}

// CreateCustomField inserts the field and bumps its project in one
// statement. Nothing is inserted when the project does not exist.
func (s *Store) CreateCustomField(ctx context.Context, projectID string, in domain.CustomFieldInput) (*domain.CustomField, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	f := in.NewCustomField(projectID)
	res, err := s.db.ExecContext(ctx, `
		WITH touched AS (
			UPDATE projects SET updated_at = $6 WHERE id = $2 RETURNING id
		)
		INSERT INTO custom_fields (id, project_id, key, value, is_nda)
		SELECT $1, touched.id, $3, $4, $5 FROM touched`,
		f.ID, projectID, f.Key, f.Value, f.IsNDA, s.now())
	if err != nil {
		return nil, mapError("create custom field", err)
	}
	if err := expectOne(res); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Store) UpdateCustomField(ctx context.Context, id string, req domain.UpdateCustomFieldRequest) error {
	if err := domain.Validate(req); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		WITH f AS (
			UPDATE custom_fields SET
				key = COALESCE($2, key),
				value = COALESCE($3, value),
				is_nda = COALESCE($4, is_nda)
			WHERE id = $1
			RETURNING project_id
		)
		UPDATE projects SET updated_at = $5 FROM f WHERE projects.id = f.project_id`,
		id, req.Key, req.Value, req.IsNDA, s.now())
	if err != nil {
		return mapError("update custom field", err)
	}
	return expectOne(res)
}

func (s *Store) DeleteCustomField(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		WITH f AS (
			DELETE FROM custom_fields WHERE id = $1 RETURNING project_id
		)
		UPDATE projects SET updated_at = $2 FROM f WHERE projects.id = f.project_id`,
		id, s.now())
	if err != nil {
		return mapError("delete custom field", err)
	}
	return expectOne(res)
}

func (s *Store) ListProjectLinks(ctx context.Context, projectID string) ([]domain.ProjectLink, error) {
	return queryProjectLinks(ctx, s.db, `WHERE project_id = $1`, projectID)
}

func (s *Store) CreateProjectLink(ctx context.Context, projectID string, in domain.ProjectLinkInput) (*domain.ProjectLink, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	l := in.NewProjectLink(projectID)
	res, err := s.db.ExecContext(ctx, `
		WITH touched AS (
			UPDATE projects SET updated_at = $6 WHERE id = $2 RETURNING id
		)
		INSERT INTO project_links (id, project_id, title, url, description)
		SELECT $1, touched.id, $3, $4, $5 FROM touched`,
		l.ID, projectID, l.Title, l.URL, l.Description, s.now())
	if err != nil {
		return nil, mapError("create project link", err)
	}
	if err := expectOne(res); err != nil {
		return nil, err
	}
	return &l, nil
}

// UpdateProjectLink clears the description when req sets it to "".
func (s *Store) UpdateProjectLink(ctx context.Context, id string, req domain.UpdateProjectLinkRequest) error {
	if err := domain.Validate(req); err != nil {
		return err
	}
	var description string
	if req.Description != nil {
		description = *req.Description
	}
	res, err := s.db.ExecContext(ctx, `
		WITH l AS (
			UPDATE project_links SET
				title = COALESCE($2, title),
				url = COALESCE($3, url),
				description = CASE WHEN $5::boolean THEN NULLIF($4::text, '') ELSE description END
			WHERE id = $1
			RETURNING project_id
		)
		UPDATE projects SET updated_at = $6 FROM l WHERE projects.id = l.project_id`,
		id, req.Title, req.URL, description, req.Description != nil, s.now())
	if err != nil {
		return mapError("update project link", err)
	}
	return expectOne(res)
}

func (s *Store) DeleteProjectLink(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		WITH l AS (
			DELETE FROM project_links WHERE id = $1 RETURNING project_id
		)
		UPDATE projects SET updated_at = $2 FROM l WHERE projects.id = l.project_id`,
		id, s.now())
	if err != nil {
		return mapError("delete project link", err)
	}
	return expectOne(res)
}
