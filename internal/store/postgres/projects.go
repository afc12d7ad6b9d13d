package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/biamino/biamino-backend/internal/domain"
	"github.com/biamino/biamino-backend/internal/store"
)

const projectColumns = `id, title, description, emoji, department, status, secondary_status,
	goal, requirements, inventory, github_url, revenue, revenue_amount, is_private,
	description_is_nda, goal_is_nda, requirements_is_nda, inventory_is_nda,
	created_at, updated_at`

func scanProject(row scanner) (domain.Project, error) {
	var p domain.Project
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Emoji, &p.Department, &p.Status, &p.SecondaryStatus,
		&p.Goal, &p.Requirements, &p.Inventory, &p.GithubURL, &p.Revenue, &p.RevenueAmount, &p.IsPrivate,
		&p.DescriptionIsNDA, &p.GoalIsNDA, &p.RequirementsIsNDA, &p.InventoryIsNDA,
		&p.CreatedAt, &p.UpdatedAt,
	)
	p.CreatedAt, p.UpdatedAt = p.CreatedAt.UTC(), p.UpdatedAt.UTC()
	return p, err
}

func projectArgs(p domain.Project) []any {
	return []any{
		p.ID, p.Title, p.Description, p.Emoji, p.Department, p.Status, p.SecondaryStatus,
		p.Goal, p.Requirements, p.Inventory, p.GithubURL, p.Revenue, p.RevenueAmount, p.IsPrivate,
		p.DescriptionIsNDA, p.GoalIsNDA, p.RequirementsIsNDA, p.InventoryIsNDA,
		p.CreatedAt, p.UpdatedAt,
	}
}

func (s *Store) ListProjects(ctx context.Context, f store.ProjectFilter) ([]domain.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects`
	var args []any
	if f.Department != "" {
		q += ` WHERE department = $1`
		args = append(args, f.Department)
	}
	q += ` ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, mapError("list projects", err)
	}
	defer rows.Close()

	out := []domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	if err := s.attachDependents(ctx, s.db, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	p, err := getProject(ctx, s.db, id, false)
	if err != nil {
		return nil, err
	}
	ps := []domain.Project{p}
	if err := s.attachDependents(ctx, s.db, ps); err != nil {
		return nil, err
	}
	return &ps[0], nil
}

func getProject(ctx context.Context, ex execer, id string, forUpdate bool) (domain.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	if forUpdate {
		q += ` FOR UPDATE`
	}
	p, err := scanProject(ex.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Project{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Project{}, mapError("get project", err)
	}
	return p, nil
}

// attachDependents loads custom fields and links for ps in one query each.
func (s *Store) attachDependents(ctx context.Context, ex execer, ps []domain.Project) error {
	index := make(map[string]int, len(ps))
	ids := make([]string, len(ps))
	for i := range ps {
		index[ps[i].ID] = i
		ids[i] = ps[i].ID
		ps[i].CustomFields = []domain.CustomField{}
		ps[i].Links = []domain.ProjectLink{}
	}
	if len(ps) == 0 {
		return nil
	}

	fields, err := queryCustomFields(ctx, ex, `WHERE project_id = ANY($1::text[])`, pq.Array(ids))
	if err != nil {
		return err
	}
	for _, f := range fields {
		i := index[f.ProjectID]
		ps[i].CustomFields = append(ps[i].CustomFields, f)
	}

	links, err := queryProjectLinks(ctx, ex, `WHERE project_id = ANY($1::text[])`, pq.Array(ids))
	if err != nil {
		return err
	}
	for _, l := range links {
		i := index[l.ProjectID]
		ps[i].Links = append(ps[i].Links, l)
	}
	return nil
}

// CreateProject commits the project row first and then writes each
// dependent collection in one batched statement. A failure after the
// first commit leaves the project without its dependents.
func (s *Store) CreateProject(ctx context.Context, req domain.CreateProjectRequest) (*domain.Project, error) {
	if err := domain.Validate(req); err != nil {
		return nil, err
	}
	p := req.NewProject(s.now())

	if err := insertProject(ctx, s.db, p); err != nil {
		return nil, err
	}
	if err := insertCustomFields(ctx, s.db, p.ID, p.CustomFields); err != nil {
		return nil, err
	}
	if err := insertProjectLinks(ctx, s.db, p.ID, p.Links); err != nil {
		return nil, err
	}
	return &p, nil
}

func insertProject(ctx context.Context, ex execer, p domain.Project) error {
	args := projectArgs(p)
	marks := make([]string, len(args))
	for i := range marks {
		marks[i] = fmt.Sprintf("$%d", i+1)
	}
	q := `INSERT INTO projects (` + projectColumns + `) VALUES (` + strings.Join(marks, ", ") + `)`
	if _, err := ex.ExecContext(ctx, q, args...); err != nil {
		return mapError("insert project", err)
	}
	return nil
}

// UpdateProject merges req into the locked row and, when req carries
// dependents, replaces them in the same transaction.
func (s *Store) UpdateProject(ctx context.Context, id string, req domain.UpdateProjectRequest) error {
	if err := domain.Validate(req); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		p, err := getProject(ctx, tx, id, true)
		if err != nil {
			return err
		}
		req.ApplyTo(&p, s.now())

		_, err = tx.ExecContext(ctx, `
			UPDATE projects SET
				title = $2, description = $3, emoji = $4, department = $5, status = $6,
				secondary_status = $7, goal = $8, requirements = $9, inventory = $10,
				github_url = $11, revenue = $12, revenue_amount = $13, is_private = $14,
				description_is_nda = $15, goal_is_nda = $16, requirements_is_nda = $17,
				inventory_is_nda = $18, created_at = $19, updated_at = $20
			WHERE id = $1`, projectArgs(p)...)
		if err != nil {
			return mapError("update project", err)
		}

		if req.CustomFields != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM custom_fields WHERE project_id = $1`, id); err != nil {
				return mapError("replace custom fields", err)
			}
			if err := insertCustomFields(ctx, tx, id, p.CustomFields); err != nil {
				return err
			}
		}
		if req.Links != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM project_links WHERE project_id = $1`, id); err != nil {
				return mapError("replace project links", err)
			}
			if err := insertProjectLinks(ctx, tx, id, p.Links); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteProject removes the project and, in the same transaction, every
// row store.Cascades names as its child.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := cascade(ctx, tx, "projects", id); err != nil {
			return err
		}
		return deleteRow(ctx, tx, "projects", id)
	})
}
