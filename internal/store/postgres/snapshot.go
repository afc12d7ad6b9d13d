package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/biamino/biamino-backend/internal/domain"
)

// ReplaceCollections swaps the projects and/or comments tables in one
// transaction. Comments left without a project or author are dropped.
func (s *Store) ReplaceCollections(ctx context.Context, projects *[]domain.Project, comments *[]domain.Comment) error {
	if projects == nil && comments == nil {
		return nil
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if comments != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM comments`); err != nil {
				return mapError("clear comments", err)
			}
		}
		if projects != nil {
			if err := replaceProjects(ctx, tx, *projects); err != nil {
				return err
			}
		}
		if comments != nil {
			for _, c := range *comments {
				_, err := tx.ExecContext(ctx, `
					INSERT INTO comments (id, project_id, user_id, content, created_at)
					SELECT $1, $2, $3, $4, $5
					WHERE EXISTS (SELECT 1 FROM projects WHERE id = $2)
						AND EXISTS (SELECT 1 FROM users WHERE id = $3)`,
					c.ID, c.ProjectID, c.UserID, c.Content, c.CreatedAt)
				if err != nil {
					return mapError("import comment", err)
				}
			}
		}
		return nil
	})
}

func replaceProjects(ctx context.Context, tx *sql.Tx, ps []domain.Project) error {
	ids := make([]string, len(ps))
	for i, p := range ps {
		ids[i] = p.ID
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM comments WHERE project_id <> ALL($1::text[])`, pq.Array(ids)); err != nil {
		return mapError("drop orphaned comments", err)
	}
	for _, table := range []string{"custom_fields", "project_links"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return mapError("clear "+table, err)
		}
	}
	// Every project row is re-inserted so table order follows the document.
	if _, err := tx.ExecContext(ctx, `DELETE FROM projects`); err != nil {
		return mapError("clear projects", err)
	}

	for _, p := range ps {
		if err := insertProject(ctx, tx, p); err != nil {
			return err
		}
		if err := insertCustomFields(ctx, tx, p.ID, p.CustomFields); err != nil {
			return err
		}
		if err := insertProjectLinks(ctx, tx, p.ID, p.Links); err != nil {
			return err
		}
	}
	return nil
}
