package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biamino/biamino-backend/internal/domain"
)

var projectRowColumns = []string{
	"id", "title", "description", "emoji", "department", "status", "secondary_status",
	"goal", "requirements", "inventory", "github_url", "revenue", "revenue_amount", "is_private",
	"description_is_nda", "goal_is_nda", "requirements_is_nda", "inventory_is_nda",
	"created_at", "updated_at",
}

func projectRow(id, title string) *sqlmock.Rows {
	created := fixedNow.Add(-24 * time.Hour)
	return sqlmock.NewRows(projectRowColumns).AddRow(
		id, title, "", "📝", "present", "development", "",
		"", "", "", nil, false, nil, false,
		false, false, false, false,
		created, created,
	)
}

func importedProjects() []domain.Project {
	return []domain.Project{
		{
			ID: "p1", Title: "Solar", Department: domain.DepartmentPresent,
			CustomFields: []domain.CustomField{{ID: "f1", ProjectID: "p1", Key: "budget", Value: "40k", IsNDA: true}},
			Links:        []domain.ProjectLink{{ID: "l1", ProjectID: "p1", Title: "Board", URL: "https://example.com"}},
			CreatedAt:    fixedNow, UpdatedAt: fixedNow,
		},
		{ID: "p2", Title: "Moon", Department: domain.DepartmentFuture, CreatedAt: fixedNow, UpdatedAt: fixedNow},
	}
}

func TestStore_ReplaceCollections(t *testing.T) {
	ctx := context.Background()

	t.Run("projects only", func(t *testing.T) {
		s, mock, db := setupMockStore(t)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM comments WHERE project_id <> ALL\(\$1::text\[\]\)`).
			WithArgs(`{"p1","p2"}`).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(`^DELETE FROM custom_fields$`).WillReturnResult(sqlmock.NewResult(0, 4))
		mock.ExpectExec(`^DELETE FROM project_links$`).WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`^DELETE FROM projects$`).WillReturnResult(sqlmock.NewResult(0, 5))
		mock.ExpectExec(`INSERT INTO projects`).WithArgs(sqlmock.AnyArg(), "Solar", sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO custom_fields .* FROM unnest`).
			WithArgs("p1", `{"f1"}`, `{"budget"}`, `{"40k"}`, "{t}").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO project_links .* FROM unnest`).
			WithArgs("p1", `{"l1"}`, `{"Board"}`, `{"https://example.com"}`, "{NULL}").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO projects`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		ps := importedProjects()
		require.NoError(t, s.ReplaceCollections(ctx, &ps, nil))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty project list drops every comment", func(t *testing.T) {
		s, mock, db := setupMockStore(t)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM comments WHERE project_id <> ALL`).WithArgs("{}").
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(`^DELETE FROM custom_fields$`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`^DELETE FROM project_links$`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`^DELETE FROM projects$`).WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		empty := []domain.Project{}
		require.NoError(t, s.ReplaceCollections(ctx, &empty, nil))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("comments only", func(t *testing.T) {
		s, mock, db := setupMockStore(t)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`^DELETE FROM comments$`).WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`INSERT INTO comments \(id, project_id, user_id, content, created_at\) SELECT .* WHERE EXISTS \(SELECT 1 FROM projects WHERE id = \$2\) AND EXISTS \(SELECT 1 FROM users WHERE id = \$3\)`).
			WithArgs("c1", "p1", "u1", "first", fixedNow).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO comments`).
			WithArgs("c2", "gone", "u1", "orphan", fixedNow).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		cs := []domain.Comment{
			{ID: "c1", ProjectID: "p1", UserID: "u1", Content: "first", CreatedAt: fixedNow},
			{ID: "c2", ProjectID: "gone", UserID: "u1", Content: "orphan", CreatedAt: fixedNow},
		}
		require.NoError(t, s.ReplaceCollections(ctx, nil, &cs))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("projects and comments clear comments first", func(t *testing.T) {
		s, mock, db := setupMockStore(t)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`^DELETE FROM comments$`).WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`DELETE FROM comments WHERE project_id <> ALL`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`^DELETE FROM custom_fields$`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`^DELETE FROM project_links$`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`^DELETE FROM projects$`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO projects`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO comments`).WithArgs("c1", "p2", "u1", "hi", fixedNow).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		ps := []domain.Project{{ID: "p2", Title: "Moon", Department: domain.DepartmentFuture}}
		cs := []domain.Comment{{ID: "c1", ProjectID: "p2", UserID: "u1", Content: "hi", CreatedAt: fixedNow}}
		require.NoError(t, s.ReplaceCollections(ctx, &ps, &cs))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed project insert rolls back", func(t *testing.T) {
		s, mock, db := setupMockStore(t)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM comments WHERE project_id <> ALL`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`^DELETE FROM custom_fields$`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`^DELETE FROM project_links$`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`^DELETE FROM projects$`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO projects`).WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		ps := importedProjects()
		err := s.ReplaceCollections(ctx, &ps, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insert project")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed comment insert rolls back", func(t *testing.T) {
		s, mock, db := setupMockStore(t)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`^DELETE FROM comments$`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO comments`).WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		cs := []domain.Comment{{ID: "c1", ProjectID: "p1", UserID: "u1", Content: "x"}}
		err := s.ReplaceCollections(ctx, nil, &cs)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "import comment")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nothing present touches nothing", func(t *testing.T) {
		s, mock, db := setupMockStore(t)
		defer db.Close()

		require.NoError(t, s.ReplaceCollections(ctx, nil, nil))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_UpdateProject(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces dependents in the same transaction", func(t *testing.T) {
		s, mock, db := setupMockStore(t)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT .* FROM projects WHERE id = \$1 FOR UPDATE`).WithArgs("p1").
			WillReturnRows(projectRow("p1", "Solar"))
		mock.ExpectExec(`UPDATE projects SET .* WHERE id = \$1`).
			WithArgs("p1", "Solar 2", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), fixedNow).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM custom_fields WHERE project_id = \$1`).WithArgs("p1").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`INSERT INTO custom_fields .* FROM unnest`).
			WithArgs("p1", sqlmock.AnyArg(), `{"owner"}`, `{"ops"}`, "{f}").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM project_links WHERE project_id = \$1`).WithArgs("p1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		title := "Solar 2"
		fields := []domain.CustomFieldInput{{Key: "owner", Value: "ops"}}
		links := []domain.ProjectLinkInput{}
		err := s.UpdateProject(ctx, "p1", domain.UpdateProjectRequest{
			Title:        &title,
			CustomFields: &fields,
			Links:        &links,
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("plain field update leaves dependents alone", func(t *testing.T) {
		s, mock, db := setupMockStore(t)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).WithArgs("p1").WillReturnRows(projectRow("p1", "Solar"))
		mock.ExpectExec(`UPDATE projects SET`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		status := "production"
		require.NoError(t, s.UpdateProject(ctx, "p1", domain.UpdateProjectRequest{Status: &status}))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed dependent insert rolls back", func(t *testing.T) {
		s, mock, db := setupMockStore(t)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).WithArgs("p1").WillReturnRows(projectRow("p1", "Solar"))
		mock.ExpectExec(`UPDATE projects SET`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM project_links WHERE project_id = \$1`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO project_links`).WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		links := []domain.ProjectLinkInput{{Title: "Board", URL: "https://example.com"}}
		err := s.UpdateProject(ctx, "p1", domain.UpdateProjectRequest{Links: &links})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insert project links")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing project rolls back", func(t *testing.T) {
		s, mock, db := setupMockStore(t)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).WithArgs("nope").
			WillReturnRows(sqlmock.NewRows(projectRowColumns))
		mock.ExpectRollback()

		title := "x"
		err := s.UpdateProject(ctx, "nope", domain.UpdateProjectRequest{Title: &title})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
