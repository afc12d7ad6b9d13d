package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biamino/biamino-backend/internal/domain"
	"github.com/biamino/biamino-backend/internal/store"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func setupMockStore(t *testing.T) (*Store, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	s := New(db, WithClock(func() time.Time { return fixedNow }))
	return s, mock, db
}

func TestStore_CreateProject(t *testing.T) {
	s, mock, db := setupMockStore(t)
	defer db.Close()

	t.Run("writes dependents after the parent row", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO projects`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO custom_fields .* FROM unnest`).
			WithArgs(
				sqlmock.AnyArg(), // project id
				sqlmock.AnyArg(), // ids
				"{\"budget\",\"owner\"}",
				"{\"40k\",\"ops\"}",
				"{t,f}",
			).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`INSERT INTO project_links .* FROM unnest`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		p, err := s.CreateProject(context.Background(), domain.CreateProjectRequest{
			Title:      "Solar",
			Department: domain.DepartmentPresent,
			CustomFields: []domain.CustomFieldInput{
				{Key: "budget", Value: "40k", IsNDA: true},
				{Key: "owner", Value: "ops"},
			},
			Links: []domain.ProjectLinkInput{{Title: "Board", URL: "https://example.com"}},
		})
		require.NoError(t, err)
		assert.Equal(t, fixedNow, p.CreatedAt)
		assert.Equal(t, domain.DefaultEmoji, p.Emoji)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("skips empty dependent batches", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO projects`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		_, err := s.CreateProject(context.Background(), domain.CreateProjectRequest{
			Title:      "Bare",
			Department: domain.DepartmentFuture,
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("parent kept when dependents fail", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO projects`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO custom_fields`).
			WillReturnError(errors.New("connection reset"))

		_, err := s.CreateProject(context.Background(), domain.CreateProjectRequest{
			Title:        "Half",
			Department:   domain.DepartmentPresent,
			CustomFields: []domain.CustomFieldInput{{Key: "k"}},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insert custom fields")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid request never reaches the database", func(t *testing.T) {
		_, err := s.CreateProject(context.Background(), domain.CreateProjectRequest{Title: "x", Department: "past"})
		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_DeleteProject(t *testing.T) {
	s, mock, db := setupMockStore(t)
	defer db.Close()

	t.Run("cascades inside one transaction", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM custom_fields WHERE project_id = \$1`).WithArgs("p1").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`DELETE FROM project_links WHERE project_id = \$1`).WithArgs("p1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM comments WHERE project_id = \$1`).WithArgs("p1").
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(`DELETE FROM projects WHERE id = \$1`).WithArgs("p1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, s.DeleteProject(context.Background(), "p1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing project rolls back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM custom_fields`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM project_links`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM comments`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM projects`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := s.DeleteProject(context.Background(), "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_DeleteUser(t *testing.T) {
	s, mock, db := setupMockStore(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM comments WHERE user_id = \$1`).WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.DeleteUser(context.Background(), "u1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CreateUser(t *testing.T) {
	s, mock, db := setupMockStore(t)
	defer db.Close()

	t.Run("creates user", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(sqlmock.AnyArg(), "admin@biamino.com", "admin", fixedNow).
			WillReturnResult(sqlmock.NewResult(0, 1))

		u, err := s.CreateUser(context.Background(), domain.CreateUserRequest{Email: "admin@biamino.com", Role: domain.RoleAdmin})
		require.NoError(t, err)
		assert.NotEmpty(t, u.ID)
		assert.Equal(t, fixedNow, u.CreatedAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO users`).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		_, err := s.CreateUser(context.Background(), domain.CreateUserRequest{Email: "admin@biamino.com", Role: domain.RoleAdmin})
		assert.ErrorIs(t, err, domain.ErrConflict)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_CreateComment_UnknownReference(t *testing.T) {
	s, mock, db := setupMockStore(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO comments`).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	_, err := s.CreateComment(context.Background(), domain.CreateCommentRequest{ProjectID: "p", UserID: "u", Content: "hi"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListComments(t *testing.T) {
	s, mock, db := setupMockStore(t)
	defer db.Close()

	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "project_id", "user_id", "content", "created_at", "uid", "email", "role", "ucreated"}).
		AddRow("c1", "p1", "u1", "first", created, "u1", "team@biamino.com", "team", created).
		AddRow("c2", "p1", "gone", "orphan", created.Add(time.Minute), nil, nil, nil, nil)
	mock.ExpectQuery(`SELECT c.id, .* FROM comments c\s+LEFT JOIN users u .* WHERE c.project_id = \$1 ORDER BY c.created_at, c.seq`).
		WithArgs("p1").
		WillReturnRows(rows)

	cs, err := s.ListComments(context.Background(), store.CommentFilter{ProjectID: "p1"})
	require.NoError(t, err)
	require.Len(t, cs, 2)
	require.NotNil(t, cs[0].User)
	assert.Equal(t, domain.RoleTeam, cs[0].User.Role)
	assert.Nil(t, cs[1].User)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_UpdateCustomField(t *testing.T) {
	s, mock, db := setupMockStore(t)
	defer db.Close()

	value := "globex"
	t.Run("bumps owning project", func(t *testing.T) {
		mock.ExpectExec(`UPDATE custom_fields SET .* UPDATE projects SET updated_at = \$5`).
			WithArgs("f1", nil, value, nil, fixedNow).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.UpdateCustomField(context.Background(), "f1", domain.UpdateCustomFieldRequest{Value: &value}))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing field", func(t *testing.T) {
		mock.ExpectExec(`UPDATE custom_fields`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := s.UpdateCustomField(context.Background(), "f9", domain.UpdateCustomFieldRequest{Value: &value})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMapError(t *testing.T) {
	assert.Nil(t, mapError("op", nil))
	assert.ErrorIs(t, mapError("op", &pgconn.PgError{Code: "23505"}), domain.ErrConflict)
	assert.ErrorIs(t, mapError("op", &pq.Error{Code: "23505"}), domain.ErrConflict)
	assert.ErrorIs(t, mapError("op", &pq.Error{Code: "23503"}), domain.ErrNotFound)

	plain := errors.New("boom")
	err := mapError("op", plain)
	assert.ErrorIs(t, err, plain)
	assert.Equal(t, "op: boom", err.Error())
}
