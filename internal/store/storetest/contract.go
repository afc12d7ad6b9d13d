// Package storetest holds the behavior every store.Store realization must
// share. Each realization's tests call Run with a factory returning an
// empty store.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biamino/biamino-backend/internal/domain"
	"github.com/biamino/biamino-backend/internal/store"
)

// Factory returns an empty store. Cleanup is registered on t.
type Factory func(t *testing.T) store.Store

func Run(t *testing.T, newStore Factory) {
	t.Run("projects", func(t *testing.T) { testProjects(t, newStore(t)) })
	t.Run("dependents", func(t *testing.T) { testDependents(t, newStore(t)) })
	t.Run("comments", func(t *testing.T) { testComments(t, newStore(t)) })
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("cascade", func(t *testing.T) { testCascade(t, newStore(t)) })
	t.Run("replace collections", func(t *testing.T) { testReplace(t, newStore(t)) })
}

func ptr[T any](v T) *T { return &v }

func seedUser(t *testing.T, s store.Store, email string, role domain.Role) *domain.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), domain.CreateUserRequest{Email: email, Role: role})
	require.NoError(t, err)
	return u
}

func seedProject(t *testing.T, s store.Store, title string, dept domain.Department) *domain.Project {
	t.Helper()
	p, err := s.CreateProject(context.Background(), domain.CreateProjectRequest{
		Title:      title,
		Department: dept,
		CustomFields: []domain.CustomFieldInput{
			{Key: "budget", Value: "40k", IsNDA: true},
			{Key: "owner", Value: "ops"},
		},
		Links: []domain.ProjectLinkInput{
			{Title: "Board", URL: "https://example.com/board"},
		},
	})
	require.NoError(t, err)
	return p
}

func testProjects(t *testing.T, s store.Store) {
	ctx := context.Background()

	t.Run("create applies defaults", func(t *testing.T) {
		p := seedProject(t, s, "  Solar roof  ", domain.DepartmentPresent)
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, "Solar roof", p.Title)
		assert.Equal(t, domain.DefaultEmoji, p.Emoji)
		assert.Equal(t, domain.DefaultStatus, p.Status)
		assert.False(t, p.IsPrivate)
		assert.False(t, p.CreatedAt.IsZero())
		assert.Equal(t, p.CreatedAt, p.UpdatedAt)
		require.Len(t, p.CustomFields, 2)
		for _, f := range p.CustomFields {
			assert.NotEmpty(t, f.ID)
			assert.Equal(t, p.ID, f.ProjectID)
		}
		require.Len(t, p.Links, 1)
		assert.Equal(t, p.ID, p.Links[0].ProjectID)

		got, err := s.GetProject(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.Title, got.Title)
		assert.Len(t, got.CustomFields, 2)
		assert.Len(t, got.Links, 1)
	})

	t.Run("list filters by department", func(t *testing.T) {
		seedProject(t, s, "Moon base", domain.DepartmentFuture)

		present, err := s.ListProjects(ctx, store.ProjectFilter{Department: domain.DepartmentPresent})
		require.NoError(t, err)
		require.Len(t, present, 1)
		assert.Equal(t, "Solar roof", present[0].Title)

		future, err := s.ListProjects(ctx, store.ProjectFilter{Department: domain.DepartmentFuture})
		require.NoError(t, err)
		require.Len(t, future, 1)
		assert.Equal(t, "Moon base", future[0].Title)

		all, err := s.ListProjects(ctx, store.ProjectFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("update merges provided fields", func(t *testing.T) {
		p := seedProject(t, s, "Wind farm", domain.DepartmentPresent)
		time.Sleep(2 * time.Millisecond)

		err := s.UpdateProject(ctx, p.ID, domain.UpdateProjectRequest{
			Goal:      ptr("power the block"),
			IsPrivate: ptr(true),
		})
		require.NoError(t, err)

		got, err := s.GetProject(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Wind farm", got.Title)
		assert.Equal(t, "power the block", got.Goal)
		assert.True(t, got.IsPrivate)
		assert.True(t, got.UpdatedAt.After(p.UpdatedAt))
		assert.Len(t, got.CustomFields, 2)
	})

	t.Run("update replaces dependents wholesale", func(t *testing.T) {
		p := seedProject(t, s, "Greenhouse", domain.DepartmentFuture)
		err := s.UpdateProject(ctx, p.ID, domain.UpdateProjectRequest{
			CustomFields: &[]domain.CustomFieldInput{{Key: "crop", Value: "basil"}},
			Links:        &[]domain.ProjectLinkInput{},
		})
		require.NoError(t, err)

		fields, err := s.ListCustomFields(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, fields, 1)
		assert.Equal(t, "crop", fields[0].Key)

		links, err := s.ListProjectLinks(ctx, p.ID)
		require.NoError(t, err)
		assert.Empty(t, links)
	})

	t.Run("invalid update leaves record unchanged", func(t *testing.T) {
		p := seedProject(t, s, "Battery", domain.DepartmentPresent)
		bad := domain.Department("past")
		err := s.UpdateProject(ctx, p.ID, domain.UpdateProjectRequest{
			Title:      ptr("renamed"),
			Department: &bad,
		})
		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "department")

		got, err := s.GetProject(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Battery", got.Title)
		assert.Equal(t, domain.DepartmentPresent, got.Department)
	})

	t.Run("blank title rejected", func(t *testing.T) {
		before, err := s.ListProjects(ctx, store.ProjectFilter{})
		require.NoError(t, err)

		_, err = s.CreateProject(ctx, domain.CreateProjectRequest{Title: "   ", Department: domain.DepartmentPresent})
		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "title")

		after, err := s.ListProjects(ctx, store.ProjectFilter{})
		require.NoError(t, err)
		assert.Len(t, after, len(before))
	})

	t.Run("missing ids", func(t *testing.T) {
		_, err := s.GetProject(ctx, domain.NewID())
		assert.ErrorIs(t, err, domain.ErrNotFound)
		err = s.UpdateProject(ctx, domain.NewID(), domain.UpdateProjectRequest{Title: ptr("x")})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		err = s.DeleteProject(ctx, domain.NewID())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func testDependents(t *testing.T, s store.Store) {
	ctx := context.Background()
	p := seedProject(t, s, "Dependents", domain.DepartmentPresent)

	t.Run("custom field lifecycle", func(t *testing.T) {
		f, err := s.CreateCustomField(ctx, p.ID, domain.CustomFieldInput{Key: "vendor", Value: "acme"})
		require.NoError(t, err)
		assert.Equal(t, p.ID, f.ProjectID)

		require.NoError(t, s.UpdateCustomField(ctx, f.ID, domain.UpdateCustomFieldRequest{
			Value: ptr("globex"),
			IsNDA: ptr(true),
		}))
		fields, err := s.ListCustomFields(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, fields, 3)
		assert.Equal(t, "vendor", fields[2].Key)
		assert.Equal(t, "globex", fields[2].Value)
		assert.True(t, fields[2].IsNDA)

		require.NoError(t, s.DeleteCustomField(ctx, f.ID))
		fields, err = s.ListCustomFields(ctx, p.ID)
		require.NoError(t, err)
		assert.Len(t, fields, 2)

		assert.ErrorIs(t, s.DeleteCustomField(ctx, f.ID), domain.ErrNotFound)
	})

	t.Run("project link lifecycle", func(t *testing.T) {
		l, err := s.CreateProjectLink(ctx, p.ID, domain.ProjectLinkInput{
			Title:       "Repo",
			URL:         "https://example.com/repo",
			Description: ptr("source"),
		})
		require.NoError(t, err)

		require.NoError(t, s.UpdateProjectLink(ctx, l.ID, domain.UpdateProjectLinkRequest{Description: ptr("")}))
		links, err := s.ListProjectLinks(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, links, 2)
		assert.Nil(t, links[1].Description)

		require.NoError(t, s.DeleteProjectLink(ctx, l.ID))
		assert.ErrorIs(t, s.UpdateProjectLink(ctx, l.ID, domain.UpdateProjectLinkRequest{Title: ptr("x")}), domain.ErrNotFound)
	})

	t.Run("dependent writes bump project", func(t *testing.T) {
		before, err := s.GetProject(ctx, p.ID)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)

		_, err = s.CreateCustomField(ctx, p.ID, domain.CustomFieldInput{Key: "k"})
		require.NoError(t, err)
		after, err := s.GetProject(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
	})

	t.Run("unknown project", func(t *testing.T) {
		_, err := s.CreateCustomField(ctx, domain.NewID(), domain.CustomFieldInput{Key: "k"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = s.CreateProjectLink(ctx, domain.NewID(), domain.ProjectLinkInput{Title: "t", URL: "u"})
		assert.ErrorIs(t, err, domain.ErrNotFound)

		fields, err := s.ListCustomFields(ctx, domain.NewID())
		require.NoError(t, err)
		assert.Empty(t, fields)
	})
}

func testComments(t *testing.T, s store.Store) {
	ctx := context.Background()
	alice := seedUser(t, s, "alice@biamino.com", domain.RoleTeam)
	bob := seedUser(t, s, "bob@biamino.com", domain.RoleUser)
	p := seedProject(t, s, "Commented", domain.DepartmentPresent)
	other := seedProject(t, s, "Quiet", domain.DepartmentPresent)

	first, err := s.CreateComment(ctx, domain.CreateCommentRequest{ProjectID: p.ID, UserID: alice.ID, Content: "first"})
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = s.CreateComment(ctx, domain.CreateCommentRequest{ProjectID: p.ID, UserID: bob.ID, Content: "second"})
	require.NoError(t, err)
	_, err = s.CreateComment(ctx, domain.CreateCommentRequest{ProjectID: other.ID, UserID: bob.ID, Content: "elsewhere"})
	require.NoError(t, err)

	t.Run("creation order with author", func(t *testing.T) {
		cs, err := s.ListComments(ctx, store.CommentFilter{ProjectID: p.ID})
		require.NoError(t, err)
		require.Len(t, cs, 2)
		assert.Equal(t, "first", cs[0].Content)
		assert.Equal(t, "second", cs[1].Content)
		require.NotNil(t, cs[0].User)
		assert.Equal(t, "alice@biamino.com", cs[0].User.Email)
		require.NotNil(t, cs[1].User)
		assert.Equal(t, domain.RoleUser, cs[1].User.Role)
	})

	t.Run("update content", func(t *testing.T) {
		require.NoError(t, s.UpdateComment(ctx, first.ID, domain.UpdateCommentRequest{Content: ptr("edited")}))
		cs, err := s.ListComments(ctx, store.CommentFilter{ProjectID: p.ID})
		require.NoError(t, err)
		assert.Equal(t, "edited", cs[0].Content)
	})

	t.Run("requires project and author", func(t *testing.T) {
		_, err := s.CreateComment(ctx, domain.CreateCommentRequest{ProjectID: domain.NewID(), UserID: alice.ID, Content: "x"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = s.CreateComment(ctx, domain.CreateCommentRequest{ProjectID: p.ID, UserID: domain.NewID(), Content: "x"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("empty content rejected", func(t *testing.T) {
		_, err := s.CreateComment(ctx, domain.CreateCommentRequest{ProjectID: p.ID, UserID: alice.ID})
		var verr *domain.ValidationError
		assert.True(t, errors.As(err, &verr))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.DeleteComment(ctx, first.ID))
		assert.ErrorIs(t, s.DeleteComment(ctx, first.ID), domain.ErrNotFound)
		cs, err := s.ListComments(ctx, store.CommentFilter{ProjectID: p.ID})
		require.NoError(t, err)
		assert.Len(t, cs, 1)
	})
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	admin := seedUser(t, s, "admin@biamino.com", domain.RoleAdmin)

	t.Run("email is unique", func(t *testing.T) {
		_, err := s.CreateUser(ctx, domain.CreateUserRequest{Email: "admin@biamino.com", Role: domain.RoleUser})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("filter by email", func(t *testing.T) {
		seedUser(t, s, "user@biamino.com", domain.RoleUser)
		us, err := s.ListUsers(ctx, store.UserFilter{Email: "admin@biamino.com"})
		require.NoError(t, err)
		require.Len(t, us, 1)
		assert.Equal(t, admin.ID, us[0].ID)
		assert.Equal(t, domain.RoleAdmin, us[0].Role)

		all, err := s.ListUsers(ctx, store.UserFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("invalid role rejected", func(t *testing.T) {
		_, err := s.CreateUser(ctx, domain.CreateUserRequest{Email: "x@biamino.com", Role: "owner"})
		var verr *domain.ValidationError
		assert.True(t, errors.As(err, &verr))
	})

	t.Run("delete removes their comments", func(t *testing.T) {
		u := seedUser(t, s, "leaving@biamino.com", domain.RoleTeam)
		p := seedProject(t, s, "Handover", domain.DepartmentFuture)
		_, err := s.CreateComment(ctx, domain.CreateCommentRequest{ProjectID: p.ID, UserID: u.ID, Content: "bye"})
		require.NoError(t, err)
		_, err = s.CreateComment(ctx, domain.CreateCommentRequest{ProjectID: p.ID, UserID: admin.ID, Content: "stays"})
		require.NoError(t, err)

		require.NoError(t, s.DeleteUser(ctx, u.ID))
		cs, err := s.ListComments(ctx, store.CommentFilter{ProjectID: p.ID})
		require.NoError(t, err)
		require.Len(t, cs, 1)
		assert.Equal(t, "stays", cs[0].Content)

		assert.ErrorIs(t, s.DeleteUser(ctx, u.ID), domain.ErrNotFound)
	})
}

func testCascade(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := seedUser(t, s, "c@biamino.com", domain.RoleAdmin)
	doomed := seedProject(t, s, "Doomed", domain.DepartmentPresent)
	kept := seedProject(t, s, "Kept", domain.DepartmentPresent)
	for _, id := range []string{doomed.ID, kept.ID} {
		_, err := s.CreateComment(ctx, domain.CreateCommentRequest{ProjectID: id, UserID: u.ID, Content: "note"})
		require.NoError(t, err)
	}

	require.NoError(t, s.DeleteProject(ctx, doomed.ID))

	fields, err := s.ListCustomFields(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Empty(t, fields)
	links, err := s.ListProjectLinks(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Empty(t, links)
	cs, err := s.ListComments(ctx, store.CommentFilter{ProjectID: doomed.ID})
	require.NoError(t, err)
	assert.Empty(t, cs)

	_, err = s.GetProject(ctx, doomed.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	fields, err = s.ListCustomFields(ctx, kept.ID)
	require.NoError(t, err)
	assert.Len(t, fields, 2)
	cs, err = s.ListComments(ctx, store.CommentFilter{ProjectID: kept.ID})
	require.NoError(t, err)
	assert.Len(t, cs, 1)
}

func testReplace(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := seedUser(t, s, "r@biamino.com", domain.RoleAdmin)
	old := seedProject(t, s, "Old", domain.DepartmentPresent)
	_, err := s.CreateComment(ctx, domain.CreateCommentRequest{ProjectID: old.ID, UserID: u.ID, Content: "old note"})
	require.NoError(t, err)

	now := domain.Now()
	imported := domain.Project{
		ID:         domain.NewID(),
		Title:      "Imported",
		Emoji:      "🚀",
		Department: domain.DepartmentFuture,
		Status:     "planning",
		GoalIsNDA:  true,
		Goal:       "secret",
		CustomFields: []domain.CustomField{
			{ID: domain.NewID(), Key: "k", Value: "v", IsNDA: true},
		},
		Links:     []domain.ProjectLink{{ID: domain.NewID(), Title: "t", URL: "https://example.com"}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	t.Run("projects only drops orphaned comments", func(t *testing.T) {
		require.NoError(t, s.ReplaceCollections(ctx, &[]domain.Project{imported}, nil))

		ps, err := s.ListProjects(ctx, store.ProjectFilter{})
		require.NoError(t, err)
		require.Len(t, ps, 1)
		assert.Equal(t, imported.ID, ps[0].ID)
		assert.Equal(t, "secret", ps[0].Goal)
		require.Len(t, ps[0].CustomFields, 1)
		assert.Equal(t, imported.ID, ps[0].CustomFields[0].ProjectID)
		assert.Len(t, ps[0].Links, 1)

		cs, err := s.ListComments(ctx, store.CommentFilter{ProjectID: old.ID})
		require.NoError(t, err)
		assert.Empty(t, cs)
	})

	t.Run("comments keep identities", func(t *testing.T) {
		c := domain.Comment{ID: domain.NewID(), ProjectID: imported.ID, UserID: u.ID, Content: "hello", CreatedAt: now}
		stray := domain.Comment{ID: domain.NewID(), ProjectID: imported.ID, UserID: domain.NewID(), Content: "ghost", CreatedAt: now}
		require.NoError(t, s.ReplaceCollections(ctx, nil, &[]domain.Comment{c, stray}))

		cs, err := s.ListComments(ctx, store.CommentFilter{ProjectID: imported.ID})
		require.NoError(t, err)
		require.Len(t, cs, 1)
		assert.Equal(t, c.ID, cs[0].ID)
		assert.True(t, c.CreatedAt.Equal(cs[0].CreatedAt))

		ps, err := s.ListProjects(ctx, store.ProjectFilter{})
		require.NoError(t, err)
		assert.Len(t, ps, 1)
	})

	t.Run("nothing present is a no-op", func(t *testing.T) {
		require.NoError(t, s.ReplaceCollections(ctx, nil, nil))
		ps, err := s.ListProjects(ctx, store.ProjectFilter{})
		require.NoError(t, err)
		assert.Len(t, ps, 1)
	})
}
