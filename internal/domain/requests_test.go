package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestCreateProjectRequest_NewProject(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("applies form defaults", func(t *testing.T) {
		p := CreateProjectRequest{Title: " Radar ", Department: DepartmentPresent}.NewProject(now)

		assert.NotEmpty(t, p.ID)
		assert.Equal(t, "Radar", p.Title)
		assert.Equal(t, DefaultEmoji, p.Emoji)
		assert.Equal(t, DefaultStatus, p.Status)
		assert.False(t, p.IsPrivate)
		assert.Equal(t, now, p.CreatedAt)
		assert.Equal(t, now, p.UpdatedAt)
		assert.Empty(t, p.CustomFields)
		assert.Empty(t, p.Links)
	})

	t.Run("assigns identities to dependents", func(t *testing.T) {
		p := CreateProjectRequest{
			Title:        "Radar",
			Department:   DepartmentFuture,
			CustomFields: []CustomFieldInput{{Key: "budget", Value: "1M", IsNDA: true}},
			Links:        []ProjectLinkInput{{Title: "Docs", URL: "https://docs"}},
		}.NewProject(now)

		require.Len(t, p.CustomFields, 1)
		require.Len(t, p.Links, 1)
		assert.NotEmpty(t, p.CustomFields[0].ID)
		assert.Equal(t, p.ID, p.CustomFields[0].ProjectID)
		assert.True(t, p.CustomFields[0].IsNDA)
		assert.Equal(t, p.ID, p.Links[0].ProjectID)
		assert.NotEqual(t, p.CustomFields[0].ID, p.Links[0].ID)
	})
}

func TestUpdateProjectRequest_ApplyTo(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	later := created.Add(time.Hour)
	base := CreateProjectRequest{
		Title:        "Radar",
		Department:   DepartmentPresent,
		GithubURL:    strPtr("https://github.com/biamino/radar"),
		CustomFields: []CustomFieldInput{{Key: "k", Value: "v"}},
	}.NewProject(created)

	t.Run("merges only provided fields", func(t *testing.T) {
		p := base
		UpdateProjectRequest{Goal: strPtr("ship it"), GoalIsNDA: boolPtr(true)}.ApplyTo(&p, later)

		assert.Equal(t, "Radar", p.Title)
		assert.Equal(t, "ship it", p.Goal)
		assert.True(t, p.GoalIsNDA)
		assert.Equal(t, base.CustomFields, p.CustomFields)
		assert.Equal(t, created, p.CreatedAt)
		assert.Equal(t, later, p.UpdatedAt)
	})

	t.Run("empty optional string clears the field", func(t *testing.T) {
		p := base
		UpdateProjectRequest{GithubURL: strPtr("")}.ApplyTo(&p, later)
		assert.Nil(t, p.GithubURL)
	})

	t.Run("title is trimmed like on create", func(t *testing.T) {
		p := base
		UpdateProjectRequest{Title: strPtr("  Radar 2 ")}.ApplyTo(&p, later)
		assert.Equal(t, "Radar 2", p.Title)
	})

	t.Run("dependent collections are replaced wholesale", func(t *testing.T) {
		p := base
		fields := []CustomFieldInput{{Key: "a"}, {Key: "b"}}
		req := UpdateProjectRequest{CustomFields: &fields}
		req.ApplyTo(&p, later)

		require.Len(t, p.CustomFields, 2)
		assert.Equal(t, "a", p.CustomFields[0].Key)
		assert.NotEqual(t, base.CustomFields[0].ID, p.CustomFields[0].ID)
		assert.True(t, req.ReplacesDependents())
	})
}

func TestValidate(t *testing.T) {
	t.Run("accepts a minimal project", func(t *testing.T) {
		err := Validate(CreateProjectRequest{Title: "Radar", Department: DepartmentPresent, Emoji: "🛠️"})
		assert.NoError(t, err)
	})

	t.Run("rejects unknown department", func(t *testing.T) {
		err := Validate(CreateProjectRequest{Title: "Radar", Department: "past"})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "department")
	})

	t.Run("rejects unknown department on update", func(t *testing.T) {
		d := Department("past")
		err := Validate(UpdateProjectRequest{Department: &d})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "department")
	})

	t.Run("rejects custom field without key", func(t *testing.T) {
		err := Validate(CreateProjectRequest{
			Title:        "Radar",
			Department:   DepartmentFuture,
			CustomFields: []CustomFieldInput{{Value: "orphan"}},
		})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "custom_fields[0].key")
	})

	t.Run("rejects multi-glyph emoji marker", func(t *testing.T) {
		err := Validate(CreateProjectRequest{Title: "Radar", Department: DepartmentFuture, Emoji: "rocket"})
		assert.Error(t, err)
	})

	t.Run("rejects blank titles", func(t *testing.T) {
		err := Validate(CreateProjectRequest{Title: "   ", Department: DepartmentPresent})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "title")

		for _, title := range []string{"", " \t "} {
			title := title
			err = Validate(UpdateProjectRequest{Title: &title})
			require.True(t, errors.As(err, &verr), "title %q", title)
			assert.Contains(t, verr.Fields, "title")
		}
	})

	t.Run("rejects blank link and comment edits", func(t *testing.T) {
		blank := "  "
		assert.Error(t, Validate(UpdateProjectLinkRequest{URL: &blank}))
		assert.Error(t, Validate(UpdateCustomFieldRequest{Key: &blank}))
		assert.Error(t, Validate(UpdateCommentRequest{Content: &blank}))
		assert.Error(t, Validate(CreateCommentRequest{ProjectID: "p1", UserID: "u1", Content: blank}))
	})

	t.Run("nil optional fields are skipped", func(t *testing.T) {
		assert.NoError(t, Validate(UpdateProjectRequest{}))
		assert.NoError(t, Validate(UpdateProjectLinkRequest{}))
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		err := Validate(CreateUserRequest{Email: "x@biamino.com", Role: "root"})
		assert.Error(t, err)
	})
}

func TestRoleAndDepartment(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleTeam.Valid())
	assert.True(t, RoleUser.Valid())
	assert.False(t, Role("guest").Valid())
	assert.True(t, DepartmentPresent.Valid())
	assert.True(t, DepartmentFuture.Valid())
	assert.False(t, Department("past").Valid())
}
