package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biamino/biamino-backend/internal/domain"
)

var allRoles = []domain.Role{domain.RoleAdmin, domain.RoleTeam, domain.RoleUser}

func TestRedact(t *testing.T) {
	values := []string{"", "secret plan", Withheld, "multi\nline"}

	t.Run("user never sees flagged values", func(t *testing.T) {
		for _, v := range values {
			assert.Equal(t, Withheld, Redact(v, true, domain.RoleUser))
		}
	})

	t.Run("admin and team see raw flagged values", func(t *testing.T) {
		for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleTeam} {
			for _, v := range values {
				assert.Equal(t, v, Redact(v, true, role))
			}
		}
	})

	t.Run("unflagged values pass through for every role", func(t *testing.T) {
		for _, role := range allRoles {
			assert.Equal(t, "public", Redact("public", false, role))
		}
	})

	t.Run("unknown role is treated as restricted", func(t *testing.T) {
		assert.Equal(t, Withheld, Redact("x", true, domain.Role("")))
	})
}

func TestIsListVisible(t *testing.T) {
	private := domain.Project{ID: "p1", IsPrivate: true}
	public := domain.Project{ID: "p2"}

	assert.False(t, IsListVisible(private, domain.RoleUser))
	assert.True(t, IsListVisible(private, domain.RoleAdmin))
	assert.True(t, IsListVisible(private, domain.RoleTeam))
	for _, role := range allRoles {
		assert.True(t, IsListVisible(public, role))
	}
}

func sampleProject() domain.Project {
	return domain.Project{
		ID:                "p1",
		Title:             "Radar",
		Description:       "desc",
		Goal:              "goal",
		Requirements:      "reqs",
		Inventory:         "inv",
		DescriptionIsNDA:  true,
		RequirementsIsNDA: true,
		CustomFields: []domain.CustomField{
			{ID: "f1", Key: "budget", Value: "1M", IsNDA: true},
			{ID: "f2", Key: "owner", Value: "ops"},
		},
		Links: []domain.ProjectLink{{ID: "l1", Title: "Docs", URL: "https://docs"}},
	}
}

func TestRedactProject(t *testing.T) {
	t.Run("user gets flagged fields withheld", func(t *testing.T) {
		p := RedactProject(sampleProject(), domain.RoleUser)

		assert.Equal(t, Withheld, p.Description)
		assert.Equal(t, "goal", p.Goal)
		assert.Equal(t, Withheld, p.Requirements)
		assert.Equal(t, "inv", p.Inventory)
		require.Len(t, p.CustomFields, 2)
		assert.Equal(t, Withheld, p.CustomFields[0].Value)
		assert.Equal(t, "ops", p.CustomFields[1].Value)
		assert.Equal(t, "Radar", p.Title)
	})

	t.Run("team sees everything", func(t *testing.T) {
		src := sampleProject()
		assert.Equal(t, src, RedactProject(src, domain.RoleTeam))
	})

	t.Run("input is not mutated", func(t *testing.T) {
		src := sampleProject()
		_ = RedactProject(src, domain.RoleUser)
		assert.Equal(t, "1M", src.CustomFields[0].Value)
		assert.Equal(t, "desc", src.Description)
	})
}

func TestVisibleProjects(t *testing.T) {
	ps := []domain.Project{
		{ID: "a"},
		{ID: "b", IsPrivate: true},
		{ID: "c", GoalIsNDA: true, Goal: "hidden"},
	}

	t.Run("user loses private projects", func(t *testing.T) {
		out := VisibleProjects(ps, domain.RoleUser)
		require.Len(t, out, 2)
		assert.Equal(t, "a", out[0].ID)
		assert.Equal(t, "c", out[1].ID)
		assert.Equal(t, Withheld, out[1].Goal)
	})

	t.Run("admin keeps order and content", func(t *testing.T) {
		out := VisibleProjects(ps, domain.RoleAdmin)
		require.Len(t, out, 3)
		assert.Equal(t, "b", out[1].ID)
		assert.Equal(t, "hidden", out[2].Goal)
	})
}
