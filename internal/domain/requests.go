package domain

import (
	"strings"
	"time"
)

// CreateProjectRequest carries the fields of a new project and its dependents.
type CreateProjectRequest struct {
	Title           string     `json:"title" validate:"required,notblank,max=200"`
	Description     string     `json:"description" validate:"max=10000"`
	Emoji           string     `json:"emoji" validate:"omitempty,glyph"`
	Department      Department `json:"department" validate:"required,oneof=present future"`
	Status          string     `json:"status" validate:"max=100"`
	SecondaryStatus string     `json:"secondary_status" validate:"max=100"`
	Goal            string     `json:"goal" validate:"max=10000"`
	Requirements    string     `json:"requirements" validate:"max=10000"`
	Inventory       string     `json:"inventory" validate:"max=10000"`
	GithubURL       *string    `json:"github_url" validate:"omitempty,max=500"`
	Revenue         bool       `json:"revenue"`
	RevenueAmount   *string    `json:"revenue_amount" validate:"omitempty,max=100"`
	IsPrivate       bool       `json:"is_private"`

	DescriptionIsNDA  bool `json:"description_is_nda"`
	GoalIsNDA         bool `json:"goal_is_nda"`
	RequirementsIsNDA bool `json:"requirements_is_nda"`
	InventoryIsNDA    bool `json:"inventory_is_nda"`

	CustomFields []CustomFieldInput `json:"custom_fields" validate:"dive"`
	Links        []ProjectLinkInput `json:"links" validate:"dive"`
}

// UpdateProjectRequest lists the project fields that may change. Nil fields
// are left untouched. A non-nil CustomFields or Links replaces that
// collection wholesale.
type UpdateProjectRequest struct {
	Title           *string     `json:"title" validate:"omitnil,notblank,max=200"`
	Description     *string     `json:"description" validate:"omitempty,max=10000"`
	Emoji           *string     `json:"emoji" validate:"omitempty,glyph"`
	Department      *Department `json:"department" validate:"omitempty,oneof=present future"`
	Status          *string     `json:"status" validate:"omitempty,max=100"`
	SecondaryStatus *string     `json:"secondary_status" validate:"omitempty,max=100"`
	Goal            *string     `json:"goal" validate:"omitempty,max=10000"`
	Requirements    *string     `json:"requirements" validate:"omitempty,max=10000"`
	Inventory       *string     `json:"inventory" validate:"omitempty,max=10000"`
	GithubURL       *string     `json:"github_url" validate:"omitempty,max=500"`
	Revenue         *bool       `json:"revenue"`
	RevenueAmount   *string     `json:"revenue_amount" validate:"omitempty,max=100"`
	IsPrivate       *bool       `json:"is_private"`

	DescriptionIsNDA  *bool `json:"description_is_nda"`
	GoalIsNDA         *bool `json:"goal_is_nda"`
	RequirementsIsNDA *bool `json:"requirements_is_nda"`
	InventoryIsNDA    *bool `json:"inventory_is_nda"`

	CustomFields *[]CustomFieldInput `json:"custom_fields" validate:"omitempty,dive"`
	Links        *[]ProjectLinkInput `json:"links" validate:"omitempty,dive"`
}

type CustomFieldInput struct {
	Key   string `json:"key" validate:"required,max=200"`
	Value string `json:"value" validate:"max=10000"`
	IsNDA bool   `json:"is_nda"`
}

type UpdateCustomFieldRequest struct {
	Key   *string `json:"key" validate:"omitnil,notblank,max=200"`
	Value *string `json:"value" validate:"omitempty,max=10000"`
	IsNDA *bool   `json:"is_nda"`
}

type ProjectLinkInput struct {
	Title       string  `json:"title" validate:"required,max=200"`
	URL         string  `json:"url" validate:"required,max=2000"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type UpdateProjectLinkRequest struct {
	Title       *string `json:"title" validate:"omitnil,notblank,max=200"`
	URL         *string `json:"url" validate:"omitnil,notblank,max=2000"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type CreateCommentRequest struct {
	ProjectID string `json:"project_id" validate:"required"`
	UserID    string `json:"user_id" validate:"required"`
	Content   string `json:"content" validate:"required,notblank,max=10000"`
}

type UpdateCommentRequest struct {
	Content *string `json:"content" validate:"omitnil,notblank,max=10000"`
}

type CreateUserRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  Role   `json:"role" validate:"required,oneof=admin team user"`
}

// NewProject builds the record for r, assigning identities to the project
// and every dependent.
func (r CreateProjectRequest) NewProject(now time.Time) Project {
	p := Project{
		ID:                NewID(),
		Title:             strings.TrimSpace(r.Title),
		Description:       r.Description,
		Emoji:             r.Emoji,
		Department:        r.Department,
		Status:            r.Status,
		SecondaryStatus:   r.SecondaryStatus,
		Goal:              r.Goal,
		Requirements:      r.Requirements,
		Inventory:         r.Inventory,
		GithubURL:         r.GithubURL,
		Revenue:           r.Revenue,
		RevenueAmount:     r.RevenueAmount,
		IsPrivate:         r.IsPrivate,
		DescriptionIsNDA:  r.DescriptionIsNDA,
		GoalIsNDA:         r.GoalIsNDA,
		RequirementsIsNDA: r.RequirementsIsNDA,
		InventoryIsNDA:    r.InventoryIsNDA,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if p.Emoji == "" {
		p.Emoji = DefaultEmoji
	}
	if p.Status == "" {
		p.Status = DefaultStatus
	}
	p.CustomFields = NewCustomFields(p.ID, r.CustomFields)
	p.Links = NewProjectLinks(p.ID, r.Links)
	return p
}

// ApplyTo merges the non-nil fields of r into p and bumps UpdatedAt.
func (r UpdateProjectRequest) ApplyTo(p *Project, now time.Time) {
	if r.Title != nil {
		p.Title = strings.TrimSpace(*r.Title)
	}
	setString(&p.Description, r.Description)
	setString(&p.Emoji, r.Emoji)
	if r.Department != nil {
		p.Department = *r.Department
	}
	setString(&p.Status, r.Status)
	setString(&p.SecondaryStatus, r.SecondaryStatus)
	setString(&p.Goal, r.Goal)
	setString(&p.Requirements, r.Requirements)
	setString(&p.Inventory, r.Inventory)
	if r.GithubURL != nil {
		p.GithubURL = optional(*r.GithubURL)
	}
	setBool(&p.Revenue, r.Revenue)
	if r.RevenueAmount != nil {
		p.RevenueAmount = optional(*r.RevenueAmount)
	}
	setBool(&p.IsPrivate, r.IsPrivate)
	setBool(&p.DescriptionIsNDA, r.DescriptionIsNDA)
	setBool(&p.GoalIsNDA, r.GoalIsNDA)
	setBool(&p.RequirementsIsNDA, r.RequirementsIsNDA)
	setBool(&p.InventoryIsNDA, r.InventoryIsNDA)
	if r.CustomFields != nil {
		p.CustomFields = NewCustomFields(p.ID, *r.CustomFields)
	}
	if r.Links != nil {
		p.Links = NewProjectLinks(p.ID, *r.Links)
	}
	p.UpdatedAt = now
}

// ReplacesDependents reports whether applying r rewrites a dependent collection.
func (r UpdateProjectRequest) ReplacesDependents() bool {
	return r.CustomFields != nil || r.Links != nil
}

func (in CustomFieldInput) NewCustomField(projectID string) CustomField {
	return CustomField{ID: NewID(), ProjectID: projectID, Key: in.Key, Value: in.Value, IsNDA: in.IsNDA}
}

func (r UpdateCustomFieldRequest) ApplyTo(f *CustomField) {
	setString(&f.Key, r.Key)
	setString(&f.Value, r.Value)
	setBool(&f.IsNDA, r.IsNDA)
}

func (in ProjectLinkInput) NewProjectLink(projectID string) ProjectLink {
	return ProjectLink{ID: NewID(), ProjectID: projectID, Title: in.Title, URL: in.URL, Description: in.Description}
}

func (r UpdateProjectLinkRequest) ApplyTo(l *ProjectLink) {
	setString(&l.Title, r.Title)
	setString(&l.URL, r.URL)
	if r.Description != nil {
		l.Description = optional(*r.Description)
	}
}

func (r UpdateCommentRequest) ApplyTo(c *Comment) {
	setString(&c.Content, r.Content)
}

func NewCustomFields(projectID string, in []CustomFieldInput) []CustomField {
	out := make([]CustomField, 0, len(in))
	for _, f := range in {
		out = append(out, f.NewCustomField(projectID))
	}
	return out
}

func NewProjectLinks(projectID string, in []ProjectLinkInput) []ProjectLink {
	out := make([]ProjectLink, 0, len(in))
	for _, l := range in {
		out = append(out, l.NewProjectLink(projectID))
	}
	return out
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// optional maps an empty string to nil so cleared optional fields drop out.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
