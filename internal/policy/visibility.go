// Package policy decides what a viewer may see. Every check is a literal
// role membership test evaluated per field or per project.
package policy

import "github.com/biamino/biamino-backend/internal/domain"

// Withheld replaces NDA-flagged values for restricted viewers.
const Withheld = "content withheld"

// CanViewNDA reports whether role sees NDA-flagged values in the clear.
func CanViewNDA(role domain.Role) bool {
	return role == domain.RoleAdmin || role == domain.RoleTeam
}

// Redact returns value unless it is NDA-flagged and role is restricted.
func Redact(value string, isNDA bool, role domain.Role) string {
	if !isNDA || CanViewNDA(role) {
		return value
	}
	return Withheld
}

// IsListVisible reports whether p appears in list results for role.
// Detail lookups by id do not consult it.
func IsListVisible(p domain.Project, role domain.Role) bool {
	return !p.IsPrivate || CanViewNDA(role)
}

// RedactProject returns a copy of p safe to hand to a viewer with role.
// p itself is not modified.
func RedactProject(p domain.Project, role domain.Role) domain.Project {
	out := p
	out.Description = Redact(p.Description, p.DescriptionIsNDA, role)
	out.Goal = Redact(p.Goal, p.GoalIsNDA, role)
	out.Requirements = Redact(p.Requirements, p.RequirementsIsNDA, role)
	out.Inventory = Redact(p.Inventory, p.InventoryIsNDA, role)

	out.CustomFields = make([]domain.CustomField, len(p.CustomFields))
	for i, f := range p.CustomFields {
		f.Value = Redact(f.Value, f.IsNDA, role)
		out.CustomFields[i] = f
	}
	out.Links = append([]domain.ProjectLink(nil), p.Links...)
	if out.Links == nil {
		out.Links = []domain.ProjectLink{}
	}
	return out
}

// VisibleProjects filters ps down to what role may list and redacts each
// survivor. Order is preserved.
func VisibleProjects(ps []domain.Project, role domain.Role) []domain.Project {
	out := make([]domain.Project, 0, len(ps))
	for _, p := range ps {
		if IsListVisible(p, role) {
			out = append(out, RedactProject(p, role))
		}
	}
	return out
}
