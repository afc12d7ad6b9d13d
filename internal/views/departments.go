package views

import "github.com/biamino/biamino-backend/internal/domain"

// DepartmentInfo is the display card for one department.
type DepartmentInfo struct {
	ID          domain.Department `json:"id"`
	Name        string            `json:"name"`
	Emoji       string            `json:"emoji"`
	Description string            `json:"description"`
}

// StatusOption is one of the primary statuses offered by the project form.
// Status is free text; these are suggestions only.
type StatusOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var departmentInfo = map[domain.Department]DepartmentInfo{
	domain.DepartmentPresent: {
		ID:          domain.DepartmentPresent,
		Name:        "Department of the Present",
		Emoji:       "⚡",
		Description: "Current projects and tasks",
	},
	domain.DepartmentFuture: {
		ID:          domain.DepartmentFuture,
		Name:        "Department of the Future",
		Emoji:       "🚀",
		Description: "Innovation and development plans",
	},
}

var StatusOptions = []StatusOption{
	{Value: "development", Label: "In development"},
	{Value: "production", Label: "In production"},
	{Value: "archive", Label: "Archived"},
}

// Departments returns both department cards in display order.
func Departments() []DepartmentInfo {
	out := make([]DepartmentInfo, 0, len(domain.Departments))
	for _, d := range domain.Departments {
		out = append(out, departmentInfo[d])
	}
	return out
}

// Department returns the card for d, false when d is not a department.
func Department(d domain.Department) (DepartmentInfo, bool) {
	info, ok := departmentInfo[d]
	return info, ok
}
