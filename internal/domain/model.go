package domain

import "time"

// Role is one of the three fixed account roles.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleTeam  Role = "team"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleTeam || r == RoleUser
}

// Department is the fixed top-level grouping a project belongs to.
type Department string

const (
	DepartmentPresent Department = "present"
	DepartmentFuture  Department = "future"
)

func (d Department) Valid() bool {
	return d == DepartmentPresent || d == DepartmentFuture
}

// Departments lists both departments in display order.
var Departments = []Department{DepartmentPresent, DepartmentFuture}

// Defaults applied to new projects when the form leaves them blank.
const (
	DefaultEmoji  = "📝"
	DefaultStatus = "development"
)

// User is an account. Users are never edited after creation.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Project is a tracked project together with its custom fields and links.
type Project struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Emoji           string     `json:"emoji"`
	Department      Department `json:"department"`
	Status          string     `json:"status"`
	SecondaryStatus string     `json:"secondary_status"`
	Goal            string     `json:"goal"`
	Requirements    string     `json:"requirements"`
	Inventory       string     `json:"inventory"`
	GithubURL       *string    `json:"github_url,omitempty"`
	Revenue         bool       `json:"revenue"`
	RevenueAmount   *string    `json:"revenue_amount,omitempty"`
	IsPrivate       bool       `json:"is_private"`

	DescriptionIsNDA  bool `json:"description_is_nda"`
	GoalIsNDA         bool `json:"goal_is_nda"`
	RequirementsIsNDA bool `json:"requirements_is_nda"`
	InventoryIsNDA    bool `json:"inventory_is_nda"`

	CustomFields []CustomField `json:"custom_fields"`
	Links        []ProjectLink `json:"links"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CustomField is a free-form key/value pair owned by one project.
type CustomField struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	IsNDA     bool   `json:"is_nda"`
}

// ProjectLink is an external reference owned by one project.
type ProjectLink struct {
	ID          string  `json:"id"`
	ProjectID   string  `json:"project_id"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Description *string `json:"description,omitempty"`
}

// Comment is a note left on a project. User is the author snapshot resolved
// at read time and is nil when the author no longer exists.
type Comment struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	User      *User     `json:"user,omitempty"`
}
