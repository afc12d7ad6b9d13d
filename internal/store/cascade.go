package store

// Cascade names one parent-child relationship whose children are removed
// together with the parent.
type Cascade struct {
	Parent string
	Child  string
	// Column is the child column holding the parent's identity.
	Column string
}

// Cascades is the complete set of delete rules. Both realizations apply
// exactly these and nothing else.
var Cascades = []Cascade{
	{Parent: "projects", Child: "custom_fields", Column: "project_id"},
	{Parent: "projects", Child: "project_links", Column: "project_id"},
	{Parent: "projects", Child: "comments", Column: "project_id"},
	{Parent: "users", Child: "comments", Column: "user_id"},
}

// ChildrenOf returns the cascade rules whose parent is table, in
// declaration order.
func ChildrenOf(table string) []Cascade {
	var out []Cascade
	for _, c := range Cascades {
		if c.Parent == table {
			out = append(out, c)
		}
	}
	return out
}
