package permission

import "strings"

// Set is the capability view of one caller for one request
type Set struct {
	CanEditBudget    bool `json:"can_edit_budget"`
	CanEditEstimated bool `json:"can_edit_estimated"`
	CanEditActual    bool `json:"can_edit_actual"`
	CanEditAll       bool `json:"can_edit_all"`
	CanApprove       bool `json:"can_approve"`
	IsViewer         bool `json:"is_viewer"`
}

// CanSetEstimated reports whether the caller may change an estimated cost
func (s Set) CanSetEstimated() bool {
	return s.CanEditEstimated || s.CanEditAll
}

// CanSetActual reports whether the caller may change an actual cost
func (s Set) CanSetActual() bool {
	return s.CanEditActual || s.CanEditAll
}

// Policy holds the configured role lists the resolver compares against
type Policy struct {
	Roles            []Role
	ViewerRole       Role
	EstimatedEditors []Role
	ActualEditors    []Role
	FullEditors      []Role
	Approvers        []Role
}

// DefaultPolicy returns the built-in role lists
func DefaultPolicy() Policy {
	return Policy{
		Roles:            []Role{RoleAdmin, RoleEventManager, RoleFinanceManager, RoleStaff, RoleViewer},
		ViewerRole:       RoleViewer,
		EstimatedEditors: []Role{RoleAdmin, RoleEventManager, RoleFinanceManager},
		ActualEditors:    []Role{RoleAdmin, RoleFinanceManager},
		FullEditors:      []Role{RoleAdmin},
		Approvers:        []Role{RoleAdmin, RoleEventManager},
	}
}

// PolicyFromNames builds a policy from configuration strings.
// Empty lists fall back to the defaults.
func PolicyFromNames(roles []string, viewer string, estimated, actual, full, approvers []string) Policy {
	p := DefaultPolicy()
	if len(roles) > 0 {
		p.Roles = toRoles(roles)
	}
	if strings.TrimSpace(viewer) != "" {
		p.ViewerRole = Role(strings.TrimSpace(viewer))
	}
	if len(estimated) > 0 {
		p.EstimatedEditors = toRoles(estimated)
	}
	if len(actual) > 0 {
		p.ActualEditors = toRoles(actual)
	}
	if len(full) > 0 {
		p.FullEditors = toRoles(full)
	}
	if len(approvers) > 0 {
		p.Approvers = toRoles(approvers)
	}
	return p
}

// IsKnown reports whether role is one of the recognised roles
func (p Policy) IsKnown(role string) bool {
	if strings.TrimSpace(role) == "" {
		return false
	}
	return containsRole(p.Roles, role) || p.ViewerRole.Is(role)
}

// Resolve computes the capability set for a role. Demo mode grants
// everything. An empty or unknown role gets nothing.
func (p Policy) Resolve(role string, demoMode bool) Set {
	if demoMode {
		return Set{
			CanEditBudget:    true,
			CanEditEstimated: true,
			CanEditActual:    true,
			CanEditAll:       true,
			CanApprove:       true,
			IsViewer:         false,
		}
	}

	if !p.IsKnown(role) {
		return Set{}
	}

	return Set{
		CanEditBudget:    !p.ViewerRole.Is(role),
		CanEditEstimated: containsRole(p.EstimatedEditors, role),
		CanEditActual:    containsRole(p.ActualEditors, role),
		CanEditAll:       containsRole(p.FullEditors, role),
		CanApprove:       containsRole(p.Approvers, role),
		IsViewer:         role == string(p.ViewerRole),
	}
}

func toRoles(names []string) []Role {
	roles := make([]Role, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		roles = append(roles, Role(n))
	}
	return roles
}
