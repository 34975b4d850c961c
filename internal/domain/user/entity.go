package user

import "strings"

type Role string

const (
	RoleManager     Role = "manager"     // Project manager - own project, can approve
	RoleManagerOps  Role = "manager-ops" // Operations manager - all projects, can approve
	RoleCoordinator Role = "coordinator" // Site coordinator - own project, read only
	RoleHRD         Role = "hrd"         // HR department - everything
	RoleEmployee    Role = "employee"    // Regular employee - self only
)

// ParseRole maps a claim value to a Role, accepting a few spellings seen in tokens.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "manager":
		return RoleManager, true
	case "manager-ops", "manager_ops", "managerops", "ops":
		return RoleManagerOps, true
	case "coordinator":
		return RoleCoordinator, true
	case "hrd", "hr":
		return RoleHRD, true
	case "employee":
		return RoleEmployee, true
	}
	return "", false
}

// Principal is the verified caller of a request
type Principal struct {
	Role        Role
	EmployeeID  string
	ProjectName string
	BearerToken string
}

// CanApprove checks if the principal may trigger status transitions
func (p Principal) CanApprove() bool {
	return HasPermission(p.Role, PermissionActionApprove)
}
