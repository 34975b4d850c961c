package user

type Permission string

const (
	// Reports
	PermissionReportViewOwn     Permission = "report.view_own"
	PermissionReportViewProject Permission = "report.view_project"
	PermissionReportViewAll     Permission = "report.view_all"
	PermissionReportExport      Permission = "report.export"

	// Status transitions
	PermissionActionApprove Permission = "action.approve"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleHRD: {
		PermissionReportViewOwn,
		PermissionReportViewProject,
		PermissionReportViewAll,
		PermissionReportExport,
		PermissionActionApprove,
	},
	RoleManagerOps: {
		PermissionReportViewOwn,
		PermissionReportViewProject,
		PermissionReportViewAll,
		PermissionReportExport,
		PermissionActionApprove,
	},
	RoleManager: {
		PermissionReportViewOwn,
		PermissionReportViewProject,
		PermissionReportExport,
		PermissionActionApprove,
	},
	RoleCoordinator: {
		PermissionReportViewOwn,
		PermissionReportViewProject,
		PermissionReportExport,
	},
	RoleEmployee: {
		PermissionReportViewOwn,
		PermissionReportExport,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
