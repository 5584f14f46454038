package user

type Permission string

const (
	// Compliance
	PermissionComplianceView        Permission = "compliance.view"
	PermissionComplianceRecord      Permission = "compliance.record"
	PermissionComplianceManageTypes Permission = "compliance.manage_types"
	PermissionComplianceExport      Permission = "compliance.export"

	// Assessment forms (spot checks, competency)
	PermissionAssessmentSubmit Permission = "assessment.submit"

	// Dashboard
	PermissionDashboardView Permission = "dashboard.view"

	// Master data
	PermissionBranchView Permission = "branch.view"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionComplianceView,
		PermissionComplianceRecord,
		PermissionComplianceManageTypes,
		PermissionComplianceExport,
		PermissionAssessmentSubmit,
		PermissionDashboardView,
		PermissionBranchView,
	},
	RoleManager: {
		PermissionComplianceView,
		PermissionComplianceRecord,
		PermissionComplianceExport,
		PermissionAssessmentSubmit,
		PermissionDashboardView,
		PermissionBranchView,
	},
	RoleStaff: {
		PermissionAssessmentSubmit,
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
