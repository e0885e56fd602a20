package permissions

import "access-governance/internal/models"

const (
	UsersRead          = "users:read"
	ViolationsRead     = "violations:read"
	ViolationsManage   = "violations:manage"
	ViolationsExport   = "violations:export"
	AssessmentsRead    = "assessments:read"
	AssessmentsRun     = "assessments:run"
	AuditRead          = "audit:read"
	FirefighterApprove = "firefighter:approve"
)

var rolePermissions = map[models.UserRole][]string{
	models.RoleAdmin: {
		UsersRead, ViolationsRead, ViolationsManage, ViolationsExport,
		AssessmentsRead, AssessmentsRun, AuditRead, FirefighterApprove,
	},
	models.RoleAuditor: {
		UsersRead, ViolationsRead, ViolationsExport, AssessmentsRead, AssessmentsRun, AuditRead,
	},
	models.RoleManager: {
		UsersRead, ViolationsRead, ViolationsManage, FirefighterApprove,
	},
	models.RoleViewer: {
		ViolationsRead, AssessmentsRead,
	},
}

// ForRole: разрешения роли консоли. Неизвестная роль получает пустой набор.
func ForRole(role models.UserRole) Set {
	return NewSet(rolePermissions[role]...)
}
