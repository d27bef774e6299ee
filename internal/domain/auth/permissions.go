package auth

const (
	RoleUser       = "USER"
	RoleManager    = "MANAGER"
	RoleSuperAdmin = "SUPER_ADMIN"
)

const (
	CapScheduleRead     = "schedule.read"
	CapScheduleManage   = "schedule.manage"
	CapPlannerRead      = "planner.read"
	CapRequestsSubmit   = "requests.submit"
	CapRequestsDecide   = "requests.decide"
	CapWorkplacesManage = "workplaces.manage"
	CapReportsRead      = "reports.read"
	CapReportsManage    = "reports.manage"
	CapUsersManage      = "users.manage"
	CapSystemAdmin      = "admin.system"
)

var DefaultCapabilities = []string{
	CapScheduleRead,
	CapScheduleManage,
	CapPlannerRead,
	CapRequestsSubmit,
	CapRequestsDecide,
	CapWorkplacesManage,
	CapReportsRead,
	CapReportsManage,
	CapUsersManage,
	CapSystemAdmin,
}

var RoleCapabilities = map[string][]string{
	RoleUser: {
		CapScheduleRead,
		CapPlannerRead,
		CapRequestsSubmit,
		CapReportsRead,
	},
	RoleManager: {
		CapScheduleRead,
		CapScheduleManage,
		CapPlannerRead,
		CapRequestsSubmit,
		CapRequestsDecide,
		CapWorkplacesManage,
		CapReportsRead,
		CapReportsManage,
	},
	RoleSuperAdmin: {
		CapScheduleRead,
		CapScheduleManage,
		CapPlannerRead,
		CapRequestsSubmit,
		CapRequestsDecide,
		CapWorkplacesManage,
		CapReportsRead,
		CapReportsManage,
		CapUsersManage,
		CapSystemAdmin,
	},
}

// Can reports whether a role carries a capability. Unknown roles carry nothing.
func Can(role, capability string) bool {
	for _, cap := range RoleCapabilities[role] {
		if cap == capability {
			return true
		}
	}
	return false
}
