package entity

import "strings"

type Role string

const (
	RoleFM         Role = "fm"
	RoleHQ         Role = "hq"
	RoleAgency     Role = "agency"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// PermissionWildcard grants every permission.
const PermissionWildcard = "*"

type RoleInfo struct {
	Name         string
	DashboardURL string
	Permissions  []string
	AllowedPages []Page
}

// roleTable is static and read-only after load. Permissions and dashboard
// URLs are the role defaults; the backend may override permissions at login.
var roleTable = map[Role]RoleInfo{
	RoleFM: {
		Name:         "Foreign Ministry",
		DashboardURL: "/pages/dashboards/FMdashboard.html",
		Permissions: []string{
			"view_dashboard",
			"create_form",
			"view_etd_data",
			"print_token",
			"submit_applications",
		},
		AllowedPages: []Page{
			PageFMDashboard,
			PageCitizenForm,
			PageNadraPassport,
			PageETDApproved,
			PageETDNotApproved,
			PageETDRemarks,
		},
	},
	RoleHQ: {
		Name:         "Headquarters",
		DashboardURL: "/pages/dashboards/HQdashboard.html",
		Permissions: []string{
			"view_dashboard",
			"view_details",
			"send_verification",
			"approve_applications",
			"manage_workflow",
		},
		AllowedPages: []Page{
			PageHQDashboard,
			PageHQView,
			PageSpecialBranch,
		},
	},
	RoleAgency: {
		Name:         "Processing Agency",
		DashboardURL: "/pages/dashboards/AgencyDashboard.html",
		Permissions: []string{
			"view_dashboard",
			"verify_documents",
			"upload_files",
			"process_applications",
			"update_status",
		},
		AllowedPages: []Page{
			PageAgencyDashboard,
			PageAgencyView,
		},
	},
	RoleAdmin: {
		Name:         "System Administrator",
		DashboardURL: "/pages/dashboards/HQdashboard.html",
		Permissions: []string{
			"view_dashboard",
			"manage_users",
			"view_all_applications",
			"system_config",
			"audit_logs",
			"manage_roles",
		},
		AllowedPages: []Page{
			PageHQDashboard,
			PageHQView,
			PageSpecialBranch,
			PageFMDashboard,
			PageAgencyDashboard,
		},
	},
	RoleSuperAdmin: {
		Name:         "Super Administrator",
		DashboardURL: "/pages/dashboards/HQdashboard.html",
		Permissions:  []string{PermissionWildcard},
		AllowedPages: []Page{PageWildcard},
	},
}

func (r Role) Valid() bool {
	_, ok := roleTable[Role(strings.ToLower(string(r)))]
	return ok
}

// RoleInfoFor returns the role table entry, falling back to the FM role for
// unknown values the way the original client did.
func RoleInfoFor(r Role) RoleInfo {
	info, ok := roleTable[Role(strings.ToLower(string(r)))]
	if !ok {
		return roleTable[RoleFM]
	}

	return info
}

func AllRoles() []Role {
	return []Role{RoleFM, RoleHQ, RoleAgency, RoleAdmin, RoleSuperAdmin}
}

func (r Role) IsAdmin() bool {
	lower := Role(strings.ToLower(string(r)))
	return lower == RoleAdmin || lower == RoleSuperAdmin
}
