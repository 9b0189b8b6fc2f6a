package types

type Role string

const (
	ROLE_ADMIN    Role = "Admin"
	ROLE_EMPLOYEE Role = "Employee"
	ROLE_CLIENT   Role = "Client"
)

type Capability string

const (
	CAP_VIEW_CATALOG        Capability = "catalog:view"
	CAP_MANAGE_CATALOG      Capability = "catalog:manage"
	CAP_MANAGE_EMPLOYEES    Capability = "employees:manage"
	CAP_LIST_CLIENTS        Capability = "clients:list"
	CAP_VIEW_CLIENTS        Capability = "clients:view"
	CAP_VIEW_RESERVATIONS   Capability = "reservations:view"
	CAP_CREATE_RESERVATIONS Capability = "reservations:create"
	CAP_UPDATE_RESERVATIONS Capability = "reservations:update"
	CAP_MANAGE_RESERVATIONS Capability = "reservations:manage"
	CAP_VIEW_OWN_PROFILE    Capability = "profile:view"
)

var roleCapabilities = map[Role][]Capability{
	ROLE_ADMIN: {
		CAP_VIEW_CATALOG,
		CAP_MANAGE_CATALOG,
		CAP_MANAGE_EMPLOYEES,
		CAP_LIST_CLIENTS,
		CAP_VIEW_CLIENTS,
		CAP_VIEW_RESERVATIONS,
		CAP_UPDATE_RESERVATIONS,
		CAP_MANAGE_RESERVATIONS,
		CAP_VIEW_OWN_PROFILE,
	},
	ROLE_EMPLOYEE: {
		CAP_VIEW_CATALOG,
		CAP_LIST_CLIENTS,
		CAP_VIEW_RESERVATIONS,
		CAP_CREATE_RESERVATIONS,
		CAP_UPDATE_RESERVATIONS,
		CAP_VIEW_OWN_PROFILE,
	},
	ROLE_CLIENT: {
		CAP_LIST_CLIENTS,
		CAP_VIEW_OWN_PROFILE,
	},
}

func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Can reports whether the role holds the capability. Unknown roles hold nothing.
func (r Role) Can(c Capability) bool {
	for _, rc := range roleCapabilities[r] {
		if rc == c {
			return true
		}
	}
	return false
}

// IsAdmin is shorthand for the capability that lifts per-employee scoping on reservations.
func (r Role) IsAdmin() bool {
	return r.Can(CAP_MANAGE_RESERVATIONS)
}

func (r Role) String() string {
	return string(r)
}

// Actor is the authenticated caller as seen by controllers.
type Actor struct {
	ID    uint
	Email string
	Role  Role
}
