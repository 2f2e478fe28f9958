package types

type Role string

const (
	ROLE_ADMIN    Role = "ADMIN"
	ROLE_MANAGER  Role = "MANAGER"
	ROLE_SECURITY Role = "SECURITY"
	ROLE_PROMOTER Role = "PROMOTER"
	ROLE_USER     Role = "USER"
)

type Capability string

const (
	CAP_SCANNER_OPERATE   Capability = "scanner:operate"
	CAP_SCANS_HISTORY     Capability = "scans:history"
	CAP_CATALOG_MANAGE    Capability = "catalog:manage"
	CAP_CATALOG_READ      Capability = "catalog:read"
	CAP_REQUESTS_CREATE   Capability = "requests:create"
	CAP_REQUESTS_DECIDE   Capability = "requests:decide"
	CAP_REQUESTS_READ_ALL Capability = "requests:read_all"
	CAP_ACTIVITY_WRITE    Capability = "activity:write"
	CAP_ACTIVITY_READ     Capability = "activity:read"
	CAP_STATS_READ        Capability = "stats:read"
	CAP_USERS_MANAGE      Capability = "users:manage"
	CAP_SETTINGS_MANAGE   Capability = "settings:manage"
)

// Capabilities is the only place where roles are granted access to features.
var Capabilities = map[Capability][]Role{
	CAP_SCANNER_OPERATE:   {ROLE_ADMIN, ROLE_MANAGER, ROLE_SECURITY},
	CAP_SCANS_HISTORY:     {ROLE_ADMIN, ROLE_MANAGER},
	CAP_CATALOG_MANAGE:    {ROLE_ADMIN, ROLE_MANAGER},
	CAP_CATALOG_READ:      {ROLE_ADMIN, ROLE_MANAGER, ROLE_SECURITY, ROLE_PROMOTER},
	CAP_REQUESTS_CREATE:   {ROLE_ADMIN, ROLE_MANAGER, ROLE_PROMOTER},
	CAP_REQUESTS_DECIDE:   {ROLE_ADMIN, ROLE_MANAGER},
	CAP_REQUESTS_READ_ALL: {ROLE_ADMIN, ROLE_MANAGER},
	CAP_ACTIVITY_WRITE:    {ROLE_ADMIN, ROLE_MANAGER},
	CAP_ACTIVITY_READ:     {ROLE_ADMIN, ROLE_MANAGER},
	CAP_STATS_READ:        {ROLE_ADMIN, ROLE_MANAGER},
	CAP_USERS_MANAGE:      {ROLE_ADMIN},
	CAP_SETTINGS_MANAGE:   {ROLE_ADMIN},
}

// Can reports whether role holds the capability. Unknown capabilities are denied.
func Can(role Role, capability Capability) bool {
	for _, r := range Capabilities[capability] {
		if r == role {
			return true
		}
	}
	return false
}

// CapabilitiesOf lists every capability granted to role.
func CapabilitiesOf(role Role) []Capability {
	caps := []Capability{}
	for c, roles := range Capabilities {
		for _, r := range roles {
			if r == role {
				caps = append(caps, c)
				break
			}
		}
	}
	return caps
}

func (r Role) Valid() bool {
	switch r {
	case ROLE_ADMIN, ROLE_MANAGER, ROLE_SECURITY, ROLE_PROMOTER, ROLE_USER:
		return true
	}
	return false
}
