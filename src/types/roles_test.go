package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCan(t *testing.T) {
	assert.True(t, Can(ROLE_SECURITY, CAP_SCANNER_OPERATE))
	assert.False(t, Can(ROLE_SECURITY, CAP_SCANS_HISTORY))
	assert.False(t, Can(ROLE_PROMOTER, CAP_SCANNER_OPERATE))
	assert.True(t, Can(ROLE_PROMOTER, CAP_REQUESTS_CREATE))
	assert.False(t, Can(ROLE_PROMOTER, CAP_REQUESTS_DECIDE))
	assert.False(t, Can(ROLE_USER, CAP_CATALOG_READ))
	assert.False(t, Can(ROLE_ADMIN, Capability("unknown:cap")))
	assert.False(t, Can(Role(""), CAP_SCANNER_OPERATE))
}

func TestAdminHoldsEveryCapability(t *testing.T) {
	for c := range Capabilities {
		assert.True(t, Can(ROLE_ADMIN, c), "admin lacks %s", c)
	}
}

func TestCapabilitiesOf(t *testing.T) {
	assert.Empty(t, CapabilitiesOf(ROLE_USER))
	assert.ElementsMatch(t, []Capability{CAP_SCANNER_OPERATE, CAP_CATALOG_READ}, CapabilitiesOf(ROLE_SECURITY))
	assert.Len(t, CapabilitiesOf(ROLE_ADMIN), len(Capabilities))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, ROLE_MANAGER.Valid())
	assert.False(t, Role("OWNER").Valid())
}
