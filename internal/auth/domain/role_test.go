package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoleLadder(t *testing.T) {
	t.Parallel()

	require.True(t, RoleSuperAdmin.AtLeast(RoleTenantAdmin))
	require.True(t, RoleTenantAdmin.AtLeast(RoleNormalUser))
	require.True(t, RoleNormalUser.AtLeast(RoleNormalUser))
	require.False(t, RoleNormalUser.AtLeast(RoleTenantAdmin))
	require.False(t, RoleAnonymous.AtLeast(RoleNormalUser))
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	require.Equal(t, RoleTenantAdmin, ParseRole("TenantAdmin"))
	require.Equal(t, RoleAnonymous, ParseRole(""))
	require.Equal(t, RoleAnonymous, ParseRole("root"))
}

func TestRequesterElevated(t *testing.T) {
	t.Parallel()

	require.False(t, Requester{Role: RoleNormalUser}.Elevated())
	require.True(t, Requester{Role: RoleTenantAdmin}.Elevated())
	require.True(t, Requester{Role: RoleSuperAdmin}.Elevated())
}
