package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	_, err = ParseRole("superuser")
	assert.Error(t, err)

	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestRoleCapabilities(t *testing.T) {
	assert.True(t, RoleAdmin.Can(CapCoursesManage))
	assert.True(t, RoleAdmin.Can(CapEnquiriesRead))
	assert.True(t, RoleUser.Can(CapProfileRead))
	assert.False(t, RoleUser.Can(CapCoursesManage))
	assert.False(t, Role("ghost").Can(CapProfileRead))
}
