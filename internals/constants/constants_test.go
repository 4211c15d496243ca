package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectFileType(t *testing.T) {
	assert.True(t, IsImageFile("photo.JPG"))
	assert.True(t, IsImageFile("a/b/c.webp"))
	assert.False(t, IsImageFile("roster.xlsx"))
	assert.Equal(t, FileSheet, DetectFileTypeFromExt("roster.xlsx"))
	assert.Equal(t, FileUnknown, DetectFileTypeFromExt("notes"))
}

func TestRoleMessages(t *testing.T) {
	assert.Equal(t, "Only admins can access legacy migration", RoleErrorAdmin("legacy migration"))
	assert.Contains(t, FinanceRoles, "treasurer")
}
