package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"terravista/internal/model"
)

func TestRoleGrants(t *testing.T) {
	t.Run("user can create posts", func(t *testing.T) {
		assert.True(t, RoleGrants(model.RoleUser, CapabilityCreatePost))
	})

	t.Run("user cannot manage users", func(t *testing.T) {
		assert.False(t, RoleGrants(model.RoleUser, CapabilityGetUsers))
		assert.False(t, RoleGrants(model.RoleUser, CapabilityManageUsers))
	})

	t.Run("admin holds everything", func(t *testing.T) {
		assert.True(t, RoleGrants(model.RoleAdmin, CapabilityCreatePost))
		assert.True(t, RoleGrants(model.RoleAdmin, CapabilityGetUsers))
		assert.True(t, RoleGrants(model.RoleAdmin, CapabilityManageUsers))
	})

	t.Run("unknown role fails closed", func(t *testing.T) {
		assert.False(t, RoleGrants("superuser", CapabilityCreatePost))
	})

	t.Run("unknown capability fails closed", func(t *testing.T) {
		assert.False(t, RoleGrants(model.RoleAdmin, "launchMissiles"))
	})
}

func TestCapabilities(t *testing.T) {
	caps := Capabilities(model.RoleAdmin)
	assert.Len(t, caps, 3)

	// mutations of the returned slice must not leak into the policy
	caps[0] = "somethingElse"
	assert.True(t, RoleGrants(model.RoleAdmin, CapabilityGetUsers))
}
