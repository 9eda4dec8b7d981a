package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
)

func TestHasAnyRole_EmptyRequired(t *testing.T) {
	s := &Session{PersonnelID: 1, Roles: []domain.Role{domain.RoleAgent}}
	assert.True(t, s.HasAnyRole())
}

func TestHasAnyRole_Intersection(t *testing.T) {
	s := &Session{PersonnelID: 1, Roles: []domain.Role{domain.RoleAgent, domain.RoleOpe}}
	assert.True(t, s.HasAnyRole(domain.RoleOpe, domain.RoleAdmin))
	assert.False(t, s.HasAnyRole(domain.RoleAdmin, domain.RoleOfficier))
}

func TestHasAnyRole_NilSessionFailsClosed(t *testing.T) {
	var s *Session
	assert.False(t, s.HasAnyRole())
	assert.False(t, s.HasAnyRole(domain.RoleAdmin))
	assert.False(t, s.IsChef())
	assert.False(t, s.CanAdminOverride())
}

func TestIsChef(t *testing.T) {
	chef := &Session{PersonnelID: 1, Roles: []domain.Role{domain.RoleChefEquipe}}
	adj := &Session{PersonnelID: 2, Roles: []domain.Role{domain.RoleAdjChefEquipe}}
	agent := &Session{PersonnelID: 3, Roles: []domain.Role{domain.RoleAgent}}

	assert.True(t, chef.IsChef())
	assert.True(t, adj.IsChef())
	assert.False(t, agent.IsChef())
}

func TestCanAdminOverride(t *testing.T) {
	admin := &Session{PersonnelID: 1, Roles: []domain.Role{domain.RoleAdmin}}
	officier := &Session{PersonnelID: 2, Roles: []domain.Role{domain.RoleOfficier}}
	chef := &Session{PersonnelID: 3, Roles: []domain.Role{domain.RoleChefEquipe}}

	assert.True(t, admin.CanAdminOverride())
	assert.True(t, officier.CanAdminOverride())
	assert.False(t, chef.CanAdminOverride())
}

func TestRolesAreNotExclusive(t *testing.T) {
	s := &Session{PersonnelID: 1, Roles: []domain.Role{domain.RoleChefEquipe, domain.RoleOfficier}}
	assert.True(t, s.IsChef())
	assert.True(t, s.CanAdminOverride())
}
