// Package authz porte la session de l'acteur courant et les prédicats de
// capacité utilisés partout ailleurs. La session est construite une fois à
// l'authentification puis passée explicitement ; aucun état ambiant.
package authz

import (
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
)

// Session identifie l'acteur courant. Une session nil vaut « non
// authentifié » : tous les prédicats répondent alors false.
type Session struct {
	PersonnelID int64
	EquipeID    *int64
	Roles       []domain.Role
}

// HasAnyRole répond true si required est vide ou si l'acteur possède au
// moins un des rôles demandés.
func (s *Session) HasAnyRole(required ...domain.Role) bool {
	if s == nil {
		return false
	}
	if len(required) == 0 {
		return true
	}
	for _, want := range required {
		for _, have := range s.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// IsChef répond true pour un chef d'équipe ou son adjoint.
func (s *Session) IsChef() bool {
	return s.HasAnyRole(domain.RoleChefEquipe, domain.RoleAdjChefEquipe)
}

// CanAdminOverride répond true pour ADMIN et OFFICIER : ces rôles passent
// outre le verrouillage mensuel et peuvent dévalider une feuille.
func (s *Session) CanAdminOverride() bool {
	return s.HasAnyRole(domain.RoleAdmin, domain.RoleOfficier)
}
