package domain

import (
	"time"
)

type Role string

const (
	RoleAdmin         Role = "ADMIN"
	RoleOfficier      Role = "OFFICIER"
	RoleOpe           Role = "OPE"
	RoleChefEquipe    Role = "CHEF_EQUIPE"
	RoleAdjChefEquipe Role = "ADJ_CHEF_EQUIPE"
	RoleAgent         Role = "AGENT"
)

type Statut string

const (
	StatutPro        Statut = "pro"
	StatutVolontaire Statut = "volontaire"
	// StatutDouble couvre les sapeurs à double statut : le statut effectif
	// est choisi affectation par affectation (statut_service).
	StatutDouble Statut = "double"
)

type Personnel struct {
	ID           int64      `json:"id"`
	Nom          string     `json:"nom"`
	Prenom       string     `json:"prenom"`
	Grade        string     `json:"grade"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Statut       Statut     `json:"statut"`
	EquipeID     *int64     `json:"equipeId"`
	Roles        []Role     `json:"roles"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	Competences  []Acquis   `json:"competences,omitempty"`
	Version      int32      `json:"-"`
}

// Acquis lie un personnel à une compétence, avec une éventuelle date
// d'expiration (recyclage non effectué = compétence périmée).
type Acquis struct {
	CompetenceID   int64      `json:"competenceId"`
	Code           string     `json:"code"`
	DateObtention  *time.Time `json:"dateObtention"`
	DateExpiration *time.Time `json:"dateExpiration"`
}
