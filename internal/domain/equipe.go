package domain

type Equipe struct {
	ID      int64  `json:"id"`
	Code    string `json:"code"`
	Libelle string `json:"libelle"`
	Couleur string `json:"couleur"`
	Version int32  `json:"-"`
}
