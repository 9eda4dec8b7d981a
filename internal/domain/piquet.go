package domain

type Competence struct {
	ID      int64  `json:"id"`
	Code    string `json:"code"`
	Libelle string `json:"libelle"`
}

// Piquet est un poste à tenir pendant une garde ; ses exigences sont les
// compétences requises pour pouvoir y être affecté. Un piquet d'astreinte
// n'est pas compté dans les règles d'enchaînement de gardes.
type Piquet struct {
	ID          int64        `json:"id"`
	Code        string       `json:"code"`
	Libelle     string       `json:"libelle"`
	IsAstreinte bool         `json:"isAstreinte"`
	Position    int32        `json:"position"`
	Exigences   []Competence `json:"exigences"`
}
