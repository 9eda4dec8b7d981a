package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type NewAccountMailData struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetPasswordMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

// MonthValidatedMailData est envoyé aux opérations et aux officiers quand une
// feuille de garde mensuelle est validée.
type MonthValidatedMailData struct {
	MoisLabel  string `json:"moisLabel"`
	Equipe     string `json:"equipe"`
	Validateur string `json:"validateur"`
}

type PersonalRosterMailData struct {
	FullName   string             `json:"fullName"`
	MoisLabel  string             `json:"moisLabel"`
	Equipe     string             `json:"equipe"`
	Validateur string             `json:"validateur"`
	Gardes     []PersonalGardeRow `json:"gardes"`
}

// MonthlyReminderMailData est le récapitulatif envoyé le 25 du mois à chaque
// sapeur affecté le mois suivant.
type MonthlyReminderMailData struct {
	FullName  string             `json:"fullName"`
	MoisLabel string             `json:"moisLabel"`
	Gardes    []PersonalGardeRow `json:"gardes"`
}

type PersonalGardeRow struct {
	Date   string `json:"date"`
	Slot   string `json:"slot"`
	Piquet string `json:"piquet"`
}
