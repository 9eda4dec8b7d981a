package utils

import (
	"fmt"
	"math/rand"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
)

var commonNoms = []string{
	"Martin", "Bernard", "Thomas", "Petit", "Robert", "Richard", "Durand",
	"Dubois", "Moreau", "Laurent", "Simon", "Michel", "Lefebvre", "Leroy",
	"Roux", "David", "Bertrand", "Morel", "Fournier", "Girard",
}

var commonPrenoms = []string{
	"Jean", "Pierre", "Michel", "Julien", "Nicolas", "Antoine", "Paul",
	"Claire", "Marie", "Sophie", "Camille", "Lucie", "Hugo", "Léa",
	"Mathis", "Emma", "Louis", "Chloé", "Arthur", "Manon",
}

var grades = []string{
	"Sapeur", "Caporal", "Caporal-chef", "Sergent", "Sergent-chef",
	"Adjudant", "Adjudant-chef", "Lieutenant", "Capitaine",
}

var statuts = []domain.Statut{
	domain.StatutPro,
	domain.StatutVolontaire,
	domain.StatutDouble,
}

var digits = "0123456789"

// GenerateRandomEmail dérive une adresse à partir du nom complet, avec un
// suffixe numérique pour limiter les collisions.
func GenerateRandomEmail(prenom string, nom string, emailDomain string) string {
	local := strings.ToLower(prenom) + "." + strings.ToLower(nom)
	n := rand.Intn(3) + 1
	for i := 0; i < n; i++ {
		local += string(digits[rand.Intn(len(digits))])
	}
	return local + "@" + emailDomain
}

func GenerateRandomPersonnel(password string, emailDomain string) (*domain.Personnel, error) {
	nom := commonNoms[rand.Intn(len(commonNoms))]
	prenom := commonPrenoms[rand.Intn(len(commonPrenoms))]

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &domain.Personnel{
		Nom:          nom,
		Prenom:       prenom,
		Grade:        grades[rand.Intn(len(grades))],
		Email:        GenerateRandomEmail(prenom, nom, emailDomain),
		PasswordHash: string(passwordHash),
		Statut:       statuts[rand.Intn(len(statuts))],
		Roles:        []domain.Role{domain.RoleAgent},
	}, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	password := make([]rune, length)
	for i := range password {
		password[i] = letters[rand.Intn(len(letters))]
	}
	return string(password)
}
