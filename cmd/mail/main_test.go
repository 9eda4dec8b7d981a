package main

import (
	"bytes"
	"encoding/json"
	"html/template"
	"testing"

	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTrip fait suivre au message le même chemin que la file : publication
// JSON côté serveur, relecture brute côté worker.
func roundTrip(t *testing.T, msg domain.MailMessage) queuedMail {
	t.Helper()

	body, err := json.Marshal(msg)
	require.NoError(t, err)

	var queued queuedMail
	require.NoError(t, json.Unmarshal(body, &queued))
	return queued
}

func render(t *testing.T, templatePath string, data any) string {
	t.Helper()

	tmpl, err := template.ParseFiles(templatePath)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.Execute(&buf, data))
	return buf.String()
}

func TestResetPasswordMailRendersOTP(t *testing.T) {
	queued := roundTrip(t, domain.MailMessage{
		Type: "reset_password",
		To:   "jean.martin@sdis50.fr",
		Data: domain.ResetPasswordMailData{
			FullName:   "Jean Martin",
			OTP:        "123456",
			Expiration: 10,
		},
	})

	data, err := decodeMailData(queued.Type, queued.Data)
	require.NoError(t, err)

	body := render(t, "../../templates/reset_password_otp_email.html", data)
	assert.Contains(t, body, "Jean Martin")
	assert.Contains(t, body, "123456")
	assert.Contains(t, body, "valable 10 minutes")
}

func TestNewAccountMailRendersCredentials(t *testing.T) {
	queued := roundTrip(t, domain.MailMessage{
		Type: "new_account",
		To:   "claude.lefevre@sdis50.fr",
		Data: domain.NewAccountMailData{
			FullName: "Claude Lefèvre",
			Email:    "claude.lefevre@sdis50.fr",
			Password: "S3cret!motdepasse",
		},
	})

	data, err := decodeMailData(queued.Type, queued.Data)
	require.NoError(t, err)

	body := render(t, "../../templates/new_account_email.html", data)
	assert.Contains(t, body, "Claude Lefèvre")
	assert.Contains(t, body, "claude.lefevre@sdis50.fr")
	assert.Contains(t, body, "S3cret!motdepasse")
}

func TestMonthValidatedMailRendersSummary(t *testing.T) {
	queued := roundTrip(t, domain.MailMessage{
		Type: "month_validated",
		To:   "operations@sdis50.fr",
		Data: domain.MonthValidatedMailData{
			MoisLabel:  "mars 2025",
			Equipe:     "Équipe A",
			Validateur: "Paul Durand",
		},
	})

	data, err := decodeMailData(queued.Type, queued.Data)
	require.NoError(t, err)

	body := render(t, "../../templates/month_validated_email.html", data)
	assert.Contains(t, body, "mars 2025")
	assert.Contains(t, body, "Équipe A")
	assert.Contains(t, body, "Paul Durand")
}

func TestPersonalRosterMailRendersGardes(t *testing.T) {
	queued := roundTrip(t, domain.MailMessage{
		Type: "personal_roster",
		To:   "jean.martin@sdis50.fr",
		Data: domain.PersonalRosterMailData{
			FullName:   "Jean Martin",
			MoisLabel:  "mars 2025",
			Equipe:     "Équipe A",
			Validateur: "Paul Durand",
			Gardes: []domain.PersonalGardeRow{
				{Date: "01/03/2025", Slot: "NUIT", Piquet: "Conducteur"},
				{Date: "08/03/2025", Slot: "JOUR", Piquet: "Chef d'agrès"},
			},
		},
	})

	data, err := decodeMailData(queued.Type, queued.Data)
	require.NoError(t, err)

	body := render(t, "../../templates/personal_roster_email.html", data)
	assert.Contains(t, body, "01/03/2025")
	assert.Contains(t, body, "Conducteur")
	assert.Contains(t, body, "Chef d&#39;agrès")
	assert.NotContains(t, body, "aucune garde sur ce mois")
}

func TestPersonalRosterMailEmptyMonth(t *testing.T) {
	queued := roundTrip(t, domain.MailMessage{
		Type: "personal_roster",
		To:   "jean.martin@sdis50.fr",
		Data: domain.PersonalRosterMailData{
			FullName:  "Jean Martin",
			MoisLabel: "mars 2025",
			Equipe:    "Équipe A",
		},
	})

	data, err := decodeMailData(queued.Type, queued.Data)
	require.NoError(t, err)

	body := render(t, "../../templates/personal_roster_email.html", data)
	assert.Contains(t, body, "aucune garde sur ce mois")
}

func TestMonthlyReminderMailRendersGardes(t *testing.T) {
	queued := roundTrip(t, domain.MailMessage{
		Type: "monthly_reminder",
		To:   "jean.martin@sdis50.fr",
		Data: domain.MonthlyReminderMailData{
			FullName:  "Jean Martin",
			MoisLabel: "avril 2025",
			Gardes: []domain.PersonalGardeRow{
				{Date: "05/04/2025", Slot: "NUIT", Piquet: "Équipier"},
			},
		},
	})

	data, err := decodeMailData(queued.Type, queued.Data)
	require.NoError(t, err)

	body := render(t, "../../templates/monthly_reminder_email.html", data)
	assert.Contains(t, body, "Jean Martin")
	assert.Contains(t, body, "avril 2025")
	assert.Contains(t, body, "05/04/2025")
	assert.Contains(t, body, "Équipier")
}

func TestDecodeMailDataUnknownType(t *testing.T) {
	_, err := decodeMailData("newsletter", json.RawMessage(`{}`))
	assert.Error(t, err)
}
