package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

type AuthClaims struct {
	Roles    []string `json:"roles"`
	EquipeID *int64   `json:"equipeId"`
	jwt.RegisteredClaims
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	personnel, err := h.repository.GetPersonnelByEmail(req.Email)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "adresse inconnue ou mot de passe erroné")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(personnel.PasswordHash), []byte(req.Password)); err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			h.errorResponse(w, r, "adresse inconnue ou mot de passe erroné")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if !personnel.IsActive {
		h.errorResponse(w, r, "compte désactivé")
		return
	}

	expiration := time.Now().Add(time.Duration(h.config.JWT.Expiration) * time.Second)

	roles := make([]string, 0, len(personnel.Roles))
	for _, role := range personnel.Roles {
		roles = append(roles, string(role))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Roles:    roles,
		EquipeID: personnel.EquipeID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Subject:   strconv.FormatInt(personnel.ID, 10),
		},
	})
	ss, err := token.SignedString([]byte(h.config.JWT.Secret))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "connexion réussie", map[string]any{
		"token":     ss,
		"personnel": personnel,
	})
}

// Logout n'a rien à révoquer côté serveur : le jeton est porteur. La route
// existe pour que le client ait un point d'appui symétrique de /login.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, r, "déconnexion réussie", nil)
}

func (h *Handler) RequireResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	personnel, err := h.repository.GetPersonnelByEmail(req.Email)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// Ne pas révéler si l'adresse existe : même réponse que le succès
			h.successResponse(w, r, "le code de réinitialisation a été envoyé par courriel", nil)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	otp := utils.GenerateRandomOTP()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Minute)
	defer cancel()

	if err := h.redisClient.Set(ctx, fmt.Sprintf("otp_%s_reset_password", personnel.Email), otp, time.Duration(h.config.OTP.Expiration)*time.Second).Err(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	mailMessage := domain.MailMessage{
		Type: "reset_password",
		To:   personnel.Email,
		Data: domain.ResetPasswordMailData{
			FullName:   fmt.Sprintf("%s %s", personnel.Prenom, personnel.Nom),
			OTP:        otp,
			Expiration: h.config.OTP.Expiration / 60, // affiché en minutes dans le courriel
		},
	}

	if err := h.publishMail(mailMessage); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "le code de réinitialisation a été envoyé par courriel", nil)
}

func (h *Handler) ConfirmResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		OTP      string `json:"otp" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationExpiration)*time.Minute)
	defer cancel()

	otp, err := h.redisClient.Get(ctx, fmt.Sprintf("otp_%s_reset_password", req.Email)).Result()
	if err != nil {
		h.errorResponse(w, r, "code de vérification erroné")
		return
	}

	if otp != req.OTP {
		h.errorResponse(w, r, "code de vérification erroné")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	personnel, err := h.repository.GetPersonnelByEmail(req.Email)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	personnel.PasswordHash = string(hashedPassword)

	if err := h.repository.UpdatePersonnel(personnel); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "veuillez réessayer")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.redisClient.Del(ctx, fmt.Sprintf("otp_%s_reset_password", req.Email)).Err(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "mot de passe réinitialisé", nil)
}
