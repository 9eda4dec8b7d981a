package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/authz"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
)

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)
		slog.Info("requête traitée", "status", rw.StatusCode, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "duration", duration)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				stackTrace := string(debug.Stack())
				fmt.Print(stackTrace) // slog rendrait la pile illisible
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Le jeton est porté dans l'en-tête Authorization
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			h.errorResponse(w, r, "utilisateur non connecté")
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			h.errorResponse(w, r, "jeton invalide")
			return
		}

		claims := &AuthClaims{}
		_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(h.config.JWT.Secret), nil
		})
		if err != nil {
			h.errorResponse(w, r, "jeton invalide")
			return
		}

		sub, err := strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "jeton invalide")
			return
		}

		roles := make([]domain.Role, 0, len(claims.Roles))
		for _, role := range claims.Roles {
			roles = append(roles, domain.Role(role))
		}

		session := &authz.Session{
			PersonnelID: sub,
			EquipeID:    claims.EquipeID,
			Roles:       roles,
		}

		ctx := context.WithValue(r.Context(), SessionCtxKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) session(r *http.Request) *authz.Session {
	return r.Context().Value(SessionCtxKey).(*authz.Session)
}

func (h *Handler) RequiredRole(roles ...domain.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !h.session(r).HasAnyRole(roles...) {
				h.errorResponse(w, r, "droits insuffisants")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) myInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		myInfo, err := h.repository.GetPersonnelByID(h.session(r).PersonnelID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "fiche personnelle introuvable")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), MyInfoCtx, myInfo)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) personnelInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		personnelIDParam := chi.URLParam(r, "id")
		personnelID, err := strconv.ParseInt(personnelIDParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "identifiant de personnel invalide")
			return
		}

		personnel, err := h.repository.GetPersonnelByID(personnelID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "personnel introuvable")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), PersonnelInfoCtx, personnel)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) preventOperateInitialAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		personnel := r.Context().Value(PersonnelInfoCtx).(*domain.Personnel)
		if personnel.Email == h.config.InitialAdmin.Email {
			h.errorResponse(w, r, "opération interdite sur l'administrateur initial")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) equipeInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		equipeIDParam := chi.URLParam(r, "id")
		equipeID, err := strconv.ParseInt(equipeIDParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "identifiant d'équipe invalide")
			return
		}

		equipe, err := h.repository.GetEquipeByID(equipeID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "équipe introuvable")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), EquipeCtx, equipe)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) piquetInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		piquetIDParam := chi.URLParam(r, "id")
		piquetID, err := strconv.ParseInt(piquetIDParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "identifiant de piquet invalide")
			return
		}

		piquet, err := h.repository.GetPiquetByID(piquetID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "piquet introuvable")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), PiquetCtx, piquet)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) gardeInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gardeIDParam := chi.URLParam(r, "id")
		gardeID, err := strconv.ParseInt(gardeIDParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "identifiant de garde invalide")
			return
		}

		garde, err := h.repository.GetGardeByID(gardeID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "garde introuvable")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), GardeCtx, garde)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) affectationInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		affectationIDParam := chi.URLParam(r, "id")
		affectationID, err := strconv.ParseInt(affectationIDParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "identifiant d'affectation invalide")
			return
		}

		affectation, err := h.repository.GetAffectationByID(affectationID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "affectation introuvable")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), AffectationCtx, affectation)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) indisponibiliteInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		indispoIDParam := chi.URLParam(r, "id")
		indispoID, err := strconv.ParseInt(indispoIDParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "identifiant d'indisponibilité invalide")
			return
		}

		indispo, err := h.repository.GetIndisponibiliteByID(indispoID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "indisponibilité introuvable")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), IndisponibiliteCtx, indispo)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
