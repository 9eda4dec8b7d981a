package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	fr_translations "github.com/go-playground/validator/v10/translations/fr"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/config"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/repository"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	fr := fr.New()
	uni := ut.New(fr, fr)
	trans, _ := uni.GetTranslator("fr")
	if err := fr_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// Authentification
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// Tout le reste exige un porteur authentifié
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Get("/gardes", h.GetMyUpcomingGardes)
		})

		r.Route("/personnels", func(r chi.Router) {
			r.With(h.RequiredRole(domain.RoleAdmin, domain.RoleOfficier)).Post("/", h.CreatePersonnel)
			r.Get("/", h.GetAllPersonnels) // la feuille de garde affiche tout le centre, pas de filtrage par rôle
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.personnelInfo)
				r.Get("/", h.GetPersonnelInfo)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole(domain.RoleAdmin, domain.RoleOfficier)).Patch("/", h.UpdatePersonnel)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole(domain.RoleAdmin)).Delete("/", h.DeletePersonnel)
				r.Route("/competences", func(r chi.Router) {
					r.Use(h.RequiredRole(domain.RoleAdmin, domain.RoleOfficier))
					r.Post("/", h.AddPersonnelCompetence)
					r.Delete("/{competenceID}", h.RemovePersonnelCompetence)
				})
			})
		})

		r.Route("/equipes", func(r chi.Router) {
			r.Get("/", h.GetAllEquipes)
			r.With(h.RequiredRole(domain.RoleAdmin)).Post("/", h.CreateEquipe)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.equipeInfo)
				r.Get("/", h.GetEquipeInfo)
				r.With(h.RequiredRole(domain.RoleAdmin)).Patch("/", h.UpdateEquipe)
				r.With(h.RequiredRole(domain.RoleAdmin)).Delete("/", h.DeleteEquipe)
			})
		})

		r.Route("/piquets", func(r chi.Router) {
			r.Get("/", h.GetAllPiquets)
			r.With(h.RequiredRole(domain.RoleAdmin)).Post("/", h.CreatePiquet)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.piquetInfo)
				r.With(h.RequiredRole(domain.RoleAdmin)).Delete("/", h.DeletePiquet)
				r.Route("/exigences", func(r chi.Router) {
					r.Use(h.RequiredRole(domain.RoleAdmin))
					r.Post("/", h.AddPiquetExigence)
					r.Delete("/{competenceID}", h.RemovePiquetExigence)
				})
			})
		})

		r.Route("/competences", func(r chi.Router) {
			r.Get("/", h.GetAllCompetences)
			r.With(h.RequiredRole(domain.RoleAdmin)).Post("/", h.CreateCompetence)
			r.With(h.RequiredRole(domain.RoleAdmin)).Delete("/{id}", h.DeleteCompetence)
		})

		r.Route("/gardes", func(r chi.Router) {
			r.Get("/", h.GetGardes)
			r.With(h.RequiredRole(domain.RoleAdmin, domain.RoleOfficier, domain.RoleOpe)).Post("/", h.CreateGarde)
			r.With(h.RequiredRole(domain.RoleAdmin, domain.RoleOfficier, domain.RoleOpe)).Post("/generer-mois", h.GenerateMonth)
			r.With(h.RequiredRole(domain.RoleAdmin, domain.RoleOfficier, domain.RoleOpe)).Post("/equipe", h.AssignTeam)
			r.With(h.RequiredRole(domain.RoleChefEquipe, domain.RoleAdjChefEquipe, domain.RoleAdmin, domain.RoleOfficier)).Post("/valider-mois", h.ValiderMois)
			r.With(h.RequiredRole(domain.RoleAdmin, domain.RoleOfficier)).Post("/devalider-mois", h.DevaliderMois)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.gardeInfo)
				r.Get("/", h.GetGardeInfo)
				r.Get("/suggestions", h.GetSuggestions)
				r.With(h.RequiredRole(domain.RoleAdmin, domain.RoleOfficier, domain.RoleOpe)).Delete("/", h.DeleteGarde)
			})
		})

		r.Route("/affectations", func(r chi.Router) {
			r.Post("/", h.CreateAffectation)
			r.With(h.affectationInfo).Delete("/{id}", h.DeleteAffectation)
		})

		r.Route("/indisponibilites", func(r chi.Router) {
			r.Get("/", h.GetIndisponibilites)
			r.Post("/", h.CreateIndisponibilite)
			r.With(h.indisponibiliteInfo).Delete("/{id}", h.DeleteIndisponibilite)
		})
	})
}
