package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/sdis50-dev/feuille-de-garde/backend/internal/config"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/repository"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/seed"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var annee int
	var mois int

	flag.IntVar(&op, "op", 0, "opération à exécuter (1: insérer des sapeurs aléatoires, 2: insérer le référentiel, 3: insérer les jours fériés, 4: générer les créneaux d'un mois)")
	flag.IntVar(&n, "n", 5, "nombre d'enregistrements à insérer")
	flag.IntVar(&annee, "annee", time.Now().Year(), "année cible pour les jours fériés et les créneaux")
	flag.IntVar(&mois, "mois", int(time.Now().Month()), "mois cible pour la génération des créneaux")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Lecture de la configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("impossible de lire la configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Création du pool de connexions
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("impossible de créer le pool de connexions", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open ne fait que créer le pool, il faut un ping explicite pour
	// vérifier que la base répond
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("impossible de joindre la base de données", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("aucune opération indiquée")
	case 1:
		if n <= 0 {
			slog.Error("nombre de sapeurs invalide")
			return
		}

		// Les sapeurs générés sont répartis aléatoirement sur les équipes
		// existantes, il faut donc insérer le référentiel au préalable.
		equipes, err := repo.GetAllEquipes()
		if err != nil {
			slog.Error("impossible de lire les équipes", slog.String("error", err.Error()))
			return
		}
		if len(equipes) == 0 {
			slog.Error("aucune équipe en base, exécuter d'abord l'opération 2")
			return
		}

		cnt := n
		for i := 0; i < n; i++ {
			personnel, err := utils.GenerateRandomPersonnel(cfg.Seed.Personnel.Password, cfg.Email.PersonnelDomain)
			if err != nil {
				slog.Error("impossible de générer un sapeur aléatoire", slog.String("error", err.Error()))
				continue
			}
			personnel.EquipeID = &equipes[rand.Intn(len(equipes))].ID

			if err := repo.CreatePersonnel(personnel); err != nil {
				slog.Error("impossible d'insérer le sapeur", slog.String("error", err.Error()))
				continue
			}

			cnt--
		}

		slog.Info("sapeurs insérés", slog.Int("count", n-cnt))
	case 2:
		seed.SeedReferentiel(repo)
	case 3:
		if annee < 2000 || annee > 2100 {
			slog.Error("année invalide")
			return
		}
		seed.SeedHolidaysFR(repo, annee)
	case 4:
		if annee < 2000 || annee > 2100 || mois < 1 || mois > 12 {
			slog.Error("année ou mois invalide")
			return
		}
		seed.GenerateMonth(repo, annee, time.Month(mois))
	default:
		slog.Error("opération inconnue", slog.Int("op", op))
	}
}
