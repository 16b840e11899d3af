package main

import (
	"context"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"collection-route-service/internal/adapters/ingest"
	"collection-route-service/internal/adapters/repositories"
	"collection-route-service/internal/config"
	"collection-route-service/internal/platform/db"
)

// dbtool prepares the Postgres scenario store: it creates the schema and
// loads a scenario from either the planner's Excel workbook (SEED_XLSX) or
// a JSON seed file (SEED_PATH).
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	pg, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open database failed")
	}
	defer pg.Close()

	log.Info().Msg("initializing database schema")
	if err := repositories.InitPostgresSchema(pg); err != nil {
		log.Fatal().Err(err).Msg("schema initialization failed")
	}
	log.Info().Msg("schema ready")

	repo := repositories.NewPostgresScenarioRepository(pg)
	ctx := context.Background()

	if xlsxPath := os.Getenv("SEED_XLSX"); strings.TrimSpace(xlsxPath) != "" {
		log.Info().Str("path", xlsxPath).Msg("importing workbook")
		locations, edges, err := ingest.ReadWorkbook(xlsxPath)
		if err != nil {
			log.Fatal().Err(err).Msg("workbook import failed")
		}
		if err := repo.ReplaceScenario(ctx, locations, edges); err != nil {
			log.Fatal().Err(err).Msg("workbook import failed")
		}
		log.Info().Int("locations", len(locations)).Int("edges", len(edges)).Msg("workbook imported")
		return
	}

	seedPath := config.Get("SEED_PATH", "data/seeds/scenario.json")
	log.Info().Str("path", seedPath).Msg("seeding database")
	if err := repositories.SeedFromJSON(ctx, repo, seedPath); err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}
	log.Info().Msg("seeding complete")
}
