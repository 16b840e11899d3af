package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"collection-route-service/internal/adapters/cache"
	"collection-route-service/internal/adapters/repositories"
	"collection-route-service/internal/adapters/solver"
	"collection-route-service/internal/api"
	"collection-route-service/internal/config"
	"collection-route-service/internal/platform/db"
	"collection-route-service/internal/ports"
)

// main is the application composition root.
// It wires concrete adapters (SQLite/Postgres storage, Redis cache, the
// solving backend) behind ports and starts the HTTP server.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found (using environment variables)")
	}

	dbPath := config.Get("DB_PATH", "data/app.db")
	seedPath := config.Get("SEED_PATH", "data/seeds/scenario.json")
	port := config.Get("PORT", "8080")

	repo, closeDB, err := openRepository(dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("storage init failed")
	}
	defer closeDB()

	if err := seedIfEmpty(repo, seedPath); err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}

	slv, err := buildSolver()
	if err != nil {
		log.Fatal().Err(err).Msg("solver init failed")
	}

	var resultCache ports.ResultCache
	if addr := os.Getenv("REDIS_ADDRESS"); strings.TrimSpace(addr) != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		resultCache = cache.NewRedisResultCache(client, 24*time.Hour)
		log.Info().Str("addr", addr).Msg("result cache enabled")
	}

	router := api.NewRouter(repo, slv, resultCache)

	// The write timeout leaves room for a full solve on a cold cache.
	log.Info().Str("addr", ":"+port).Msg("server listening")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal().Err(srv.ListenAndServe()).Msg("server stopped")
}

// seedIfEmpty loads the demo scenario on first start. An already populated
// store is left alone so operator edits survive restarts.
func seedIfEmpty(repo ports.ScenarioRepository, seedPath string) error {
	ctx := context.Background()

	locations, _, err := repo.LoadScenario(ctx)
	if err != nil {
		return fmt.Errorf("seed check: %w", err)
	}
	if len(locations) > 0 {
		return nil
	}
	if _, err := os.Stat(seedPath); err != nil {
		log.Info().Str("path", seedPath).Msg("no seed file, starting with empty scenario")
		return nil
	}

	return repositories.SeedFromJSON(ctx, repo, seedPath)
}

// openRepository picks Postgres when DATABASE_URL is set, SQLite otherwise,
// and initializes the schema.
func openRepository(dbPath string) (ports.ScenarioRepository, func(), error) {
	if databaseURL := os.Getenv("DATABASE_URL"); strings.TrimSpace(databaseURL) != "" {
		pg, err := db.Open(databaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := repositories.InitPostgresSchema(pg); err != nil {
			pg.Close()
			return nil, nil, err
		}
		return repositories.NewPostgresScenarioRepository(pg), func() { pg.Close() }, nil
	}

	sqliteDB, err := openSqlite(dbPath)
	if err != nil {
		return nil, nil, err
	}
	if err := repositories.InitSchema(sqliteDB); err != nil {
		sqliteDB.Close()
		return nil, nil, err
	}
	return repositories.NewSqliteScenarioRepository(sqliteDB), func() { sqliteDB.Close() }, nil
}

// buildSolver wires the remote MILP service when configured, otherwise the
// in-process branch-and-bound backend.
func buildSolver() (ports.Solver, error) {
	cfg := config.DefaultSolverConfig()
	if path := os.Getenv("SOLVER_CONFIG"); strings.TrimSpace(path) != "" {
		loaded, err := config.LoadSolverConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cfg.RemoteURL != "" {
		log.Info().Str("url", cfg.RemoteURL).Msg("using remote solver")
		return solver.NewRemote(cfg.RemoteURL, cfg.RemoteAPIKey)
	}
	return solver.NewBranchBound(cfg.TimeLimit), nil
}

func openSqlite(dbPath string) (*sql.DB, error) {
	sqliteDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	if err := sqliteDB.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return sqliteDB, nil
}
