package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"collection-route-service/internal/domain"
	"collection-route-service/internal/ports"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createLocationsQuery := `
	CREATE TABLE IF NOT EXISTS locations (
		id TEXT PRIMARY KEY,
		role TEXT NOT NULL,
		included INTEGER NOT NULL,
		direct_cost REAL NOT NULL,
		fixed TEXT NOT NULL
	);
	`

	createDriveTimesQuery := `
	CREATE TABLE IF NOT EXISTS drive_times (
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		minutes REAL NOT NULL,
		miles REAL,
		PRIMARY KEY (origin, destination)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_drive_times_destination_origin
	ON drive_times(destination, origin);
	`

	statements := []string{
		createLocationsQuery,
		createDriveTimesQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type locationSeed struct {
	ID         string  `json:"id"`
	Role       string  `json:"role"`
	Included   bool    `json:"included"`
	DirectCost float64 `json:"direct_cost"`
	Fixed      string  `json:"fixed"`
}

type edgeSeed struct {
	From    string   `json:"from"`
	To      string   `json:"to"`
	Minutes float64  `json:"minutes"`
	Miles   *float64 `json:"miles"`
}

type scenarioSeed struct {
	Locations []locationSeed `json:"locations"`
	Edges     []edgeSeed     `json:"edges"`
}

// Populate the scenario tables from a JSON file.
// Edges are mirrored: a pair whose reverse direction is absent gets the
// same time and distance both ways, matching undirected source data.
func SeedFromJSON(ctx context.Context, repo ports.ScenarioRepository, jsonPath string) error {
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed scenario: read %q: %w", jsonPath, err)
	}

	var seed scenarioSeed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("seed scenario: parse json: %w", err)
	}

	locations := make([]domain.Location, 0, len(seed.Locations))
	for i, item := range seed.Locations {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			return fmt.Errorf("seed scenario: location at index %d: id cannot be empty", i+1)
		}
		role, err := domain.ParseRole(item.Role)
		if err != nil {
			return fmt.Errorf("seed scenario: location %q: %w", id, err)
		}
		fixed, err := domain.ParseFixedDecision(item.Fixed)
		if err != nil {
			return fmt.Errorf("seed scenario: location %q: %w", id, err)
		}
		locations = append(locations, domain.Location{
			ID:         id,
			Role:       role,
			Included:   item.Included,
			DirectCost: item.DirectCost,
			Fixed:      fixed,
		})
	}

	edges := make([]domain.Edge, 0, 2*len(seed.Edges))
	have := make(map[string]struct{}, 2*len(seed.Edges))
	for _, e := range seed.Edges {
		edges = append(edges, domain.Edge{From: e.From, To: e.To, Minutes: e.Minutes, Miles: e.Miles})
		have[e.From+"|"+e.To] = struct{}{}
	}
	for _, e := range seed.Edges {
		if _, ok := have[e.To+"|"+e.From]; ok {
			continue
		}
		have[e.To+"|"+e.From] = struct{}{}
		edges = append(edges, domain.Edge{From: e.To, To: e.From, Minutes: e.Minutes, Miles: e.Miles})
	}

	if err := repo.ReplaceScenario(ctx, locations, edges); err != nil {
		return fmt.Errorf("seed scenario: %w", err)
	}

	return nil
}
