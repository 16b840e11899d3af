package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"collection-route-service/internal/domain"
)

// Postgres-backed implementation of the ScenarioRepository port.
// Schema matches the SQLite variant; only placeholder syntax differs.
type PostgresScenarioRepository struct{ DB *sql.DB }

func NewPostgresScenarioRepository(db *sql.DB) *PostgresScenarioRepository {
	return &PostgresScenarioRepository{DB: db}
}

// Initialize the Postgres schema.
func InitPostgresSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init postgres schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init postgres schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`
		CREATE TABLE IF NOT EXISTS locations (
			id TEXT PRIMARY KEY,
			role TEXT NOT NULL,
			included BOOLEAN NOT NULL,
			direct_cost DOUBLE PRECISION NOT NULL,
			fixed TEXT NOT NULL
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS drive_times (
			origin TEXT NOT NULL,
			destination TEXT NOT NULL,
			minutes DOUBLE PRECISION NOT NULL,
			miles DOUBLE PRECISION,
			PRIMARY KEY (origin, destination)
		);
		`,
		`
		CREATE INDEX IF NOT EXISTS idx_drive_times_destination_origin
		ON drive_times(destination, origin);
		`,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init postgres schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init postgres schema: commit tx: %w", err)
	}

	return nil
}

// Return all locations and edges of the stored scenario.
func (p *PostgresScenarioRepository) LoadScenario(ctx context.Context) ([]domain.Location, []domain.Edge, error) {
	if p.DB == nil {
		return nil, nil, errors.New("postgres scenario repository: DB is nil")
	}

	rows, err := p.DB.QueryContext(ctx, `
	SELECT id, role, included, direct_cost, fixed
	FROM locations
	ORDER BY id;
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("load scenario: query locations table: %w", err)
	}
	defer rows.Close()

	locations := make([]domain.Location, 0, 64)
	for rows.Next() {
		var (
			id, roleStr, fixedStr string
			included              bool
			directCost            float64
		)
		if err := rows.Scan(&id, &roleStr, &included, &directCost, &fixedStr); err != nil {
			return nil, nil, fmt.Errorf("load scenario: scan location row: %w", err)
		}

		role, err := domain.ParseRole(roleStr)
		if err != nil {
			return nil, nil, fmt.Errorf("load scenario: location %q: %w", id, err)
		}
		fixed, err := domain.ParseFixedDecision(fixedStr)
		if err != nil {
			return nil, nil, fmt.Errorf("load scenario: location %q: %w", id, err)
		}

		locations = append(locations, domain.Location{
			ID:         id,
			Role:       role,
			Included:   included,
			DirectCost: directCost,
			Fixed:      fixed,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("load scenario: location row iteration: %w", err)
	}

	erows, err := p.DB.QueryContext(ctx, `
	SELECT origin, destination, minutes, miles
	FROM drive_times
	ORDER BY origin, destination;
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("load scenario: query drive_times table: %w", err)
	}
	defer erows.Close()

	edges := make([]domain.Edge, 0, 256)
	for erows.Next() {
		var (
			from, to string
			minutes  float64
			miles    sql.NullFloat64
		)
		if err := erows.Scan(&from, &to, &minutes, &miles); err != nil {
			return nil, nil, fmt.Errorf("load scenario: scan drive time row: %w", err)
		}

		e := domain.Edge{From: from, To: to, Minutes: minutes}
		if miles.Valid {
			v := miles.Float64
			e.Miles = &v
		}
		edges = append(edges, e)
	}
	if err := erows.Err(); err != nil {
		return nil, nil, fmt.Errorf("load scenario: drive time row iteration: %w", err)
	}

	return locations, edges, nil
}

// Replace the stored scenario in a single transaction.
func (p *PostgresScenarioRepository) ReplaceScenario(ctx context.Context, locations []domain.Location, edges []domain.Edge) error {
	if p.DB == nil {
		return errors.New("postgres scenario repository: DB is nil")
	}

	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace scenario: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"drive_times", "locations"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+";"); err != nil {
			return fmt.Errorf("replace scenario: clear %s: %w", table, err)
		}
	}

	locStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO locations (id, role, included, direct_cost, fixed)
	VALUES ($1, $2, $3, $4, $5);
	`)
	if err != nil {
		return fmt.Errorf("replace scenario: prepare location insert: %w", err)
	}
	defer locStmt.Close()

	for _, loc := range locations {
		if _, err := locStmt.ExecContext(ctx, loc.ID, loc.Role.String(), loc.Included, loc.DirectCost, loc.Fixed.String()); err != nil {
			return fmt.Errorf("replace scenario: insert location %q: %w", loc.ID, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO drive_times (origin, destination, minutes, miles)
	VALUES ($1, $2, $3, $4);
	`)
	if err != nil {
		return fmt.Errorf("replace scenario: prepare drive time insert: %w", err)
	}
	defer edgeStmt.Close()

	for _, e := range edges {
		var miles any
		if e.Miles != nil {
			miles = *e.Miles
		}
		if _, err := edgeStmt.ExecContext(ctx, e.From, e.To, e.Minutes, miles); err != nil {
			return fmt.Errorf("replace scenario: insert drive time %s->%s: %w", e.From, e.To, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace scenario: commit tx: %w", err)
	}

	return nil
}
