package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"collection-route-service/internal/domain"
)

// SQLite-backed implementation of the ScenarioRepository port.
type SqliteScenarioRepository struct{ DB *sql.DB }

func NewSqliteScenarioRepository(db *sql.DB) *SqliteScenarioRepository {
	return &SqliteScenarioRepository{DB: db}
}

// Return all locations and edges of the stored scenario.
func (s *SqliteScenarioRepository) LoadScenario(ctx context.Context) ([]domain.Location, []domain.Edge, error) {
	if s.DB == nil {
		return nil, nil, errors.New("sqlite scenario repository: DB is nil")
	}

	locQuery := `
	SELECT
		id,
		role,
		included,
		direct_cost,
		fixed
	FROM locations
	ORDER BY id;
	`
	rows, err := s.DB.QueryContext(ctx, locQuery)
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

	edgeQuery := `
	SELECT
		origin,
		destination,
		minutes,
		miles
	FROM drive_times
	ORDER BY origin, destination;
	`
	erows, err := s.DB.QueryContext(ctx, edgeQuery)
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
func (s *SqliteScenarioRepository) ReplaceScenario(ctx context.Context, locations []domain.Location, edges []domain.Edge) error {
	if s.DB == nil {
		return errors.New("sqlite scenario repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
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
	INSERT INTO locations (
		id,
		role,
		included,
		direct_cost,
		fixed
	)
	VALUES (?, ?, ?, ?, ?);
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
	INSERT INTO drive_times (
		origin,
		destination,
		minutes,
		miles
	)
	VALUES (?, ?, ?, ?);
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
