package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open a pooled Postgres connection through the pgx stdlib driver.
// Pool sizing is modest; the service runs few concurrent solves and the
// scenario tables are small.
func Open(databaseURL string) (*sql.DB, error) {
	pg, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("openDB: open postgres database: %w", err)
	}

	pg.SetMaxOpenConns(10)
	pg.SetMaxIdleConns(10)
	pg.SetConnMaxLifetime(30 * time.Minute)

	if err := pg.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify postgres connection: %w", err)
	}

	return pg, nil
}
