package postgres

import (
	"database/sql"
	"fmt"

	"breadthwatch/config"

	_ "github.com/lib/pq"
)

// bootstrapDSN targets the maintenance database so the server can be
// reached before the configured database exists.
func bootstrapDSN(cfg config.PostgresConfig, env string) string {
	boot := cfg
	boot.DBName = "postgres"
	return boot.DSN(env)
}

// CreateDatabase connects to the postgres server and creates the
// configured database if it doesn't exist.
func CreateDatabase(cfg config.PostgresConfig, env string) error {
	db, err := sql.Open("postgres", bootstrapDSN(cfg, env))
	if err != nil {
		return fmt.Errorf("connect failed: %w", err)
	}
	defer db.Close()

	// Check if database exists
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1);`
	if err := db.QueryRow(query, cfg.DBName).Scan(&exists); err != nil {
		return fmt.Errorf("check db exists failed: %w", err)
	}

	if exists {
		return nil // DB already exists
	}

	// Create the database
	_, err = db.Exec(fmt.Sprintf("CREATE DATABASE %s", cfg.DBName))
	if err != nil {
		return fmt.Errorf("create db failed: %w", err)
	}

	return nil
}
