package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/patientchart/vitals/internal/config"
)

// DB is the process-wide chart database, set by Connect
var DB *sql.DB

// Connect establishes the process-wide connection using POSTGRES_* variables
func Connect() error {
	pgConfig, err := config.LoadPostgresConfig(os.Getenv)
	if err != nil {
		return fmt.Errorf("failed to load postgres config: %w", err)
	}

	DB, err = Open(pgConfig)
	return err
}

// Open opens and verifies a pooled connection to PostgreSQL
func Open(pgConfig *config.PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", pgConfig.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Close closes the process-wide connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
