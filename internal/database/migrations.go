package database

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Schema creates the chart tables. Statements are idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS patients (
	id UUID PRIMARY KEY,
	identifier VARCHAR(64) UNIQUE NOT NULL,
	given_name VARCHAR(255) NOT NULL,
	family_name VARCHAR(255) NOT NULL,
	gender VARCHAR(1) NOT NULL,
	birth_date DATE NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS visits (
	id UUID PRIMARY KEY,
	patient_id UUID NOT NULL REFERENCES patients(id),
	visit_type VARCHAR(64) NOT NULL,
	started_at TIMESTAMPTZ NOT NULL,
	stopped_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_visits_patient ON visits(patient_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_visits_one_active ON visits(patient_id) WHERE stopped_at IS NULL;

CREATE TABLE IF NOT EXISTS vitals (
	id UUID PRIMARY KEY,
	patient_id UUID NOT NULL REFERENCES patients(id) ON DELETE CASCADE,
	visit_id UUID NOT NULL REFERENCES visits(id) ON DELETE CASCADE,
	temperature DOUBLE PRECISION,
	systolic DOUBLE PRECISION,
	diastolic DOUBLE PRECISION,
	pulse DOUBLE PRECISION,
	respiration_rate DOUBLE PRECISION,
	oxygen_saturation DOUBLE PRECISION,
	notes TEXT NOT NULL DEFAULT '',
	recorded_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_vitals_patient ON vitals(patient_id, recorded_at DESC);
`

// RunMigrations creates the necessary database tables
func RunMigrations() error {
	if DB == nil {
		return fmt.Errorf("database connection not initialized")
	}
	if err := Migrate(DB); err != nil {
		return err
	}

	log.Info().Msg("Database migrations completed successfully")
	return nil
}

// Migrate applies the schema to db
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create chart tables: %w", err)
	}
	return nil
}
