package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/patientchart/vitals/internal/database"
	"github.com/patientchart/vitals/internal/models"
)

// PatientRepository handles database operations for patients
type PatientRepository struct {
	db *sql.DB
}

// NewPatientRepository creates a new patient repository
func NewPatientRepository() *PatientRepository {
	return &PatientRepository{
		db: database.DB,
	}
}

// NewPatientRepositoryWithDB creates a new patient repository with a specific database connection
func NewPatientRepositoryWithDB(db *sql.DB) *PatientRepository {
	return &PatientRepository{
		db: db,
	}
}

// CreatePatient inserts a new patient
func (r *PatientRepository) CreatePatient(ctx context.Context, patient *models.Patient) error {
	query := `
		INSERT INTO patients (id, identifier, given_name, family_name, gender, birth_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	now := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.Identifier,
		patient.GivenName,
		patient.FamilyName,
		patient.Gender,
		patient.BirthDate,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}

	patient.CreatedAt = now
	patient.UpdatedAt = now
	return nil
}

// GetPatient retrieves a patient by its UUID
func (r *PatientRepository) GetPatient(ctx context.Context, id string) (*models.Patient, error) {
	if err := checkID("patient", id); err != nil {
		return nil, err
	}

	query := `
		SELECT id, identifier, given_name, family_name, gender, birth_date, created_at, updated_at
		FROM patients
		WHERE id = $1
	`

	patient := &models.Patient{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&patient.ID,
		&patient.Identifier,
		&patient.GivenName,
		&patient.FamilyName,
		&patient.Gender,
		&patient.BirthDate,
		&patient.CreatedAt,
		&patient.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("patient %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	return patient, nil
}

// DeletePatient purges a patient together with its visits and vitals
func (r *PatientRepository) DeletePatient(ctx context.Context, id string) error {
	if err := checkID("patient", id); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM vitals WHERE patient_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete patient vitals: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM visits WHERE patient_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete patient visits: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	if err := requireAffected(result, "patient", id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit patient delete: %w", err)
	}
	return nil
}

// requireAffected maps a zero-row result to ErrNotFound
func requireAffected(result sql.Result, kind, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
