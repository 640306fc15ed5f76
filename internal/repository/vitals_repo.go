package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/patientchart/vitals/internal/database"
	"github.com/patientchart/vitals/internal/models"
)

// VitalsRepository handles database operations for vitals records
type VitalsRepository struct {
	db *sql.DB
}

// NewVitalsRepository creates a new vitals repository
func NewVitalsRepository() *VitalsRepository {
	return &VitalsRepository{db: database.DB}
}

// NewVitalsRepositoryWithDB creates a new vitals repository with a specific database connection
func NewVitalsRepositoryWithDB(db *sql.DB) *VitalsRepository {
	return &VitalsRepository{db: db}
}

const vitalsColumns = `id, patient_id, visit_id, temperature, systolic, diastolic, pulse,
	respiration_rate, oxygen_saturation, notes, recorded_at, updated_at`

// CreateVitals inserts a new vitals record
func (r *VitalsRepository) CreateVitals(ctx context.Context, v *models.Vitals) error {
	query := `
		INSERT INTO vitals (` + vitalsColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		v.ID,
		v.PatientID,
		v.VisitID,
		nullFloat(v.Temperature),
		nullFloat(v.Systolic),
		nullFloat(v.Diastolic),
		nullFloat(v.Pulse),
		nullFloat(v.RespirationRate),
		nullFloat(v.OxygenSaturation),
		v.Notes,
		v.RecordedAt,
		v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create vitals: %w", err)
	}
	return nil
}

// GetVitals retrieves a vitals record by its UUID
func (r *VitalsRepository) GetVitals(ctx context.Context, id string) (*models.Vitals, error) {
	if err := checkID("vitals", id); err != nil {
		return nil, err
	}
	query := `SELECT ` + vitalsColumns + ` FROM vitals WHERE id = $1`

	v, err := scanVitals(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("vitals %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vitals: %w", err)
	}
	return v, nil
}

// UpdateVitals overwrites the measurements and notes of a vitals record
func (r *VitalsRepository) UpdateVitals(ctx context.Context, v *models.Vitals) error {
	if err := checkID("vitals", v.ID); err != nil {
		return err
	}
	query := `
		UPDATE vitals
		SET temperature = $1, systolic = $2, diastolic = $3, pulse = $4,
		    respiration_rate = $5, oxygen_saturation = $6, notes = $7, updated_at = $8
		WHERE id = $9
	`

	result, err := r.db.ExecContext(ctx, query,
		nullFloat(v.Temperature),
		nullFloat(v.Systolic),
		nullFloat(v.Diastolic),
		nullFloat(v.Pulse),
		nullFloat(v.RespirationRate),
		nullFloat(v.OxygenSaturation),
		v.Notes,
		v.UpdatedAt,
		v.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update vitals: %w", err)
	}
	return requireAffected(result, "vitals", v.ID)
}

// DeleteVitals removes a vitals record
func (r *VitalsRepository) DeleteVitals(ctx context.Context, id string) error {
	if err := checkID("vitals", id); err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM vitals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete vitals: %w", err)
	}
	return requireAffected(result, "vitals", id)
}

// ListVitalsByPatient returns a patient's vitals, newest first
func (r *VitalsRepository) ListVitalsByPatient(ctx context.Context, patientID string) ([]*models.Vitals, error) {
	// A malformed patient id has no records.
	if _, err := uuid.Parse(patientID); err != nil {
		return nil, nil
	}
	query := `
		SELECT ` + vitalsColumns + `
		FROM vitals
		WHERE patient_id = $1
		ORDER BY recorded_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vitals: %w", err)
	}
	defer rows.Close()

	var result []*models.Vitals
	for rows.Next() {
		v, err := scanVitals(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vitals: %w", err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list vitals: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVitals(row scanner) (*models.Vitals, error) {
	v := &models.Vitals{}
	var temperature, systolic, diastolic, pulse, respirationRate, oxygenSaturation sql.NullFloat64
	err := row.Scan(
		&v.ID,
		&v.PatientID,
		&v.VisitID,
		&temperature,
		&systolic,
		&diastolic,
		&pulse,
		&respirationRate,
		&oxygenSaturation,
		&v.Notes,
		&v.RecordedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	v.Temperature = floatPtr(temperature)
	v.Systolic = floatPtr(systolic)
	v.Diastolic = floatPtr(diastolic)
	v.Pulse = floatPtr(pulse)
	v.RespirationRate = floatPtr(respirationRate)
	v.OxygenSaturation = floatPtr(oxygenSaturation)
	return v, nil
}
