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

// VisitRepository handles database operations for visits
type VisitRepository struct {
	db *sql.DB
}

// NewVisitRepository creates a new visit repository
func NewVisitRepository() *VisitRepository {
	return &VisitRepository{db: database.DB}
}

// NewVisitRepositoryWithDB creates a new visit repository with a specific database connection
func NewVisitRepositoryWithDB(db *sql.DB) *VisitRepository {
	return &VisitRepository{db: db}
}

const visitColumns = `id, patient_id, visit_type, started_at, stopped_at`

// CreateVisit inserts a new visit
func (r *VisitRepository) CreateVisit(ctx context.Context, visit *models.Visit) error {
	query := `
		INSERT INTO visits (id, patient_id, visit_type, started_at, stopped_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		visit.ID,
		visit.PatientID,
		visit.VisitType,
		visit.StartedAt,
		visit.StoppedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("failed to create visit: patient %s: %w", visit.PatientID, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create visit: %w", err)
	}
	return nil
}

// GetVisit retrieves a visit by its UUID
func (r *VisitRepository) GetVisit(ctx context.Context, id string) (*models.Visit, error) {
	if err := checkID("visit", id); err != nil {
		return nil, err
	}
	query := `SELECT ` + visitColumns + ` FROM visits WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), "visit "+id)
}

// GetActiveVisit retrieves the patient's visit that has not been stopped
func (r *VisitRepository) GetActiveVisit(ctx context.Context, patientID string) (*models.Visit, error) {
	if err := checkID("patient", patientID); err != nil {
		return nil, err
	}
	query := `
		SELECT ` + visitColumns + `
		FROM visits
		WHERE patient_id = $1 AND stopped_at IS NULL
		ORDER BY started_at DESC
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, patientID), "active visit for patient "+patientID)
}

// EndVisit sets the stop time of a visit
func (r *VisitRepository) EndVisit(ctx context.Context, id string, stoppedAt time.Time) error {
	if err := checkID("visit", id); err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, `UPDATE visits SET stopped_at = $1 WHERE id = $2`, stoppedAt, id)
	if err != nil {
		return fmt.Errorf("failed to end visit: %w", err)
	}
	return requireAffected(result, "visit", id)
}

func (r *VisitRepository) scanOne(row *sql.Row, what string) (*models.Visit, error) {
	visit := &models.Visit{}
	var stoppedAt sql.NullTime
	err := row.Scan(
		&visit.ID,
		&visit.PatientID,
		&visit.VisitType,
		&visit.StartedAt,
		&stoppedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get visit: %w", err)
	}
	if stoppedAt.Valid {
		visit.StoppedAt = &stoppedAt.Time
	}
	return visit, nil
}
