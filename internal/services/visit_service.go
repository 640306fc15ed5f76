package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/patientchart/vitals/internal/models"
	"github.com/patientchart/vitals/internal/repository"
)

// VisitRepository defines the interface for visit persistence
type VisitRepository interface {
	CreateVisit(ctx context.Context, visit *models.Visit) error
	GetVisit(ctx context.Context, id string) (*models.Visit, error)
	GetActiveVisit(ctx context.Context, patientID string) (*models.Visit, error)
	EndVisit(ctx context.Context, id string, stoppedAt time.Time) error
}

// VisitService handles visit business logic
type VisitService interface {
	StartVisit(ctx context.Context, patientID, visitType string, startedAt time.Time) (*models.Visit, error)
	EndVisit(ctx context.Context, visitID string, stoppedAt time.Time) (*models.Visit, error)
	GetVisit(ctx context.Context, visitID string) (*models.Visit, error)
	ActiveVisit(ctx context.Context, patientID string) (*models.Visit, error)
}

// VisitServiceImpl implements VisitService
type VisitServiceImpl struct {
	patientRepo PatientRepository
	visitRepo   VisitRepository
}

// NewVisitService creates a new visit service
func NewVisitService(patientRepo PatientRepository, visitRepo VisitRepository) VisitService {
	return &VisitServiceImpl{
		patientRepo: patientRepo,
		visitRepo:   visitRepo,
	}
}

// StartVisit opens a visit for the patient. A zero startedAt means now.
func (s *VisitServiceImpl) StartVisit(ctx context.Context, patientID, visitType string, startedAt time.Time) (*models.Visit, error) {
	if _, err := s.patientRepo.GetPatient(ctx, patientID); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	active, err := s.visitRepo.GetActiveVisit(ctx, patientID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: visit %s", ErrActiveVisitExists, active.ID)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("failed to check active visit: %w", err)
	}

	visit, err := models.NewVisit(patientID, visitType, startedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	err = s.visitRepo.CreateVisit(ctx, visit)
	if errors.Is(err, repository.ErrConflict) {
		return nil, fmt.Errorf("%w: %w", ErrActiveVisitExists, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create visit: %w", err)
	}

	log.Info().Str("patient", patientID).Str("visit", visit.ID).Msg("Started visit")
	return visit, nil
}

// EndVisit stops an active visit. A zero stoppedAt means now.
func (s *VisitServiceImpl) EndVisit(ctx context.Context, visitID string, stoppedAt time.Time) (*models.Visit, error) {
	visit, err := s.visitRepo.GetVisit(ctx, visitID)
	if err != nil {
		return nil, fmt.Errorf("failed to get visit: %w", err)
	}

	if stoppedAt.IsZero() {
		stoppedAt = time.Now()
	}
	if err := visit.End(stoppedAt); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := s.visitRepo.EndVisit(ctx, visit.ID, stoppedAt); err != nil {
		return nil, fmt.Errorf("failed to end visit: %w", err)
	}

	log.Info().Str("patient", visit.PatientID).Str("visit", visit.ID).Msg("Ended visit")
	return visit, nil
}

// GetVisit retrieves a visit by UUID
func (s *VisitServiceImpl) GetVisit(ctx context.Context, visitID string) (*models.Visit, error) {
	visit, err := s.visitRepo.GetVisit(ctx, visitID)
	if err != nil {
		return nil, fmt.Errorf("failed to get visit: %w", err)
	}
	return visit, nil
}

// ActiveVisit returns the patient's active visit or ErrNoActiveVisit
func (s *VisitServiceImpl) ActiveVisit(ctx context.Context, patientID string) (*models.Visit, error) {
	visit, err := s.visitRepo.GetActiveVisit(ctx, patientID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoActiveVisit
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active visit: %w", err)
	}
	return visit, nil
}
