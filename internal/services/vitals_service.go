package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/patientchart/vitals/internal/metrics"
	"github.com/patientchart/vitals/internal/models"
	"github.com/patientchart/vitals/internal/repository"
)

// VitalsRepository defines the interface for vitals persistence
type VitalsRepository interface {
	CreateVitals(ctx context.Context, vitals *models.Vitals) error
	GetVitals(ctx context.Context, id string) (*models.Vitals, error)
	UpdateVitals(ctx context.Context, vitals *models.Vitals) error
	DeleteVitals(ctx context.Context, id string) error
	ListVitalsByPatient(ctx context.Context, patientID string) ([]*models.Vitals, error)
}

// VitalsService handles vitals and biometrics business logic
type VitalsService interface {
	RecordVitals(ctx context.Context, patientID string, in models.VitalsInput) (*models.Vitals, error)
	UpdateVitals(ctx context.Context, patientID, vitalsID string, in models.VitalsInput) (*models.Vitals, error)
	DeleteVitals(ctx context.Context, patientID, vitalsID string) error
	GetVitals(ctx context.Context, patientID, vitalsID string) (*models.Vitals, error)
	ListVitals(ctx context.Context, patientID string) ([]*models.Vitals, error)
}

// VitalsServiceImpl implements VitalsService
type VitalsServiceImpl struct {
	vitalsRepo   VitalsRepository
	visitService VisitService
}

// NewVitalsService creates a new vitals service
func NewVitalsService(vitalsRepo VitalsRepository, visitService VisitService) VitalsService {
	return &VitalsServiceImpl{
		vitalsRepo:   vitalsRepo,
		visitService: visitService,
	}
}

// RecordVitals records vitals against the patient's active visit
func (s *VitalsServiceImpl) RecordVitals(ctx context.Context, patientID string, in models.VitalsInput) (*models.Vitals, error) {
	visit, err := s.visitService.ActiveVisit(ctx, patientID)
	if err != nil {
		return nil, err
	}

	vitals, err := models.NewVitals(patientID, visit.ID, in)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := s.vitalsRepo.CreateVitals(ctx, vitals); err != nil {
		return nil, fmt.Errorf("failed to record vitals: %w", err)
	}

	metrics.VitalsOperations.WithLabelValues(metrics.OperationCreate).Inc()
	log.Info().Str("patient", patientID).Str("vitals", vitals.ID).Msg("Vitals and biometrics saved")
	return vitals, nil
}

// UpdateVitals replaces the values of an existing record
func (s *VitalsServiceImpl) UpdateVitals(ctx context.Context, patientID, vitalsID string, in models.VitalsInput) (*models.Vitals, error) {
	vitals, err := s.GetVitals(ctx, patientID, vitalsID)
	if err != nil {
		return nil, err
	}

	if err := vitals.Apply(in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := s.vitalsRepo.UpdateVitals(ctx, vitals); err != nil {
		return nil, fmt.Errorf("failed to update vitals: %w", err)
	}

	metrics.VitalsOperations.WithLabelValues(metrics.OperationUpdate).Inc()
	log.Info().Str("patient", patientID).Str("vitals", vitals.ID).Msg("Vitals and biometrics updated")
	return vitals, nil
}

// DeleteVitals removes a record
func (s *VitalsServiceImpl) DeleteVitals(ctx context.Context, patientID, vitalsID string) error {
	if _, err := s.GetVitals(ctx, patientID, vitalsID); err != nil {
		return err
	}

	if err := s.vitalsRepo.DeleteVitals(ctx, vitalsID); err != nil {
		return fmt.Errorf("failed to delete vitals: %w", err)
	}

	metrics.VitalsOperations.WithLabelValues(metrics.OperationDelete).Inc()
	log.Info().Str("patient", patientID).Str("vitals", vitalsID).Msg("Vitals and biometrics deleted")
	return nil
}

// GetVitals retrieves a record that belongs to the patient
func (s *VitalsServiceImpl) GetVitals(ctx context.Context, patientID, vitalsID string) (*models.Vitals, error) {
	vitals, err := s.vitalsRepo.GetVitals(ctx, vitalsID)
	if err != nil {
		return nil, fmt.Errorf("failed to get vitals: %w", err)
	}
	if vitals.PatientID != patientID {
		return nil, fmt.Errorf("vitals %s for patient %s: %w", vitalsID, patientID, repository.ErrNotFound)
	}
	return vitals, nil
}

// ListVitals returns the patient's records, newest first
func (s *VitalsServiceImpl) ListVitals(ctx context.Context, patientID string) ([]*models.Vitals, error) {
	vitals, err := s.vitalsRepo.ListVitalsByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vitals: %w", err)
	}
	return vitals, nil
}

// IsNotFound reports whether err means the requested record does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
