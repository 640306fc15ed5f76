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

// PatientRepository defines the interface for patient persistence
type PatientRepository interface {
	CreatePatient(ctx context.Context, patient *models.Patient) error
	GetPatient(ctx context.Context, id string) (*models.Patient, error)
	DeletePatient(ctx context.Context, id string) error
}

// PatientInput carries the fields needed to register a patient
type PatientInput struct {
	Identifier string
	GivenName  string
	FamilyName string
	Gender     string
	BirthDate  time.Time
}

// PatientService handles patient business logic
type PatientService interface {
	CreatePatient(ctx context.Context, in PatientInput) (*models.Patient, error)
	GetPatient(ctx context.Context, id string) (*models.Patient, error)
	DeletePatient(ctx context.Context, id string) error
}

// PatientServiceImpl implements PatientService
type PatientServiceImpl struct {
	patientRepo PatientRepository
	visitRepo   VisitRepository
}

// NewPatientService creates a new patient service
func NewPatientService(patientRepo PatientRepository, visitRepo VisitRepository) PatientService {
	return &PatientServiceImpl{
		patientRepo: patientRepo,
		visitRepo:   visitRepo,
	}
}

// CreatePatient validates and registers a new patient
func (s *PatientServiceImpl) CreatePatient(ctx context.Context, in PatientInput) (*models.Patient, error) {
	patient, err := models.NewPatient(in.Identifier, in.GivenName, in.FamilyName, in.Gender, in.BirthDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := s.patientRepo.CreatePatient(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	log.Info().Str("patient", patient.ID).Str("identifier", patient.Identifier).Msg("Created patient")
	return patient, nil
}

// GetPatient retrieves a patient by UUID
func (s *PatientServiceImpl) GetPatient(ctx context.Context, id string) (*models.Patient, error) {
	patient, err := s.patientRepo.GetPatient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

// DeletePatient purges a patient. A patient with an active visit cannot be
// deleted; the visit has to be ended first.
func (s *PatientServiceImpl) DeletePatient(ctx context.Context, id string) error {
	active, err := s.visitRepo.GetActiveVisit(ctx, id)
	switch {
	case err == nil:
		return fmt.Errorf("%w: visit %s", ErrPatientHasActiveVisit, active.ID)
	case !errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("failed to check active visit: %w", err)
	}

	if err := s.patientRepo.DeletePatient(ctx, id); err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	log.Info().Str("patient", id).Msg("Deleted patient")
	return nil
}
