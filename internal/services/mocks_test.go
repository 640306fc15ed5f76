package services

import (
	"context"
	"time"

	"github.com/patientchart/vitals/internal/models"
)

// MockPatientRepository is a mock implementation of PatientRepository for testing
type MockPatientRepository struct {
	CreatePatientFunc func(context.Context, *models.Patient) error
	GetPatientFunc    func(context.Context, string) (*models.Patient, error)
	DeletePatientFunc func(context.Context, string) error
}

func (m *MockPatientRepository) CreatePatient(ctx context.Context, patient *models.Patient) error {
	if m.CreatePatientFunc != nil {
		return m.CreatePatientFunc(ctx, patient)
	}
	return nil
}

func (m *MockPatientRepository) GetPatient(ctx context.Context, id string) (*models.Patient, error) {
	if m.GetPatientFunc != nil {
		return m.GetPatientFunc(ctx, id)
	}
	return &models.Patient{ID: id}, nil
}

func (m *MockPatientRepository) DeletePatient(ctx context.Context, id string) error {
	if m.DeletePatientFunc != nil {
		return m.DeletePatientFunc(ctx, id)
	}
	return nil
}

// MockVisitRepository is a mock implementation of VisitRepository for testing
type MockVisitRepository struct {
	CreateVisitFunc    func(context.Context, *models.Visit) error
	GetVisitFunc       func(context.Context, string) (*models.Visit, error)
	GetActiveVisitFunc func(context.Context, string) (*models.Visit, error)
	EndVisitFunc       func(context.Context, string, time.Time) error
}

func (m *MockVisitRepository) CreateVisit(ctx context.Context, visit *models.Visit) error {
	if m.CreateVisitFunc != nil {
		return m.CreateVisitFunc(ctx, visit)
	}
	return nil
}

func (m *MockVisitRepository) GetVisit(ctx context.Context, id string) (*models.Visit, error) {
	if m.GetVisitFunc != nil {
		return m.GetVisitFunc(ctx, id)
	}
	return &models.Visit{ID: id, StartedAt: time.Now().Add(-time.Hour)}, nil
}

func (m *MockVisitRepository) GetActiveVisit(ctx context.Context, patientID string) (*models.Visit, error) {
	if m.GetActiveVisitFunc != nil {
		return m.GetActiveVisitFunc(ctx, patientID)
	}
	return &models.Visit{ID: "visit-1", PatientID: patientID, StartedAt: time.Now().Add(-time.Hour)}, nil
}

func (m *MockVisitRepository) EndVisit(ctx context.Context, id string, stoppedAt time.Time) error {
	if m.EndVisitFunc != nil {
		return m.EndVisitFunc(ctx, id, stoppedAt)
	}
	return nil
}

// MockVitalsRepository is a mock implementation of VitalsRepository for testing
type MockVitalsRepository struct {
	CreateVitalsFunc        func(context.Context, *models.Vitals) error
	GetVitalsFunc           func(context.Context, string) (*models.Vitals, error)
	UpdateVitalsFunc        func(context.Context, *models.Vitals) error
	DeleteVitalsFunc        func(context.Context, string) error
	ListVitalsByPatientFunc func(context.Context, string) ([]*models.Vitals, error)
}

func (m *MockVitalsRepository) CreateVitals(ctx context.Context, vitals *models.Vitals) error {
	if m.CreateVitalsFunc != nil {
		return m.CreateVitalsFunc(ctx, vitals)
	}
	return nil
}

func (m *MockVitalsRepository) GetVitals(ctx context.Context, id string) (*models.Vitals, error) {
	if m.GetVitalsFunc != nil {
		return m.GetVitalsFunc(ctx, id)
	}
	return &models.Vitals{ID: id}, nil
}

func (m *MockVitalsRepository) UpdateVitals(ctx context.Context, vitals *models.Vitals) error {
	if m.UpdateVitalsFunc != nil {
		return m.UpdateVitalsFunc(ctx, vitals)
	}
	return nil
}

func (m *MockVitalsRepository) DeleteVitals(ctx context.Context, id string) error {
	if m.DeleteVitalsFunc != nil {
		return m.DeleteVitalsFunc(ctx, id)
	}
	return nil
}

func (m *MockVitalsRepository) ListVitalsByPatient(ctx context.Context, patientID string) ([]*models.Vitals, error) {
	if m.ListVitalsByPatientFunc != nil {
		return m.ListVitalsByPatientFunc(ctx, patientID)
	}
	return nil, nil
}
