// Package memory is an in-process chart store used when STORE=memory and by
// hermetic tests. It holds copies of records, so callers never share state
// with the store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/patientchart/vitals/internal/models"
	"github.com/patientchart/vitals/internal/repository"
)

// Store keeps patients, visits and vitals in maps guarded by one lock
type Store struct {
	mu       sync.RWMutex
	patients map[string]models.Patient
	visits   map[string]models.Visit
	vitals   map[string]models.Vitals
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		patients: make(map[string]models.Patient),
		visits:   make(map[string]models.Visit),
		vitals:   make(map[string]models.Vitals),
	}
}

// CreatePatient stores a new patient
func (s *Store) CreatePatient(_ context.Context, patient *models.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.patients[patient.ID]; ok {
		return fmt.Errorf("failed to create patient: duplicate id %s", patient.ID)
	}
	for _, p := range s.patients {
		if p.Identifier == patient.Identifier {
			return fmt.Errorf("failed to create patient: duplicate identifier %s", patient.Identifier)
		}
	}

	now := time.Now()
	patient.CreatedAt = now
	patient.UpdatedAt = now
	s.patients[patient.ID] = *patient
	return nil
}

// GetPatient returns a copy of the patient
func (s *Store) GetPatient(_ context.Context, id string) (*models.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.patients[id]
	if !ok {
		return nil, fmt.Errorf("patient %s: %w", id, repository.ErrNotFound)
	}
	return &p, nil
}

// DeletePatient purges the patient with its visits and vitals
func (s *Store) DeletePatient(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.patients[id]; !ok {
		return fmt.Errorf("patient %s: %w", id, repository.ErrNotFound)
	}
	for vid, v := range s.vitals {
		if v.PatientID == id {
			delete(s.vitals, vid)
		}
	}
	for vid, v := range s.visits {
		if v.PatientID == id {
			delete(s.visits, vid)
		}
	}
	delete(s.patients, id)
	return nil
}

// CreateVisit stores a new visit
func (s *Store) CreateVisit(_ context.Context, visit *models.Visit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.patients[visit.PatientID]; !ok {
		return fmt.Errorf("failed to create visit: patient %s: %w", visit.PatientID, repository.ErrNotFound)
	}
	if visit.IsActive() {
		for _, v := range s.visits {
			if v.PatientID == visit.PatientID && v.IsActive() {
				return fmt.Errorf("failed to create visit: patient %s already has active visit %s: %w", visit.PatientID, v.ID, repository.ErrConflict)
			}
		}
	}
	s.visits[visit.ID] = copyVisit(*visit)
	return nil
}

// GetVisit returns a copy of the visit
func (s *Store) GetVisit(_ context.Context, id string) (*models.Visit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.visits[id]
	if !ok {
		return nil, fmt.Errorf("visit %s: %w", id, repository.ErrNotFound)
	}
	v = copyVisit(v)
	return &v, nil
}

// GetActiveVisit returns the patient's most recent visit that has not been stopped
func (s *Store) GetActiveVisit(_ context.Context, patientID string) (*models.Visit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var active *models.Visit
	for _, v := range s.visits {
		if v.PatientID != patientID || !v.IsActive() {
			continue
		}
		if active == nil || v.StartedAt.After(active.StartedAt) {
			c := copyVisit(v)
			active = &c
		}
	}
	if active == nil {
		return nil, fmt.Errorf("active visit for patient %s: %w", patientID, repository.ErrNotFound)
	}
	return active, nil
}

// EndVisit sets the stop time of a visit
func (s *Store) EndVisit(_ context.Context, id string, stoppedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.visits[id]
	if !ok {
		return fmt.Errorf("visit %s: %w", id, repository.ErrNotFound)
	}
	v.StoppedAt = &stoppedAt
	s.visits[id] = v
	return nil
}

// CreateVitals stores a new vitals record
func (s *Store) CreateVitals(_ context.Context, vitals *models.Vitals) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.patients[vitals.PatientID]; !ok {
		return fmt.Errorf("failed to create vitals: patient %s: %w", vitals.PatientID, repository.ErrNotFound)
	}
	if _, ok := s.visits[vitals.VisitID]; !ok {
		return fmt.Errorf("failed to create vitals: visit %s: %w", vitals.VisitID, repository.ErrNotFound)
	}
	s.vitals[vitals.ID] = copyVitals(*vitals)
	return nil
}

// GetVitals returns a copy of the vitals record
func (s *Store) GetVitals(_ context.Context, id string) (*models.Vitals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.vitals[id]
	if !ok {
		return nil, fmt.Errorf("vitals %s: %w", id, repository.ErrNotFound)
	}
	v = copyVitals(v)
	return &v, nil
}

// UpdateVitals overwrites the measurements and notes of a vitals record
func (s *Store) UpdateVitals(_ context.Context, vitals *models.Vitals) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.vitals[vitals.ID]
	if !ok {
		return fmt.Errorf("vitals %s: %w", vitals.ID, repository.ErrNotFound)
	}
	updated := copyVitals(*vitals)
	updated.PatientID = existing.PatientID
	updated.VisitID = existing.VisitID
	updated.RecordedAt = existing.RecordedAt
	s.vitals[vitals.ID] = updated
	return nil
}

// DeleteVitals removes a vitals record
func (s *Store) DeleteVitals(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vitals[id]; !ok {
		return fmt.Errorf("vitals %s: %w", id, repository.ErrNotFound)
	}
	delete(s.vitals, id)
	return nil
}

// ListVitalsByPatient returns the patient's vitals, newest first
func (s *Store) ListVitalsByPatient(_ context.Context, patientID string) ([]*models.Vitals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Vitals
	for _, v := range s.vitals {
		if v.PatientID == patientID {
			c := copyVitals(v)
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].RecordedAt.After(result[j].RecordedAt)
	})
	return result, nil
}

func copyVisit(v models.Visit) models.Visit {
	if v.StoppedAt != nil {
		stopped := *v.StoppedAt
		v.StoppedAt = &stopped
	}
	return v
}

func copyVitals(v models.Vitals) models.Vitals {
	v.Temperature = copyFloat(v.Temperature)
	v.Systolic = copyFloat(v.Systolic)
	v.Diastolic = copyFloat(v.Diastolic)
	v.Pulse = copyFloat(v.Pulse)
	v.RespirationRate = copyFloat(v.RespirationRate)
	v.OxygenSaturation = copyFloat(v.OxygenSaturation)
	return v
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}
