package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultVisitType is used when a visit is started without a type
const DefaultVisitType = "Facility Visit"

// Visit represents a clinical encounter window for a patient
type Visit struct {
	ID        string
	PatientID string
	VisitType string
	StartedAt time.Time
	StoppedAt *time.Time
}

// Domain errors
var (
	ErrInvalidPatientID  = errors.New("patient id cannot be empty")
	ErrVisitAlreadyEnded = errors.New("visit has already ended")
	ErrInvalidVisitStop  = errors.New("visit cannot end before it starts")
)

// NewVisit creates an active visit for a patient starting at startedAt.
// A zero startedAt means now.
func NewVisit(patientID, visitType string, startedAt time.Time) (*Visit, error) {
	if patientID == "" {
		return nil, ErrInvalidPatientID
	}
	if visitType == "" {
		visitType = DefaultVisitType
	}
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	return &Visit{
		ID:        uuid.New().String(),
		PatientID: patientID,
		VisitType: visitType,
		StartedAt: startedAt,
	}, nil
}

// IsActive returns true while the visit has not been stopped
func (v *Visit) IsActive() bool {
	return v.StoppedAt == nil
}

// End stops the visit at the given instant
func (v *Visit) End(at time.Time) error {
	if !v.IsActive() {
		return ErrVisitAlreadyEnded
	}
	if at.Before(v.StartedAt) {
		return fmt.Errorf("%w: stop %s, start %s", ErrInvalidVisitStop, at.Format(time.RFC3339), v.StartedAt.Format(time.RFC3339))
	}
	v.StoppedAt = &at
	return nil
}
