package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Gender codes accepted for a patient
const (
	GenderMale    = "M"
	GenderFemale  = "F"
	GenderOther   = "O"
	GenderUnknown = "U"
)

// Patient represents a person whose chart holds visits and vitals
type Patient struct {
	ID         string
	Identifier string
	GivenName  string
	FamilyName string
	Gender     string
	BirthDate  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Domain errors
var (
	ErrInvalidGivenName  = errors.New("given name cannot be empty")
	ErrInvalidFamilyName = errors.New("family name cannot be empty")
	ErrInvalidGender     = errors.New("gender must be one of M, F, O, U")
	ErrInvalidBirthDate  = errors.New("birth date cannot be in the future")
)

// NewPatient creates a new patient with validation. An empty identifier is
// replaced by a generated one.
func NewPatient(identifier, givenName, familyName, gender string, birthDate time.Time) (*Patient, error) {
	givenName = strings.TrimSpace(givenName)
	familyName = strings.TrimSpace(familyName)
	gender = strings.ToUpper(strings.TrimSpace(gender))

	if givenName == "" {
		return nil, ErrInvalidGivenName
	}
	if familyName == "" {
		return nil, ErrInvalidFamilyName
	}
	if !validGender(gender) {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidGender, gender)
	}
	if birthDate.After(time.Now()) {
		return nil, ErrInvalidBirthDate
	}

	id := uuid.New().String()
	if identifier == "" {
		identifier = generateIdentifier(id)
	}
	now := time.Now()

	return &Patient{
		ID:         id,
		Identifier: identifier,
		GivenName:  givenName,
		FamilyName: familyName,
		Gender:     gender,
		BirthDate:  birthDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// DisplayName returns the name shown in the chart header
func (p *Patient) DisplayName() string {
	return p.GivenName + " " + p.FamilyName
}

// Age returns the patient's age in whole years at the given instant
func (p *Patient) Age(at time.Time) int {
	years := at.Year() - p.BirthDate.Year()
	if at.Month() < p.BirthDate.Month() ||
		(at.Month() == p.BirthDate.Month() && at.Day() < p.BirthDate.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

func validGender(g string) bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther, GenderUnknown:
		return true
	}
	return false
}

// generateIdentifier derives a short uppercase identifier from a UUID
func generateIdentifier(id string) string {
	compact := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	return "PC-" + compact[:8]
}
