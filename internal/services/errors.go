package services

import "errors"

// Service errors, mapped to HTTP status codes by the handlers
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrPatientHasActiveVisit = errors.New("patient has an active visit")
	ErrActiveVisitExists     = errors.New("patient already has an active visit")
	ErrNoActiveVisit         = errors.New("patient has no active visit")
)
