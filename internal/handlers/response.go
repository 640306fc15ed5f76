package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/patientchart/vitals/internal/models"
	"github.com/patientchart/vitals/internal/services"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// sendJSON writes body as JSON with the given status
func sendJSON(w http.ResponseWriter, body any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Error encoding response")
	}
}

// sendErrorResponse sends a JSON error response
func sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	sendJSON(w, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}, statusCode)
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case services.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, services.ErrPatientHasActiveVisit),
		errors.Is(err, services.ErrActiveVisitExists),
		errors.Is(err, models.ErrVisitAlreadyEnded):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// sendServiceError logs server faults and reports err with its mapped status
func sendServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("Request failed")
		message = "Internal server error"
	}
	sendErrorResponse(w, message, status)
}
