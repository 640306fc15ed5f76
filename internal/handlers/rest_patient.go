package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/patientchart/vitals/internal/metrics"
	"github.com/patientchart/vitals/internal/models"
	"github.com/patientchart/vitals/internal/services"
)

// PatientRequest is the body of POST /ws/rest/v1/patient
type PatientRequest struct {
	Identifier string `json:"identifier"`
	GivenName  string `json:"givenName"`
	FamilyName string `json:"familyName"`
	Gender     string `json:"gender"`
	BirthDate  string `json:"birthdate"`
}

// PatientResponse is the REST representation of a patient
type PatientResponse struct {
	UUID       string `json:"uuid"`
	Identifier string `json:"identifier"`
	Display    string `json:"display"`
	GivenName  string `json:"givenName"`
	FamilyName string `json:"familyName"`
	Gender     string `json:"gender"`
	BirthDate  string `json:"birthdate"`
}

func newPatientResponse(p *models.Patient) PatientResponse {
	return PatientResponse{
		UUID:       p.ID,
		Identifier: p.Identifier,
		Display:    p.Identifier + " - " + p.DisplayName(),
		GivenName:  p.GivenName,
		FamilyName: p.FamilyName,
		Gender:     p.Gender,
		BirthDate:  p.BirthDate.Format(time.DateOnly),
	}
}

// PatientResourceHandler serves the patient REST resource
type PatientResourceHandler struct {
	patientService services.PatientService
}

// NewPatientResourceHandler creates a new patient resource handler
func NewPatientResourceHandler(patientService services.PatientService) *PatientResourceHandler {
	return &PatientResourceHandler{patientService: patientService}
}

// ServeHTTP handles /ws/rest/v1/patient and /ws/rest/v1/patient/{uuid}
func (h *PatientResourceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uuid := chi.URLParam(r, "uuid")

	switch {
	case r.Method == http.MethodPost && uuid == "":
		h.create(w, r)
	case r.Method == http.MethodGet && uuid != "":
		h.get(w, r, uuid)
	case r.Method == http.MethodDelete && uuid != "":
		h.delete(w, r, uuid)
	default:
		sendErrorResponse(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *PatientResourceHandler) create(w http.ResponseWriter, r *http.Request) {
	var req PatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.FixtureOperations.WithLabelValues("patient", "rejected").Inc()
		sendErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	birthDate, err := time.Parse(time.DateOnly, req.BirthDate)
	if err != nil {
		metrics.FixtureOperations.WithLabelValues("patient", "rejected").Inc()
		sendErrorResponse(w, "birthdate must be formatted as YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	patient, err := h.patientService.CreatePatient(r.Context(), services.PatientInput{
		Identifier: req.Identifier,
		GivenName:  req.GivenName,
		FamilyName: req.FamilyName,
		Gender:     req.Gender,
		BirthDate:  birthDate,
	})
	if err != nil {
		metrics.FixtureOperations.WithLabelValues("patient", "rejected").Inc()
		sendServiceError(w, err)
		return
	}

	metrics.FixtureOperations.WithLabelValues("patient", "created").Inc()
	sendJSON(w, newPatientResponse(patient), http.StatusCreated)
}

func (h *PatientResourceHandler) get(w http.ResponseWriter, r *http.Request, uuid string) {
	patient, err := h.patientService.GetPatient(r.Context(), uuid)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	sendJSON(w, newPatientResponse(patient), http.StatusOK)
}

func (h *PatientResourceHandler) delete(w http.ResponseWriter, r *http.Request, uuid string) {
	if err := h.patientService.DeletePatient(r.Context(), uuid); err != nil {
		metrics.FixtureOperations.WithLabelValues("patient", "rejected").Inc()
		sendServiceError(w, err)
		return
	}

	metrics.FixtureOperations.WithLabelValues("patient", "deleted").Inc()
	w.WriteHeader(http.StatusNoContent)
}
