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

// VisitRequest is the body of POST /ws/rest/v1/visit
type VisitRequest struct {
	Patient       string     `json:"patient"`
	VisitType     string     `json:"visitType"`
	StartDatetime *time.Time `json:"startDatetime"`
}

// VisitUpdateRequest is the body of POST /ws/rest/v1/visit/{uuid}
type VisitUpdateRequest struct {
	StopDatetime *time.Time `json:"stopDatetime"`
}

// VisitResponse is the REST representation of a visit
type VisitResponse struct {
	UUID          string     `json:"uuid"`
	Patient       string     `json:"patient"`
	VisitType     string     `json:"visitType"`
	StartDatetime time.Time  `json:"startDatetime"`
	StopDatetime  *time.Time `json:"stopDatetime"`
}

func newVisitResponse(v *models.Visit) VisitResponse {
	return VisitResponse{
		UUID:          v.ID,
		Patient:       v.PatientID,
		VisitType:     v.VisitType,
		StartDatetime: v.StartedAt,
		StopDatetime:  v.StoppedAt,
	}
}

// VisitResourceHandler serves the visit REST resource
type VisitResourceHandler struct {
	visitService services.VisitService
}

// NewVisitResourceHandler creates a new visit resource handler
func NewVisitResourceHandler(visitService services.VisitService) *VisitResourceHandler {
	return &VisitResourceHandler{visitService: visitService}
}

// ServeHTTP handles /ws/rest/v1/visit and /ws/rest/v1/visit/{uuid}
func (h *VisitResourceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uuid := chi.URLParam(r, "uuid")

	switch {
	case r.Method == http.MethodPost && uuid == "":
		h.start(w, r)
	case r.Method == http.MethodPost:
		h.update(w, r, uuid)
	case r.Method == http.MethodGet && uuid != "":
		h.get(w, r, uuid)
	default:
		sendErrorResponse(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *VisitResourceHandler) start(w http.ResponseWriter, r *http.Request) {
	var req VisitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.FixtureOperations.WithLabelValues("visit", "rejected").Inc()
		sendErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var startedAt time.Time
	if req.StartDatetime != nil {
		startedAt = *req.StartDatetime
	}

	visit, err := h.visitService.StartVisit(r.Context(), req.Patient, req.VisitType, startedAt)
	if err != nil {
		metrics.FixtureOperations.WithLabelValues("visit", "rejected").Inc()
		sendServiceError(w, err)
		return
	}

	metrics.FixtureOperations.WithLabelValues("visit", "created").Inc()
	sendJSON(w, newVisitResponse(visit), http.StatusCreated)
}

// update ends the visit; stopDatetime is the only updatable field
func (h *VisitResourceHandler) update(w http.ResponseWriter, r *http.Request, uuid string) {
	var req VisitUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.StopDatetime == nil {
		metrics.FixtureOperations.WithLabelValues("visit", "rejected").Inc()
		sendErrorResponse(w, "stopDatetime is required", http.StatusBadRequest)
		return
	}

	visit, err := h.visitService.EndVisit(r.Context(), uuid, *req.StopDatetime)
	if err != nil {
		metrics.FixtureOperations.WithLabelValues("visit", "rejected").Inc()
		sendServiceError(w, err)
		return
	}

	metrics.FixtureOperations.WithLabelValues("visit", "ended").Inc()
	sendJSON(w, newVisitResponse(visit), http.StatusOK)
}

func (h *VisitResourceHandler) get(w http.ResponseWriter, r *http.Request, uuid string) {
	visit, err := h.visitService.GetVisit(r.Context(), uuid)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	sendJSON(w, newVisitResponse(visit), http.StatusOK)
}
