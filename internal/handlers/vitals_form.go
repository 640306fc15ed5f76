package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/patientchart/vitals/internal/models"
	"github.com/patientchart/vitals/internal/services"
)

// SaveVitalsHandler handles submissions of the record and edit forms
type SaveVitalsHandler struct {
	page *VitalsPageHandler
}

// NewSaveVitalsHandler creates a new save handler rendering errors through page
func NewSaveVitalsHandler(page *VitalsPageHandler) *SaveVitalsHandler {
	return &SaveVitalsHandler{page: page}
}

// ServeHTTP handles POST /patient/{patientUUID}/chart/vitals-and-biometrics[/{vitalsUUID}]
func (h *SaveVitalsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientUUID")
	vitalsID := chi.URLParam(r, "vitalsUUID")

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	in, raw, fieldErrs := parseVitalsForm(r)

	var (
		existing *models.Vitals
		err      error
	)
	if vitalsID != "" {
		existing, err = h.page.vitalsService.GetVitals(r.Context(), patientID, vitalsID)
		if err != nil {
			h.page.renderError(w, err)
			return
		}
	}

	if len(fieldErrs) == 0 {
		toast := "saved"
		if existing != nil {
			toast = "updated"
			_, err = h.page.vitalsService.UpdateVitals(r.Context(), patientID, vitalsID, in)
		} else {
			_, err = h.page.vitalsService.RecordVitals(r.Context(), patientID, in)
		}
		if err == nil {
			http.Redirect(w, r, vitalsPath(patientID)+"?toast="+toast, http.StatusSeeOther)
			return
		}
		if !isFormError(err) {
			h.page.renderError(w, err)
			return
		}
	}

	data, loadErr := h.page.pageData(r, patientID)
	if loadErr != nil {
		h.page.renderError(w, loadErr)
		return
	}

	ws := newWorkspace(patientID, existing, in)
	for i := range ws.Fields {
		ws.Fields[i].Value = raw[ws.Fields[i].Name]
		ws.Fields[i].Error = fieldErrs[ws.Fields[i].Name]
	}
	if err != nil {
		ws.Error = formErrorMessage(err)
	} else {
		ws.Error = "Some values are not valid numbers"
	}
	data.Workspace = ws

	log.Info().Str("patient", patientID).Str("error", ws.Error).Msg("Rejected vitals submission")
	h.page.render(w, http.StatusUnprocessableEntity, data)
}

// parseVitalsForm reads the measurements; blank fields stay nil
func parseVitalsForm(r *http.Request) (models.VitalsInput, map[string]string, map[string]string) {
	raw := make(map[string]string, len(formFields))
	fieldErrs := make(map[string]string)

	parse := func(m models.Measurement) *float64 {
		value := strings.TrimSpace(r.PostForm.Get(string(m)))
		raw[string(m)] = value
		if value == "" {
			return nil
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			fieldErrs[string(m)] = "Must be a number"
			return nil
		}
		return &f
	}

	in := models.VitalsInput{
		Temperature:      parse(models.MeasurementTemperature),
		Systolic:         parse(models.MeasurementSystolic),
		Diastolic:        parse(models.MeasurementDiastolic),
		Pulse:            parse(models.MeasurementPulse),
		RespirationRate:  parse(models.MeasurementRespirationRate),
		OxygenSaturation: parse(models.MeasurementOxygenSaturation),
		Notes:            r.PostForm.Get("notes"),
	}
	return in, raw, fieldErrs
}

func isFormError(err error) bool {
	return errors.Is(err, services.ErrInvalidInput) || errors.Is(err, services.ErrNoActiveVisit)
}

func formErrorMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrNoActiveVisit):
		return "Start a visit before recording vital signs"
	case errors.Is(err, models.ErrNoMeasurements):
		return "Please fill at least one field"
	}
	msg := strings.TrimPrefix(err.Error(), services.ErrInvalidInput.Error()+": ")
	if msg == "" {
		return "Invalid values"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// DeleteVitalsHandler handles the delete confirmation
type DeleteVitalsHandler struct {
	vitalsService services.VitalsService
}

// NewDeleteVitalsHandler creates a new delete handler
func NewDeleteVitalsHandler(vitalsService services.VitalsService) *DeleteVitalsHandler {
	return &DeleteVitalsHandler{vitalsService: vitalsService}
}

// ServeHTTP handles POST /patient/{patientUUID}/chart/vitals-and-biometrics/{vitalsUUID}/delete
func (h *DeleteVitalsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientUUID")
	vitalsID := chi.URLParam(r, "vitalsUUID")

	if err := h.vitalsService.DeleteVitals(r.Context(), patientID, vitalsID); err != nil {
		if services.IsNotFound(err) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("vitals", vitalsID).Msg("Error deleting vitals")
		http.Error(w, "Failed to delete vitals", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, vitalsPath(patientID)+"?toast=deleted", http.StatusSeeOther)
}
