package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/patientchart/vitals/internal/models"
	"github.com/patientchart/vitals/internal/services"
)

// Toast messages shown after a redirect
var toasts = map[string]string{
	"saved":   "Vitals and biometrics saved",
	"updated": "Vitals and biometrics updated",
	"deleted": "Vitals and biometrics deleted",
}

const recordedAtLayout = "02-Jan-2006, 03:04 PM"

// VitalsRow is one rendered row of the vitals table
type VitalsRow struct {
	ID               string
	RecordedAt       string
	Temperature      string
	BloodPressure    string
	Pulse            string
	RespirationRate  string
	OxygenSaturation string
	Notes            string
}

// FormField is one numeric input of the vitals form
type FormField struct {
	Name  string
	Label string
	Unit  string
	Min   string
	Max   string
	Value string
	Error string
}

// VitalsWorkspace is the record or edit form rendered beside the table
type VitalsWorkspace struct {
	Title  string
	Action string
	Fields []FormField
	Notes  string
	Error  string
}

// VitalsPageData represents the data passed to the vitals template
type VitalsPageData struct {
	Patient       *models.Patient
	Age           int
	HasVisit      bool
	PagePath      string
	Rows          []VitalsRow
	Workspace     *VitalsWorkspace
	ConfirmDelete *VitalsRow
	Toast         string
}

// VitalsPageHandler renders the vitals and biometrics page of a patient chart
type VitalsPageHandler struct {
	template       *template.Template
	patientService services.PatientService
	visitService   services.VisitService
	vitalsService  services.VitalsService
}

// NewVitalsPageHandler creates a new vitals page handler
func NewVitalsPageHandler(templatePath string, patientService services.PatientService, visitService services.VisitService, vitalsService services.VitalsService) (*VitalsPageHandler, error) {
	tmpl, err := template.ParseFiles(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	return &VitalsPageHandler{
		template:       tmpl,
		patientService: patientService,
		visitService:   visitService,
		vitalsService:  vitalsService,
	}, nil
}

// ServeHTTP handles GET /patient/{patientUUID}/chart/vitals-and-biometrics
func (h *VitalsPageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientUUID")
	query := r.URL.Query()

	data, err := h.pageData(r, patientID)
	if err != nil {
		h.renderError(w, err)
		return
	}
	data.Toast = toasts[query.Get("toast")]

	switch {
	case query.Get("workspace") == "record":
		data.Workspace = newWorkspace(patientID, nil, models.VitalsInput{})

	case query.Get("workspace") == "edit":
		vitals, err := h.vitalsService.GetVitals(r.Context(), patientID, query.Get("vitals"))
		if err != nil {
			h.renderError(w, err)
			return
		}
		data.Workspace = newWorkspace(patientID, vitals, vitals.Input())

	case query.Get("confirm") == "delete":
		vitals, err := h.vitalsService.GetVitals(r.Context(), patientID, query.Get("vitals"))
		if err != nil {
			h.renderError(w, err)
			return
		}
		row := newVitalsRow(vitals)
		data.ConfirmDelete = &row
	}

	h.render(w, http.StatusOK, data)
}

// pageData loads the patient and the table rows
func (h *VitalsPageHandler) pageData(r *http.Request, patientID string) (*VitalsPageData, error) {
	patient, err := h.patientService.GetPatient(r.Context(), patientID)
	if err != nil {
		return nil, err
	}

	records, err := h.vitalsService.ListVitals(r.Context(), patientID)
	if err != nil {
		return nil, err
	}

	hasVisit := true
	if _, err := h.visitService.ActiveVisit(r.Context(), patientID); err != nil {
		if !errors.Is(err, services.ErrNoActiveVisit) {
			return nil, err
		}
		hasVisit = false
	}

	rows := make([]VitalsRow, 0, len(records))
	for _, v := range records {
		rows = append(rows, newVitalsRow(v))
	}

	return &VitalsPageData{
		Patient:  patient,
		Age:      patient.Age(time.Now()),
		HasVisit: hasVisit,
		PagePath: vitalsPath(patientID),
		Rows:     rows,
	}, nil
}

func (h *VitalsPageHandler) render(w http.ResponseWriter, status int, data *VitalsPageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.template.Execute(w, data); err != nil {
		log.Error().Err(err).Msg("Error rendering template")
	}
}

func (h *VitalsPageHandler) renderError(w http.ResponseWriter, err error) {
	if services.IsNotFound(err) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	log.Error().Err(err).Msg("Error loading vitals page")
	http.Error(w, "Failed to load page", http.StatusInternalServerError)
}

func newVitalsRow(v *models.Vitals) VitalsRow {
	return VitalsRow{
		ID:               v.ID,
		RecordedAt:       v.RecordedAt.Format(recordedAtLayout),
		Temperature:      models.FormatMeasurement(v.Temperature),
		BloodPressure:    v.BloodPressure(),
		Pulse:            models.FormatMeasurement(v.Pulse),
		RespirationRate:  models.FormatMeasurement(v.RespirationRate),
		OxygenSaturation: models.FormatMeasurement(v.OxygenSaturation),
		Notes:            v.Notes,
	}
}

// formFields lists the inputs in display order
var formFields = []struct {
	measurement models.Measurement
	label       string
}{
	{models.MeasurementTemperature, "Temperature"},
	{models.MeasurementSystolic, "Systolic"},
	{models.MeasurementDiastolic, "Diastolic"},
	{models.MeasurementPulse, "Pulse"},
	{models.MeasurementRespirationRate, "Respiration rate"},
	{models.MeasurementOxygenSaturation, "Oxygen saturation"},
}

// newWorkspace builds the record form, or the edit form when existing is set
func newWorkspace(patientID string, existing *models.Vitals, in models.VitalsInput) *VitalsWorkspace {
	ws := &VitalsWorkspace{
		Title:  "Record Vitals and Biometrics",
		Action: vitalsPath(patientID),
		Notes:  in.Notes,
	}
	if existing != nil {
		ws.Title = "Edit Vitals and Biometrics"
		ws.Action = vitalsPath(patientID) + "/" + url.PathEscape(existing.ID)
	}

	values := in.Values()
	for _, f := range formFields {
		r := models.MeasurementRanges[f.measurement]
		field := FormField{
			Name:  string(f.measurement),
			Label: f.label,
			Unit:  r.Unit,
			Min:   models.FormatValue(r.Min),
			Max:   models.FormatValue(r.Max),
		}
		if v := values[f.measurement]; v != nil {
			field.Value = models.FormatValue(*v)
		}
		ws.Fields = append(ws.Fields, field)
	}
	return ws
}

func vitalsPath(patientID string) string {
	return "/patient/" + url.PathEscape(patientID) + "/chart/vitals-and-biometrics"
}
