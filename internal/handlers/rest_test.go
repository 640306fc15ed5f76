package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patientchart/vitals/internal/repository/memory"
	"github.com/patientchart/vitals/internal/services"
)

func newTestAPI(username, password string) http.Handler {
	store := memory.NewStore()
	patients := NewPatientResourceHandler(services.NewPatientService(store, store))
	visits := NewVisitResourceHandler(services.NewVisitService(store, store))

	r := chi.NewRouter()
	r.Route("/ws/rest/v1", func(r chi.Router) {
		r.Use(BasicAuth(username, password))
		r.Handle("/patient", patients)
		r.Handle("/patient/{uuid}", patients)
		r.Handle("/visit", visits)
		r.Handle("/visit/{uuid}", visits)
	})
	return r
}

func doJSON(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestPatientResourceHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		expectedStatus int
	}{
		{
			name: "valid patient",
			body: PatientRequest{
				GivenName:  "Jane",
				FamilyName: "Doe",
				Gender:     "F",
				BirthDate:  "1990-05-01",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "bad birthdate",
			body: PatientRequest{
				GivenName:  "Jane",
				FamilyName: "Doe",
				Gender:     "F",
				BirthDate:  "01/05/1990",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing given name",
			body: PatientRequest{
				FamilyName: "Doe",
				Gender:     "F",
				BirthDate:  "1990-05-01",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed json",
			body:           "not an object",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI("", "")

			w := doJSON(t, api, http.MethodPost, "/ws/rest/v1/patient", tt.body)

			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			if tt.expectedStatus != http.StatusCreated {
				resp := decodeError(t, w)
				assert.Equal(t, http.StatusText(tt.expectedStatus), resp.Error)
				assert.NotEmpty(t, resp.Message)
				return
			}

			var patient PatientResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&patient))
			assert.NotEmpty(t, patient.UUID)
			assert.NotEmpty(t, patient.Identifier)
			assert.Equal(t, patient.Identifier+" - Jane Doe", patient.Display)
			assert.Equal(t, "1990-05-01", patient.BirthDate)
		})
	}
}

func TestRESTFixtureLifecycle(t *testing.T) {
	api := newTestAPI("", "")

	// GIVEN a registered patient
	w := doJSON(t, api, http.MethodPost, "/ws/rest/v1/patient", PatientRequest{
		GivenName: "Jane", FamilyName: "Doe", Gender: "F", BirthDate: "1990-05-01",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var patient PatientResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&patient))

	w = doJSON(t, api, http.MethodGet, "/ws/rest/v1/patient/"+patient.UUID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// WHEN a visit is started
	start := time.Now().UTC().Add(-time.Minute).Truncate(time.Second)
	w = doJSON(t, api, http.MethodPost, "/ws/rest/v1/visit", VisitRequest{Patient: patient.UUID, StartDatetime: &start})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var visit VisitResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&visit))
	assert.Equal(t, patient.UUID, visit.Patient)
	assert.True(t, visit.StartDatetime.Equal(start))
	assert.Nil(t, visit.StopDatetime)
	assert.Equal(t, "Facility Visit", visit.VisitType)

	// THEN a second visit and deleting the patient are refused
	w = doJSON(t, api, http.MethodPost, "/ws/rest/v1/visit", VisitRequest{Patient: patient.UUID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, api, http.MethodDelete, "/ws/rest/v1/patient/"+patient.UUID+"?purge=true", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// WHEN the visit is ended
	stop := time.Now().UTC()
	w = doJSON(t, api, http.MethodPost, "/ws/rest/v1/visit/"+visit.UUID, VisitUpdateRequest{StopDatetime: &stop})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.NewDecoder(w.Body).Decode(&visit))
	require.NotNil(t, visit.StopDatetime)

	w = doJSON(t, api, http.MethodPost, "/ws/rest/v1/visit/"+visit.UUID, VisitUpdateRequest{StopDatetime: &stop})
	assert.Equal(t, http.StatusConflict, w.Code)

	// THEN the patient can be purged
	w = doJSON(t, api, http.MethodDelete, "/ws/rest/v1/patient/"+patient.UUID+"?purge=true", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, api, http.MethodGet, "/ws/rest/v1/patient/"+patient.UUID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not Found", decodeError(t, w).Error)
}

func TestVisitResourceHandler_Errors(t *testing.T) {
	api := newTestAPI("", "")

	w := doJSON(t, api, http.MethodPost, "/ws/rest/v1/visit", VisitRequest{Patient: "unknown"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, api, http.MethodPost, "/ws/rest/v1/visit/unknown", VisitUpdateRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, api, http.MethodGet, "/ws/rest/v1/visit/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, api, http.MethodDelete, "/ws/rest/v1/visit/unknown", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestBasicAuth(t *testing.T) {
	api := newTestAPI("admin", "Admin123")

	req := httptest.NewRequest(http.MethodGet, "/ws/rest/v1/patient/unknown", nil)
	w := httptest.NewRecorder()
	api.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/ws/rest/v1/patient/unknown", nil)
	req.SetBasicAuth("admin", "Admin123")
	w = httptest.NewRecorder()
	api.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestLogger(t *testing.T) {
	handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestRESTResources_MalformedIDs(t *testing.T) {
	api := newTestAPI("", "")

	tests := []struct {
		name   string
		method string
		target string
		body   any
	}{
		{name: "get patient", method: http.MethodGet, target: "/ws/rest/v1/patient/abc"},
		{name: "delete patient", method: http.MethodDelete, target: "/ws/rest/v1/patient/abc?purge=true"},
		{name: "get visit", method: http.MethodGet, target: "/ws/rest/v1/visit/abc"},
		{name: "end visit", method: http.MethodPost, target: "/ws/rest/v1/visit/abc", body: VisitUpdateRequest{StopDatetime: timePtr(time.Now())}},
		{name: "start visit", method: http.MethodPost, target: "/ws/rest/v1/visit", body: VisitRequest{Patient: "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, api, tt.method, tt.target, tt.body)

			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, "Not Found", decodeError(t, w).Error)
		})
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
