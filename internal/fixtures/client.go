// Package fixtures creates and removes the patient and visit a browser
// scenario runs against, through the application's REST API.
package fixtures

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/patientchart/vitals/internal/config"
)

const restPath = "/ws/rest/v1"

// Client manages test fixtures through the REST API
type Client interface {
	GenerateRandomPatient(ctx context.Context) (*Patient, error)
	StartVisit(ctx context.Context, patientUUID string) (*Visit, error)
	EndVisit(ctx context.Context, visit *Visit) error
	DeletePatient(ctx context.Context, patientUUID string) error
}

// HTTPClient implements Client using HTTP
type HTTPClient struct {
	config     *config.FixtureAPIConfig
	httpClient *http.Client
}

// NewClient creates a new fixture API client
func NewClient(cfg *config.FixtureAPIConfig) *HTTPClient {
	return &HTTPClient{
		config:     cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// PatientRequest is the body of a patient registration
type PatientRequest struct {
	Identifier string `json:"identifier,omitempty"`
	GivenName  string `json:"givenName"`
	FamilyName string `json:"familyName"`
	Gender     string `json:"gender"`
	BirthDate  string `json:"birthdate"`
}

// Patient is a registered patient as returned by the API
type Patient struct {
	UUID       string `json:"uuid"`
	Identifier string `json:"identifier"`
	Display    string `json:"display"`
	GivenName  string `json:"givenName"`
	FamilyName string `json:"familyName"`
	Gender     string `json:"gender"`
	BirthDate  string `json:"birthdate"`
}

// VisitRequest is the body of a visit creation
type VisitRequest struct {
	Patient       string     `json:"patient"`
	VisitType     string     `json:"visitType,omitempty"`
	StartDatetime *time.Time `json:"startDatetime,omitempty"`
}

// Visit is a visit as returned by the API
type Visit struct {
	UUID          string     `json:"uuid"`
	Patient       string     `json:"patient"`
	VisitType     string     `json:"visitType"`
	StartDatetime time.Time  `json:"startDatetime"`
	StopDatetime  *time.Time `json:"stopDatetime"`
}

type endVisitRequest struct {
	StopDatetime time.Time `json:"stopDatetime"`
}

// APIError is returned for any non-2xx response
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Message)
}

// GenerateRandomPatient registers a patient with random demographics
func (c *HTTPClient) GenerateRandomPatient(ctx context.Context) (*Patient, error) {
	return c.CreatePatient(ctx, RandomPatient(time.Now()))
}

// CreatePatient registers the given patient
func (c *HTTPClient) CreatePatient(ctx context.Context, req PatientRequest) (*Patient, error) {
	var patient Patient
	if err := c.do(ctx, http.MethodPost, "/patient", req, &patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	log.Debug().Str("patient", patient.UUID).Str("identifier", patient.Identifier).Msg("Fixture patient created")
	return &patient, nil
}

// GetPatient fetches a patient by UUID
func (c *HTTPClient) GetPatient(ctx context.Context, patientUUID string) (*Patient, error) {
	var patient Patient
	if err := c.do(ctx, http.MethodGet, "/patient/"+url.PathEscape(patientUUID), nil, &patient); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

// StartVisit opens a visit for the patient starting now
func (c *HTTPClient) StartVisit(ctx context.Context, patientUUID string) (*Visit, error) {
	now := time.Now().UTC()
	req := VisitRequest{Patient: patientUUID, StartDatetime: &now}

	var visit Visit
	if err := c.do(ctx, http.MethodPost, "/visit", req, &visit); err != nil {
		return nil, fmt.Errorf("failed to start visit: %w", err)
	}

	log.Debug().Str("patient", patientUUID).Str("visit", visit.UUID).Msg("Fixture visit started")
	return &visit, nil
}

// EndVisit stops the visit now
func (c *HTTPClient) EndVisit(ctx context.Context, visit *Visit) error {
	stop := time.Now().UTC()
	if stop.Before(visit.StartDatetime) {
		stop = visit.StartDatetime
	}

	var ended Visit
	if err := c.do(ctx, http.MethodPost, "/visit/"+url.PathEscape(visit.UUID), endVisitRequest{StopDatetime: stop}, &ended); err != nil {
		return fmt.Errorf("failed to end visit: %w", err)
	}
	visit.StopDatetime = ended.StopDatetime

	log.Debug().Str("visit", visit.UUID).Msg("Fixture visit ended")
	return nil
}

// DeletePatient purges the patient together with their visits and vitals
func (c *HTTPClient) DeletePatient(ctx context.Context, patientUUID string) error {
	if err := c.do(ctx, http.MethodDelete, "/patient/"+url.PathEscape(patientUUID)+"?purge=true", nil, nil); err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	log.Debug().Str("patient", patientUUID).Msg("Fixture patient deleted")
	return nil
}

// do sends a JSON request and decodes a JSON response into out when out is not nil
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		reqBody, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+restPath+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.HasCredentials() {
		req.SetBasicAuth(c.config.Username, c.config.Password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn().Int("status", resp.StatusCode).Str("method", method).Str("path", path).Msg("Fixture API error")
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// errorMessage extracts the message of a JSON error body, or returns the raw body
func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return string(bytes.TrimSpace(body))
}
