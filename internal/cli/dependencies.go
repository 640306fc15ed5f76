package cli

import (
	"fmt"
	"path/filepath"

	"github.com/patientchart/vitals/internal/config"
	"github.com/patientchart/vitals/internal/handlers"
	"github.com/patientchart/vitals/internal/metrics"
	"github.com/patientchart/vitals/internal/services"
)

// Repositories groups the persistence backends the services run on
type Repositories struct {
	Patients services.PatientRepository
	Visits   services.VisitRepository
	Vitals   services.VitalsRepository
}

// BuildServerDependencies wires services and handlers on top of repos
func BuildServerDependencies(cfg config.ServerConfig, repos Repositories) (ServerDependencies, error) {
	deps := ServerDependencies{ServerConfig: cfg}

	// Create service layer
	patientService := services.NewPatientService(repos.Patients, repos.Visits)
	visitService := services.NewVisitService(repos.Patients, repos.Visits)
	vitalsService := services.NewVitalsService(repos.Vitals, visitService)

	page, err := handlers.NewVitalsPageHandler(filepath.Join(cfg.TemplatesDir, "vitals.html"), patientService, visitService, vitalsService)
	if err != nil {
		return deps, fmt.Errorf("failed to create vitals page handler: %w", err)
	}
	deps.VitalsPageHandler = page
	deps.SaveVitalsHandler = handlers.NewSaveVitalsHandler(page)
	deps.DeleteVitalsHandler = handlers.NewDeleteVitalsHandler(vitalsService)

	deps.PatientAPIHandler = handlers.NewPatientResourceHandler(patientService)
	deps.VisitAPIHandler = handlers.NewVisitResourceHandler(visitService)
	deps.MetricsHandler = metrics.Handler()

	return deps, nil
}
