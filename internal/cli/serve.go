package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/patientchart/vitals/internal/config"
	"github.com/patientchart/vitals/internal/handlers"
)

// ServerDependencies holds all dependencies needed for the server
type ServerDependencies struct {
	ServerConfig        config.ServerConfig
	VitalsPageHandler   http.Handler
	SaveVitalsHandler   http.Handler
	DeleteVitalsHandler http.Handler
	PatientAPIHandler   http.Handler
	VisitAPIHandler     http.Handler
	MetricsHandler      http.Handler
}

// RunServe starts the patient chart web server
func RunServe(deps ServerDependencies) error {
	listener, server, err := StartServer(deps)
	if err != nil {
		return err
	}
	defer listener.Close()

	return WaitForShutdown(server, nil)
}

// NewRouter mounts the chart pages, the REST fixture API and the metrics endpoint
func NewRouter(deps ServerDependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(handlers.RequestLogger)

	r.Route("/patient/{patientUUID}/chart/vitals-and-biometrics", func(r chi.Router) {
		r.Get("/", deps.VitalsPageHandler.ServeHTTP)
		r.Post("/", deps.SaveVitalsHandler.ServeHTTP)
		r.Post("/{vitalsUUID}", deps.SaveVitalsHandler.ServeHTTP)
		r.Post("/{vitalsUUID}/delete", deps.DeleteVitalsHandler.ServeHTTP)
	})

	r.Route("/ws/rest/v1", func(r chi.Router) {
		r.Use(handlers.BasicAuth(deps.ServerConfig.APIUsername, deps.ServerConfig.APIPassword))
		r.Handle("/patient", deps.PatientAPIHandler)
		r.Handle("/patient/{uuid}", deps.PatientAPIHandler)
		r.Handle("/visit", deps.VisitAPIHandler)
		r.Handle("/visit/{uuid}", deps.VisitAPIHandler)
	})

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	staticDir := deps.ServerConfig.StaticDir
	if staticDir == "" {
		staticDir = "static"
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))

	return r
}

// StartServer creates and starts the HTTP server, returning the listener and server
func StartServer(deps ServerDependencies) (net.Listener, *http.Server, error) {
	// Create listener
	addr := fmt.Sprintf(":%s", deps.ServerConfig.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create listener: %w", err)
	}

	server := &http.Server{
		Handler:           NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", listener.Addr().String()).Msg("Server listening")
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Server error")
		}
	}()

	return listener, server, nil
}

// WaitForShutdown waits for a shutdown signal and gracefully shuts down the server
// If shutdown channel is nil, a new channel will be created and registered with signal.Notify
func WaitForShutdown(server *http.Server, shutdown chan os.Signal) error {
	return WaitForShutdownWithTimeout(server, shutdown, 30*time.Second)
}

// WaitForShutdownWithTimeout allows specifying a custom shutdown timeout (primarily for testing)
func WaitForShutdownWithTimeout(server *http.Server, shutdown chan os.Signal, shutdownTimeout time.Duration) error {
	if shutdown == nil {
		shutdown = make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	}

	sig := <-shutdown
	log.Info().Str("signal", sig.String()).Msg("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		// Force close once the grace period is over
		if err := server.Close(); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	log.Info().Msg("Server stopped")
	return nil
}
