package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	internalcli "github.com/patientchart/vitals/internal/cli"
	"github.com/patientchart/vitals/internal/config"
	"github.com/patientchart/vitals/internal/database"
	"github.com/patientchart/vitals/internal/fixtures"
	"github.com/patientchart/vitals/internal/logging"
	"github.com/patientchart/vitals/internal/repository"
	"github.com/patientchart/vitals/internal/repository/memory"
)

var version = "0.1.0"

// buildRepositories opens the configured store
func buildRepositories(store string) (internalcli.Repositories, func(), error) {
	if store == config.StoreMemory {
		log.Warn().Msg("Using in-memory store, data is lost on shutdown")
		s := memory.NewStore()
		return internalcli.Repositories{Patients: s, Visits: s, Vitals: s}, func() {}, nil
	}

	if err := database.Connect(); err != nil {
		return internalcli.Repositories{}, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info().Msg("Connected to database successfully")

	if err := database.RunMigrations(); err != nil {
		database.Close()
		return internalcli.Repositories{}, nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	repos := internalcli.Repositories{
		Patients: repository.NewPatientRepository(),
		Visits:   repository.NewVisitRepository(),
		Vitals:   repository.NewVitalsRepository(),
	}
	return repos, func() { database.Close() }, nil
}

// ServeCommand returns the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the patient chart web server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "store",
				Usage:   "persistence backend (postgres or memory)",
				EnvVars: []string{"STORE"},
				Value:   config.StorePostgres,
			},
		},
		Action: func(c *cli.Context) error {
			cfg := config.LoadServerConfig()
			if c.String("store") == config.StoreMemory {
				cfg.Store = config.StoreMemory
			}

			repos, closeStore, err := buildRepositories(cfg.Store)
			if err != nil {
				return err
			}
			defer closeStore()

			// Build all server dependencies
			deps, err := internalcli.BuildServerDependencies(cfg, repos)
			if err != nil {
				return err
			}

			return internalcli.RunServe(deps)
		},
	}
}

// MigrateCommand returns the migrate command
func MigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create or update the database schema",
		Action: func(c *cli.Context) error {
			if err := database.Connect(); err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer database.Close()

			if err := database.RunMigrations(); err != nil {
				return fmt.Errorf("failed to run database migrations: %w", err)
			}
			log.Info().Msg("Database schema is up to date")
			return nil
		},
	}
}

// fixtureOutput is printed by fixture create and read back by fixture teardown
type fixtureOutput struct {
	Patient string `json:"patient"`
	Visit   string `json:"visit"`
}

// FixtureCommand returns the fixture command used to prepare manual or CI test runs
func FixtureCommand() *cli.Command {
	newClient := func() (*fixtures.HTTPClient, error) {
		cfg, err := config.LoadFixtureAPIConfig(os.Getenv)
		if err != nil {
			return nil, fmt.Errorf("missing required fixture API configuration: %w", err)
		}
		return fixtures.NewClient(cfg), nil
	}

	return &cli.Command{
		Name:  "fixture",
		Usage: "Create or remove a test patient with an active visit",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Register a random patient and start a visit",
				Action: func(c *cli.Context) error {
					client, err := newClient()
					if err != nil {
						return err
					}

					patient, err := client.GenerateRandomPatient(c.Context)
					if err != nil {
						return err
					}
					visit, err := client.StartVisit(c.Context, patient.UUID)
					if err != nil {
						return err
					}

					return json.NewEncoder(c.App.Writer).Encode(fixtureOutput{Patient: patient.UUID, Visit: visit.UUID})
				},
			},
			{
				Name:  "teardown",
				Usage: "End the visit and delete the patient",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "patient", Usage: "patient UUID", Required: true},
					&cli.StringFlag{Name: "visit", Usage: "visit UUID", Required: true},
				},
				Action: func(c *cli.Context) error {
					client, err := newClient()
					if err != nil {
						return err
					}

					// The visit has to end before the patient can be deleted
					if err := client.EndVisit(c.Context, &fixtures.Visit{UUID: c.String("visit")}); err != nil {
						return err
					}
					return client.DeletePatient(c.Context, c.String("patient"))
				},
			},
		},
	}
}

func main() {
	// Load environment variables from .env file
	envErr := godotenv.Load()
	logging.Setup(config.LoadLogConfig(os.Getenv))
	if envErr != nil {
		log.Warn().Msg(".env file not found, using environment variables")
	}

	app := &cli.App{
		Name:    "patientchart",
		Usage:   "Patient chart vitals and biometrics service",
		Version: version,
		Commands: []*cli.Command{
			ServeCommand(),
			MigrateCommand(),
			FixtureCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("Command failed")
	}
}
