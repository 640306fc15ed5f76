package testutil

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"

	"github.com/patientchart/vitals/internal/config"
	"github.com/patientchart/vitals/internal/database"
)

// TestDatabase represents an isolated test database
type TestDatabase struct {
	DB         *sql.DB
	SchemaName string
	masterDB   *sql.DB
}

// SetupTestDatabase creates an isolated schema with the chart tables.
// Teardown is registered with t.Cleanup.
func SetupTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()

	connConfig, err := config.LoadPostgresConfig(func(key string) string {
		switch key {
		case "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB":
			return getEnvOrDefault(key, "postgres")
		case "POSTGRES_HOSTNAME":
			return getEnvOrDefault(key, "localhost")
		default:
			return os.Getenv(key)
		}
	})
	if err != nil {
		t.Fatalf("Failed to load postgres config: %v", err)
	}

	masterDB, err := sql.Open("postgres", connConfig.ConnectionString())
	if err != nil {
		t.Fatalf("Failed to connect to master database: %v", err)
	}
	if err := masterDB.Ping(); err != nil {
		masterDB.Close()
		t.Skipf("Postgres not reachable, skipping: %v", err)
	}

	// Generate unique schema name for this test
	schemaName := fmt.Sprintf("test_chart_%d_%d", time.Now().UnixNano(), rand.Intn(10000))
	if _, err := masterDB.Exec(fmt.Sprintf("CREATE SCHEMA %s", schemaName)); err != nil {
		masterDB.Close()
		t.Fatalf("Failed to create test schema: %v", err)
	}

	td := &TestDatabase{SchemaName: schemaName, masterDB: masterDB}
	t.Cleanup(func() { td.Teardown(t) })

	schemaConfig := *connConfig
	schemaConfig.Schema = schemaName
	td.DB, err = database.Open(&schemaConfig)
	if err != nil {
		t.Fatalf("Failed to connect to test schema: %v", err)
	}
	td.DB.SetMaxOpenConns(5)
	td.DB.SetMaxIdleConns(2)

	if err := database.Migrate(td.DB); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return td
}

// Teardown drops the test schema and closes connections
func (td *TestDatabase) Teardown(t *testing.T) {
	t.Helper()

	if td.DB != nil {
		td.DB.Close()
		td.DB = nil
	}

	if td.masterDB != nil {
		_, err := td.masterDB.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", td.SchemaName))
		if err != nil {
			t.Logf("Warning: Failed to drop test schema %s: %v", td.SchemaName, err)
		}
		td.masterDB.Close()
		td.masterDB = nil
	}
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
