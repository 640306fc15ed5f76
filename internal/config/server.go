package config

import "os"

// Store backends
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	Store        string
	TemplatesDir string
	StaticDir    string
	APIUsername  string
	APIPassword  string
}

// LoadServerConfig loads server configuration from environment variables
func LoadServerConfig() ServerConfig {
	return LoadServerConfigFrom(os.Getenv)
}

// LoadServerConfigFrom loads server configuration using the given lookup function
func LoadServerConfigFrom(getenv func(string) string) ServerConfig {
	port := getenv("PORT")
	if port == "" {
		port = "8080" // Default to port 8080
	}

	store := getenv("STORE")
	if store != StoreMemory {
		store = StorePostgres
	}

	templatesDir := getenv("TEMPLATES_DIR")
	if templatesDir == "" {
		templatesDir = "templates"
	}

	staticDir := getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "static"
	}

	return ServerConfig{
		Port:         port,
		Store:        store,
		TemplatesDir: templatesDir,
		StaticDir:    staticDir,
		APIUsername:  getenv("API_USERNAME"),
		APIPassword:  getenv("API_PASSWORD"),
	}
}
