package config

import (
	"strings"
	"testing"
)

func envFrom(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestLoadServerConfigFrom(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want ServerConfig
	}{
		{
			name: "defaults",
			env:  map[string]string{},
			want: ServerConfig{Port: "8080", Store: StorePostgres, TemplatesDir: "templates", StaticDir: "static"},
		},
		{
			name: "memory store and custom port",
			env:  map[string]string{"PORT": "9090", "STORE": "memory", "TEMPLATES_DIR": "/srv/templates", "STATIC_DIR": "/srv/static"},
			want: ServerConfig{Port: "9090", Store: StoreMemory, TemplatesDir: "/srv/templates", StaticDir: "/srv/static"},
		},
		{
			name: "unknown store falls back to postgres",
			env:  map[string]string{"STORE": "redis"},
			want: ServerConfig{Port: "8080", Store: StorePostgres, TemplatesDir: "templates", StaticDir: "static"},
		},
		{
			name: "api credentials",
			env:  map[string]string{"API_USERNAME": "admin", "API_PASSWORD": "Admin123"},
			want: ServerConfig{Port: "8080", Store: StorePostgres, TemplatesDir: "templates", StaticDir: "static", APIUsername: "admin", APIPassword: "Admin123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LoadServerConfigFrom(envFrom(tt.env))
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestLoadFixtureAPIConfig(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		wantErr     string
		wantBaseURL string
		wantCreds   bool
	}{
		{
			name:        "base url only",
			env:         map[string]string{"E2E_BASE_URL": "http://localhost:8080/"},
			wantBaseURL: "http://localhost:8080",
		},
		{
			name:        "with credentials",
			env:         map[string]string{"E2E_BASE_URL": "http://localhost:8080", "API_USERNAME": "admin", "API_PASSWORD": "Admin123"},
			wantBaseURL: "http://localhost:8080",
			wantCreds:   true,
		},
		{
			name:    "missing base url",
			env:     map[string]string{},
			wantErr: "E2E_BASE_URL is required",
		},
		{
			name:    "invalid base url",
			env:     map[string]string{"E2E_BASE_URL": "not a url"},
			wantErr: "E2E_BASE_URL is invalid",
		},
		{
			name:    "username without password",
			env:     map[string]string{"E2E_BASE_URL": "http://localhost:8080", "API_USERNAME": "admin"},
			wantErr: "must be set together",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFixtureAPIConfig(envFrom(tt.env))

			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.BaseURL != tt.wantBaseURL {
				t.Errorf("expected base url %q, got %q", tt.wantBaseURL, cfg.BaseURL)
			}
			if cfg.HasCredentials() != tt.wantCreds {
				t.Errorf("expected HasCredentials %v", tt.wantCreds)
			}
		})
	}
}

func TestLoadPostgresConfig(t *testing.T) {
	env := map[string]string{
		"POSTGRES_USER":     "openmrs",
		"POSTGRES_PASSWORD": "secret",
		"POSTGRES_DB":       "chart",
		"POSTGRES_HOSTNAME": "db",
	}

	cfg, err := LoadPostgresConfig(envFrom(env))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "host=db user=openmrs password=secret dbname=chart sslmode=disable"
	if cfg.ConnectionString() != want {
		t.Errorf("expected %q, got %q", want, cfg.ConnectionString())
	}

	for _, key := range []string{"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB", "POSTGRES_HOSTNAME"} {
		t.Run("missing "+key, func(t *testing.T) {
			partial := map[string]string{}
			for k, v := range env {
				if k != key {
					partial[k] = v
				}
			}
			if _, err := LoadPostgresConfig(envFrom(partial)); err == nil {
				t.Errorf("expected error when %s is missing", key)
			}
		})
	}
}

func TestLoadLogConfig(t *testing.T) {
	cfg := LoadLogConfig(envFrom(map[string]string{}))
	if cfg.Level != "info" || cfg.Format != "json" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}

	cfg = LoadLogConfig(envFrom(map[string]string{"LOG_LEVEL": "debug", "LOG_FORMAT": "console"}))
	if cfg.Level != "debug" || cfg.Format != "console" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}
