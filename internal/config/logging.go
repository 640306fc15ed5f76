package config

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string
}

// LoadLogConfig loads logging configuration from environment variables
func LoadLogConfig(getenv func(string) string) LogConfig {
	cfg := LogConfig{
		Level:  getenv("LOG_LEVEL"),
		Format: getenv("LOG_FORMAT"),
	}
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Format != "console" {
		cfg.Format = "json"
	}
	return cfg
}
