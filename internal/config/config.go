package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/respicare/triage-engine/internal/domain"
)

// Manager loads and validates application configuration using Viper.
type Manager struct {
	config *domain.Config
}

// NewManager creates a configuration manager and performs the initial
// load from file, environment and defaults.
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources.
func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/respicare-triage/")

	viper.SetEnvPrefix("RESPICARE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	// Config file is optional; defaults and env vars suffice.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values.
func (m *Manager) setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.requests_per_sec", 5.0)
	viper.SetDefault("server.rate_burst", 10)
	viper.SetDefault("server.rate_limit_enable", true)

	// Catalog defaults
	viper.SetDefault("catalog.source", "embedded")
	viper.SetDefault("catalog.path", "")

	// Engine defaults
	viper.SetDefault("engine.request_timeout", "10s")
	viper.SetDefault("engine.classifier_timeout", "2s")
	viper.SetDefault("engine.min_pattern_matches", 3)
	viper.SetDefault("engine.generic_confidence", 0.4)
	viper.SetDefault("engine.required_penalty", 0.15)
	viper.SetDefault("engine.age_penalty", 0.20)
	viper.SetDefault("engine.low_evidence_factor", 0.5)
	viper.SetDefault("engine.high_evidence_factor", 1.1)
	viper.SetDefault("engine.low_evidence_count", 2)
	viper.SetDefault("engine.high_evidence_count", 8)
	viper.SetDefault("engine.explanation_top_n", 5)
	viper.SetDefault("engine.default_age", 35)

	// Model defaults
	viper.SetDefault("models.dir", "models")
	viper.SetDefault("models.forest_artifact", "forest.json")
	viper.SetDefault("models.boosted_artifact", "boosted.json")

	// Cache defaults
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.max_entries", 1024)
	viper.SetDefault("cache.ttl", "15m")
	viper.SetDefault("cache.redis_url", "redis://localhost:6379")
	viper.SetDefault("cache.redis_enable", false)
	viper.SetDefault("cache.pool_size", 10)
	viper.SetDefault("cache.pool_timeout", "4s")
	viper.SetDefault("cache.max_retries", 3)

	// History defaults
	viper.SetDefault("history.backend", "sqlite")
	viper.SetDefault("history.sqlite_path", "data/triage_history.db")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.database", "respicare_triage")
	viper.SetDefault("database.username", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_conns", 25)
	viper.SetDefault("database.min_conns", 2)
	viper.SetDefault("database.conn_max_lifetime", "5m")
	viper.SetDefault("database.conn_max_idle_time", "1m")
	viper.SetDefault("database.migrations_path", "migrations")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
}

// GetConfig returns the complete configuration.
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration.
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetEngineConfig returns triage engine configuration.
func (m *Manager) GetEngineConfig() *domain.EngineConfig {
	return &m.config.Engine
}

// GetDatabaseConfig returns database configuration.
func (m *Manager) GetDatabaseConfig() *domain.DatabaseConfig {
	return &m.config.Database
}

// Reload reloads the configuration.
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration.
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	switch config.Catalog.Source {
	case "embedded", "file", "postgres":
	default:
		return fmt.Errorf("invalid catalog source: %s", config.Catalog.Source)
	}
	if config.Catalog.Source == "file" && config.Catalog.Path == "" {
		return fmt.Errorf("catalog path is required for file source")
	}

	if config.Engine.RequestTimeout <= 0 {
		return fmt.Errorf("engine request timeout must be positive")
	}
	if config.Engine.ClassifierTimeout <= 0 {
		return fmt.Errorf("engine classifier timeout must be positive")
	}
	if config.Engine.MinPatternMatches < 1 {
		return fmt.Errorf("min pattern matches must be at least 1")
	}
	if config.Engine.GenericConfidence < 0 || config.Engine.GenericConfidence > 1 {
		return fmt.Errorf("generic confidence must be in [0,1]")
	}

	switch config.History.Backend {
	case "sqlite", "postgres", "none":
	default:
		return fmt.Errorf("invalid history backend: %s", config.History.Backend)
	}
	if config.History.Backend == "sqlite" && config.History.SQLitePath == "" {
		return fmt.Errorf("sqlite path is required for sqlite history backend")
	}
	if config.History.Backend == "postgres" {
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if config.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if config.Database.Username == "" {
			return fmt.Errorf("database username is required")
		}
	}

	if config.Cache.RedisEnable && config.Cache.RedisURL == "" {
		return fmt.Errorf("redis URL is required when the redis cache tier is enabled")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// GetDatabaseConnectionString returns a formatted database connection
// string for database/sql drivers.
func (m *Manager) GetDatabaseConnectionString() string {
	db := m.config.Database
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		db.Host, db.Port, db.Username, db.Password, db.Database, db.SSLMode)
}

// GetDatabaseURL returns the database URL form used by the migration
// runner.
func (m *Manager) GetDatabaseURL() string {
	db := m.config.Database
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		db.Username, db.Password, db.Host, db.Port, db.Database, db.SSLMode)
}

// IsProduction returns true if running in production mode.
func (m *Manager) IsProduction() bool {
	return strings.ToLower(viper.GetString("environment")) == "production"
}

// IsDevelopment returns true if running in development mode.
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(viper.GetString("environment"))
	return env == "development" || env == "dev" || env == ""
}
