package domain

import "time"

// Config is the main application configuration, populated by the viper
// manager in internal/config.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Models   ModelsConfig   `mapstructure:"models"`
	Cache    CacheConfig    `mapstructure:"cache"`
	History  HistoryConfig  `mapstructure:"history"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RequestsPerSec  float64       `mapstructure:"requests_per_sec"`
	RateBurst       int           `mapstructure:"rate_burst"`
	RateLimitEnable bool          `mapstructure:"rate_limit_enable"`
}

// CatalogConfig configures where the reference catalog is loaded from.
type CatalogConfig struct {
	Source string `mapstructure:"source"` // "embedded", "file", "postgres"
	Path   string `mapstructure:"path"`
}

// EngineConfig holds the tunables of the triage pipeline.
type EngineConfig struct {
	RequestTimeout       time.Duration `mapstructure:"request_timeout"`
	ClassifierTimeout    time.Duration `mapstructure:"classifier_timeout"`
	MinPatternMatches    int           `mapstructure:"min_pattern_matches"`
	GenericConfidence    float64       `mapstructure:"generic_confidence"`
	RequiredPenalty      float64       `mapstructure:"required_penalty"`
	AgePenalty           float64       `mapstructure:"age_penalty"`
	LowEvidenceFactor    float64       `mapstructure:"low_evidence_factor"`
	HighEvidenceFactor   float64       `mapstructure:"high_evidence_factor"`
	LowEvidenceCount     int           `mapstructure:"low_evidence_count"`
	HighEvidenceCount    int           `mapstructure:"high_evidence_count"`
	ExplanationTopN      int           `mapstructure:"explanation_top_n"`
	DefaultAge           int           `mapstructure:"default_age"`
}

// ModelsConfig configures the frozen classifier artifacts.
type ModelsConfig struct {
	Dir             string `mapstructure:"dir"`
	ForestArtifact  string `mapstructure:"forest_artifact"`
	BoostedArtifact string `mapstructure:"boosted_artifact"`
}

// CacheConfig configures the triage result cache.
type CacheConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxEntries  int           `mapstructure:"max_entries"`
	TTL         time.Duration `mapstructure:"ttl"`
	RedisURL    string        `mapstructure:"redis_url"`
	RedisEnable bool          `mapstructure:"redis_enable"`
	PoolSize    int           `mapstructure:"pool_size"`
	PoolTimeout time.Duration `mapstructure:"pool_timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
}

// HistoryConfig selects and configures the audit store backend.
type HistoryConfig struct {
	Backend    string `mapstructure:"backend"` // "sqlite", "postgres", "none"
	SQLitePath string `mapstructure:"sqlite_path"`
}

// DatabaseConfig configures the Postgres connection used by the
// postgres history backend and catalog source.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// LoggingConfig configures the logrus logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json", "text"
	Output string `mapstructure:"output"` // "stdout", "stderr", file path
}
