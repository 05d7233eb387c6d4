// internal/common/config/config.go
package config

import (
	"fmt"

	"ac-dispatch-workers/internal/matching"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Matching      MatchingConfig          `mapstructure:"matching"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
	Registry      RegistryConfig          `mapstructure:"registry"`
	Logging       LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	HTTPPort    int    `mapstructure:"http_port"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses       []string `mapstructure:"addresses"`
	Username        string   `mapstructure:"username"`
	Password        string   `mapstructure:"password"`
	SSLEnabled      bool     `mapstructure:"ssl_enabled"`
	URL             string   `mapstructure:"url"` // Single URL for backwards compatibility
	TechnicianIndex string   `mapstructure:"technician_index"`
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// --- Matching ---

// MatchingConfig holds the scoring policy and roster settings shared by the
// dispatch workers.
type MatchingConfig struct {
	Weights              WeightsConfig `mapstructure:"weights"`
	DefaultMaxJobsPerDay int           `mapstructure:"default_max_jobs_per_day"`
	MaxResults           int           `mapstructure:"max_results"`
	SlowRankingMs        int           `mapstructure:"slow_ranking_ms"`
	CacheTTL             int           `mapstructure:"cache_ttl"` // seconds
}

// WeightsConfig mirrors matching.Weights. Pointer fields tell an omitted key
// apart from an explicit zero.
type WeightsConfig struct {
	SkillCoverage     *float64 `mapstructure:"skill_coverage"`
	Specialization    *float64 `mapstructure:"specialization"`
	AreaMatch         *float64 `mapstructure:"area_match"`
	AreaMismatch      *float64 `mapstructure:"area_mismatch"`
	Available         *float64 `mapstructure:"available"`
	Busy              *float64 `mapstructure:"busy"`
	ComplexSenior     *float64 `mapstructure:"complex_senior"`
	ComplexJunior     *float64 `mapstructure:"complex_junior"`
	HighRating        *float64 `mapstructure:"high_rating"`
	HighFirstTimeFix  *float64 `mapstructure:"high_first_time_fix"`
	IdleBonus         *float64 `mapstructure:"idle_bonus"`
	EmergencyReady    *float64 `mapstructure:"emergency_ready"`
	MissingVehicle    *float64 `mapstructure:"missing_vehicle"`
	RatingThreshold   *float64 `mapstructure:"rating_threshold"`
	FixRateThreshold  *float64 `mapstructure:"fix_rate_threshold"`
	SeniorYearsCutoff *int     `mapstructure:"senior_years_cutoff"`
}

// ToWeights overlays the configured values on matching.DefaultWeights.
func (w WeightsConfig) ToWeights() matching.Weights {
	out := matching.DefaultWeights()
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	set(&out.SkillCoverage, w.SkillCoverage)
	set(&out.Specialization, w.Specialization)
	set(&out.AreaMatch, w.AreaMatch)
	set(&out.AreaMismatch, w.AreaMismatch)
	set(&out.Available, w.Available)
	set(&out.Busy, w.Busy)
	set(&out.ComplexSenior, w.ComplexSenior)
	set(&out.ComplexJunior, w.ComplexJunior)
	set(&out.HighRating, w.HighRating)
	set(&out.HighFirstTimeFix, w.HighFirstTimeFix)
	set(&out.IdleBonus, w.IdleBonus)
	set(&out.EmergencyReady, w.EmergencyReady)
	set(&out.MissingVehicle, w.MissingVehicle)
	set(&out.RatingThreshold, w.RatingThreshold)
	set(&out.FixRateThreshold, w.FixRateThreshold)
	if w.SeniorYearsCutoff != nil {
		out.SeniorYearsCutoff = *w.SeniorYearsCutoff
	}
	return out
}

// --- Notifications ---

// NotificationConfig holds settings for the send-assignment-notification worker.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled       bool   `mapstructure:"enabled"`
		SenderID      string `mapstructure:"sender_id"`
		EmergencyOnly bool   `mapstructure:"emergency_only"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

type ObservabilityConfig struct {
	ServiceName    string `mapstructure:"service_name"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
	TracingEnabled bool   `mapstructure:"tracing_enabled"`
}

type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
