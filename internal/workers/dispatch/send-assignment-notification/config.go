package sendassignmentnotification

import (
	"time"

	"ac-dispatch-workers/internal/common/config"
)

type Config struct {
	Timeout              time.Duration
	EmailEnabled         bool
	SMSEnabled           bool
	SMSEmergencyOnly     bool
	DefaultMaxJobsPerDay int
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:              15 * time.Second,
		EmailEnabled:         true,
		SMSEnabled:           true,
		DefaultMaxJobsPerDay: 4,
	}
}

func NewConfig(app *config.Config) *Config {
	cfg := DefaultConfig()
	if wc := config.GetWorkerConfig(app, TaskType); wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	cfg.EmailEnabled = app.Notifications.Email.Enabled
	cfg.SMSEnabled = app.Notifications.SMS.Enabled
	cfg.SMSEmergencyOnly = app.Notifications.SMS.EmergencyOnly
	if app.Matching.DefaultMaxJobsPerDay > 0 {
		cfg.DefaultMaxJobsPerDay = app.Matching.DefaultMaxJobsPerDay
	}
	return cfg
}
