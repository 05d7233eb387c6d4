package assigntechnician

import (
	"time"

	"ac-dispatch-workers/internal/common/config"
)

type Config struct {
	Timeout              time.Duration
	DefaultMaxJobsPerDay int
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:              15 * time.Second,
		DefaultMaxJobsPerDay: 4,
	}
}

func NewConfig(app *config.Config) *Config {
	cfg := DefaultConfig()
	if wc := config.GetWorkerConfig(app, TaskType); wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	if app.Matching.DefaultMaxJobsPerDay > 0 {
		cfg.DefaultMaxJobsPerDay = app.Matching.DefaultMaxJobsPerDay
	}
	return cfg
}
