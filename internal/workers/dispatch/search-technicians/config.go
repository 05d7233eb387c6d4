package searchtechnicians

import (
	"time"

	"ac-dispatch-workers/internal/common/config"
)

type Config struct {
	Timeout              time.Duration
	Index                string
	DefaultSize          int
	DefaultMaxJobsPerDay int
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:              10 * time.Second,
		Index:                "technicians",
		DefaultSize:          50,
		DefaultMaxJobsPerDay: 4,
	}
}

func NewConfig(app *config.Config) *Config {
	cfg := DefaultConfig()
	if wc := config.GetWorkerConfig(app, TaskType); wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	if idx := app.Database.Elasticsearch.TechnicianIndex; idx != "" {
		cfg.Index = idx
	}
	if app.Matching.DefaultMaxJobsPerDay > 0 {
		cfg.DefaultMaxJobsPerDay = app.Matching.DefaultMaxJobsPerDay
	}
	return cfg
}
