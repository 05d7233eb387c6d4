package calculatematchscore

import (
	"time"

	"ac-dispatch-workers/internal/common/config"
	"ac-dispatch-workers/internal/matching"
)

type Config struct {
	Timeout              time.Duration
	Weights              matching.Weights
	DefaultMaxJobsPerDay int
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:              10 * time.Second,
		Weights:              matching.DefaultWeights(),
		DefaultMaxJobsPerDay: 4,
	}
}

func NewConfig(app *config.Config) *Config {
	cfg := DefaultConfig()
	if wc := config.GetWorkerConfig(app, TaskType); wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	cfg.Weights = app.Matching.Weights.ToWeights()
	if app.Matching.DefaultMaxJobsPerDay > 0 {
		cfg.DefaultMaxJobsPerDay = app.Matching.DefaultMaxJobsPerDay
	}
	return cfg
}
