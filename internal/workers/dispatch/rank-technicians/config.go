package ranktechnicians

import (
	"time"

	"ac-dispatch-workers/internal/common/config"
	"ac-dispatch-workers/internal/matching"
)

type Config struct {
	Timeout              time.Duration
	Weights              matching.Weights
	DefaultMaxJobsPerDay int
	MaxResults           int
	SlowRanking          time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:              30 * time.Second,
		Weights:              matching.DefaultWeights(),
		DefaultMaxJobsPerDay: 4,
		MaxResults:           10,
		SlowRanking:          200 * time.Millisecond,
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
	cfg.MaxResults = app.Matching.MaxResults
	if app.Matching.SlowRankingMs > 0 {
		cfg.SlowRanking = config.GetDuration(app.Matching.SlowRankingMs)
	}
	return cfg
}
