package app

import (
	"errors"
	"time"
)

// Config holds everything an App instance needs to run one pass.
type Config struct {
	// DefinitionsPath points at a definition file or a directory of them.
	DefinitionsPath string
	// ResultsPath is the directory result records are written to.
	ResultsPath string
	// Target optionally restricts the pass to a single constant id.
	Target string

	LogFormat string
	LogLevel  string

	// Workers bounds executor concurrency; zero selects the default.
	Workers int
	// Timeout bounds one artifact's execution; zero selects the default.
	Timeout time.Duration
}

// NewConfig validates a Config and applies defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.DefinitionsPath == "" {
		return nil, errors.New("DefinitionsPath is a required configuration field and cannot be empty")
	}
	if cfg.ResultsPath == "" {
		cfg.ResultsPath = "results"
	}
	return &cfg, nil
}
