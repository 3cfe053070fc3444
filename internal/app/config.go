package app

import "fmt"

// Config holds everything an App instance needs to run one session.
type Config struct {
	// GridPath is a .hcl file or a directory of .hcl files.
	GridPath string
	// OutPath receives the exported graph JSON; empty means stdout.
	OutPath string
	// Lazy defers invariant checking from mutation time to diagnostics.
	Lazy bool
	// Sealed asserts the declaration is complete, escalating missing-create
	// findings to errors.
	Sealed    bool
	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config and fills defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.GridPath == "" {
		return nil, fmt.Errorf("grid path is required")
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return &cfg, nil
}
