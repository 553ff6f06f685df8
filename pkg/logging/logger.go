// Package logging builds the service logger and sanitizes sensitive values
// before they reach log output.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New creates the root logger for the given environment. Local and dev
// environments use the human-readable development encoder at debug level;
// everything else logs structured JSON at info level.
func New(env string) (*zap.Logger, error) {
	var cfg zap.Config
	switch env {
	case "local", "dev":
		cfg = zap.NewDevelopmentConfig()
	default:
		cfg = zap.NewProductionConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
