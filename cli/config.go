package cli

import (
	"fmt"
	"io"

	"github.com/ant1kdream/forecast-weather-qa-tests/datasource"
	"github.com/ant1kdream/forecast-weather-qa-tests/logger"
)

// LoadConfig resolves the configuration from the config file, the environment
// and flag overrides, in that order of increasing precedence. Empty overrides are ignored.
func LoadConfig(path, provider, logLevel string, getenv func(string) string) (*datasource.Config, error) {
	cfg, err := datasource.LoadWithFallback(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(getenv)
	if provider != "" {
		cfg.Provider = provider
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// NewLogger builds the logger described by cfg, writing to w
func NewLogger(cfg *datasource.Config, w io.Writer) (*logger.Logger, error) {
	return logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: w,
	})
}
