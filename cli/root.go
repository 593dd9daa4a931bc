// Package cli wires configuration, logging and the provider into the forecast command.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ant1kdream/forecast-weather-qa-tests/datasource"
	"github.com/ant1kdream/forecast-weather-qa-tests/logger"
	"github.com/ant1kdream/forecast-weather-qa-tests/providers"
	"github.com/ant1kdream/forecast-weather-qa-tests/reporter"

	"github.com/spf13/cobra"
)

// Options carries the process hooks the command runs against
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
	Exit   func(int)
	Clock  func() time.Time

	// NewSource builds the forecast source; providers.New when nil
	NewSource func(*datasource.Config, *logger.Logger) (datasource.ForecastSource, error)
}

func (o *Options) setDefaults() {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Getenv == nil {
		o.Getenv = os.Getenv
	}
	if o.Exit == nil {
		o.Exit = os.Exit
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.NewSource == nil {
		o.NewSource = providers.New
	}
}

// NewRootCmd creates the forecast command
func NewRootCmd(opts Options) *cobra.Command {
	opts.setDefaults()

	var (
		configPath string
		provider   string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "forecast <city>",
		Short: "Print tomorrow's weather forecast for a city",
		Long: `forecast looks up a city with the configured weather provider and prints
tomorrow's date, a weather-state label and six weather parameters.
Unknown cities print a "city not found" line and exit with status 1.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Past argument validation, usage output would only hide the real error
			cmd.SilenceUsage = true

			cfg, err := LoadConfig(configPath, provider, logLevel, opts.Getenv)
			if err != nil {
				return err
			}

			log, err := NewLogger(cfg, opts.Stderr)
			if err != nil {
				return err
			}

			source, err := opts.NewSource(cfg, log)
			if err != nil {
				return fmt.Errorf("failed to create provider: %w", err)
			}

			r := reporter.New(source, opts.Stdout, log)
			r.Exit = opts.Exit
			r.Clock = opts.Clock
			r.Timeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second
			r.Report(cmd.Context(), args[0])
			return nil
		},
	}

	cmd.SetOut(opts.Stderr)
	cmd.SetErr(opts.Stderr)

	cmd.Flags().StringVar(&configPath, "config", "", "path to a TOML config file")
	cmd.Flags().StringVar(&provider, "provider", "", "weather provider: openmeteo, openweathermap or weatherapi")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")

	return cmd
}

// Execute runs the command with args. It returns reporter.ExitUsage when the
// command fails before a lookup starts; lookups terminate through opts.Exit.
func Execute(ctx context.Context, args []string, opts Options) int {
	cmd := NewRootCmd(opts)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		return reporter.ExitUsage
	}
	return reporter.ExitOK
}
