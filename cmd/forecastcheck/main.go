package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ant1kdream/forecast-weather-qa-tests/cli"
	"github.com/ant1kdream/forecast-weather-qa-tests/collector"
	"github.com/ant1kdream/forecast-weather-qa-tests/datasource"
	"github.com/ant1kdream/forecast-weather-qa-tests/providers"
	"github.com/ant1kdream/forecast-weather-qa-tests/reporter"

	"github.com/spf13/cobra"
)

func main() {
	// Load environment variables from .env file
	if err := datasource.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := reporter.ExitOK
	if err := newCheckCmd(&code).ExecuteContext(ctx); err != nil {
		code = reporter.ExitUsage
	}
	stop()
	os.Exit(code)
}

func newCheckCmd(code *int) *cobra.Command {
	var (
		configPath        string
		provider          string
		logLevel          string
		requestsPerSecond float64
		burstSize         int
		workers           int
	)

	cmd := &cobra.Command{
		Use:   "forecastcheck [city...]",
		Short: "Run the forecast reporter over many cities and check every output",
		Long: `forecastcheck runs the forecast lookup for each configured case and checks
the printed output: tomorrow's date, a known weather state, the six parameters
with their units and plausible values, and "city not found" for unknown cities.
Cities given as arguments replace the configured cases and must resolve.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := cli.LoadConfig(configPath, provider, logLevel, os.Getenv)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("rps") {
				cfg.Check.RequestsPerSecond = requestsPerSecond
			}
			if cmd.Flags().Changed("burst") {
				cfg.Check.Burst = burstSize
			}
			if cmd.Flags().Changed("workers") {
				cfg.Check.Workers = workers
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if len(args) > 0 {
				cfg.Check.Cases = nil
				for _, city := range args {
					cfg.Check.Cases = append(cfg.Check.Cases, datasource.CheckCase{City: city})
				}
			}

			log, err := cli.NewLogger(cfg, os.Stderr)
			if err != nil {
				return err
			}
			defer log.Sync()

			source, err := providers.New(cfg, log)
			if err != nil {
				return fmt.Errorf("failed to create provider: %w", err)
			}

			sweep := collector.NewSweep(source, cfg.Check, log)
			sweep.SetFetchTimeout(time.Duration(cfg.RequestTimeoutSeconds) * time.Second)

			fmt.Fprintf(cmd.OutOrStdout(), "Checking %d cases with %s\n", len(cfg.Check.Cases), source.Name())
			fmt.Fprintf(cmd.OutOrStdout(), "- Rate limit: %.2f runs/second, burst %d\n", cfg.Check.RequestsPerSecond, cfg.Check.Burst)
			fmt.Fprintf(cmd.OutOrStdout(), "- Workers: %d\n", cfg.Check.Workers)
			fmt.Fprintf(cmd.OutOrStdout(), "- Run ID: %s\n\n", sweep.RunID())

			startTime := time.Now()
			results := sweep.Run(cmd.Context())
			if failed := printResults(cmd.OutOrStdout(), results, time.Since(startTime)); failed > 0 {
				*code = reporter.ExitNotFound
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a TOML config file")
	cmd.Flags().StringVar(&provider, "provider", "", "weather provider: openmeteo, openweathermap or weatherapi")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	cmd.Flags().Float64Var(&requestsPerSecond, "rps", 0, "reporter runs per second (overrides config)")
	cmd.Flags().IntVar(&burstSize, "burst", 0, "maximum burst size (overrides config)")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent reporter runs (overrides config)")

	return cmd
}

// printResults writes one line per case and a summary, returning the number of failures
func printResults(w io.Writer, results []collector.Result, total time.Duration) int {
	failed := 0
	for _, r := range results {
		kind := "positive"
		if r.Case.Negative {
			kind = "negative"
		}
		if r.Passed() {
			fmt.Fprintf(w, "PASS  %-8s %q (%v)\n", kind, r.Case.City, r.Elapsed.Round(time.Millisecond))
			continue
		}
		failed++
		fmt.Fprintf(w, "FAIL  %-8s %q (%v)\n", kind, r.Case.City, r.Elapsed.Round(time.Millisecond))
		for _, f := range r.Failures {
			fmt.Fprintf(w, "        - %s\n", f)
		}
		if out := strings.TrimSpace(r.Output); out != "" {
			fmt.Fprintf(w, "        output: %s\n", strings.ReplaceAll(out, "\n", " | "))
		}
	}

	fmt.Fprintf(w, "\n%d passed, %d failed in %.2f seconds", len(results)-failed, failed, total.Seconds())
	if total > 0 {
		fmt.Fprintf(w, " (%.2f runs/second)", float64(len(results))/total.Seconds())
	}
	fmt.Fprintln(w)
	return failed
}
