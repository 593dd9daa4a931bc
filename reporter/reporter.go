// Package reporter implements the tomorrow-forecast lookup: resolve the city,
// fetch tomorrow's forecast, validate it, print it and terminate.
package reporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ant1kdream/forecast-weather-qa-tests/datasource"
	"github.com/ant1kdream/forecast-weather-qa-tests/logger"
	"github.com/ant1kdream/forecast-weather-qa-tests/models"
	"github.com/ant1kdream/forecast-weather-qa-tests/report"
)

// Process exit codes
const (
	ExitOK       = 0
	ExitNotFound = 1
	ExitUsage    = 2
)

// DefaultTimeout bounds a whole lookup when none is configured
const DefaultTimeout = 10 * time.Second

// Reporter prints tomorrow's forecast for one city
type Reporter struct {
	Source  datasource.ForecastSource
	Out     io.Writer        // receives the report or the not-found line
	Log     *logger.Logger   // diagnostics, never mixed into Out
	Clock   func() time.Time // "today" is read from here
	Exit    func(int)        // terminates the process
	Timeout time.Duration    // bound on the provider call chain
}

// New creates a reporter writing to out that terminates through os.Exit
func New(source datasource.ForecastSource, out io.Writer, log *logger.Logger) *Reporter {
	if log == nil {
		log = logger.Nop()
	}
	return &Reporter{
		Source:  source,
		Out:     out,
		Log:     log.Named("reporter"),
		Clock:   time.Now,
		Exit:    os.Exit,
		Timeout: DefaultTimeout,
	}
}

// Report prints the forecast (or the not-found line) for city and calls Exit
// with ExitOK or ExitNotFound.
func (r *Reporter) Report(ctx context.Context, city string) {
	text, err := r.Render(ctx, city)
	code := ExitOK
	if err != nil {
		code = ExitNotFound
	}

	if _, werr := io.WriteString(r.Out, text); werr != nil {
		r.Log.Error("failed to write output", logger.Error(werr))
	}
	// Exit may be os.Exit, which skips deferred calls
	_ = r.Log.Sync()
	r.Exit(code)
}

// Render returns the text to print for city. When the lookup fails the text is
// the not-found line and the error carries the cause, which wraps
// datasource.ErrCityNotFound whatever went wrong underneath.
func (r *Reporter) Render(ctx context.Context, city string) (string, error) {
	start := time.Now()
	clock := r.Clock
	if clock == nil {
		clock = time.Now
	}
	day := models.Tomorrow(clock())

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	forecast, err := r.Source.FetchForecast(ctx, city, day)
	if err == nil {
		if verr := forecast.Validate(); verr != nil {
			err = fmt.Errorf("implausible forecast from %s: %w", r.Source.Name(), verr)
		}
	}

	if err != nil {
		fields := []logger.Field{
			logger.String("city", city),
			logger.String("provider", r.Source.Name()),
			logger.Duration("elapsed", time.Since(start)),
			logger.Error(err),
		}
		if errors.Is(err, datasource.ErrCityNotFound) {
			// An unknown city is an ordinary answer; stdout already says so
			r.Log.Debug("city not resolved", fields...)
			return report.FormatNotFound(city), err
		}
		r.Log.Warn("lookup failed", fields...)
		return report.FormatNotFound(city), fmt.Errorf("%w: %w", datasource.ErrCityNotFound, err)
	}

	r.Log.Debug("lookup done",
		logger.String("city", city),
		logger.String("resolved", forecast.City),
		logger.String("state", string(forecast.State)),
		logger.Duration("elapsed", time.Since(start)),
	)
	return report.Format(forecast), nil
}
