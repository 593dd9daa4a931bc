package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ant1kdream/forecast-weather-qa-tests/datasource"
	"github.com/ant1kdream/forecast-weather-qa-tests/logger"
	"github.com/ant1kdream/forecast-weather-qa-tests/models"
	"github.com/ant1kdream/forecast-weather-qa-tests/reporter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cannedSource struct{}

func (cannedSource) FetchForecast(_ context.Context, city string, day time.Time) (models.Report, error) {
	if city != "London" {
		return models.Report{}, fmt.Errorf("unknown %q: %w", city, datasource.ErrCityNotFound)
	}
	return models.Report{
		Date: day, City: "London", State: models.StateShowers,
		Temp: 11, Min: 8, Max: 13, WindSpeed: 5, Humidity: 80, AirPressure: 1004,
	}, nil
}

func (cannedSource) Name() string { return "Canned" }

type harness struct {
	stdout, stderr bytes.Buffer
	codes          []int
	env            map[string]string
	cfg            *datasource.Config
}

func (h *harness) options() Options {
	return Options{
		Stdout: &h.stdout,
		Stderr: &h.stderr,
		Getenv: func(k string) string { return h.env[k] },
		Exit:   func(code int) { h.codes = append(h.codes, code) },
		Clock:  func() time.Time { return time.Date(2024, 2, 28, 9, 0, 0, 0, time.UTC) },
		NewSource: func(cfg *datasource.Config, _ *logger.Logger) (datasource.ForecastSource, error) {
			h.cfg = cfg
			return datasource.NewAllowlistSource(cannedSource{}, cfg.SupportedCities), nil
		},
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	// Keep config discovery away from any forecast.toml in the package dir
	chdirTest(t, t.TempDir())
	return &harness{env: map[string]string{}}
}

func TestForecast(t *testing.T) {
	h := newHarness(t)

	code := Execute(context.Background(), []string{"London"}, h.options())

	assert.Equal(t, reporter.ExitOK, code)
	assert.Equal(t, []int{reporter.ExitOK}, h.codes)
	assert.Contains(t, h.stdout.String(), "Tomorrow (2024-02-29) in London\n")
	assert.Contains(t, h.stdout.String(), "Showers\n")
	assert.Equal(t, datasource.ProviderOpenMeteo, h.cfg.Provider)
	assert.Equal(t, 10, h.cfg.RequestTimeoutSeconds)
}

func TestCityNotFound(t *testing.T) {
	h := newHarness(t)

	Execute(context.Background(), []string{" London"}, h.options())

	assert.Equal(t, []int{reporter.ExitNotFound}, h.codes)
	assert.Equal(t, "No forecast for \" London\": city not found\n", h.stdout.String())
	assert.Empty(t, h.stderr.String(), "an unknown city is not a warning")
}

func TestCityNotFoundDebugLog(t *testing.T) {
	h := newHarness(t)

	Execute(context.Background(), []string{"--log-level", "debug", "FakeCity"}, h.options())

	assert.Equal(t, []int{reporter.ExitNotFound}, h.codes)
	assert.Contains(t, h.stderr.String(), "city not resolved")
	assert.NotContains(t, h.stderr.String(), "WARN")
}

func TestWrongArgumentCount(t *testing.T) {
	for _, args := range [][]string{{}, {"London", "Paris"}} {
		h := newHarness(t)

		code := Execute(context.Background(), args, h.options())

		assert.Equal(t, reporter.ExitUsage, code)
		assert.Empty(t, h.codes, "no lookup may run")
		assert.Empty(t, h.stdout.String())
		assert.Contains(t, h.stderr.String(), "Usage:")
	}
}

func TestInvalidConfiguration(t *testing.T) {
	h := newHarness(t)

	code := Execute(context.Background(), []string{"--provider", "metaweather", "London"}, h.options())

	assert.Equal(t, reporter.ExitUsage, code)
	assert.Empty(t, h.codes)
	assert.Contains(t, h.stderr.String(), "invalid provider")
	assert.NotContains(t, h.stderr.String(), "Usage:")
}

func TestFlagsAndEnvironment(t *testing.T) {
	h := newHarness(t)
	h.env["WEATHERAPI_KEY"] = "from-env"

	Execute(context.Background(), []string{"--provider", "weatherapi", "--log-level", "debug", "London"}, h.options())

	require.NotNil(t, h.cfg)
	assert.Equal(t, datasource.ProviderWeatherAPI, h.cfg.Provider)
	assert.Equal(t, "from-env", h.cfg.WeatherAPI.APIKey)
	assert.Equal(t, "debug", h.cfg.Logging.Level)
	assert.Contains(t, h.stderr.String(), "lookup done")
}

func TestConfigFileSupportedCities(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "forecast.toml")
	require.NoError(t, os.WriteFile(path, []byte(`supported_cities = ["Dubai"]`), 0o644))

	Execute(context.Background(), []string{"--config", path, "London"}, h.options())

	assert.Equal(t, []int{reporter.ExitNotFound}, h.codes)
	assert.Contains(t, h.stdout.String(), "\"London\": city not found")
}

func TestMissingConfigFile(t *testing.T) {
	h := newHarness(t)

	code := Execute(context.Background(), []string{"--config", "nope.toml", "London"}, h.options())

	assert.Equal(t, reporter.ExitUsage, code)
	assert.Contains(t, h.stderr.String(), "config file not found")
}
