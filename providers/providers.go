// Package providers builds the configured weather data source.
package providers

import (
	"fmt"
	"time"

	"github.com/ant1kdream/forecast-weather-qa-tests/datasource"
	"github.com/ant1kdream/forecast-weather-qa-tests/logger"
	"github.com/ant1kdream/forecast-weather-qa-tests/providers/openmeteo"
	"github.com/ant1kdream/forecast-weather-qa-tests/providers/openweathermap"
	"github.com/ant1kdream/forecast-weather-qa-tests/providers/weatherapi"
)

// New returns the source named by cfg.Provider, restricted to cfg.SupportedCities
func New(cfg *datasource.Config, log *logger.Logger) (datasource.ForecastSource, error) {
	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	var source datasource.ForecastSource
	switch cfg.Provider {
	case datasource.ProviderOpenMeteo, "":
		source = openmeteo.NewProvider(cfg.OpenMeteo, timeout, log)
	case datasource.ProviderOpenWeatherMap:
		source = openweathermap.NewOpenWeatherMapProvider(cfg.OpenWeatherMap, timeout, log)
	case datasource.ProviderWeatherAPI:
		source = weatherapi.NewWeatherAPIProvider(cfg.WeatherAPI, timeout, log)
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}

	if len(cfg.SupportedCities) > 0 {
		return datasource.NewAllowlistSource(source, cfg.SupportedCities), nil
	}
	return source, nil
}
