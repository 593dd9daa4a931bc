package datasource

import (
	"context"
	"fmt"
	"time"

	"github.com/ant1kdream/forecast-weather-qa-tests/models"
)

// AllowlistSource wraps a ForecastSource and only forwards supported cities
type AllowlistSource struct {
	source ForecastSource
	cities []string
}

// NewAllowlistSource restricts source to the given cities.
// An empty list leaves every city supported.
func NewAllowlistSource(source ForecastSource, cities []string) *AllowlistSource {
	return &AllowlistSource{
		source: source,
		cities: cities,
	}
}

// FetchForecast fails with ErrCityNotFound for cities outside the list
func (a *AllowlistSource) FetchForecast(ctx context.Context, city string, day time.Time) (models.Report, error) {
	if !a.Supports(city) {
		return models.Report{}, fmt.Errorf("%q is not a supported city: %w", city, ErrCityNotFound)
	}
	return a.source.FetchForecast(ctx, city, day)
}

// Supports reports whether city may be looked up
func (a *AllowlistSource) Supports(city string) bool {
	if len(a.cities) == 0 {
		return true
	}
	for _, c := range a.cities {
		if SameCity(city, c) {
			return true
		}
	}
	return false
}

// Name returns the underlying source name
func (a *AllowlistSource) Name() string {
	return a.source.Name()
}

var _ ForecastSource = (*AllowlistSource)(nil)
