package datasource

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ant1kdream/forecast-weather-qa-tests/models"
)

// ErrCityNotFound is returned when a provider cannot resolve the requested city
var ErrCityNotFound = errors.New("city not found")

// ForecastSource is an interface for services that can fetch a day's forecast for a city
type ForecastSource interface {
	// FetchForecast resolves city and returns its forecast for day
	FetchForecast(ctx context.Context, city string, day time.Time) (models.Report, error)

	// Name returns the source's name
	Name() string
}

// SameCity reports whether the user's input names the provider's candidate city.
// Case is ignored and "St"/"St." match "Saint"; surrounding whitespace is not trimmed.
func SameCity(input, candidate string) bool {
	if input == "" || candidate == "" {
		return false
	}
	return strings.EqualFold(canonicalCity(input), canonicalCity(candidate))
}

func canonicalCity(name string) string {
	words := strings.Split(name, " ")
	for i, w := range words {
		switch strings.ToLower(w) {
		case "st", "st.":
			words[i] = "saint"
		}
	}
	return strings.Join(words, " ")
}
