package openweathermap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ant1kdream/forecast-weather-qa-tests/datasource"
	"github.com/ant1kdream/forecast-weather-qa-tests/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Local midnight of 2024-03-02 in a UTC+1 zone is 1709334000
const forecastBody = `{
  "cod": "200",
  "city": {"name": "Paris", "timezone": 3600},
  "list": [
    {"dt": 1709330400, "main": {"temp": 40, "temp_min": 40, "temp_max": 40, "pressure": 900, "humidity": 1}, "weather": [{"id": 212}], "wind": {"speed": 90}},
    {"dt": 1709334000, "main": {"temp": 4, "temp_min": 3, "temp_max": 5, "pressure": 1010, "humidity": 90}, "weather": [{"id": 800}], "wind": {"speed": 2}},
    {"dt": 1709344800, "main": {"temp": 6, "temp_min": 5, "temp_max": 7, "pressure": 1012, "humidity": 80}, "weather": [{"id": 501}], "wind": {"speed": 4}},
    {"dt": 1709409600, "main": {"temp": 8, "temp_min": 7, "temp_max": 11, "pressure": 1014, "humidity": 70}, "weather": [{"id": 803}], "wind": {"speed": 6}},
    {"dt": 1709420400, "main": {"temp": 40, "temp_min": 40, "temp_max": 40, "pressure": 900, "humidity": 1}, "weather": [{"id": 212}], "wind": {"speed": 90}}
  ]
}`

const geoBody = `[
  {"name": "Paris", "lat": 48.8588897, "lon": 2.3200410, "country": "FR", "state": "Ile-de-France"},
  {"name": "Paris", "lat": 33.6617962, "lon": -95.555513, "country": "US", "state": "Texas"}
]`

func newTestProvider(t *testing.T, handler http.HandlerFunc) *OpenWeatherMapProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenWeatherMapProvider(datasource.OpenWeatherMapConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/data/2.5",
		GeoURL:  srv.URL + "/geo/1.0",
	}, 5*time.Second, nil)
}

func TestFetchForecast(t *testing.T) {
	day := time.Date(2024, 3, 2, 0, 0, 0, 0, time.Local)

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		switch r.URL.Path {
		case "/geo/1.0/direct":
			assert.Equal(t, "PARIS", r.URL.Query().Get("q"))
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			fmt.Fprint(w, geoBody)
		case "/data/2.5/forecast":
			assert.Equal(t, "48.8589", r.URL.Query().Get("lat"))
			assert.Equal(t, "2.3200", r.URL.Query().Get("lon"))
			assert.Equal(t, "metric", r.URL.Query().Get("units"))
			fmt.Fprint(w, forecastBody)
		default:
			http.NotFound(w, r)
		}
	})

	report, err := p.FetchForecast(context.Background(), "PARIS", day)
	require.NoError(t, err)

	assert.Equal(t, models.Report{
		Date:        day,
		City:        "Paris",
		State:       models.StateLightRain,
		Temp:        6,
		Min:         3,
		Max:         11,
		WindSpeed:   4,
		Humidity:    80,
		AirPressure: 1012,
		Provider:    "OpenWeatherMap",
	}, report)
}

func TestFetchForecastCityNotFound(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "FakeCity" {
			fmt.Fprint(w, `[]`)
			return
		}
		fmt.Fprint(w, geoBody)
	})

	for _, city := range []string{"FakeCity", "FParis", " Paris"} {
		_, err := p.FetchForecast(context.Background(), city, time.Now())
		assert.True(t, errors.Is(err, datasource.ErrCityNotFound), "city %q: %v", city, err)
	}
}

func TestFetchForecastAPIError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"cod": 401, "message": "Invalid API key."}`)
	})

	_, err := p.FetchForecast(context.Background(), "Paris", time.Now())
	assert.ErrorContains(t, err, "API error (status 401): Invalid API key.")
	assert.False(t, errors.Is(err, datasource.ErrCityNotFound))
}

func TestAggregateDayWithoutEntries(t *testing.T) {
	_, err := aggregateDay(ForecastResponse{}, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))
	assert.ErrorContains(t, err, "no forecast entries for 2024-03-02")
}

func TestStateForCondition(t *testing.T) {
	tests := map[int]models.WeatherState{
		211: models.StateThunderstorm,
		301: models.StateLightRain,
		500: models.StateLightRain,
		503: models.StateHeavyRain,
		511: models.StateSleet,
		521: models.StateShowers,
		601: models.StateSnow,
		612: models.StateSleet,
		622: models.StateSnow,
		741: models.StateHeavyCloud,
		800: models.StateClear,
		802: models.StateLightCloud,
		804: models.StateHeavyCloud,
	}
	for id, want := range tests {
		got, err := StateForCondition(id)
		require.NoError(t, err, "id %d", id)
		assert.Equal(t, want, got, "id %d", id)
	}

	_, err := StateForCondition(900)
	assert.Error(t, err)
}
