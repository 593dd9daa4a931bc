package weatherapi

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

const searchBody = `[
  {"id": 1, "name": "Saint Petersburg", "region": "Florida", "country": "United States of America", "lat": 27.77, "lon": -82.68},
  {"id": 2, "name": "Saint Petersburg", "region": "Sankt-Peterburg", "country": "Russia", "lat": 59.89, "lon": 30.26}
]`

const forecastBody = `{
  "location": {"name": "Saint Petersburg"},
  "forecast": {"forecastday": [
    {"date": "2024-03-01", "day": {"maxtemp_c": 30, "mintemp_c": 20, "avgtemp_c": 25, "avghumidity": 10, "condition": {"code": 1000}}, "hour": [{"wind_kph": 100, "pressure_mb": 900}]},
    {"date": "2024-03-02", "day": {"maxtemp_c": 24.1, "mintemp_c": 17.3, "avgtemp_c": 20.6, "avghumidity": 74, "condition": {"text": "Patchy rain nearby", "code": 1063}},
     "hour": [
       {"wind_kph": 3.6, "pressure_mb": 1011},
       {"wind_kph": 7.2, "pressure_mb": 1012},
       {"wind_kph": 10.8, "pressure_mb": 1013},
       {"wind_kph": 14.4, "pressure_mb": 1014}
     ]}
  ]}
}`

func newTestProvider(t *testing.T, handler http.HandlerFunc) *WeatherAPIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWeatherAPIProvider(datasource.WeatherAPIConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/v1",
	}, 5*time.Second, nil)
}

func TestFetchForecast(t *testing.T) {
	day := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		switch r.URL.Path {
		case "/v1/search.json":
			assert.Equal(t, "St Petersburg", r.URL.Query().Get("q"))
			fmt.Fprint(w, searchBody)
		case "/v1/forecast.json":
			assert.Equal(t, "27.7700,-82.6800", r.URL.Query().Get("q"))
			assert.Equal(t, "3", r.URL.Query().Get("days"))
			fmt.Fprint(w, forecastBody)
		default:
			http.NotFound(w, r)
		}
	})

	report, err := p.FetchForecast(context.Background(), "St Petersburg", day)
	require.NoError(t, err)

	assert.Equal(t, "Saint Petersburg", report.City)
	assert.Equal(t, day, report.Date)
	assert.Equal(t, models.StateLightRain, report.State)
	assert.Equal(t, 20.6, report.Temp)
	assert.Equal(t, 17.3, report.Min)
	assert.Equal(t, 24.1, report.Max)
	assert.InDelta(t, 2.5, report.WindSpeed, 1e-9)
	assert.Equal(t, 74.0, report.Humidity)
	assert.InDelta(t, 1012.5, report.AirPressure, 1e-9)
	assert.Equal(t, "WeatherAPI", report.Provider)
}

func TestFetchForecastMissingDay(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/search.json" {
			fmt.Fprint(w, searchBody)
			return
		}
		fmt.Fprint(w, forecastBody)
	})

	_, err := p.FetchForecast(context.Background(), "Saint Petersburg", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	assert.ErrorContains(t, err, "no entry for 2024-03-05")
	assert.False(t, errors.Is(err, datasource.ErrCityNotFound))
}

func TestFetchForecastCityNotFound(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "FakeCity" {
			fmt.Fprint(w, `[]`)
			return
		}
		fmt.Fprint(w, searchBody)
	})

	for _, city := range []string{"FakeCity", "Petersburg", " Saint Petersburg"} {
		_, err := p.FetchForecast(context.Background(), city, time.Now())
		assert.True(t, errors.Is(err, datasource.ErrCityNotFound), "city %q: %v", city, err)
	}
}

func TestFetchForecastAPIError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error": {"code": 2008, "message": "API key has been disabled."}}`)
	})

	_, err := p.FetchForecast(context.Background(), "London", time.Now())
	assert.ErrorContains(t, err, "API error (status 403, code 2008): API key has been disabled.")
}

func TestStateForCondition(t *testing.T) {
	tests := map[int]models.WeatherState{
		1000: models.StateClear,
		1003: models.StateLightCloud,
		1135: models.StateHeavyCloud,
		1183: models.StateLightRain,
		1195: models.StateHeavyRain,
		1243: models.StateShowers,
		1204: models.StateSleet,
		1225: models.StateSnow,
		1237: models.StateHail,
		1276: models.StateThunderstorm,
	}
	for code, want := range tests {
		got, err := StateForCondition(code)
		require.NoError(t, err, "code %d", code)
		assert.Equal(t, want, got, "code %d", code)
	}

	_, err := StateForCondition(1)
	assert.Error(t, err)

	for code, state := range conditionStates {
		assert.True(t, state.Valid(), "code %d", code)
	}
}
