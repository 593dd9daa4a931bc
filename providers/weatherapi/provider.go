package weatherapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ant1kdream/forecast-weather-qa-tests/datasource"
	"github.com/ant1kdream/forecast-weather-qa-tests/logger"
	"github.com/ant1kdream/forecast-weather-qa-tests/models"
)

// forecastDays covers today and tomorrow in every time zone
const forecastDays = 3

// kphPerMs converts WeatherAPI wind speeds
const kphPerMs = 3.6

// WeatherAPIProvider fetches forecasts from WeatherAPI.com
type WeatherAPIProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// Ensure WeatherAPIProvider implements datasource.ForecastSource
var _ datasource.ForecastSource = (*WeatherAPIProvider)(nil)

// NewWeatherAPIProvider creates a new WeatherAPI provider
func NewWeatherAPIProvider(cfg datasource.WeatherAPIConfig, timeout time.Duration, log *logger.Logger) *WeatherAPIProvider {
	if log == nil {
		log = logger.Nop()
	}
	return &WeatherAPIProvider{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log.Named("weatherapi"),
	}
}

// Name returns the provider name
func (p *WeatherAPIProvider) Name() string {
	return "WeatherAPI"
}

type searchResult struct {
	Name    string  `json:"name"`
	Region  string  `json:"region"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// FetchForecast resolves city and returns the forecastday entry matching day
func (p *WeatherAPIProvider) FetchForecast(ctx context.Context, city string, day time.Time) (models.Report, error) {
	match, err := p.resolve(ctx, city)
	if err != nil {
		return models.Report{}, err
	}

	params := url.Values{}
	params.Add("key", p.apiKey)
	params.Add("q", fmt.Sprintf("%.4f,%.4f", match.Lat, match.Lon))
	params.Add("days", fmt.Sprintf("%d", forecastDays))
	params.Add("aqi", "no")
	params.Add("alerts", "no")

	var response struct {
		Forecast struct {
			ForecastDay []struct {
				Date string `json:"date"`
				Day  struct {
					MaxTempC    float64 `json:"maxtemp_c"`
					MinTempC    float64 `json:"mintemp_c"`
					AvgTempC    float64 `json:"avgtemp_c"`
					AvgHumidity float64 `json:"avghumidity"`
					Condition   struct {
						Text string `json:"text"`
						Code int    `json:"code"`
					} `json:"condition"`
				} `json:"day"`
				Hour []struct {
					WindKph    float64 `json:"wind_kph"`
					PressureMb float64 `json:"pressure_mb"`
				} `json:"hour"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}
	if err := p.getJSON(ctx, p.baseURL+"/forecast.json", params, &response); err != nil {
		return models.Report{}, fmt.Errorf("failed to fetch forecast for %s: %w", match.Name, err)
	}

	date := day.Format(models.DateLayout)
	for _, fd := range response.Forecast.ForecastDay {
		if fd.Date != date {
			continue
		}
		if len(fd.Hour) == 0 {
			return models.Report{}, fmt.Errorf("forecast for %s has no hourly values for %s", match.Name, date)
		}

		state, err := StateForCondition(fd.Day.Condition.Code)
		if err != nil {
			return models.Report{}, err
		}

		var wind, pressure float64
		for _, h := range fd.Hour {
			wind += h.WindKph
			pressure += h.PressureMb
		}
		n := float64(len(fd.Hour))

		return models.Report{
			Date:        day,
			City:        match.Name,
			State:       state,
			Temp:        fd.Day.AvgTempC,
			Min:         fd.Day.MinTempC,
			Max:         fd.Day.MaxTempC,
			WindSpeed:   wind / n / kphPerMs,
			Humidity:    fd.Day.AvgHumidity,
			AirPressure: pressure / n,
			Provider:    p.Name(),
		}, nil
	}

	return models.Report{}, fmt.Errorf("forecast for %s has no entry for %s", match.Name, date)
}

// resolve searches locations and keeps the first exact name match
func (p *WeatherAPIProvider) resolve(ctx context.Context, city string) (searchResult, error) {
	params := url.Values{}
	params.Add("key", p.apiKey)
	params.Add("q", city)

	var results []searchResult
	if err := p.getJSON(ctx, p.baseURL+"/search.json", params, &results); err != nil {
		return searchResult{}, fmt.Errorf("failed to search %q: %w", city, err)
	}

	for _, r := range results {
		if datasource.SameCity(city, r.Name) {
			p.log.Debug("resolved city",
				logger.String("input", city),
				logger.String("name", r.Name),
				logger.String("region", r.Region),
				logger.String("country", r.Country),
			)
			return r, nil
		}
	}
	return searchResult{}, fmt.Errorf("no location match for %q among %d results: %w", city, len(results), datasource.ErrCityNotFound)
}

func (p *WeatherAPIProvider) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	p.log.Debug("request", logger.String("endpoint", endpoint))

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("API error (status %d, code %d): %s", resp.StatusCode, apiErr.Error.Code, apiErr.Error.Message)
		}
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
