package openweathermap

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

// OpenWeatherMapProvider fetches forecasts from the OpenWeatherMap 5 day / 3 hour API
type OpenWeatherMapProvider struct {
	apiKey     string
	baseURL    string
	geoURL     string
	httpClient *http.Client
	log        *logger.Logger
}

// Ensure OpenWeatherMapProvider implements datasource.ForecastSource
var _ datasource.ForecastSource = (*OpenWeatherMapProvider)(nil)

// NewOpenWeatherMapProvider creates a new OpenWeatherMap provider
func NewOpenWeatherMapProvider(cfg datasource.OpenWeatherMapConfig, timeout time.Duration, log *logger.Logger) *OpenWeatherMapProvider {
	if log == nil {
		log = logger.Nop()
	}
	return &OpenWeatherMapProvider{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		geoURL:  cfg.GeoURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log.Named("openweathermap"),
	}
}

// Name returns the provider name
func (p *OpenWeatherMapProvider) Name() string {
	return "OpenWeatherMap"
}

// GeoResult is one candidate from the direct geocoding API
type GeoResult struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state"`
}

// ForecastResponse represents the 5 day / 3 hour forecast response
type ForecastResponse struct {
	City struct {
		Name     string `json:"name"`
		Timezone int    `json:"timezone"` // shift from UTC in seconds
	} `json:"city"`
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp     float64 `json:"temp"`
			TempMin  float64 `json:"temp_min"`
			TempMax  float64 `json:"temp_max"`
			Pressure float64 `json:"pressure"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			ID          int    `json:"id"`
			Description string `json:"description"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	} `json:"list"`
}

// FetchForecast resolves city and aggregates the 3-hour steps that fall on day
func (p *OpenWeatherMapProvider) FetchForecast(ctx context.Context, city string, day time.Time) (models.Report, error) {
	geo, err := p.resolve(ctx, city)
	if err != nil {
		return models.Report{}, err
	}

	params := url.Values{}
	params.Add("lat", fmt.Sprintf("%.4f", geo.Lat))
	params.Add("lon", fmt.Sprintf("%.4f", geo.Lon))
	params.Add("appid", p.apiKey)
	params.Add("units", "metric") // Use metric units

	var response ForecastResponse
	if err := p.getJSON(ctx, p.baseURL+"/forecast", params, &response); err != nil {
		return models.Report{}, fmt.Errorf("failed to fetch forecast for %s: %w", geo.Name, err)
	}

	report, err := aggregateDay(response, day)
	if err != nil {
		return models.Report{}, fmt.Errorf("forecast for %s: %w", geo.Name, err)
	}
	report.City = geo.Name
	report.Provider = p.Name()
	return report, nil
}

// aggregateDay folds the entries whose local date equals day into one report
func aggregateDay(response ForecastResponse, day time.Time) (models.Report, error) {
	date := day.Format(models.DateLayout)
	zone := time.FixedZone("", response.City.Timezone)

	report := models.Report{Date: day}
	var n int
	var worst models.WeatherState
	for _, item := range response.List {
		if time.Unix(item.Dt, 0).In(zone).Format(models.DateLayout) != date {
			continue
		}

		for _, w := range item.Weather {
			state, err := StateForCondition(w.ID)
			if err != nil {
				return models.Report{}, err
			}
			if worst == "" || state.Severity() > worst.Severity() {
				worst = state
			}
		}

		if n == 0 || item.Main.TempMin < report.Min {
			report.Min = item.Main.TempMin
		}
		if n == 0 || item.Main.TempMax > report.Max {
			report.Max = item.Main.TempMax
		}
		report.Temp += item.Main.Temp
		report.WindSpeed += item.Wind.Speed
		report.Humidity += item.Main.Humidity
		report.AirPressure += item.Main.Pressure
		n++
	}

	if n == 0 {
		return models.Report{}, fmt.Errorf("no forecast entries for %s", date)
	}
	if worst == "" {
		return models.Report{}, fmt.Errorf("no weather conditions for %s", date)
	}

	report.State = worst
	report.Temp /= float64(n)
	report.WindSpeed /= float64(n)
	report.Humidity /= float64(n)
	report.AirPressure /= float64(n)
	return report, nil
}

// resolve asks the geocoder for candidates and keeps the first exact name match
func (p *OpenWeatherMapProvider) resolve(ctx context.Context, city string) (GeoResult, error) {
	params := url.Values{}
	params.Add("q", city)
	params.Add("limit", "5")
	params.Add("appid", p.apiKey)

	var candidates []GeoResult
	if err := p.getJSON(ctx, p.geoURL+"/direct", params, &candidates); err != nil {
		return GeoResult{}, fmt.Errorf("failed to geocode %q: %w", city, err)
	}

	for _, c := range candidates {
		if datasource.SameCity(city, c.Name) {
			p.log.Debug("resolved city",
				logger.String("input", city),
				logger.String("name", c.Name),
				logger.String("country", c.Country),
			)
			return c, nil
		}
	}
	return GeoResult{}, fmt.Errorf("no geocoding match for %q among %d candidates: %w", city, len(candidates), datasource.ErrCityNotFound)
}

func (p *OpenWeatherMapProvider) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	// Create request
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	p.log.Debug("request", logger.String("endpoint", endpoint))

	// Execute request
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	// Read response body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Check for error status code
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("API error (status %d): %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
