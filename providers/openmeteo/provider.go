package openmeteo

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

// Provider fetches forecasts from the keyless Open-Meteo APIs
type Provider struct {
	geocodingURL string
	forecastURL  string
	httpClient   *http.Client
	log          *logger.Logger
}

// Ensure Provider implements datasource.ForecastSource
var _ datasource.ForecastSource = (*Provider)(nil)

// NewProvider creates a new Open-Meteo provider
func NewProvider(cfg datasource.OpenMeteoConfig, timeout time.Duration, log *logger.Logger) *Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &Provider{
		geocodingURL: cfg.GeocodingURL,
		forecastURL:  cfg.ForecastURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log.Named("openmeteo"),
	}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "Open-Meteo"
}

type location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country"`
	Timezone  string  `json:"timezone"`
}

// FetchForecast resolves city and returns its forecast for day
func (p *Provider) FetchForecast(ctx context.Context, city string, day time.Time) (models.Report, error) {
	loc, err := p.resolve(ctx, city)
	if err != nil {
		return models.Report{}, err
	}

	date := day.Format(models.DateLayout)
	params := url.Values{}
	params.Add("latitude", fmt.Sprintf("%.4f", loc.Latitude))
	params.Add("longitude", fmt.Sprintf("%.4f", loc.Longitude))
	params.Add("hourly", "temperature_2m,relative_humidity_2m,pressure_msl,wind_speed_10m")
	params.Add("daily", "weather_code,temperature_2m_max,temperature_2m_min")
	params.Add("wind_speed_unit", "ms")
	params.Add("timezone", "auto")
	params.Add("start_date", date)
	params.Add("end_date", date)

	// Values are nullable; a null hour is skipped rather than read as zero
	var response struct {
		Hourly struct {
			Time        []string   `json:"time"`
			Temperature []*float64 `json:"temperature_2m"`
			Humidity    []*float64 `json:"relative_humidity_2m"`
			Pressure    []*float64 `json:"pressure_msl"`
			WindSpeed   []*float64 `json:"wind_speed_10m"`
		} `json:"hourly"`
		Daily struct {
			Time        []string   `json:"time"`
			WeatherCode []*int     `json:"weather_code"`
			TempMax     []*float64 `json:"temperature_2m_max"`
			TempMin     []*float64 `json:"temperature_2m_min"`
		} `json:"daily"`
	}
	if err := p.getJSON(ctx, p.forecastURL+"/forecast", params, &response); err != nil {
		return models.Report{}, fmt.Errorf("failed to fetch forecast for %s: %w", loc.Name, err)
	}

	idx := -1
	for i, d := range response.Daily.Time {
		if d == date {
			idx = i
			break
		}
	}
	if idx < 0 || idx >= len(response.Daily.WeatherCode) || idx >= len(response.Daily.TempMax) || idx >= len(response.Daily.TempMin) {
		return models.Report{}, fmt.Errorf("forecast for %s has no daily entry for %s", loc.Name, date)
	}
	code, maxTemp, minTemp := response.Daily.WeatherCode[idx], response.Daily.TempMax[idx], response.Daily.TempMin[idx]
	if code == nil || maxTemp == nil || minTemp == nil {
		return models.Report{}, fmt.Errorf("forecast for %s has empty daily values for %s", loc.Name, date)
	}

	state, err := StateForCode(*code)
	if err != nil {
		return models.Report{}, err
	}

	// Hourly times look like 2024-03-02T13:00 in the city's zone
	var temp, humidity, pressure, wind []*float64
	for i, ts := range response.Hourly.Time {
		if len(ts) < len(date) || ts[:len(date)] != date {
			continue
		}
		temp = appendAt(temp, response.Hourly.Temperature, i)
		humidity = appendAt(humidity, response.Hourly.Humidity, i)
		pressure = appendAt(pressure, response.Hourly.Pressure, i)
		wind = appendAt(wind, response.Hourly.WindSpeed, i)
	}

	report := models.Report{
		Date:     day,
		City:     loc.Name,
		State:    state,
		Min:      *minTemp,
		Max:      *maxTemp,
		Provider: p.Name(),
	}
	var ok bool
	if report.Temp, ok = mean(temp); !ok {
		return models.Report{}, fmt.Errorf("forecast for %s has no hourly temperature for %s", loc.Name, date)
	}
	if report.Humidity, ok = mean(humidity); !ok {
		return models.Report{}, fmt.Errorf("forecast for %s has no hourly humidity for %s", loc.Name, date)
	}
	if report.AirPressure, ok = mean(pressure); !ok {
		return models.Report{}, fmt.Errorf("forecast for %s has no hourly pressure for %s", loc.Name, date)
	}
	if report.WindSpeed, ok = mean(wind); !ok {
		return models.Report{}, fmt.Errorf("forecast for %s has no hourly wind speed for %s", loc.Name, date)
	}

	return report, nil
}

// resolve asks the geocoder for candidates and keeps the first exact name match
func (p *Provider) resolve(ctx context.Context, city string) (location, error) {
	params := url.Values{}
	params.Add("name", city)
	params.Add("count", "10")
	params.Add("language", "en")
	params.Add("format", "json")

	var response struct {
		Results []location `json:"results"`
	}
	if err := p.getJSON(ctx, p.geocodingURL+"/search", params, &response); err != nil {
		return location{}, fmt.Errorf("failed to geocode %q: %w", city, err)
	}

	for _, candidate := range response.Results {
		if datasource.SameCity(city, candidate.Name) {
			p.log.Debug("resolved city",
				logger.String("input", city),
				logger.String("name", candidate.Name),
				logger.String("country", candidate.Country),
				logger.Float64("lat", candidate.Latitude),
				logger.Float64("lon", candidate.Longitude),
			)
			return candidate, nil
		}
	}
	return location{}, fmt.Errorf("no geocoding match for %q among %d candidates: %w", city, len(response.Results), datasource.ErrCityNotFound)
}

func (p *Provider) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
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
			Reason string `json:"reason"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Reason != "" {
			return fmt.Errorf("API error (status %d): %s", resp.StatusCode, apiErr.Reason)
		}
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func appendAt(dst, src []*float64, i int) []*float64 {
	if i < len(src) && src[i] != nil {
		dst = append(dst, src[i])
	}
	return dst
}

func mean(values []*float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += *v
	}
	return sum / float64(len(values)), true
}
