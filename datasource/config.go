package datasource

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Provider names accepted in the configuration
const (
	ProviderOpenMeteo      = "openmeteo"
	ProviderOpenWeatherMap = "openweathermap"
	ProviderWeatherAPI     = "weatherapi"
)

// Config represents the application configuration
type Config struct {
	Provider              string   `toml:"provider"`                // which weather API answers lookups
	RequestTimeoutSeconds int      `toml:"request_timeout_seconds"` // bound on a whole lookup
	SupportedCities       []string `toml:"supported_cities"`        // empty means any city the provider knows

	OpenMeteo      OpenMeteoConfig      `toml:"open_meteo"`
	OpenWeatherMap OpenWeatherMapConfig `toml:"openweathermap"`
	WeatherAPI     WeatherAPIConfig     `toml:"weatherapi"`
	Logging        LoggingConfig        `toml:"logging"`
	Check          CheckConfig          `toml:"check"`
}

// OpenMeteoConfig holds the keyless Open-Meteo endpoints
type OpenMeteoConfig struct {
	GeocodingURL string `toml:"geocoding_url"`
	ForecastURL  string `toml:"forecast_url"`
}

// OpenWeatherMapConfig holds OpenWeatherMap credentials and endpoints
type OpenWeatherMapConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"` // data/2.5 API
	GeoURL  string `toml:"geo_url"`  // geo/1.0 API
}

// WeatherAPIConfig holds WeatherAPI.com credentials and endpoint
type WeatherAPIConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// LoggingConfig controls the stderr logger
type LoggingConfig struct {
	Level  string `toml:"level"`  // "debug", "info", "warn" or "error"
	Format string `toml:"format"` // "console" or "json"
}

// CheckConfig drives the conformance sweep
type CheckConfig struct {
	RequestsPerSecond float64     `toml:"requests_per_second"`
	Burst             int         `toml:"burst"`
	Workers           int         `toml:"workers"`
	Cases             []CheckCase `toml:"cases"`
}

// CheckCase is one city run by the conformance sweep
type CheckCase struct {
	City       string `toml:"city"`
	Negative   bool   `toml:"negative"`    // expect "city not found"
	ExpectName string `toml:"expect_name"` // printed city must equal this when set
}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	return &Config{
		Provider:              ProviderOpenMeteo,
		RequestTimeoutSeconds: 10,
		OpenMeteo: OpenMeteoConfig{
			GeocodingURL: "https://geocoding-api.open-meteo.com/v1",
			ForecastURL:  "https://api.open-meteo.com/v1",
		},
		OpenWeatherMap: OpenWeatherMapConfig{
			BaseURL: "https://api.openweathermap.org/data/2.5",
			GeoURL:  "https://api.openweathermap.org/geo/1.0",
		},
		WeatherAPI: WeatherAPIConfig{
			BaseURL: "https://api.weatherapi.com/v1",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		Check: CheckConfig{
			// Open-Meteo asks for under 600 calls a minute; each run makes two
			RequestsPerSecond: 2,
			Burst:             2,
			Workers:           4,
			Cases:             DefaultCheckCases(),
		},
	}
}

// DefaultCheckCases mirrors the functional suite the reporter was built against
func DefaultCheckCases() []CheckCase {
	cases := []CheckCase{
		{City: "London", ExpectName: "London"},
		{City: "San Francisco", ExpectName: "San Francisco"},
		{City: "Rio de Janeiro", ExpectName: "Rio de Janeiro"},
		{City: "Dubai", ExpectName: "Dubai"},
	}
	for _, city := range []string{
		"Toronto", "Lima", "Mumbai", "Moscow", "Sapporo", "Melbourne",
		"Wellington", "Oslo", "Helsinki", "Lisbon", "St Petersburg",
	} {
		cases = append(cases, CheckCase{City: city})
	}
	for _, city := range []string{"FakeCity", "FLondon", " London"} {
		cases = append(cases, CheckCase{City: city, Negative: true})
	}
	return cases
}

// LoadEnv loads variables from .env files; missing files are not an error
func LoadEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// Load reads a TOML configuration file on top of the defaults
func Load(path string) (*Config, error) {
	config := DefaultConfig()
	// Decoding reuses slice storage, so cases from the file must not land on the defaults
	config.Check.Cases = nil

	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if config.Check.Cases == nil {
		config.Check.Cases = DefaultCheckCases()
	}
	return config, nil
}

// LoadWithFallback loads preferredPath when given, otherwise the first
// config found in the usual locations, otherwise the defaults
func LoadWithFallback(preferredPath string) (*Config, error) {
	if preferredPath != "" {
		if _, err := os.Stat(preferredPath); err != nil {
			return nil, fmt.Errorf("config file not found: %s", preferredPath)
		}
		return Load(preferredPath)
	}

	for _, path := range []string{"configs/forecast.toml", "forecast.toml"} {
		if _, err := os.Stat(path); err == nil {
			config, err := Load(path)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
			}
			return config, nil
		}
	}

	return DefaultConfig(), nil
}

// ApplyEnv overrides settings from environment variables
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv("FORECAST_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := getenv("OPENWEATHERMAP_API_KEY"); v != "" {
		c.OpenWeatherMap.APIKey = v
	}
	if v := getenv("WEATHERAPI_KEY"); v != "" {
		c.WeatherAPI.APIKey = v
	}
	if v := getenv("FORECAST_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate fills missing defaults and rejects unusable settings
func (c *Config) Validate() error {
	defaults := DefaultConfig()

	if c.Provider == "" {
		c.Provider = defaults.Provider
	}
	switch c.Provider {
	case ProviderOpenMeteo:
		if c.OpenMeteo.GeocodingURL == "" || c.OpenMeteo.ForecastURL == "" {
			return fmt.Errorf("open_meteo geocoding_url and forecast_url cannot be empty")
		}
	case ProviderOpenWeatherMap:
		if c.OpenWeatherMap.APIKey == "" {
			return fmt.Errorf("OpenWeatherMap is selected but no API key provided")
		}
		if c.OpenWeatherMap.BaseURL == "" || c.OpenWeatherMap.GeoURL == "" {
			return fmt.Errorf("openweathermap base_url and geo_url cannot be empty")
		}
	case ProviderWeatherAPI:
		if c.WeatherAPI.APIKey == "" {
			return fmt.Errorf("WeatherAPI is selected but no API key provided")
		}
		if c.WeatherAPI.BaseURL == "" {
			return fmt.Errorf("weatherapi base_url cannot be empty")
		}
	default:
		return fmt.Errorf("invalid provider: %s (must be '%s', '%s' or '%s')",
			c.Provider, ProviderOpenMeteo, ProviderOpenWeatherMap, ProviderWeatherAPI)
	}

	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request_timeout_seconds must be greater than 0: %d", c.RequestTimeoutSeconds)
	}

	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Logging.Format == "" {
		c.Logging.Format = defaults.Logging.Format
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Check.RequestsPerSecond <= 0 {
		return fmt.Errorf("check requests_per_second must be greater than 0: %g", c.Check.RequestsPerSecond)
	}
	if c.Check.Burst <= 0 {
		return fmt.Errorf("check burst must be greater than 0: %d", c.Check.Burst)
	}
	if c.Check.Workers <= 0 {
		return fmt.Errorf("check workers must be greater than 0: %d", c.Check.Workers)
	}

	return nil
}
