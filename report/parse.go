package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ant1kdream/forecast-weather-qa-tests/datasource"
	"github.com/ant1kdream/forecast-weather-qa-tests/models"
)

// Parsed holds the fields read back from reporter output
type Parsed struct {
	Header string            // first line, e.g. "Tomorrow (2024-03-02) in London"
	Date   string            // token inside the parentheses
	City   string            // text after the last " in "
	State  string            // second line
	Params map[string]string // raw "value unit" keyed by parameter name
}

// Parse reads reporter output. Blank lines are ignored.
func Parse(text string) (Parsed, error) {
	if strings.Contains(text, datasource.ErrCityNotFound.Error()) {
		return Parsed{}, fmt.Errorf("%w: %s", ErrNotAForecast, strings.TrimSpace(text))
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return Parsed{}, fmt.Errorf("%w: expected a header and a state line, got %d lines", ErrNotAForecast, len(lines))
	}

	p := Parsed{
		Header: strings.TrimSpace(lines[0]),
		State:  strings.TrimSpace(lines[1]),
		Params: make(map[string]string, len(lines)-2),
	}

	fields := strings.Fields(p.Header)
	if len(fields) < 2 || !strings.HasPrefix(fields[1], "(") || !strings.HasSuffix(fields[1], ")") {
		return Parsed{}, fmt.Errorf("%w: no date in header %q", ErrNotAForecast, p.Header)
	}
	p.Date = strings.Trim(fields[1], "()")

	idx := strings.LastIndex(p.Header, " in ")
	if idx < 0 {
		return Parsed{}, fmt.Errorf("%w: no city in header %q", ErrNotAForecast, p.Header)
	}
	p.City = strings.TrimSpace(p.Header[idx+len(" in "):])

	for _, line := range lines[2:] {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return Parsed{}, fmt.Errorf("%w: malformed parameter line %q", ErrNotAForecast, line)
		}
		p.Params[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}

	return p, nil
}

// Value returns the number printed for name, which must carry unit
func (p Parsed) Value(name, unit string) (float64, error) {
	raw, ok := p.Params[name]
	if !ok {
		return 0, fmt.Errorf("missing %s", name)
	}
	number, _, found := strings.Cut(raw, unit)
	if !found {
		return 0, fmt.Errorf("%s value %q lacks unit %q", name, raw, unit)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(number), 64)
	if err != nil {
		return 0, fmt.Errorf("%s value %q is not a number: %w", name, raw, err)
	}
	return v, nil
}

type paramRule struct {
	name   string
	unit   string
	bounds models.Range
}

var paramRules = []paramRule{
	{ParamTemp, UnitDegree, models.TemperatureBounds},
	{ParamMin, UnitDegree, models.TemperatureBounds},
	{ParamMax, UnitDegree, models.TemperatureBounds},
	{ParamWindSpeed, UnitSpeed, models.WindSpeedBounds},
	{ParamHumidity, UnitPercent, models.HumidityBounds},
	{ParamAirPressure, UnitPressure, models.PressureBounds},
}

// Check verifies parsed output against the forecast contract for a run made on today.
// It returns every violation found; an empty result means the output conforms.
func Check(p Parsed, today time.Time) []error {
	var errs []error

	if !strings.Contains(p.Header, "Tomorrow") {
		errs = append(errs, fmt.Errorf("header %q lacks \"Tomorrow\"", p.Header))
	}
	if want := models.Tomorrow(today).Format(models.DateLayout); p.Date != want {
		errs = append(errs, fmt.Errorf("date %q is not tomorrow (%s)", p.Date, want))
	}
	if p.City == "" {
		errs = append(errs, fmt.Errorf("empty city in header %q", p.Header))
	}
	if _, ok := models.ParseWeatherState(p.State); !ok {
		errs = append(errs, fmt.Errorf("weather state %q is not one of %v", p.State, models.WeatherStates))
	}

	for _, rule := range paramRules {
		v, err := p.Value(rule.name, rule.unit)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !rule.bounds.Contains(v) {
			errs = append(errs, fmt.Errorf("%s %g outside [%g, %g]", rule.name, v, rule.bounds.Min, rule.bounds.Max))
		}
	}

	return errs
}
