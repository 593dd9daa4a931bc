// Package report renders a forecast as the reporter's text layout and reads it back.
package report

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ant1kdream/forecast-weather-qa-tests/datasource"
	"github.com/ant1kdream/forecast-weather-qa-tests/models"
)

// Parameter names printed on the value lines
const (
	ParamTemp        = "Temp"
	ParamMin         = "Min"
	ParamMax         = "Max"
	ParamWindSpeed   = "Wind speed"
	ParamHumidity    = "Humidity"
	ParamAirPressure = "Air pressure"
)

// Units printed after each value
const (
	UnitDegree   = "°C"
	UnitSpeed    = "m/s"
	UnitPercent  = "%"
	UnitPressure = "mbar"
)

// Params lists the value lines in print order
var Params = []string{ParamTemp, ParamMin, ParamMax, ParamWindSpeed, ParamHumidity, ParamAirPressure}

// ErrNotAForecast is returned by Parse for output that carries no forecast
var ErrNotAForecast = errors.New("output is not a forecast")

// Format renders r as three blank-line separated sections
func Format(r models.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tomorrow (%s) in %s\n", r.Date.Format(models.DateLayout), r.City)
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s\n", r.State)
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s: %s%s\n", ParamTemp, oneDecimal(r.Temp), UnitDegree)
	fmt.Fprintf(&b, "%s: %s%s\n", ParamMin, oneDecimal(r.Min), UnitDegree)
	fmt.Fprintf(&b, "%s: %s%s\n", ParamMax, oneDecimal(r.Max), UnitDegree)
	fmt.Fprintf(&b, "%s: %s %s\n", ParamWindSpeed, oneDecimal(r.WindSpeed), UnitSpeed)
	fmt.Fprintf(&b, "%s: %s%s\n", ParamHumidity, strconv.FormatFloat(noNegativeZero(math.Round(r.Humidity)), 'f', 0, 64), UnitPercent)
	fmt.Fprintf(&b, "%s: %s %s\n", ParamAirPressure, oneDecimal(r.AirPressure), UnitPressure)
	return b.String()
}

// FormatNotFound renders the error line for a city that could not be resolved.
// The input is echoed byte for byte, surrounding whitespace included.
func FormatNotFound(city string) string {
	return fmt.Sprintf("No forecast for \"%s\": %s\n", city, datasource.ErrCityNotFound)
}

func oneDecimal(v float64) string {
	return strconv.FormatFloat(noNegativeZero(math.Round(v*10)/10), 'f', 1, 64)
}

func noNegativeZero(v float64) float64 {
	if v == 0 {
		return 0
	}
	return v
}
