package models

import (
	"fmt"
	"time"
)

// DateLayout is the layout used for report dates
const DateLayout = "2006-01-02"

// Report represents tomorrow's forecast for a single city
type Report struct {
	Date        time.Time    `json:"date"`        // the forecast day
	City        string       `json:"city"`        // city name as resolved by the provider
	State       WeatherState `json:"state"`       // coarse weather label
	Temp        float64      `json:"temp"`        // in Celsius
	Min         float64      `json:"min"`         // in Celsius
	Max         float64      `json:"max"`         // in Celsius
	WindSpeed   float64      `json:"windSpeed"`   // in m/s
	Humidity    float64      `json:"humidity"`    // percentage
	AirPressure float64      `json:"airPressure"` // in mbar
	Provider    string       `json:"provider"`    // weather data provider name
}

// Range is an inclusive interval of plausible values
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies inside the range
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Earth weather bounds for report parameters
var (
	TemperatureBounds = Range{Min: -100, Max: 70}
	WindSpeedBounds   = Range{Min: 0, Max: 115}
	HumidityBounds    = Range{Min: 0, Max: 100}
	PressureBounds    = Range{Min: 650, Max: 1087}
)

// Tomorrow returns the calendar day after now, at midnight in now's location
func Tomorrow(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}

// Validate checks that the report holds a known state and plausible values
func (r Report) Validate() error {
	if !r.State.Valid() {
		return fmt.Errorf("unknown weather state %q", r.State)
	}

	checks := []struct {
		name   string
		value  float64
		bounds Range
	}{
		{"temp", r.Temp, TemperatureBounds},
		{"min", r.Min, TemperatureBounds},
		{"max", r.Max, TemperatureBounds},
		{"wind speed", r.WindSpeed, WindSpeedBounds},
		{"humidity", r.Humidity, HumidityBounds},
		{"air pressure", r.AirPressure, PressureBounds},
	}
	for _, c := range checks {
		if !c.bounds.Contains(c.value) {
			return fmt.Errorf("%s %.2f outside [%g, %g]", c.name, c.value, c.bounds.Min, c.bounds.Max)
		}
	}

	if r.Min > r.Max {
		return fmt.Errorf("min %.2f greater than max %.2f", r.Min, r.Max)
	}
	return nil
}
