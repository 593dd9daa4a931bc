package models

// WeatherState is a coarse label for the day's conditions
type WeatherState string

const (
	StateSnow         WeatherState = "Snow"
	StateSleet        WeatherState = "Sleet"
	StateHail         WeatherState = "Hail"
	StateThunderstorm WeatherState = "Thunderstorm"
	StateHeavyRain    WeatherState = "Heavy Rain"
	StateLightRain    WeatherState = "Light Rain"
	StateShowers      WeatherState = "Showers"
	StateHeavyCloud   WeatherState = "Heavy Cloud"
	StateLightCloud   WeatherState = "Light Cloud"
	StateClear        WeatherState = "Clear"
)

// WeatherStates lists every state, most severe first
var WeatherStates = []WeatherState{
	StateThunderstorm,
	StateHail,
	StateSnow,
	StateSleet,
	StateHeavyRain,
	StateShowers,
	StateLightRain,
	StateHeavyCloud,
	StateLightCloud,
	StateClear,
}

// Valid reports whether s belongs to the closed set of states
func (s WeatherState) Valid() bool {
	return s.Severity() >= 0
}

// Severity ranks a state; higher is more severe, -1 for unknown labels
func (s WeatherState) Severity() int {
	for i, st := range WeatherStates {
		if st == s {
			return len(WeatherStates) - 1 - i
		}
	}
	return -1
}

// ParseWeatherState converts a label into a WeatherState
func ParseWeatherState(label string) (WeatherState, bool) {
	s := WeatherState(label)
	return s, s.Valid()
}
