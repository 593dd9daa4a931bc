package openweathermap

import (
	"fmt"

	"github.com/ant1kdream/forecast-weather-qa-tests/models"
)

// StateForCondition maps an OpenWeatherMap condition id to a WeatherState
func StateForCondition(id int) (models.WeatherState, error) {
	switch {
	case id >= 200 && id < 300:
		return models.StateThunderstorm, nil
	case id >= 300 && id < 400:
		return models.StateLightRain, nil
	case id == 500, id == 501:
		return models.StateLightRain, nil
	case id >= 502 && id <= 504:
		return models.StateHeavyRain, nil
	case id == 511:
		return models.StateSleet, nil
	case id >= 520 && id <= 531:
		return models.StateShowers, nil
	case id >= 611 && id <= 616:
		return models.StateSleet, nil
	case id >= 600 && id < 700:
		return models.StateSnow, nil
	case id >= 700 && id < 800:
		return models.StateHeavyCloud, nil
	case id == 800:
		return models.StateClear, nil
	case id == 801, id == 802:
		return models.StateLightCloud, nil
	case id == 803, id == 804:
		return models.StateHeavyCloud, nil
	}
	return "", fmt.Errorf("unknown OpenWeatherMap condition id %d", id)
}
