package openmeteo

import (
	"fmt"

	"github.com/ant1kdream/forecast-weather-qa-tests/models"
)

// StateForCode maps a WMO weather interpretation code to a WeatherState
func StateForCode(code int) (models.WeatherState, error) {
	switch {
	case code == 0, code == 1:
		return models.StateClear, nil
	case code == 2:
		return models.StateLightCloud, nil
	case code == 3, code == 45, code == 48:
		return models.StateHeavyCloud, nil
	case code >= 51 && code <= 57, code == 61:
		return models.StateLightRain, nil
	case code == 63, code == 65:
		return models.StateHeavyRain, nil
	case code == 66, code == 67:
		return models.StateSleet, nil
	case code >= 71 && code <= 77, code == 85, code == 86:
		return models.StateSnow, nil
	case code >= 80 && code <= 82:
		return models.StateShowers, nil
	case code == 95:
		return models.StateThunderstorm, nil
	case code == 96, code == 99:
		return models.StateHail, nil
	}
	return "", fmt.Errorf("unknown WMO weather code %d", code)
}
