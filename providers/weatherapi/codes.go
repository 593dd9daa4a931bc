package weatherapi

import (
	"fmt"

	"github.com/ant1kdream/forecast-weather-qa-tests/models"
)

// conditionStates maps WeatherAPI condition codes to states.
// See https://www.weatherapi.com/docs/weather_conditions.json
var conditionStates = map[int]models.WeatherState{
	1000: models.StateClear,
	1003: models.StateLightCloud,
	1006: models.StateHeavyCloud,
	1009: models.StateHeavyCloud,
	1030: models.StateHeavyCloud,
	1135: models.StateHeavyCloud,
	1147: models.StateHeavyCloud,

	1063: models.StateLightRain,
	1150: models.StateLightRain,
	1153: models.StateLightRain,
	1180: models.StateLightRain,
	1183: models.StateLightRain,
	1186: models.StateHeavyRain,
	1189: models.StateHeavyRain,
	1192: models.StateHeavyRain,
	1195: models.StateHeavyRain,
	1240: models.StateShowers,
	1243: models.StateShowers,
	1246: models.StateShowers,

	1069: models.StateSleet,
	1072: models.StateSleet,
	1168: models.StateSleet,
	1171: models.StateSleet,
	1198: models.StateSleet,
	1201: models.StateSleet,
	1204: models.StateSleet,
	1207: models.StateSleet,
	1249: models.StateSleet,
	1252: models.StateSleet,

	1066: models.StateSnow,
	1114: models.StateSnow,
	1117: models.StateSnow,
	1210: models.StateSnow,
	1213: models.StateSnow,
	1216: models.StateSnow,
	1219: models.StateSnow,
	1222: models.StateSnow,
	1225: models.StateSnow,
	1255: models.StateSnow,
	1258: models.StateSnow,

	1237: models.StateHail,
	1261: models.StateHail,
	1264: models.StateHail,

	1087: models.StateThunderstorm,
	1273: models.StateThunderstorm,
	1276: models.StateThunderstorm,
	1279: models.StateThunderstorm,
	1282: models.StateThunderstorm,
}

// StateForCondition maps a WeatherAPI condition code to a WeatherState
func StateForCondition(code int) (models.WeatherState, error) {
	if state, ok := conditionStates[code]; ok {
		return state, nil
	}
	return "", fmt.Errorf("unknown WeatherAPI condition code %d", code)
}
