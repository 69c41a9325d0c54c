package lookup

// WeatherResult is the outcome of a weather lookup
type WeatherResult interface {
	weatherResult()
}

// ForecastDay is one day of the forward forecast
type ForecastDay struct {
	Date      string  `json:"date"`
	MinTempC  float64 `json:"min_temp_c"`
	MaxTempC  float64 `json:"max_temp_c"`
	Condition string  `json:"condition"`
}

// WeatherInfo is the current conditions and short forecast for a location
type WeatherInfo struct {
	Location     string        `json:"location"`
	Country      string        `json:"country"`
	Latitude     float64       `json:"latitude"`
	Longitude    float64       `json:"longitude"`
	TemperatureC float64       `json:"temperature_c"`
	FeelsLikeC   float64       `json:"feels_like_c"`
	WindSpeedKMH float64       `json:"wind_speed_kmh"`
	HumidityPct  int           `json:"humidity_pct"`
	Condition    string        `json:"condition"`
	Forecast     []ForecastDay `json:"forecast"`
}

// LocationNotFound reports a place name the geocoder could not resolve
type LocationNotFound struct {
	Query string `json:"query"`
}

func (WeatherInfo) weatherResult()      {}
func (LocationNotFound) weatherResult() {}
