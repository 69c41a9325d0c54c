package lookup

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/m-mizutani/kasumi/pkg/domain/model/lookup"
)

const (
	openMeteoGeocodingURL = "https://geocoding-api.open-meteo.com/v1"
	openMeteoForecastURL  = "https://api.open-meteo.com/v1"

	forecastDays = 3
)

// WeatherTool resolves current conditions and a short forecast through
// Open-Meteo: geocode the place name first, then fetch the forecast for the
// resolved coordinates.
type WeatherTool struct {
	client       *http.Client
	geocodingURL string
	forecastURL  string
}

// WeatherOption is a functional option for WeatherTool
type WeatherOption func(*WeatherTool)

// WithWeatherBaseURLs overrides both upstream endpoints
func WithWeatherBaseURLs(geocoding, forecast string) WeatherOption {
	return func(t *WeatherTool) {
		t.geocodingURL = strings.TrimSuffix(geocoding, "/")
		t.forecastURL = strings.TrimSuffix(forecast, "/")
	}
}

// NewWeatherTool creates a new weather lookup tool
func NewWeatherTool(opts ...WeatherOption) *WeatherTool {
	t := &WeatherTool{
		client:       newHTTPClient(),
		geocodingURL: openMeteoGeocodingURL,
		forecastURL:  openMeteoForecastURL,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type geocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type forecastResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		FeelsLike   float64 `json:"apparent_temperature"`
		Humidity    int     `json:"relative_humidity_2m"`
		WindSpeed   float64 `json:"wind_speed_10m"`
		WeatherCode int     `json:"weather_code"`
	} `json:"current"`
	Daily struct {
		Time         []string  `json:"time"`
		TempMax      []float64 `json:"temperature_2m_max"`
		TempMin      []float64 `json:"temperature_2m_min"`
		WeatherCodes []int     `json:"weather_code"`
	} `json:"daily"`
}

// Execute geocodes location and fetches its current weather and forecast
func (t *WeatherTool) Execute(ctx context.Context, location string) lookup.WeatherResult {
	place := strings.TrimSpace(location)
	if place == "" {
		return lookup.Failure{Message: "location is required: use a city or place name"}
	}

	var geo geocodingResponse
	geoURL := fmt.Sprintf("%s/search?name=%s&count=1&format=json", t.geocodingURL, url.QueryEscape(place))
	if err := getJSON(ctx, t.client, geoURL, &geo); err != nil {
		return lookup.Failure{Message: fmt.Sprintf("location lookup failed: %v", err)}
	}
	if len(geo.Results) == 0 {
		return lookup.LocationNotFound{Query: place}
	}
	loc := geo.Results[0]

	var fc forecastResponse
	fcURL := fmt.Sprintf(
		"%s/forecast?latitude=%f&longitude=%f&current=temperature_2m,relative_humidity_2m,apparent_temperature,weather_code,wind_speed_10m&daily=temperature_2m_max,temperature_2m_min,weather_code&timezone=auto&forecast_days=%d",
		t.forecastURL, loc.Latitude, loc.Longitude, forecastDays)
	if err := getJSON(ctx, t.client, fcURL, &fc); err != nil {
		return lookup.Failure{Message: fmt.Sprintf("weather lookup failed: %v", err)}
	}

	info := lookup.WeatherInfo{
		Location:     loc.Name,
		Country:      loc.Country,
		Latitude:     loc.Latitude,
		Longitude:    loc.Longitude,
		TemperatureC: fc.Current.Temperature,
		FeelsLikeC:   fc.Current.FeelsLike,
		WindSpeedKMH: fc.Current.WindSpeed,
		HumidityPct:  fc.Current.Humidity,
		Condition:    weatherCondition(fc.Current.WeatherCode),
	}

	for i, date := range fc.Daily.Time {
		day := lookup.ForecastDay{Date: date}
		if i < len(fc.Daily.TempMin) {
			day.MinTempC = fc.Daily.TempMin[i]
		}
		if i < len(fc.Daily.TempMax) {
			day.MaxTempC = fc.Daily.TempMax[i]
		}
		if i < len(fc.Daily.WeatherCodes) {
			day.Condition = weatherCondition(fc.Daily.WeatherCodes[i])
		}
		info.Forecast = append(info.Forecast, day)
	}

	return info
}

// Format renders a weather result for display
func (t *WeatherTool) Format(result lookup.WeatherResult) string {
	switch r := result.(type) {
	case lookup.WeatherInfo:
		var b strings.Builder
		fmt.Fprintf(&b, "Weather in %s, %s\n", r.Location, r.Country)
		fmt.Fprintf(&b, "Condition: %s\n", r.Condition)
		fmt.Fprintf(&b, "Temperature: %.1fC (feels like %.1fC)\n", r.TemperatureC, r.FeelsLikeC)
		fmt.Fprintf(&b, "Humidity: %d%%\n", r.HumidityPct)
		fmt.Fprintf(&b, "Wind: %.1f km/h\n", r.WindSpeedKMH)
		if len(r.Forecast) > 0 {
			b.WriteString("Forecast:\n")
			for _, day := range r.Forecast {
				fmt.Fprintf(&b, "- %s: %.0fC to %.0fC, %s\n", day.Date, day.MinTempC, day.MaxTempC, day.Condition)
			}
		}
		return strings.TrimSpace(b.String())
	case lookup.LocationNotFound:
		return fmt.Sprintf("Location %q was not found, try being more specific", r.Query)
	case lookup.Failure:
		return r.Message
	default:
		return fmt.Sprintf("%v", result)
	}
}

// weatherCondition converts a WMO weather code to a readable description
func weatherCondition(code int) string {
	conditions := map[int]string{
		0:  "clear sky",
		1:  "mainly clear",
		2:  "partly cloudy",
		3:  "overcast",
		45: "fog",
		48: "depositing rime fog",
		51: "light drizzle",
		53: "moderate drizzle",
		55: "dense drizzle",
		61: "light rain",
		63: "moderate rain",
		65: "heavy rain",
		71: "light snow",
		73: "moderate snow",
		75: "heavy snow",
		77: "snow grains",
		80: "light rain showers",
		81: "moderate rain showers",
		82: "violent rain showers",
		85: "light snow showers",
		86: "heavy snow showers",
		95: "thunderstorm",
		96: "thunderstorm with light hail",
		99: "thunderstorm with heavy hail",
	}

	if c, ok := conditions[code]; ok {
		return c
	}
	return fmt.Sprintf("weather code %d", code)
}
