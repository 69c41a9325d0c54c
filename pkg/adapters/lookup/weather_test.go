package lookup_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	lookupadapter "github.com/m-mizutani/kasumi/pkg/adapters/lookup"
	"github.com/m-mizutani/kasumi/pkg/domain/model/lookup"
)

func TestWeatherTool_ResolvesForecast(t *testing.T) {
	geoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Equal(t, r.URL.Query().Get("name"), "Lisbon")
		_, _ = w.Write([]byte(`{"results": [
			{"name": "Lisbon", "country": "Portugal", "latitude": 38.7, "longitude": -9.1}
		]}`))
	}))
	defer geoSrv.Close()

	fcSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"current": {
				"temperature_2m": 24.5, "apparent_temperature": 25.1,
				"relative_humidity_2m": 60, "wind_speed_10m": 12.3, "weather_code": 1
			},
			"daily": {
				"time": ["2026-08-29", "2026-08-30", "2026-08-31"],
				"temperature_2m_max": [26, 27, 25],
				"temperature_2m_min": [18, 19, 17],
				"weather_code": [1, 2, 61]
			}
		}`))
	}))
	defer fcSrv.Close()

	tool := lookupadapter.NewWeatherTool(lookupadapter.WithWeatherBaseURLs(geoSrv.URL, fcSrv.URL))
	result := tool.Execute(context.Background(), "Lisbon")

	info := gt.Cast[lookup.WeatherInfo](t, result)
	gt.Equal(t, info.Location, "Lisbon")
	gt.Equal(t, info.Country, "Portugal")
	gt.Equal(t, info.TemperatureC, 24.5)
	gt.Equal(t, info.Condition, "mainly clear")
	gt.A(t, info.Forecast).Length(3)
	gt.Equal(t, info.Forecast[2].Condition, "light rain")

	formatted := tool.Format(result)
	gt.True(t, strings.Contains(formatted, "Lisbon, Portugal"))
	gt.True(t, strings.Contains(formatted, "Forecast:"))
}

func TestWeatherTool_LocationNotFound(t *testing.T) {
	geoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer geoSrv.Close()

	tool := lookupadapter.NewWeatherTool(lookupadapter.WithWeatherBaseURLs(geoSrv.URL, geoSrv.URL))
	result := tool.Execute(context.Background(), "Nowhereville")

	notFound := gt.Cast[lookup.LocationNotFound](t, result)
	gt.Equal(t, notFound.Query, "Nowhereville")
}

func TestWeatherTool_EmptyLocation(t *testing.T) {
	tool := lookupadapter.NewWeatherTool()
	result := tool.Execute(context.Background(), "")

	gt.Cast[lookup.Failure](t, result)
}
