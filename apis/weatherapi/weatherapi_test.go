package weatherapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"weatherwizard/apis/apitest"
	"weatherwizard/manager"
)

const forecastBody = `{
	"forecast": {
		"forecastday": [
			{"day": {"avgtemp_c": 9.46, "mintemp_c": 4.1, "maxtemp_c": 14.8, "condition": {"text": "Partly cloudy"}}},
			{"day": {"avgtemp_c": 7.0, "mintemp_c": 3.2, "maxtemp_c": 10.3, "condition": {"text": "Patchy rain possible"}}}
		]
	}
}`

func TestForecast(t *testing.T) {
	srv, deps, ledger, _ := apitest.Server(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast.json", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("days"))
		assert.Equal(t, "46.05,14.51", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(forecastBody))
	})
	ledger.On("Consume", mock.Anything, manager.WeatherAPI).Return(nil).Once()

	w := New("secret", deps)
	w.baseURL = srv.URL

	readings, err := w.Forecast(context.Background(), &manager.City{Name: "Ljubljana", Lat: 46.05, Lon: 14.51})
	require.NoError(t, err)

	assert.Equal(t, "partly cloudy", readings[0].Weather)
	require.NotNil(t, readings[0].Temperature)
	assert.Equal(t, 9.5, *readings[0].Temperature)
	assert.Equal(t, "patchy rain possible", readings[1].Weather)
	assert.Equal(t, 10.3, readings[1].TempMax)
	ledger.AssertExpectations(t)
}

func TestHistory(t *testing.T) {
	srv, deps, ledger, _ := apitest.Server(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/history.json", r.URL.Path)
		assert.Equal(t, "2026-10-14", r.URL.Query().Get("dt"))
		_, _ = w.Write([]byte(`{"forecast": {"forecastday": [
			{"day": {"avgtemp_c": 11.2, "mintemp_c": 6.0, "maxtemp_c": 15.5, "condition": {"text": "Sunny"}}}
		]}}`))
	})
	ledger.On("Consume", mock.Anything, manager.WeatherAPI).Return(nil).Once()

	w := New("secret", deps)
	w.baseURL = srv.URL

	reading, err := w.History(context.Background(), &manager.City{Name: "Ljubljana"}, time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "sunny", reading.Weather)
	assert.Equal(t, 6.0, reading.TempMin)
}

func TestProviderError(t *testing.T) {
	srv, deps, ledger, _ := apitest.Server(t, apitest.JSON(http.StatusOK, `{"error": {"code": 1006, "message": "No matching location found."}}`))
	ledger.On("Consume", mock.Anything, manager.WeatherAPI).Return(nil)

	w := New("secret", deps)
	w.baseURL = srv.URL

	_, err := w.Forecast(context.Background(), &manager.City{Name: "Atlantis"})
	assert.ErrorIs(t, err, manager.ErrProviderData)

	_, err = w.History(context.Background(), &manager.City{Name: "Atlantis"}, time.Now())
	assert.ErrorIs(t, err, manager.ErrProviderData)
}
