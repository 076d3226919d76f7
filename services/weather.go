package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/getsentry/sentry-go"
)

// WeatherObservation is a current-conditions snapshot for a city.
// Temperature is in Celsius, wind speed in meters per second.
type WeatherObservation struct {
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
}

type WeatherProvider interface {
	CurrentWeather(ctx context.Context, city string) (*WeatherObservation, error)
}

// OpenWeatherService fetches conditions from the OpenWeather current
// weather endpoint in metric units.
type OpenWeatherService struct {
	APIKey string
	Client *http.Client
}

func NewOpenWeatherService() *OpenWeatherService {
	return &OpenWeatherService{
		APIKey: GetEnv("OPENWEATHER_API_KEY", ""),
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

type openWeatherResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

func (s *OpenWeatherService) CurrentWeather(ctx context.Context, city string) (*WeatherObservation, error) {
	endpoint := fmt.Sprintf(
		"https://api.openweathermap.org/data/2.5/weather?q=%s&units=metric&appid=%s",
		url.QueryEscape(city), s.APIKey,
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		sentry.CaptureException(err)
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("openweather status %d for city %q: %s", resp.StatusCode, city, string(body))
		sentry.CaptureException(err)
		return nil, err
	}
	var parsed openWeatherResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		sentry.CaptureException(err)
		return nil, err
	}
	observation := &WeatherObservation{
		Temperature: parsed.Main.Temp,
		Humidity:    parsed.Main.Humidity,
		WindSpeed:   parsed.Wind.Speed,
	}
	if len(parsed.Weather) > 0 {
		observation.Condition = parsed.Weather[0].Description
	}
	return observation, nil
}
