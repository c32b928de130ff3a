package lookup

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Weather is the current weather in a city, in metric units.
type Weather struct {
	Temperature float64 `json:"temperature"`
	Description string  `json:"description"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Icon        string  `json:"icon"`
	IconURL     string  `json:"icon_url"`
}

// WeatherClient queries a current-weather API.
type WeatherClient struct {
	base
	language string
}

// NewWeatherClient creates a WeatherClient with descriptions in Turkish.
func NewWeatherClient(opts Options) *WeatherClient {
	return &WeatherClient{base: newBase(opts), language: "tr"}
}

type weatherResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Current returns the weather for city. Only the part before the first comma
// is sent, so "Isparta, Türkiye" is looked up as "Isparta".
func (c *WeatherClient) Current(ctx context.Context, city string) (Weather, error) {
	if !c.Enabled() {
		return Weather{}, fmt.Errorf("lookup.WeatherClient.Current: %w", ErrDisabled)
	}

	name := CityName(city)
	if name == "" {
		return Weather{}, fmt.Errorf("lookup.WeatherClient.Current: %w: empty city", ErrNoResult)
	}

	params := url.Values{}
	params.Set("q", name)
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")
	params.Set("lang", c.language)

	var resp weatherResponse
	if err := c.get(ctx, "/weather", params, &resp); err != nil {
		return Weather{}, fmt.Errorf("lookup.WeatherClient.Current: %w", err)
	}

	w := Weather{
		Temperature: resp.Main.Temp,
		Humidity:    resp.Main.Humidity,
		WindSpeed:   resp.Wind.Speed,
	}
	if len(resp.Weather) > 0 {
		w.Description = resp.Weather[0].Description
		w.Icon = resp.Weather[0].Icon
		w.IconURL = "https://openweathermap.org/img/wn/" + w.Icon + "@2x.png"
	}
	return w, nil
}

// CityName returns the trimmed text before the first comma.
func CityName(city string) string {
	name, _, _ := strings.Cut(city, ",")
	return strings.TrimSpace(name)
}
