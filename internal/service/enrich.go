package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pkordes/trip-companion/backend/internal/lookup"
)

// PhotoFinder resolves a city into a photo URL.
type PhotoFinder interface {
	PhotoURL(ctx context.Context, city string) (string, error)
}

// WeatherReporter returns the current weather in a city.
type WeatherReporter interface {
	Current(ctx context.Context, city string) (lookup.Weather, error)
}

// Enricher decorates trips with data from third-party lookups.
// Lookups are best-effort: failures are logged and the decoration is left out.
type Enricher struct {
	photos  PhotoFinder
	weather WeatherReporter
	log     *slog.Logger
}

// NewEnricher constructs an Enricher. Either lookup may be nil.
func NewEnricher(photos PhotoFinder, weather WeatherReporter, log *slog.Logger) *Enricher {
	if log == nil {
		log = slog.Default()
	}
	return &Enricher{photos: photos, weather: weather, log: log}
}

// Image returns explicit when set, else a photo of city, else a placeholder
// derived from the city name.
func (e *Enricher) Image(ctx context.Context, city, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if e != nil && e.photos != nil {
		url, err := e.photos.PhotoURL(ctx, city)
		if err == nil && url != "" {
			return url
		}
		e.logFailure("place photo lookup failed", city, err)
	}
	return lookup.PlaceholderImage(city)
}

// Weather returns the current weather in city, or nil if it is unavailable.
func (e *Enricher) Weather(ctx context.Context, city string) *lookup.Weather {
	if e == nil || e.weather == nil {
		return nil
	}
	w, err := e.weather.Current(ctx, city)
	if err != nil {
		e.logFailure("weather lookup failed", city, err)
		return nil
	}
	return &w
}

func (e *Enricher) logFailure(msg, city string, err error) {
	if err == nil || errors.Is(err, lookup.ErrDisabled) {
		return
	}
	e.log.Warn(msg, "city", city, "error", err)
}
