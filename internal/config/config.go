// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// JWTSecret is the HS256 key the account directory signs bearer tokens with. Required.
	JWTSecret string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// Location decides where a trip day ends. Defaults to UTC.
	Location *time.Location

	// PageSize is the number of trips per feed page.
	PageSize int

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64

	// RatePerMinute and RateBurst configure the per-client request limiter.
	RatePerMinute int
	RateBurst     int

	// MigrateOnStart runs pending goose migrations before serving.
	MigrateOnStart bool

	// SerializeJoins runs the join conflict check and the write under a
	// per-user transaction lock.
	SerializeJoins bool

	// CheckConflictOnCreate runs the conflict detector for the creator on Create.
	CheckConflictOnCreate bool

	WeatherBaseURL string
	WeatherAPIKey  string
	PlacesBaseURL  string
	PlacesAPIKey   string

	// LookupTimeout bounds each weather or place photo request.
	LookupTimeout time.Duration
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or
// any variables whose values cannot be parsed.
func Load() (Config, error) {
	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		CORSOrigins:    splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		WeatherBaseURL: getEnv("WEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),
		WeatherAPIKey:  os.Getenv("WEATHER_API_KEY"),
		PlacesBaseURL:  getEnv("PLACES_BASE_URL", "https://maps.googleapis.com/maps/api/place"),
		PlacesAPIKey:   os.Getenv("PLACES_API_KEY"),
	}

	var missing, invalid []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	p := parser{invalid: &invalid}
	cfg.Location = p.location("TIMEZONE", "UTC")
	cfg.PageSize = p.positiveInt("PAGE_SIZE", 5)
	cfg.MaxBodyBytes = int64(p.positiveInt("MAX_BODY_BYTES", 1<<20))
	cfg.RatePerMinute = p.positiveInt("RATE_LIMIT_PER_MINUTE", 120)
	cfg.RateBurst = p.positiveInt("RATE_LIMIT_BURST", 20)
	cfg.MigrateOnStart = p.boolean("MIGRATE_ON_START", true)
	cfg.SerializeJoins = p.boolean("SERIALIZE_JOINS", false)
	cfg.CheckConflictOnCreate = p.boolean("CHECK_CONFLICT_ON_CREATE", false)
	cfg.LookupTimeout = p.duration("LOOKUP_TIMEOUT", 5*time.Second)

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// parser reads typed values, recording the names of unparseable ones.
type parser struct {
	invalid *[]string
}

func (p parser) fail(key string) {
	*p.invalid = append(*p.invalid, key)
}

func (p parser) positiveInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		p.fail(key)
		return fallback
	}
	return n
}

func (p parser) boolean(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key)
		return fallback
	}
	return b
}

func (p parser) duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		p.fail(key)
		return fallback
	}
	return d
}

func (p parser) location(key, fallback string) *time.Location {
	loc, err := time.LoadLocation(getEnv(key, fallback))
	if err != nil {
		p.fail(key)
		return time.UTC
	}
	return loc
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
