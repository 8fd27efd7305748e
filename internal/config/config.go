package config

import (
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/spf13/viper"
)

// Config holds everything the process reads from the environment. It is
// loaded once at startup and never mutated.
type Config struct {
	HTTPAddr string
	LogLevel string

	SigningKey       string
	SigningMethod    string
	AccessTokenHours int
	RefreshTokenDays int

	CORSOrigins []string

	DatastoreURL        string
	DatastoreAnonKey    string
	DatastoreServiceKey string
}

// AccessTokenTTL returns the access token lifetime as a duration.
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenHours) * time.Hour
}

// RefreshTokenTTL returns the refresh token lifetime as a duration.
func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenDays) * 24 * time.Hour
}

// Load reads configuration from the environment. Missing signing or datastore
// settings fail fast; defaults cover everything else.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	for _, key := range []string{
		"HTTP_ADDR",
		"LOG_LEVEL",
		"JWT_SIGNING_KEY",
		"JWT_SIGNING_METHOD",
		"JWT_EXPIRATION_HOURS",
		"REFRESH_TOKEN_EXPIRATION_DAYS",
		"CORS_ORIGINS",
		"DATASTORE_URL",
		"DATASTORE_ANON_KEY",
		"DATASTORE_SERVICE_KEY",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to bind environment variable")
		}
	}

	v.SetDefault("HTTP_ADDR", ":8000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_SIGNING_METHOD", "HS256")
	v.SetDefault("JWT_EXPIRATION_HOURS", 24)
	v.SetDefault("REFRESH_TOKEN_EXPIRATION_DAYS", 7)
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")

	cfg := &Config{
		HTTPAddr:            v.GetString("HTTP_ADDR"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		SigningKey:          v.GetString("JWT_SIGNING_KEY"),
		SigningMethod:       v.GetString("JWT_SIGNING_METHOD"),
		AccessTokenHours:    v.GetInt("JWT_EXPIRATION_HOURS"),
		RefreshTokenDays:    v.GetInt("REFRESH_TOKEN_EXPIRATION_DAYS"),
		CORSOrigins:         splitOrigins(v.GetString("CORS_ORIGINS")),
		DatastoreURL:        v.GetString("DATASTORE_URL"),
		DatastoreAnonKey:    v.GetString("DATASTORE_ANON_KEY"),
		DatastoreServiceKey: v.GetString("DATASTORE_SERVICE_KEY"),
	}

	if cfg.SigningKey == "" {
		return nil, goerrors.New("JWT_SIGNING_KEY is required", goerrors.CategoryBadInput)
	}
	if cfg.DatastoreURL == "" || cfg.DatastoreAnonKey == "" {
		return nil, goerrors.New("DATASTORE_URL and DATASTORE_ANON_KEY are required", goerrors.CategoryBadInput)
	}
	if cfg.DatastoreServiceKey == "" {
		// admin passthrough falls back to the anonymous key
		cfg.DatastoreServiceKey = cfg.DatastoreAnonKey
	}

	return cfg, nil
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
