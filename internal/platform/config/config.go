package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type HTTPConfig struct {
	Addr string
}

type AppConfig struct {
	ServiceName string
	LogLevel    string
	Env         string
	HTTP        HTTPConfig
}

// IsProduction reports whether APP_ENV=production. Production binaries refuse
// development-only fallbacks such as in-memory storage.
func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func Load() (AppConfig, error) {
	cfg := AppConfig{
		ServiceName: String("SERVICE_NAME", ""),
		LogLevel:    String("LOG_LEVEL", "info"),
		Env:         String("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Addr: String("HTTP_ADDR", ":8080"),
		},
	}
	if cfg.ServiceName == "" {
		return AppConfig{}, errors.New("SERVICE_NAME is required")
	}
	return cfg, nil
}

// String returns the trimmed value of key, or def when it is unset or blank.
func String(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// Int returns key parsed as a positive integer. Malformed, zero or negative
// values fall back to def.
func Int(key string, def int) int {
	n, err := strconv.Atoi(String(key, ""))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// Duration returns key parsed with time.ParseDuration, falling back to def
// for anything that is not a positive duration.
func Duration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(String(key, ""))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
