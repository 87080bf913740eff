// config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server and the seeder read from the environment.
type Config struct {
	Port          string
	Environment   string
	MongoURI      string
	MongoDatabase string
	SessionSecret string
	SessionTTL    time.Duration
	PublicURL     string
	DefaultLocale string
	StaticDir     string
	AuthRateLimit float64
	AuthRateBurst int
}

// Load reads .env (if present) and the process environment. Missing required
// variables are reported together so the process can fail fast.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var missing []string
	required := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg := &Config{
		MongoURI:      required("MONGODB_URI"),
		SessionSecret: required("SESSION_SECRET"),
		PublicURL:     strings.TrimRight(required("PUBLIC_URL"), "/"),
		Port:          getEnv("PORT", "8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "officeassets"),
		DefaultLocale: getEnv("DEFAULT_LOCALE", "th"),
		StaticDir:     getEnv("STATIC_DIR", "./web"),
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if _, err := url.ParseRequestURI(cfg.PublicURL); err != nil {
		return nil, fmt.Errorf("PUBLIC_URL is not a valid URL: %w", err)
	}

	ttl, err := ParseDuration(getEnv("SESSION_TTL", "30d"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	cfg.SessionTTL = ttl

	cfg.AuthRateLimit, err = strconv.ParseFloat(getEnv("AUTH_RATE_LIMIT", "5"), 64)
	if err != nil || cfg.AuthRateLimit <= 0 {
		return nil, fmt.Errorf("invalid AUTH_RATE_LIMIT %q", os.Getenv("AUTH_RATE_LIMIT"))
	}
	cfg.AuthRateBurst, err = strconv.Atoi(getEnv("AUTH_RATE_BURST", "20"))
	if err != nil || cfg.AuthRateBurst <= 0 {
		return nil, fmt.Errorf("invalid AUTH_RATE_BURST %q", os.Getenv("AUTH_RATE_BURST"))
	}

	return cfg, nil
}

// SecureCookies reports whether cookies should carry the Secure flag.
func (c *Config) SecureCookies() bool {
	return strings.HasPrefix(c.PublicURL, "https://")
}

// ParseDuration accepts Go durations plus a whole-day suffix such as "7d".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil || days <= 0 {
			return 0, fmt.Errorf("invalid day duration %q", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %q", s)
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
