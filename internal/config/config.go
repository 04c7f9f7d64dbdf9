// Package config loads application configuration from the environment.
// A .env file, when present, is loaded by main before Load runs; values are
// then read through viper so every key can also be overridden by a real
// environment variable.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Config holds the core runtime configuration.  Optional subsystems (redis,
// cache, rate limit, events, logging) have their own loaders.
type Config struct {
	Env            string        // application environment (dev, test, prod)
	Port           string        // HTTP port to listen on
	StoreDriver    string        // "mysql" or "memory"
	DBUser         string        // database username
	DBPass         string        // database password (optional)
	DBHost         string        // database host address
	DBPort         string        // database port number
	DBName         string        // database name
	JWTSecret      string        // secret used to sign JWTs
	JWTIssuer      string        // iss claim of issued tokens
	AccessTTLMin   int           // access token time-to-live in minutes
	RefreshTTLDays int           // refresh token time-to-live in days
	BcryptCost     int           // bcrypt cost for password hashing
	CORSOrigins    []string      // allowed CORS origins; "*" allows any
	RequestTimeout time.Duration // per-request store timeout
}

// AccessTTL is AccessTTLMin as a duration.
func (c Config) AccessTTL() time.Duration { return time.Duration(c.AccessTTLMin) * time.Minute }

// RefreshTTL is RefreshTTLDays as a duration.
func (c Config) RefreshTTL() time.Duration { return time.Duration(c.RefreshTTLDays) * 24 * time.Hour }

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	return v
}

// Load reads configuration values and returns a Config.  Missing required
// variables or malformed numbers are reported as an error.
func Load() (Config, error) {
	v := newViper()
	v.SetDefault("STORE_DRIVER", DriverMySQL)
	v.SetDefault("JWT_ISSUER", "pliva-retreat")
	v.SetDefault("ACCESS_TOKEN_TTL_MIN", 15)
	v.SetDefault("REFRESH_TOKEN_TTL_DAYS", 7)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("REQUEST_TIMEOUT", "5s")

	r := reader{v: v}
	cfg := Config{
		Env:            r.must("APP_ENV"),
		Port:           r.must("APP_PORT"),
		StoreDriver:    strings.ToLower(v.GetString("STORE_DRIVER")),
		DBPass:         v.GetString("DB_PASS"),
		JWTSecret:      r.must("JWT_SECRET"),
		JWTIssuer:      v.GetString("JWT_ISSUER"),
		AccessTTLMin:   r.mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: r.mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     r.mustInt("BCRYPT_COST"),
		CORSOrigins:    splitList(v.GetString("CORS_ORIGINS")),
		RequestTimeout: r.duration("REQUEST_TIMEOUT"),
	}
	switch cfg.StoreDriver {
	case DriverMySQL:
		cfg.DBUser = r.must("DB_USER")
		cfg.DBHost = r.must("DB_HOST")
		cfg.DBPort = r.must("DB_PORT")
		cfg.DBName = r.must("DB_NAME")
	case DriverMemory:
	default:
		r.fail("STORE_DRIVER must be %q or %q, got %q", DriverMySQL, DriverMemory, cfg.StoreDriver)
	}
	if err := r.err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// reader collects every problem instead of stopping at the first one, so a
// misconfigured deployment reports all missing keys at once.
type reader struct {
	v    *viper.Viper
	errs []string
}

func (r *reader) fail(format string, args ...any) {
	r.errs = append(r.errs, fmt.Sprintf(format, args...))
}

func (r *reader) must(key string) string {
	s := strings.TrimSpace(r.v.GetString(key))
	if s == "" {
		r.fail("missing required env var: %s", key)
	}
	return s
}

func (r *reader) mustInt(key string) int {
	s := r.must(key)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		r.fail("invalid int for %s: %q", key, s)
	}
	return n
}

func (r *reader) duration(key string) time.Duration {
	s := r.v.GetString(key)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		r.fail("invalid duration for %s: %q", key, s)
	}
	return d
}

func (r *reader) err() error {
	if len(r.errs) == 0 {
		return nil
	}
	return fmt.Errorf("config: %s", strings.Join(r.errs, "; "))
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
