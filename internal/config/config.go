package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/edvin/mailpanel/internal/passwd"
)

// Roles accepted by Validate.
const (
	RoleAPI     = "api"
	RoleMailctl = "mailctl"
)

type Config struct {
	DatabaseURL    string
	HTTPListenAddr string
	LogLevel       string
	LogFormat      string
	ServiceName    string
	// PasswordScheme names the default credential scheme, e.g. "SSHA512".
	PasswordScheme string

	DNSNameservers []string
	DNSTimeout     time.Duration

	DKIMRefreshConcurrency int
	DKIMLookupsPerSecond   float64

	scheme passwd.Scheme
}

// Load reads the configuration from the environment. Variables from a .env
// file (ENV_FILE, default ".env") are loaded first without overriding the
// ones already set.
func Load() (*Config, error) {
	if err := loadEnvFile(getEnv("ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		HTTPListenAddr: getEnv("HTTP_LISTEN_ADDR", ":8090"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		ServiceName:    getEnv("SERVICE_NAME", "mailpanel-api"),
		PasswordScheme: getEnv("PASSWORD_SCHEME", passwd.DefaultScheme.String()),
		DNSNameservers: splitList(getEnv("DNS_NAMESERVERS", "")),
	}

	var err error
	if cfg.DNSTimeout, err = time.ParseDuration(getEnv("DNS_TIMEOUT", "5s")); err != nil {
		return nil, fmt.Errorf("parse DNS_TIMEOUT: %w", err)
	}
	if cfg.DKIMRefreshConcurrency, err = strconv.Atoi(getEnv("DKIM_REFRESH_CONCURRENCY", "4")); err != nil {
		return nil, fmt.Errorf("parse DKIM_REFRESH_CONCURRENCY: %w", err)
	}
	if cfg.DKIMLookupsPerSecond, err = strconv.ParseFloat(getEnv("DKIM_LOOKUPS_PER_SECOND", "10"), 64); err != nil {
		return nil, fmt.Errorf("parse DKIM_LOOKUPS_PER_SECOND: %w", err)
	}

	return cfg, nil
}

// Validate checks the settings the given role needs. An unknown password
// scheme is reported wrapping passwd.ErrUnknownScheme.
func (c *Config) Validate(role string) error {
	var errs []error

	scheme, err := passwd.ParseScheme(c.PasswordScheme)
	if err != nil {
		errs = append(errs, fmt.Errorf("PASSWORD_SCHEME: %w", err))
	} else {
		c.scheme = scheme
	}

	switch c.LogFormat {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.LogFormat))
	}

	if c.DNSTimeout <= 0 {
		errs = append(errs, errors.New("DNS_TIMEOUT must be positive"))
	}

	switch role {
	case RoleAPI:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required"))
		}
		if c.DKIMRefreshConcurrency < 1 {
			errs = append(errs, errors.New("DKIM_REFRESH_CONCURRENCY must be at least 1"))
		}
	case RoleMailctl:
	default:
		errs = append(errs, fmt.Errorf("unknown role %q", role))
	}

	return errors.Join(errs...)
}

// Scheme returns the default password scheme. It is only meaningful after
// Validate succeeded.
func (c *Config) Scheme() passwd.Scheme {
	return c.scheme
}

// loadEnvFile applies path if it exists. A missing file is not an error.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
