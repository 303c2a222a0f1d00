package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password", "recon2root",
}

type Config struct {
	Port             int           `env:"PORT" envDefault:"3000"`
	DatabaseURL      string        `env:"DATABASE_URL" envDefault:"sqlite://data/recon2root.db"`
	RedisURL         string        `env:"REDIS_URL"`
	SessionSecret    string        `env:"SESSION_SECRET,required"`
	SessionTTL       time.Duration `env:"SESSION_TTL" envDefault:"8h"`
	UploadDir        string        `env:"UPLOAD_DIR" envDefault:"uploads"`
	PublicDir        string        `env:"PUBLIC_DIR" envDefault:"public"`
	CertMaxFileSize  int64         `env:"CERT_MAX_FILE_SIZE" envDefault:"5242880"`
	CertMaxFiles     int           `env:"CERT_MAX_FILES" envDefault:"100"`
	LoginMaxFailures int           `env:"LOGIN_MAX_FAILURES" envDefault:"5"`
	LoginWindow      time.Duration `env:"LOGIN_WINDOW" envDefault:"15m"`
	APIRatePerMinute int           `env:"API_RATE_PER_MINUTE" envDefault:"120"`
	TrustProxy       bool          `env:"TRUST_PROXY" envDefault:"false"`
	PhotoMaxFileSize int64         `env:"PHOTO_MAX_FILE_SIZE" envDefault:"20971520"`
	PhotoMaxFiles    int           `env:"PHOTO_MAX_FILES" envDefault:"50"`
	VideoMaxFileSize int64         `env:"VIDEO_MAX_FILE_SIZE" envDefault:"524288000"`
	AppEnv           string        `env:"APP_ENV" envDefault:"development"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// CertificateBodyLimit bounds a whole bulk upload request: every PDF at its
// cap plus room for the manifest and multipart framing.
func (c *Config) CertificateBodyLimit() int64 {
	return c.CertMaxFileSize*int64(c.CertMaxFiles) + ManifestMaxSize
}

func (c *Config) PhotoBodyLimit() int64 {
	return c.PhotoMaxFileSize*int64(c.PhotoMaxFiles) + ManifestMaxSize
}

func (c *Config) VideoBodyLimit() int64 {
	return c.VideoMaxFileSize + ManifestMaxSize
}

func (c *Config) Validate(isProduction bool) error {
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.CertMaxFiles <= 0 || c.CertMaxFileSize <= 0 {
		return fmt.Errorf("CERT_MAX_FILES and CERT_MAX_FILE_SIZE must be positive")
	}
	if c.LoginMaxFailures <= 0 || c.LoginWindow <= 0 {
		return fmt.Errorf("LOGIN_MAX_FAILURES and LOGIN_WINDOW must be positive")
	}
	if c.APIRatePerMinute <= 0 {
		return fmt.Errorf("API_RATE_PER_MINUTE must be positive")
	}
	if c.PhotoMaxFiles <= 0 || c.PhotoMaxFileSize <= 0 || c.VideoMaxFileSize <= 0 {
		return fmt.Errorf("PHOTO_MAX_FILES, PHOTO_MAX_FILE_SIZE and VIDEO_MAX_FILE_SIZE must be positive")
	}
	if _, _, err := ParseDatabaseURL(c.DatabaseURL); err != nil {
		return err
	}

	if isProduction {
		if err := validateSecret("SESSION_SECRET", c.SessionSecret); err != nil {
			return err
		}
		if c.RedisURL == "" {
			log.Warn().Msg("REDIS_URL is empty in production: rate limits are per-process")
		} else if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
	}

	return nil
}

// ParseDatabaseURL splits DATABASE_URL into a sqlx driver name and DSN.
// postgres:// and postgresql:// URLs go to lib/pq unchanged; sqlite://path
// (or a bare file path) goes to go-sqlite3.
func ParseDatabaseURL(raw string) (driver, dsn string, err error) {
	switch {
	case raw == "":
		return "", "", fmt.Errorf("DATABASE_URL is empty")
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		if _, err := url.Parse(raw); err != nil {
			return "", "", fmt.Errorf("parse DATABASE_URL: %w", err)
		}
		return DriverPostgres, raw, nil
	case strings.HasPrefix(raw, "sqlite://"):
		path := strings.TrimPrefix(raw, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("DATABASE_URL sqlite path is empty")
		}
		return DriverSQLite, path, nil
	case strings.Contains(raw, "://"):
		return "", "", fmt.Errorf("unsupported DATABASE_URL scheme in %q", raw)
	default:
		return DriverSQLite, raw, nil
	}
}

func validateSecret(name, value string) error {
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production (generate with: openssl rand -base64 32)", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
