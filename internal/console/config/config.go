package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Session SessionConfig
	CSRF    CSRFConfig
	Log     LogConfig
	Display DisplayConfig
	Limits  LimitsConfig
}

// ServerConfig configures the console HTTP listener.
type ServerConfig struct {
	Address      string        `envconfig:"CONSOLE_HTTP_ADDR" default:":8080"`
	BasePath     string        `envconfig:"CONSOLE_BASE_PATH" default:"/"`
	Environment  string        `envconfig:"CONSOLE_ENV" default:"development"`
	ReadTimeout  time.Duration `envconfig:"CONSOLE_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"CONSOLE_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `envconfig:"CONSOLE_IDLE_TIMEOUT" default:"60s"`
	HandlerLimit time.Duration `envconfig:"CONSOLE_HANDLER_TIMEOUT" default:"60s"`
}

// BackendConfig points the console at the catalog REST API.
// An empty BaseURL selects the in-memory catalog.
type BackendConfig struct {
	BaseURL        string        `envconfig:"CATALOG_API_BASE_URL"`
	Timeout        time.Duration `envconfig:"CATALOG_API_TIMEOUT" default:"30s"`
	SeedAdmin      string        `envconfig:"CATALOG_SEED_ADMIN" default:"admin"`
	SeedPassword   string        `envconfig:"CATALOG_SEED_PASSWORD" default:"ChangeMe123!"`
	SeedCategories []string      `envconfig:"CATALOG_SEED_CATEGORIES"`
}

// SessionConfig controls the signed session cookie.
type SessionConfig struct {
	CookieName  string        `envconfig:"SESSION_COOKIE_NAME" default:"catalog_session"`
	HashKey     string        `envconfig:"SESSION_HASH_KEY"`
	BlockKey    string        `envconfig:"SESSION_BLOCK_KEY"`
	Secure      bool          `envconfig:"SESSION_COOKIE_SECURE" default:"false"`
	IdleTimeout time.Duration `envconfig:"SESSION_IDLE_TIMEOUT" default:"30m"`
	Lifetime    time.Duration `envconfig:"SESSION_LIFETIME" default:"12h"`
}

// CSRFConfig controls the double-submit cookie.
type CSRFConfig struct {
	CookieName string `envconfig:"CSRF_COOKIE_NAME" default:"catalog_csrf"`
	HeaderName string `envconfig:"CSRF_HEADER_NAME" default:"X-CSRF-Token"`
	Secure     bool   `envconfig:"CSRF_COOKIE_SECURE" default:"false"`
}

// LogConfig selects the zap encoder and level.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// DisplayConfig tweaks how catalog data is presented.
type DisplayConfig struct {
	CurrencySymbol   string `envconfig:"CATALOG_CURRENCY_SYMBOL" default:"₺"`
	Locale           string `envconfig:"CATALOG_LOCALE" default:"tr"`
	PlaceholderImage string `envconfig:"CATALOG_PLACEHOLDER_IMAGE" default:"https://via.placeholder.com/800x600?text=No+Image"`
}

// LimitsConfig bounds request sizes and throttling.
type LimitsConfig struct {
	UploadMaxBytes int64 `envconfig:"CATALOG_UPLOAD_MAX_BYTES" default:"10485760"`
	LoginPerMinute int   `envconfig:"LOGIN_RATE_LIMIT" default:"10"`
}

// ErrInvalid wraps every validation failure returned by Load.
var ErrInvalid = errors.New("config: invalid")

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("%w: http address is required", ErrInvalid)
	}
	if c.Backend.BaseURL != "" && !strings.HasPrefix(c.Backend.BaseURL, "http://") && !strings.HasPrefix(c.Backend.BaseURL, "https://") {
		return fmt.Errorf("%w: backend base url must be http(s): %q", ErrInvalid, c.Backend.BaseURL)
	}
	if c.Limits.UploadMaxBytes <= 0 {
		return fmt.Errorf("%w: upload limit must be positive", ErrInvalid)
	}
	if c.Limits.LoginPerMinute <= 0 {
		return fmt.Errorf("%w: login rate limit must be positive", ErrInvalid)
	}
	if c.IsProduction() && c.Session.HashKey == "" {
		return fmt.Errorf("%w: SESSION_HASH_KEY is required in production", ErrInvalid)
	}
	return nil
}

// IsProduction reports whether the console runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && strings.EqualFold(c.Server.Environment, "production")
}

// UsesStaticBackend reports whether the in-memory catalog should be used.
func (c *Config) UsesStaticBackend() bool {
	return strings.TrimSpace(c.Backend.BaseURL) == ""
}

// SessionKeys decodes the configured session keys. Keys may be raw strings or
// base64 (std or URL alphabet). Empty keys yield nil.
func (c *Config) SessionKeys() (hashKey, blockKey []byte) {
	return decodeKey(c.Session.HashKey), decodeKey(c.Session.BlockKey)
}

func decodeKey(raw string) []byte {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.RawURLEncoding} {
		if decoded, err := enc.DecodeString(raw); err == nil && validKeyLength(len(decoded)) {
			return decoded
		}
	}
	return []byte(raw)
}

func validKeyLength(n int) bool {
	return n == 16 || n == 24 || n == 32 || n == 64
}
