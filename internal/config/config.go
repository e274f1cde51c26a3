// Package config loads AcadFlow settings from environment variables, applies
// defaults and validates everything on startup.
package config

import (
	"strconv"
	"time"

	"github.com/acadflow/acadflow/internal/tabular"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Import   ImportConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Locale   LocaleConfig
	Grid     GridConfig
	Presets  PresetsConfig
	Journal  JournalConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for non-import requests.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds PostgreSQL settings. Records stay in memory when URL is empty.
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether a database is configured.
func (c DatabaseConfig) Enabled() bool { return c.URL != "" }

// ImportConfig holds file import settings.
type ImportConfig struct {
	MaxFileSize   int64         `env:"IMPORT_MAX_FILE_SIZE" default:"20971520"`
	MaxConcurrent int           `env:"IMPORT_MAX_CONCURRENT" default:"4"`
	MaxWaitTime   time.Duration `env:"IMPORT_MAX_WAIT_TIME" default:"15s"`
	Timeout       time.Duration `env:"IMPORT_TIMEOUT" default:"5m"`
}

// RateLimitConfig holds per-IP rate limits.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`
	// ImportLimit applies to import endpoints instead of RequestsPerMinute.
	ImportLimit       int  `env:"RATE_LIMIT_IMPORT" default:"10"`
}

// SecurityConfig holds access settings.
type SecurityConfig struct {
	// TrustedProxies lists CIDRs whose X-Forwarded-For header is honoured.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	RequireAPIKey bool     `env:"REQUIRE_API_KEY" default:"false"`
	APIKeys       []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" default:"info"`
	Format string `env:"LOG_FORMAT" default:"text"`
}

// LocaleConfig controls how cells are parsed on import and rendered on export.
type LocaleConfig struct {
	DecimalSeparator string   `env:"LOCALE_DECIMAL_SEPARATOR" default:"."`
	DateOrder        string   `env:"LOCALE_DATE_ORDER" default:"DMY"`
	TrueTokens       []string `env:"LOCALE_TRUE_TOKENS" default:"oui,true,1"`
	FalseTokens      []string `env:"LOCALE_FALSE_TOKENS" default:"non,false,0"`
	Yes              string   `env:"LOCALE_YES" default:"Oui"`
	No               string   `env:"LOCALE_NO" default:"Non"`
}

// Tabular converts the settings to a tabular.Locale.
func (c LocaleConfig) Tabular() tabular.Locale {
	return tabular.Locale{
		DecimalSeparator: c.DecimalSeparator,
		DateOrder:        tabular.DateOrder(c.DateOrder),
		BooleanTokens: tabular.BooleanTokens{
			True:  c.TrueTokens,
			False: c.FalseTokens,
			Yes:   c.Yes,
			No:    c.No,
		},
	}
}

// GridConfig holds grid defaults.
type GridConfig struct {
	PageSize    int `env:"GRID_PAGE_SIZE" default:"10"`
	MaxPageSize int `env:"GRID_MAX_PAGE_SIZE" default:"200"`
}

// PresetsConfig points to an optional YAML file of extra presets.
type PresetsConfig struct {
	File string `env:"PRESETS_FILE"`
}

// JournalConfig holds operation journal settings.
type JournalConfig struct {
	Capacity      int           `env:"JOURNAL_CAPACITY" default:"500"`
	MaxAge        time.Duration `env:"JOURNAL_MAX_AGE" default:"720h"`
	CheckInterval time.Duration `env:"JOURNAL_CHECK_INTERVAL" default:"1h"`
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
