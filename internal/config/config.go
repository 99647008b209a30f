// Package config manages environment variables.
//
// It reads variables from the process environment (and a local `.env`
// file, if present), loads them into structured Go types, and validates
// that required values are present so the rest of the application can
// rely on them.
//
// Two families of variables are read:
//   - DB_*          the connection descriptor (DB_HOST, DB_USER, DB_PASSWORD,
//     DB_SERVICE, DB_PORT) plus optional pool tuning.
//   - AUTOMATION_*  everything else. A double underscore nests keys, e.g.
//     AUTOMATION_OBSERVABILITY__LOGGING__LEVEL -> observability.logging.level.
package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: loads `.env` into the process env before we read it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const (
	// DatabasePrefix is the env prefix of the connection descriptor.
	DatabasePrefix = "DB_"

	// AppPrefix is the env prefix for every other setting.
	AppPrefix = "AUTOMATION_"

	DialectOracle   = "oracle"
	DialectPostgres = "postgres"
)

// identifierRegex matches an unquoted SQL identifier (Oracle allows $ and #).
var identifierRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_$#]*$`)

// Config is the root configuration object for the application.
//
// Observability is a pointer so it can be swapped wholesale in tests; it
// is always non-nil after LoadConfig.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Auth          AuthConfig           `koanf:"auth"`
	Automation    AutomationConfig     `koanf:"automation" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are in seconds.
type ServerConfig struct {
	Port               string  `koanf:"port" validate:"required"`
	ReadTimeout        int     `koanf:"read_timeout" validate:"min=1"`
	WriteTimeout       int     `koanf:"write_timeout" validate:"min=1"`
	IdleTimeout        int     `koanf:"idle_timeout" validate:"min=1"`
	CORSAllowedOrigins string  `koanf:"cors_allowed_origins"`
	RateLimit          float64 `koanf:"rate_limit" validate:"min=0"`
}

// AllowedOrigins splits the comma separated CORS origin list.
func (s ServerConfig) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(s.CORSAllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// DatabaseConfig is the connection descriptor plus pool tuning.
//
// Host, User, Password, Service and Port must all be present for a valid
// connection; everything else has a default.
type DatabaseConfig struct {
	Dialect         string        `koanf:"dialect" validate:"required,oneof=oracle postgres"`
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"required,min=1,max=65535"`
	User            string        `koanf:"user" validate:"required"`
	Password        string        `koanf:"password" validate:"required"`
	Service         string        `koanf:"service" validate:"required"`
	Schema          string        `koanf:"schema" validate:"required"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"min=0"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"min=0"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time" validate:"min=0"`
	PoolTimeout     time.Duration `koanf:"pool_timeout" validate:"min=1s"`
}

// AuthConfig stores the API key checked by the HTTP API.
// An empty key disables authentication (local use only).
type AuthConfig struct {
	APIKey string `koanf:"api_key"`
}

// AutomationConfig holds settings of the one-shot automation run.
type AutomationConfig struct {
	DefaultStatus string `koanf:"default_status" validate:"required"`
}

// defaultConfig returns the values used for anything the environment
// does not set.
func defaultConfig() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:               "8080",
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: "*",
			RateLimit:          20,
		},
		Database: DatabaseConfig{
			Dialect:         DialectOracle,
			Schema:          "X_OWNER",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			PoolTimeout:     30 * time.Second,
		},
		Automation: AutomationConfig{
			DefaultStatus: "FINISHED",
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// databaseKey maps DB_SERVICE -> database.service.
func databaseKey(s string) string {
	return "database." + strings.ToLower(strings.TrimPrefix(s, DatabasePrefix))
}

// appKey maps AUTOMATION_SERVER__READ_TIMEOUT -> server.read_timeout.
func appKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, AppPrefix)), "__", ".")
}

// LoadConfig loads configuration from environment variables, applies
// defaults, unmarshals into Config and validates the result.
//
// The service name is forced to "automation" and the observability
// environment always follows primary.env, regardless of what was set.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider(DatabasePrefix, ".", databaseKey), nil); err != nil {
		return nil, fmt.Errorf("loading %s env variables: %w", DatabasePrefix, err)
	}
	if err := k.Load(env.Provider(AppPrefix, ".", appKey), nil); err != nil {
		return nil, fmt.Errorf("loading %s env variables: %w", AppPrefix, err)
	}

	// Unmarshal overlays env values on top of the defaults.
	mainConfig := defaultConfig()
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}
	mainConfig.Observability.ServiceName = "automation"
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Validate(); err != nil {
		return nil, err
	}

	return mainConfig, nil
}

// Validate runs the struct-tag validator and the custom rules that tags
// cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if !identifierRegex.MatchString(c.Database.Schema) {
		return fmt.Errorf("invalid database schema %q: must be a plain SQL identifier", c.Database.Schema)
	}

	if c.Observability == nil {
		return fmt.Errorf("observability config is required")
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("invalid observability config: %w", err)
	}

	return nil
}

// IsLocal reports whether the app runs on a developer machine. Local runs
// trace every SQL statement.
func (c *Config) IsLocal() bool {
	return c.Primary.Env == "local"
}
