package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// ErrConfiguration marks a missing or invalid setting. Binaries must not
// start serving when Load returns it.
var ErrConfiguration = errors.New("config: invalid configuration")

type Config struct {
	App struct {
		Env string
	} `mapstructure:"app"`

	HTTP struct {
		Port int
	} `mapstructure:"http"`

	Postgres struct {
		DSN            string
		MaxConns       int32         `mapstructure:"max_conns"`
		QueryTimeout   time.Duration `mapstructure:"query_timeout"`
		MigrateOnStart bool          `mapstructure:"migrate_on_start"`
	} `mapstructure:"postgres"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Supabase struct {
		URL            string
		ServiceRoleKey string `mapstructure:"service_role_key"`
	} `mapstructure:"supabase"`

	Stripe struct {
		SecretKey string `mapstructure:"secret_key"`
	} `mapstructure:"stripe"`
}

// envBindings maps config keys to the environment variables the
// deployments have always used.
var envBindings = map[string]string{
	"app.env":                   "APP_ENV",
	"http.port":                 "PORT",
	"postgres.dsn":              "DATABASE_URL",
	"postgres.max_conns":        "DB_MAX_CONNS",
	"postgres.query_timeout":    "CATALOG_QUERY_TIMEOUT",
	"postgres.migrate_on_start": "MIGRATE_ON_START",
	"metrics.enabled":           "METRICS_ENABLED",
	"supabase.url":              "SUPABASE_URL",
	"supabase.service_role_key": "SUPABASE_SERVICE_ROLE_KEY",
	"stripe.secret_key":         "STRIPE_SECRET_KEY",
}

// Load reads an optional YAML file, an optional .env file in the working
// directory and finally the process environment, which wins.
func Load(path string) (Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetDefault("app.env", "prod")
	v.SetDefault("http.port", 3001)
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.query_timeout", "5s")
	v.SetDefault("metrics.enabled", true)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, err
		}
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return c, fmt.Errorf("%w: read %s: %v", ErrConfiguration, path, err)
		}
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Validate checks the settings every deployment needs.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		return fmt.Errorf("%w: DATABASE_URL is required", ErrConfiguration)
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("%w: PORT %d out of range", ErrConfiguration, c.HTTP.Port)
	}
	if c.Postgres.MaxConns <= 0 {
		return fmt.Errorf("%w: DB_MAX_CONNS must be positive", ErrConfiguration)
	}
	if c.Postgres.QueryTimeout <= 0 {
		return fmt.Errorf("%w: CATALOG_QUERY_TIMEOUT must be positive", ErrConfiguration)
	}
	if (c.Supabase.URL == "") != (c.Supabase.ServiceRoleKey == "") {
		return fmt.Errorf("%w: SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY must be set together", ErrConfiguration)
	}
	return nil
}

// RequireStripe is checked only by the commands that talk to Stripe.
func (c Config) RequireStripe() error {
	if strings.TrimSpace(c.Stripe.SecretKey) == "" {
		return fmt.Errorf("%w: STRIPE_SECRET_KEY is required", ErrConfiguration)
	}
	return nil
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTP.Port)
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("%w: load %s: %v", ErrConfiguration, path, err)
	}
	return nil
}
