package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/url"

	"github.com/sethvargo/go-envconfig"

	"github.com/Evgen-Mutagen/atm-inventory/internal/service"
)

var (
	ErrDatabaseURIRequired = errors.New("database URI is required (use -d flag or DATABASE_URI env)")
	ErrJWTSecretRequired   = errors.New("JWT secret is required (use -jwt-secret flag or JWT_SECRET_KEY env)")
)

// Config is filled from flags first; environment variables override them.
type Config struct {
	RunAddress         string `env:"RUN_ADDRESS, overwrite"`
	DatabaseURI        string `env:"DATABASE_URI, overwrite"`
	LogLevel           string `env:"LOG_LEVEL, overwrite"`
	JWTSecretKey       string `env:"JWT_SECRET_KEY, overwrite"`
	MigrationsPath     string `env:"MIGRATIONS_PATH, overwrite"`
	LowStockThreshold  int    `env:"LOW_STOCK_THRESHOLD, overwrite"`
	AllowNegativeStock bool   `env:"ALLOW_NEGATIVE_STOCK, overwrite"`
	AdminUsername      string `env:"ADMIN_USERNAME, overwrite"`
	AdminPassword      string `env:"ADMIN_PASSWORD, overwrite"`
}

func NewConfigFromFlags(args []string) (*Config, error) {
	return loadConfig(args, envconfig.OsLookuper())
}

func loadConfig(args []string, lookuper envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}

	fs := flag.NewFlagSet("inventory", flag.ContinueOnError)
	fs.StringVar(&cfg.RunAddress, "a", "localhost:8080", "Server address (env: RUN_ADDRESS)")
	fs.StringVar(&cfg.DatabaseURI, "d", "", "Database URI (env: DATABASE_URI)")
	fs.StringVar(&cfg.LogLevel, "l", "debug", "Log level (debug|info|warn|error) (env: LOG_LEVEL)")
	fs.StringVar(&cfg.JWTSecretKey, "jwt-secret", "", "JWT secret key (env: JWT_SECRET_KEY)")
	fs.StringVar(&cfg.MigrationsPath, "migrations", "./migrations", "Path to migrations folder (env: MIGRATIONS_PATH)")
	fs.IntVar(&cfg.LowStockThreshold, "low-stock", service.DefaultLowStockThreshold, "Low stock threshold (env: LOW_STOCK_THRESHOLD)")
	fs.BoolVar(&cfg.AllowNegativeStock, "allow-negative-stock", false, "Allow sales beyond stock (env: ALLOW_NEGATIVE_STOCK)")
	fs.StringVar(&cfg.AdminUsername, "admin-user", "admin", "Bootstrap account name (env: ADMIN_USERNAME)")
	fs.StringVar(&cfg.AdminPassword, "admin-password", "", "Bootstrap account password, empty disables seeding (env: ADMIN_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURI == "" {
		return ErrDatabaseURIRequired
	}
	if c.JWTSecretKey == "" {
		return ErrJWTSecretRequired
	}
	if c.LowStockThreshold <= 0 {
		c.LowStockThreshold = service.DefaultLowStockThreshold
	}
	return nil
}

func (c *Config) MaskDBPassword() string {
	u, err := url.Parse(c.DatabaseURI)
	if err != nil {
		return c.DatabaseURI
	}

	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "***")
		}
	}
	return u.String()
}
